package scan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/rajivksingh13/darbiter/pkg/structured"
)

// maxUploadBytes caps how much raw text is read from an uploaded payload
// when it falls back to line-oriented detection.
const maxUploadBytes = 2_000_000

type format int

const (
	formatText format = iota
	formatJSON
	formatYAML
	formatTOML
	formatCSV
	formatXML
	formatKeyValue
)

// classifyFormat maps a file name to its extraction strategy. Anything not
// recognized is treated as raw text.
func classifyFormat(name string) format {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "json":
		return formatJSON
	case "yaml", "yml":
		return formatYAML
	case "toml":
		return formatTOML
	case "csv":
		return formatCSV
	case "xml":
		return formatXML
	case "properties", "env", "conf":
		return formatKeyValue
	default:
		return formatText
	}
}

// extractStructured normalizes a file into fields according to its format.
// A decode failure or a format without field extraction yields nil, which
// callers treat as "fall back to raw-text detection". The fallback is a
// contract, not an accident: malformed structured documents are still
// scanned as text.
func extractStructured(path, name string) []structured.Field {
	switch classifyFormat(name) {
	case formatJSON:
		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()
		fields, err := structured.StreamJSON(f)
		if err != nil {
			return nil
		}
		return fields
	case formatYAML:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var node any
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil
		}
		return structured.FlattenTree(node)
	case formatTOML:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var node map[string]any
		if err := toml.Unmarshal(data, &node); err != nil {
			return nil
		}
		return structured.FlattenTree(node)
	case formatCSV:
		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()
		return structured.FlattenCSV(f)
	case formatXML:
		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()
		fields, err := structured.FlattenXML(f)
		if err != nil {
			return nil
		}
		return fields
	case formatKeyValue:
		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()
		return structured.FlattenKeyValue(f)
	default:
		return nil
	}
}

// readTextCapped reads at most maxUploadBytes of a file as text.
func readTextCapped(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if len(data) > maxUploadBytes {
		data = data[:maxUploadBytes]
	}
	return string(data), nil
}
