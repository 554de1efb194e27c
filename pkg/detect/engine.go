// Package detect matches compiled rule sets against raw lines and
// normalized structured fields to produce findings.
package detect

import (
	"github.com/rajivksingh13/darbiter/pkg/rules"
	"github.com/rajivksingh13/darbiter/pkg/structured"
)

// Finding is a single rule match against content, with location and
// severity. Findings are append-only and created only by the detection
// engine.
type Finding struct {
	ID         string         `json:"id"`
	Category   rules.Category `json:"category"`
	Label      string         `json:"label"`
	Severity   rules.Severity `json:"severity"`
	FilePath   string         `json:"filePath"`
	LineNumber int            `json:"lineNumber"`
	Snippet    string         `json:"snippet"`
}

// Engine runs compiled rules over content sources. Matching is line- and
// field-scoped: a value split across two lines or fields is never detected.
type Engine interface {
	// DetectFile scans a file on disk line by line. Non-regular files and
	// files that look binary are skipped, returning no findings.
	DetectFile(path string, compiled []rules.CompiledRule) ([]Finding, error)

	// DetectText scans in-memory text line by line, attributing findings to
	// sourceLabel.
	DetectText(content string, compiled []rules.CompiledRule, sourceLabel string) []Finding

	// DetectFields scans normalized structured fields, matching each rule
	// against a "<path>=<value>" haystack per field.
	DetectFields(fields []structured.Field, compiled []rules.CompiledRule, sourceLabel string) []Finding
}

// NewEngine creates the default detection engine.
func NewEngine() Engine {
	return &defaultEngine{}
}
