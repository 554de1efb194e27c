package rules

import (
	"embed"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rulesets/*.yaml
var builtinRulesets embed.FS

// DefaultRuleset is loaded when a scan request names no ruleset.
const DefaultRuleset = "combined_baseline.yaml"

// builtinFiles lists the embedded rulesets in catalog order.
var builtinFiles = []string{
	"combined_baseline.yaml",
	"pii_baseline.yaml",
	"secrets_baseline.yaml",
	"config_risk_baseline.yaml",
}

// envVarPattern matches ${VAR} and ${VAR:-default} expressions.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// Loader resolves ruleset names to parsed, validated RuleSets. A ruleset is
// looked up in Dir first (when set) and falls back to the builtin embedded
// rulesets. Rulesets are loaded fresh per call; there is no cross-scan cache.
type Loader struct {
	Dir string
}

// NewLoader creates a loader that reads rulesets from dir, falling back to
// the builtin rulesets. An empty dir serves builtins only.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// Load resolves name to a ruleset. An empty name loads DefaultRuleset.
// The returned ruleset is validated; any structural problem is a ConfigError.
func (l *Loader) Load(name string) (*RuleSet, error) {
	safeName := strings.TrimSpace(name)
	if safeName == "" {
		safeName = DefaultRuleset
	}
	// Names are file names, never paths into the rules directory tree.
	if safeName != filepath.Base(safeName) {
		return nil, configErrorf("invalid ruleset name %q", name)
	}

	data, err := l.read(safeName)
	if err != nil {
		return nil, configErrorf("unable to load ruleset %q: %v", safeName, err)
	}

	data = substituteEnvVars(data)

	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, configErrorf("parsing ruleset %q: %v", safeName, err)
	}
	if err := Validate(&rs); err != nil {
		return nil, err
	}
	return &rs, nil
}

func (l *Loader) read(name string) ([]byte, error) {
	if l.Dir != "" {
		data, err := os.ReadFile(filepath.Join(l.Dir, name))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return builtinRulesets.ReadFile("rulesets/" + name)
}

// List returns catalog info for each builtin ruleset, loading each one so
// that name and version reflect the served content (including Dir overrides).
func (l *Loader) List() ([]RuleSetInfo, error) {
	infos := make([]RuleSetInfo, 0, len(builtinFiles))
	for _, file := range builtinFiles {
		rs, err := l.Load(file)
		if err != nil {
			return nil, err
		}
		infos = append(infos, RuleSetInfo{File: file, Name: rs.Name, Version: rs.Version})
	}
	return infos, nil
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default} patterns in content
// with the corresponding environment variable values. If a variable is not
// set and no default is provided, the expression is replaced with an empty
// string.
func substituteEnvVars(content []byte) []byte {
	return envVarPattern.ReplaceAllFunc(content, func(match []byte) []byte {
		groups := envVarPattern.FindSubmatch(match)
		if groups == nil {
			return match
		}

		varName := string(groups[1])
		defaultVal := ""
		hasDefault := len(groups) > 2 && groups[2] != nil
		if hasDefault {
			defaultVal = string(groups[2])
		}

		val, ok := os.LookupEnv(varName)
		if !ok || val == "" {
			if hasDefault {
				return []byte(defaultVal)
			}
			return []byte("")
		}
		return []byte(val)
	})
}
