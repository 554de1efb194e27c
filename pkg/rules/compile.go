package rules

import (
	"fmt"
	"regexp"
)

// ConfigError marks a configuration problem (bad ruleset, invalid regex,
// unknown category) that must fail the whole scan rather than be skipped.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string {
	return e.msg
}

// configErrorf builds a ConfigError with a formatted message.
func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// NewConfigError builds a ConfigError for callers outside this package that
// detect configuration problems of their own, such as unknown request
// categories.
func NewConfigError(format string, args ...any) *ConfigError {
	return configErrorf(format, args...)
}

// CompiledRule pairs a rule pattern with its compiled regex.
type CompiledRule struct {
	Rule    RulePattern
	Pattern *regexp.Regexp
}

// Compile compiles every pattern in the ruleset whose category is in the
// active set, preserving ruleset order. A nil or empty category set enables
// all categories. An invalid regex fails the call with a ConfigError.
func Compile(rs *RuleSet, categories map[Category]bool) ([]CompiledRule, error) {
	if rs == nil {
		return nil, configErrorf("ruleset is nil")
	}

	compiled := make([]CompiledRule, 0, len(rs.Patterns))
	for _, rule := range rs.Patterns {
		if len(categories) > 0 && !categories[rule.Category] {
			continue
		}
		pattern, err := regexp.Compile(rule.Regex)
		if err != nil {
			return nil, configErrorf("rule %s: invalid regex %q: %v", rule.ID, rule.Regex, err)
		}
		compiled = append(compiled, CompiledRule{Rule: rule, Pattern: pattern})
	}
	return compiled, nil
}

// Validate checks a loaded ruleset for structural problems: missing name or
// version, empty or duplicate pattern ids, unknown categories or severities,
// and regexes that do not compile.
func Validate(rs *RuleSet) error {
	if rs == nil {
		return configErrorf("ruleset is nil")
	}
	if rs.Name == "" {
		return configErrorf("ruleset name is required")
	}
	if rs.Version == "" {
		return configErrorf("ruleset %s: version is required", rs.Name)
	}

	seen := make(map[string]bool, len(rs.Patterns))
	for _, rule := range rs.Patterns {
		if rule.ID == "" {
			return configErrorf("ruleset %s: pattern id is required", rs.Name)
		}
		if seen[rule.ID] {
			return configErrorf("ruleset %s: duplicate pattern id %s", rs.Name, rule.ID)
		}
		seen[rule.ID] = true

		if !rule.Category.IsValid() {
			return configErrorf("ruleset %s: pattern %s has unknown category %q", rs.Name, rule.ID, rule.Category)
		}
		if !rule.Severity.IsValid() {
			return configErrorf("ruleset %s: pattern %s has unknown severity %q", rs.Name, rule.ID, rule.Severity)
		}
		if _, err := regexp.Compile(rule.Regex); err != nil {
			return configErrorf("ruleset %s: pattern %s has invalid regex %q: %v", rs.Name, rule.ID, rule.Regex, err)
		}
	}
	return nil
}
