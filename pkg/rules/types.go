// Package rules holds rule definitions for content detection and compiles
// them into executable regex rules.
package rules

// Category classifies the nature of a detection pattern
type Category string

const (
	CategorySecret     Category = "SECRET"
	CategoryPII        Category = "PII"
	CategoryConfigRisk Category = "CONFIG_RISK"
)

// AllCategories returns the closed set of known categories.
func AllCategories() []Category {
	return []Category{CategorySecret, CategoryPII, CategoryConfigRisk}
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	switch c {
	case CategorySecret, CategoryPII, CategoryConfigRisk:
		return true
	}
	return false
}

// Severity represents the risk level of a detection pattern
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Value returns numeric value for severity comparison
func (s Severity) Value() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// IsValid reports whether s is one of the known severities.
func (s Severity) IsValid() bool {
	return s.Value() > 0
}

// RulePattern is a single regex-based detection pattern
type RulePattern struct {
	ID       string   `json:"id" yaml:"id"`
	Label    string   `json:"label" yaml:"label"`
	Regex    string   `json:"regex" yaml:"regex"`
	Severity Severity `json:"severity" yaml:"severity"`
	Category Category `json:"category" yaml:"category"`
}

// RuleSet is a named, versioned collection of detection patterns.
// It is immutable once loaded for a scan.
type RuleSet struct {
	Name     string        `json:"name" yaml:"name"`
	Version  string        `json:"version" yaml:"version"`
	Patterns []RulePattern `json:"patterns" yaml:"patterns"`
}

// Identity returns the reporting identity of the ruleset.
func (r *RuleSet) Identity() string {
	return r.Name + " (" + r.Version + ")"
}

// RuleSetInfo describes a catalog entry for a loadable ruleset.
type RuleSetInfo struct {
	File    string `json:"file"`
	Name    string `json:"name"`
	Version string `json:"version"`
}
