package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSeverityValue(t *testing.T) {
	tests := []struct {
		severity Severity
		expected int
	}{
		{SeverityLow, 1},
		{SeverityMedium, 2},
		{SeverityHigh, 3},
		{SeverityCritical, 4},
		{Severity("bogus"), 0},
	}

	for _, tt := range tests {
		if got := tt.severity.Value(); got != tt.expected {
			t.Errorf("Severity(%q).Value() = %d, want %d", tt.severity, got, tt.expected)
		}
	}
}

func TestCompileFiltersByCategory(t *testing.T) {
	rs := &RuleSet{
		Name:    "test",
		Version: "1.0",
		Patterns: []RulePattern{
			{ID: "a", Label: "aws", Regex: "AKIA[0-9A-Z]{16}", Severity: SeverityCritical, Category: CategorySecret},
			{ID: "b", Label: "email", Regex: "@", Severity: SeverityMedium, Category: CategoryPII},
			{ID: "c", Label: "debug", Regex: "debug=true", Severity: SeverityMedium, Category: CategoryConfigRisk},
		},
	}

	tests := []struct {
		name       string
		categories map[Category]bool
		expected   []string
	}{
		{
			name:       "All categories when nil",
			categories: nil,
			expected:   []string{"a", "b", "c"},
		},
		{
			name:       "Secret only",
			categories: map[Category]bool{CategorySecret: true},
			expected:   []string{"a"},
		},
		{
			name:       "PII and config risk",
			categories: map[Category]bool{CategoryPII: true, CategoryConfigRisk: true},
			expected:   []string{"b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled, err := Compile(rs, tt.categories)
			if err != nil {
				t.Fatalf("Compile returned error: %v", err)
			}
			if len(compiled) != len(tt.expected) {
				t.Fatalf("Expected %d compiled rules, got %d", len(tt.expected), len(compiled))
			}
			for i, id := range tt.expected {
				if compiled[i].Rule.ID != id {
					t.Errorf("compiled[%d].Rule.ID = %s, want %s", i, compiled[i].Rule.ID, id)
				}
			}
		})
	}
}

func TestCompileInvalidRegex(t *testing.T) {
	rs := &RuleSet{
		Name:    "broken",
		Version: "1.0",
		Patterns: []RulePattern{
			{ID: "bad", Label: "bad", Regex: "([unclosed", Severity: SeverityHigh, Category: CategorySecret},
		},
	}

	_, err := Compile(rs, nil)
	if err == nil {
		t.Fatal("Expected error for invalid regex")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("Expected ConfigError, got %T", err)
	}
}

func TestValidate(t *testing.T) {
	valid := RulePattern{ID: "ok", Label: "ok", Regex: "x", Severity: SeverityLow, Category: CategoryPII}

	tests := []struct {
		name    string
		ruleset *RuleSet
		wantErr bool
	}{
		{
			name:    "Valid ruleset",
			ruleset: &RuleSet{Name: "n", Version: "1", Patterns: []RulePattern{valid}},
			wantErr: false,
		},
		{
			name:    "Missing name",
			ruleset: &RuleSet{Version: "1", Patterns: []RulePattern{valid}},
			wantErr: true,
		},
		{
			name:    "Missing version",
			ruleset: &RuleSet{Name: "n", Patterns: []RulePattern{valid}},
			wantErr: true,
		},
		{
			name: "Unknown category",
			ruleset: &RuleSet{Name: "n", Version: "1", Patterns: []RulePattern{
				{ID: "x", Label: "x", Regex: "x", Severity: SeverityLow, Category: Category("MALWARE")},
			}},
			wantErr: true,
		},
		{
			name: "Unknown severity",
			ruleset: &RuleSet{Name: "n", Version: "1", Patterns: []RulePattern{
				{ID: "x", Label: "x", Regex: "x", Severity: Severity("EXTREME"), Category: CategoryPII},
			}},
			wantErr: true,
		},
		{
			name: "Duplicate ids",
			ruleset: &RuleSet{Name: "n", Version: "1", Patterns: []RulePattern{
				valid,
				{ID: "ok", Label: "dup", Regex: "y", Severity: SeverityLow, Category: CategoryPII},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.ruleset)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoaderBuiltins(t *testing.T) {
	loader := NewLoader("")

	for _, file := range builtinFiles {
		rs, err := loader.Load(file)
		if err != nil {
			t.Fatalf("Load(%s) returned error: %v", file, err)
		}
		if rs.Name == "" || rs.Version == "" {
			t.Errorf("Load(%s): missing name or version", file)
		}
		if len(rs.Patterns) == 0 {
			t.Errorf("Load(%s): no patterns", file)
		}
		if _, err := Compile(rs, nil); err != nil {
			t.Errorf("Compile(%s) returned error: %v", file, err)
		}
	}
}

func TestLoaderDefaultName(t *testing.T) {
	loader := NewLoader("")

	rs, err := loader.Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned error: %v", err)
	}
	if rs.Name != "Combined Baseline" {
		t.Errorf("Default ruleset name = %q, want Combined Baseline", rs.Name)
	}
}

func TestLoaderUnknownRuleset(t *testing.T) {
	loader := NewLoader("")

	_, err := loader.Load("no_such_ruleset.yaml")
	if err == nil {
		t.Fatal("Expected error for unknown ruleset")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("Expected ConfigError, got %T", err)
	}
}

func TestLoaderRejectsPathTraversal(t *testing.T) {
	loader := NewLoader("")

	if _, err := loader.Load("../etc/passwd"); err == nil {
		t.Fatal("Expected error for path-like ruleset name")
	}
}

func TestLoaderDirOverride(t *testing.T) {
	dir := t.TempDir()
	override := `name: Override
version: "9.9"
patterns:
  - id: OV-1
    label: override rule
    regex: 'override'
    severity: LOW
    category: PII
`
	if err := os.WriteFile(filepath.Join(dir, "pii_baseline.yaml"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(dir)
	rs, err := loader.Load("pii_baseline.yaml")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if rs.Name != "Override" || rs.Version != "9.9" {
		t.Errorf("Expected override ruleset, got %s (%s)", rs.Name, rs.Version)
	}

	// Builtins still served for names not present in the directory.
	rs, err = loader.Load("secrets_baseline.yaml")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if rs.Name != "Secrets Baseline" {
		t.Errorf("Expected builtin secrets ruleset, got %s", rs.Name)
	}
}

func TestLoaderEnvSubstitution(t *testing.T) {
	dir := t.TempDir()
	content := `name: Env
version: "${DARBITER_TEST_RS_VERSION:-0.1}"
patterns:
  - id: ENV-1
    label: env rule
    regex: 'x'
    severity: LOW
    category: PII
`
	if err := os.WriteFile(filepath.Join(dir, "env.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(dir)

	rs, err := loader.Load("env.yaml")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if rs.Version != "0.1" {
		t.Errorf("Expected default-substituted version 0.1, got %q", rs.Version)
	}

	t.Setenv("DARBITER_TEST_RS_VERSION", "2.0")
	rs, err = loader.Load("env.yaml")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if rs.Version != "2.0" {
		t.Errorf("Expected env-substituted version 2.0, got %q", rs.Version)
	}
}

func TestList(t *testing.T) {
	loader := NewLoader("")

	infos, err := loader.List()
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(infos) != len(builtinFiles) {
		t.Fatalf("Expected %d catalog entries, got %d", len(builtinFiles), len(infos))
	}
	if infos[0].File != DefaultRuleset {
		t.Errorf("First catalog entry = %s, want %s", infos[0].File, DefaultRuleset)
	}
}

func TestIdentity(t *testing.T) {
	rs := &RuleSet{Name: "PII Baseline", Version: "1.1"}
	if got := rs.Identity(); got != "PII Baseline (1.1)" {
		t.Errorf("Identity() = %q", got)
	}
}
