package risk

import (
	"testing"

	"github.com/rajivksingh13/darbiter/pkg/detect"
	"github.com/rajivksingh13/darbiter/pkg/rules"
)

func finding(sev rules.Severity) detect.Finding {
	return detect.Finding{ID: "r", Severity: sev, Category: rules.CategoryPII}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		findings []detect.Finding
		overall  rules.Severity
	}{
		{
			name:     "No findings",
			findings: nil,
			overall:  rules.SeverityLow,
		},
		{
			name:     "Only low",
			findings: []detect.Finding{finding(rules.SeverityLow)},
			overall:  rules.SeverityLow,
		},
		{
			name:     "Medium dominates low",
			findings: []detect.Finding{finding(rules.SeverityLow), finding(rules.SeverityMedium)},
			overall:  rules.SeverityMedium,
		},
		{
			name:     "High dominates medium",
			findings: []detect.Finding{finding(rules.SeverityMedium), finding(rules.SeverityHigh)},
			overall:  rules.SeverityHigh,
		},
		{
			name: "Critical dominates all",
			findings: []detect.Finding{
				finding(rules.SeverityLow),
				finding(rules.SeverityMedium),
				finding(rules.SeverityHigh),
				finding(rules.SeverityCritical),
			},
			overall: rules.SeverityCritical,
		},
		{
			name:     "Unknown severity counted as low",
			findings: []detect.Finding{finding(rules.Severity("weird"))},
			overall:  rules.SeverityLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tt.findings)
			if s.Overall != tt.overall {
				t.Errorf("Overall = %s, want %s", s.Overall, tt.overall)
			}
			if s.TotalFindings != len(tt.findings) {
				t.Errorf("TotalFindings = %d, want %d", s.TotalFindings, len(tt.findings))
			}
			if sum := s.Critical + s.High + s.Medium + s.Low; sum != len(tt.findings) {
				t.Errorf("Severity counts sum to %d, want %d", sum, len(tt.findings))
			}
		})
	}
}
