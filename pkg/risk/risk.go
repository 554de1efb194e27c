// Package risk aggregates findings into a per-severity summary.
package risk

import (
	"github.com/rajivksingh13/darbiter/pkg/detect"
	"github.com/rajivksingh13/darbiter/pkg/rules"
)

// Summary counts findings per severity. Overall is the highest severity
// present, or LOW when there are no findings.
type Summary struct {
	TotalFindings int            `json:"totalFindings"`
	Critical      int            `json:"critical"`
	High          int            `json:"high"`
	Medium        int            `json:"medium"`
	Low           int            `json:"low"`
	Overall       rules.Severity `json:"overall"`
}

// Summarize is a pure aggregation over findings; the counts always add up to
// len(findings).
func Summarize(findings []detect.Finding) Summary {
	var s Summary
	for _, f := range findings {
		switch f.Severity {
		case rules.SeverityCritical:
			s.Critical++
		case rules.SeverityHigh:
			s.High++
		case rules.SeverityMedium:
			s.Medium++
		default:
			s.Low++
		}
	}
	s.TotalFindings = len(findings)
	s.Overall = overall(&s)
	return s
}

func overall(s *Summary) rules.Severity {
	switch {
	case s.Critical > 0:
		return rules.SeverityCritical
	case s.High > 0:
		return rules.SeverityHigh
	case s.Medium > 0:
		return rules.SeverityMedium
	default:
		return rules.SeverityLow
	}
}
