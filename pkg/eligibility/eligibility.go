// Package eligibility reduces findings and an approval flag into an
// AI-usage eligibility decision.
package eligibility

import (
	"github.com/rajivksingh13/darbiter/pkg/detect"
	"github.com/rajivksingh13/darbiter/pkg/rules"
)

// Status is the certification outcome for AI usage of scanned content.
type Status string

const (
	StatusAISafe      Status = "AI_SAFE"
	StatusConditional Status = "CONDITIONAL"
	StatusRestricted  Status = "RESTRICTED"
	StatusNotAISafe   Status = "NOT_AI_SAFE"
)

// Decision carries exactly one status plus the reasons and policy references
// that produced it. Reasons and policies are evidence for that status only,
// never mixed across statuses.
type Decision struct {
	Status           Status   `json:"status"`
	Reasons          []string `json:"reasons"`
	PolicyReferences []string `json:"policyReferences"`
}

// Evaluate reduces findings and the approval flag to a decision through a
// fixed-priority cascade: secrets strictly dominate PII, which dominates
// critical config risk. The first matching guard wins; reordering these
// checks changes real certification outcomes, so the order is load-bearing.
// The result depends only on which categories and severities are present,
// never on finding order.
func Evaluate(findings []detect.Finding, approvedForAI bool) Decision {
	var hasSecrets, hasPII, hasCriticalConfig bool
	for _, f := range findings {
		switch f.Category {
		case rules.CategorySecret:
			hasSecrets = true
		case rules.CategoryPII:
			hasPII = true
		case rules.CategoryConfigRisk:
			if f.Severity == rules.SeverityCritical {
				hasCriticalConfig = true
			}
		}
	}

	switch {
	case hasSecrets:
		return Decision{
			Status:           StatusNotAISafe,
			Reasons:          []string{"Secrets detected in content or configuration."},
			PolicyReferences: []string{"POL-SEC-001 Secrets must be removed before AI usage."},
		}
	case hasPII && !approvedForAI:
		return Decision{
			Status:           StatusConditional,
			Reasons:          []string{"PII detected without explicit approval."},
			PolicyReferences: []string{"POL-PII-002 PII requires approval for AI usage."},
		}
	case hasCriticalConfig:
		return Decision{
			Status:           StatusRestricted,
			Reasons:          []string{"Critical config risks detected."},
			PolicyReferences: []string{"POL-CONFIG-003 Secure configuration required for AI usage."},
		}
	default:
		return Decision{
			Status:           StatusAISafe,
			Reasons:          []string{"No blocking findings detected."},
			PolicyReferences: []string{"POL-BASE-000 Baseline eligibility passed."},
		}
	}
}
