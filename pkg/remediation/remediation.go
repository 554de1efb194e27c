// Package remediation maps finding categories to fixed remediation actions.
package remediation

import (
	"github.com/rajivksingh13/darbiter/pkg/detect"
	"github.com/rajivksingh13/darbiter/pkg/rules"
)

// Item pairs one finding with its recommended actions.
type Item struct {
	FindingID string   `json:"findingId"`
	Label     string   `json:"label"`
	Actions   []string `json:"actions"`
}

// actionsByCategory is the closed lookup table of remediation actions.
// Adding a category means adding an entry here; categories without an entry
// get an empty action list.
var actionsByCategory = map[rules.Category][]string{
	rules.CategorySecret: {
		"Rotate or revoke secret.",
		"Mask value in files.",
		"Exclude file from AI datasets.",
	},
	rules.CategoryPII: {
		"Mask or tokenize sensitive fields.",
		"Replace with synthetic data.",
		"Limit access to approved usage.",
	},
	rules.CategoryConfigRisk: {
		"Harden configuration defaults.",
		"Disable insecure flags.",
		"Move secrets to vault.",
	},
}

// Recommend returns one item per finding, in findings order.
func Recommend(findings []detect.Finding) []Item {
	items := make([]Item, 0, len(findings))
	for _, f := range findings {
		actions := actionsByCategory[f.Category]
		out := make([]string, len(actions))
		copy(out, actions)
		items = append(items, Item{
			FindingID: f.ID,
			Label:     f.Label,
			Actions:   out,
		})
	}
	return items
}
