// Package scan orchestrates content scans: it selects an extraction strategy
// per input, runs detection, and assembles the eligibility result.
package scan

import (
	"time"

	"github.com/rajivksingh13/darbiter/pkg/detect"
	"github.com/rajivksingh13/darbiter/pkg/eligibility"
	"github.com/rajivksingh13/darbiter/pkg/remediation"
	"github.com/rajivksingh13/darbiter/pkg/risk"
	"github.com/rajivksingh13/darbiter/pkg/rules"
)

// Usage declares what the scanned content is intended for.
type Usage string

const (
	UsageInference  Usage = "INFERENCE"
	UsageTraining   Usage = "TRAINING"
	UsageFineTuning Usage = "FINE_TUNING"
	UsageEvaluation Usage = "EVALUATION"
)

// IsValid reports whether u is one of the known usages.
func (u Usage) IsValid() bool {
	switch u {
	case UsageInference, UsageTraining, UsageFineTuning, UsageEvaluation:
		return true
	}
	return false
}

// PathRequest scans a file or directory tree on disk.
type PathRequest struct {
	Path          string           `json:"path"`
	Recursive     bool             `json:"recursive"`
	ApprovedForAI bool             `json:"approvedForAi"`
	Ruleset       string           `json:"ruleset"`
	Usage         Usage            `json:"usage"`
	Categories    []rules.Category `json:"categories,omitempty"`
}

// FilePayload is one named byte payload in a file-set scan.
type FilePayload struct {
	Name string
	Data []byte
}

// FileSetRequest scans a set of uploaded payloads.
type FileSetRequest struct {
	Files         []FilePayload
	ApprovedForAI bool
	Ruleset       string
	Usage         Usage
	Categories    []rules.Category
}

// TextRequest scans raw text content.
type TextRequest struct {
	Content       string           `json:"content"`
	ApprovedForAI bool             `json:"approvedForAi"`
	Ruleset       string           `json:"ruleset"`
	Usage         Usage            `json:"usage"`
	Categories    []rules.Category `json:"categories,omitempty"`
}

// FileError records a per-file read failure during a directory scan. The
// scan continues past it and the result is flagged partial.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Result is the aggregate scan outcome. It is built once, then immutable,
// and identified by a process-unique scan id.
type Result struct {
	ScanID      string               `json:"scanId"`
	Ruleset     string               `json:"ruleset"`
	Usage       Usage                `json:"usage"`
	StartedAt   time.Time            `json:"startedAt"`
	FinishedAt  time.Time            `json:"finishedAt"`
	Findings    []detect.Finding     `json:"findings"`
	RiskSummary risk.Summary         `json:"riskSummary"`
	Eligibility eligibility.Status   `json:"eligibility"`
	Decision    eligibility.Decision `json:"decision"`
	Remediation []remediation.Item   `json:"remediation"`
	Partial     bool                 `json:"partial,omitempty"`
	FileErrors  []FileError          `json:"fileErrors,omitempty"`
}

// Certificate attests a stored scan's eligibility outcome.
type Certificate struct {
	ScanID      string             `json:"scanId"`
	Issuer      string             `json:"issuer"`
	Eligibility eligibility.Status `json:"eligibility"`
	Usage       Usage              `json:"usage"`
	Ruleset     string             `json:"ruleset"`
	IssuedAt    time.Time          `json:"issuedAt"`
}

// NewCertificate issues a certificate for a finished scan result.
func NewCertificate(result *Result) Certificate {
	return Certificate{
		ScanID:      result.ScanID,
		Issuer:      "local-scan",
		Eligibility: result.Eligibility,
		Usage:       result.Usage,
		Ruleset:     result.Ruleset,
		IssuedAt:    time.Now().UTC(),
	}
}
