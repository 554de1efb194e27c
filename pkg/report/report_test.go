package report

import (
	"strings"
	"testing"

	"github.com/rajivksingh13/darbiter/pkg/detect"
	"github.com/rajivksingh13/darbiter/pkg/eligibility"
	"github.com/rajivksingh13/darbiter/pkg/remediation"
	"github.com/rajivksingh13/darbiter/pkg/risk"
	"github.com/rajivksingh13/darbiter/pkg/rules"
	"github.com/rajivksingh13/darbiter/pkg/scan"
)

func sampleResult() *scan.Result {
	findings := []detect.Finding{
		{
			ID:         "SEC-AWS-ACCESS-KEY",
			Category:   rules.CategorySecret,
			Label:      "AWS access key id",
			Severity:   rules.SeverityCritical,
			FilePath:   "config/<prod>.env",
			LineNumber: 3,
			Snippet:    "key = AKIA...",
		},
	}
	decision := eligibility.Evaluate(findings, false)
	return &scan.Result{
		ScanID:      "scan-123",
		Ruleset:     "Combined Baseline (1.3)",
		Findings:    findings,
		RiskSummary: risk.Summarize(findings),
		Eligibility: decision.Status,
		Decision:    decision,
		Remediation: remediation.Recommend(findings),
	}
}

func TestToHTML(t *testing.T) {
	html, err := ToHTML(sampleResult())
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}

	for _, want := range []string{
		"DArbiter Compliance Report",
		"scan-123",
		"Combined Baseline (1.3)",
		"NOT_AI_SAFE",
		"<li>Critical: 1</li>",
		"AWS access key id",
		"POL-SEC-001 Secrets must be removed before AI usage.",
		"Rotate or revoke secret.",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestToHTMLEscapesPaths(t *testing.T) {
	html, err := ToHTML(sampleResult())
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.Contains(html, "config/<prod>.env") {
		t.Error("file path rendered without escaping")
	}
	if !strings.Contains(html, "config/&lt;prod&gt;.env") {
		t.Error("expected escaped file path in report")
	}
}

func TestToHTMLPartialNote(t *testing.T) {
	result := sampleResult()
	result.Partial = true
	result.FileErrors = []scan.FileError{{Path: "bad.txt", Error: "read failure"}}

	html, err := ToHTML(result)
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if !strings.Contains(html, "scan is partial") {
		t.Error("expected partial-scan note")
	}
}

func TestToHTMLNilResult(t *testing.T) {
	if _, err := ToHTML(nil); err == nil {
		t.Fatal("expected error for nil result")
	}
}
