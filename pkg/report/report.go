// Package report renders a scan result as a standalone HTML compliance
// report.
package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/rajivksingh13/darbiter/pkg/scan"
)

var reportTemplate = template.Must(template.New("report").Parse(`<html><head><title>DArbiter Report</title></head><body>
<h1>DArbiter Compliance Report</h1>
<p><strong>Scan ID:</strong> {{.ScanID}}</p>
<p><strong>Ruleset:</strong> {{.Ruleset}}</p>
<p><strong>Eligibility:</strong> {{.Eligibility}}</p>
{{if .Partial}}<p><strong>Note:</strong> scan is partial; {{len .FileErrors}} file(s) could not be read.</p>{{end}}
<h2>Risk Summary</h2>
<ul>
<li>Total: {{.RiskSummary.TotalFindings}}</li>
<li>Critical: {{.RiskSummary.Critical}}</li>
<li>High: {{.RiskSummary.High}}</li>
<li>Medium: {{.RiskSummary.Medium}}</li>
<li>Low: {{.RiskSummary.Low}}</li>
</ul>
<h2>Findings</h2>
<table border='1' cellpadding='6' cellspacing='0'>
<tr><th>Category</th><th>Severity</th><th>Label</th><th>File</th><th>Line</th><th>Snippet</th></tr>
{{range .Findings}}<tr><td>{{.Category}}</td><td>{{.Severity}}</td><td>{{.Label}}</td><td>{{.FilePath}}</td><td>{{.LineNumber}}</td><td>{{.Snippet}}</td></tr>
{{end}}</table>
<h2>Eligibility Decision</h2>
<p><strong>Status:</strong> {{.Decision.Status}}</p>
<p><strong>Reasons:</strong></p><ul>
{{range .Decision.Reasons}}<li>{{.}}</li>
{{end}}</ul>
<p><strong>Policy References:</strong></p><ul>
{{range .Decision.PolicyReferences}}<li>{{.}}</li>
{{end}}</ul>
{{if .Remediation}}<h2>Remediation Guidance</h2>
<ul>
{{range .Remediation}}<li>{{.Label}}<ul>{{range .Actions}}<li>{{.}}</li>{{end}}</ul></li>
{{end}}</ul>
{{end}}</body></html>
`))

// ToHTML renders the result as a complete HTML document. All dynamic values
// are escaped by the template engine.
func ToHTML(result *scan.Result) (string, error) {
	if result == nil {
		return "", fmt.Errorf("nil scan result")
	}
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, result); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return buf.String(), nil
}
