package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rajivksingh13/darbiter/pkg/eligibility"
	"github.com/rajivksingh13/darbiter/pkg/report"
	"github.com/rajivksingh13/darbiter/pkg/rules"
	"github.com/rajivksingh13/darbiter/pkg/scan"
)

var (
	scanRecursive  bool
	scanApproved   bool
	scanRuleset    string
	scanUsage      string
	scanCategories []string
	scanText       bool
	scanFormat     string
	scanOutput     string
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a file, directory, or stdin for AI-usage eligibility",
	Long: `Scan a file or directory tree for secrets, PII, and risky configuration.
With --text, content is read from stdin instead of a path.

The exit code reflects the eligibility decision: 0 for AI_SAFE, 2 for
CONDITIONAL, 3 for RESTRICTED, and 4 for NOT_AI_SAFE.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVarP(&scanRecursive, "recursive", "r", true, "scan directories recursively")
	scanCmd.Flags().BoolVar(&scanApproved, "approved", false, "content has explicit approval for AI usage of PII")
	scanCmd.Flags().StringVar(&scanRuleset, "ruleset", "", "ruleset file name (default combined_baseline.yaml)")
	scanCmd.Flags().StringVar(&scanUsage, "usage", "", "intended AI usage: INFERENCE, TRAINING, FINE_TUNING, EVALUATION")
	scanCmd.Flags().StringSliceVar(&scanCategories, "categories", nil, "restrict to categories: SECRET, PII, CONFIG_RISK")
	scanCmd.Flags().BoolVar(&scanText, "text", false, "scan raw text from stdin")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "json", "output format: json or html")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "write output to file instead of stdout")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	categories := make([]rules.Category, 0, len(scanCategories))
	for _, c := range scanCategories {
		categories = append(categories, rules.Category(strings.ToUpper(strings.TrimSpace(c))))
	}

	var result *scan.Result
	switch {
	case scanText:
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		result, err = rt.service.ScanText(ctx, scan.TextRequest{
			Content:       string(content),
			ApprovedForAI: scanApproved,
			Ruleset:       scanRuleset,
			Usage:         scan.Usage(scanUsage),
			Categories:    categories,
		})
		if err != nil {
			return err
		}
	case len(args) == 1:
		result, err = rt.service.ScanPath(ctx, scan.PathRequest{
			Path:          args[0],
			Recursive:     scanRecursive,
			ApprovedForAI: scanApproved,
			Ruleset:       scanRuleset,
			Usage:         scan.Usage(scanUsage),
			Categories:    categories,
		})
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("a path argument or --text is required")
	}

	if err := writeScanOutput(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	return eligibilityExit(result.Eligibility)
}

func writeScanOutput(stdout io.Writer, result *scan.Result) error {
	out := stdout
	if scanOutput != "" {
		f, err := os.Create(scanOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch scanFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "html":
		html, err := report.ToHTML(result)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, html)
		return err
	default:
		return fmt.Errorf("unknown output format %q", scanFormat)
	}
}

// exitError carries an exit code without an error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// eligibilityExit maps non-safe outcomes to distinct exit codes so scripts
// can branch on the decision.
func eligibilityExit(status eligibility.Status) error {
	switch status {
	case eligibility.StatusAISafe:
		return nil
	case eligibility.StatusConditional:
		return &exitError{code: 2}
	case eligibility.StatusRestricted:
		return &exitError{code: 3}
	default:
		return &exitError{code: 4}
	}
}
