package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rajivksingh13/darbiter/pkg/rules"
	"github.com/rajivksingh13/darbiter/pkg/scan"
	"github.com/rajivksingh13/darbiter/pkg/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a path and rescan on changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&scanRecursive, "recursive", "r", true, "watch and scan directories recursively")
	watchCmd.Flags().BoolVar(&scanApproved, "approved", false, "content has explicit approval for AI usage of PII")
	watchCmd.Flags().StringVar(&scanRuleset, "ruleset", "", "ruleset file name (default combined_baseline.yaml)")
	watchCmd.Flags().StringVar(&scanUsage, "usage", "", "intended AI usage: INFERENCE, TRAINING, FINE_TUNING, EVALUATION")
	watchCmd.Flags().StringSliceVar(&scanCategories, "categories", nil, "restrict to categories: SECRET, PII, CONFIG_RISK")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "settle time before rescanning after a change")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())

	categories := make([]rules.Category, 0, len(scanCategories))
	for _, c := range scanCategories {
		categories = append(categories, rules.Category(strings.ToUpper(strings.TrimSpace(c))))
	}

	req := scan.PathRequest{
		Path:          args[0],
		Recursive:     scanRecursive,
		ApprovedForAI: scanApproved,
		Ruleset:       scanRuleset,
		Usage:         scan.Usage(scanUsage),
		Categories:    categories,
	}

	out := cmd.OutOrStdout()
	w := watch.New(rt.service, rt.logger, req, watchDebounce, func(result *scan.Result) {
		fmt.Fprintf(out, "%s  %s  findings=%d  %s\n",
			time.Now().Format(time.RFC3339),
			result.ScanID,
			len(result.Findings),
			result.Eligibility,
		)
	})

	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
