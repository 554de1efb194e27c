package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var rulesetsCmd = &cobra.Command{
	Use:   "rulesets",
	Short: "List available rulesets",
	Args:  cobra.NoArgs,
	RunE:  runRulesets,
}

func init() {
	rootCmd.AddCommand(rulesetsCmd)
}

func runRulesets(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	infos, err := rt.service.Rulesets()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tNAME\tVERSION")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.File, info.Name, info.Version)
	}
	return tw.Flush()
}
