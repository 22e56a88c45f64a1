package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/label-verifier/internal/report"
	"github.com/joseph-ayodele/label-verifier/internal/validators"
)

func newRulesCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the rules each beverage type runs and their severity",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			report.WriteRules(out, validators.All(), g.textOptions(out, false))
		},
	}
}
