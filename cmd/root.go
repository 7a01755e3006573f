// Package cmd implements the voca command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "voca",
	Short: "Chat-driven token swaps on Polygon",
	Long: `Voca swaps POL for other Polygon tokens from natural-language
instructions, either through an interactive chat session backed by an LLM
or through one-shot commands. Prepared swaps wait in a local queue and are
executed individually or bundled into one atomic transaction.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
