package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <tx-hash>",
	Short: "Look up the on-chain status of a transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, true, nil)
		if err != nil {
			return err
		}
		defer a.close()

		status, err := a.exec.TransactionStatus(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", args[0], status)
		fmt.Printf("  https://polygonscan.com/tx/%s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
