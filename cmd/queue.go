package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Mazzz-zzz/voca.fi/pkg/swap"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and manage the transaction queue",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show queued transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false, nil)
		if err != nil {
			return err
		}
		defer a.close()

		printQueue(a.queue.List())
		return nil
	},
}

var queueDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a pending transaction from the queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false, nil)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.queue.Delete(args[0]); err != nil {
			return err
		}
		color.Green("Deleted.")
		return nil
	},
}

var queueMoveCmd = &cobra.Command{
	Use:   "move <id> <index>",
	Short: "Move a pending transaction to a new position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("index must be a number: %w", err)
		}

		a, err := newApp(cmd.Context(), false, nil)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.queue.Reorder(args[0], index); err != nil {
			return err
		}
		color.Green("Moved.")
		return nil
	},
}

var queueExecuteCmd = &cobra.Command{
	Use:   "execute [id]",
	Short: "Execute one pending transaction, or all of them bundled",
	Long: `With an id, executes that pending transaction alone. Without one, every
pending transaction is bundled into a single atomic on-chain transaction:
either all of them land or none do.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, true, nil)
		if err != nil {
			return err
		}
		defer a.close()

		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " broadcasting and waiting for confirmation..."
		s.Start()
		var hash string
		if len(args) == 1 {
			hash, err = a.queue.Execute(ctx, args[0], a.exec)
		} else {
			hash, err = a.queue.ExecuteAll(ctx, a.exec)
		}
		s.Stop()
		if err != nil {
			return err
		}

		color.Green("Transaction confirmed!")
		fmt.Printf("  https://polygonscan.com/tx/%s\n", hash)
		return nil
	},
}

func init() {
	queueCmd.AddCommand(queueListCmd, queueDeleteCmd, queueMoveCmd, queueExecuteCmd)
	rootCmd.AddCommand(queueCmd)
}

func printQueue(entries []swap.QueuedTransaction) {
	if len(entries) == 0 {
		fmt.Println("Queue is empty.")
		return
	}

	for i, e := range entries {
		line := fmt.Sprintf("%d. [%s] %s", i, e.Status, e.ID)
		if e.Result != nil {
			line += fmt.Sprintf("  %s POL -> ~%s %s",
				e.Result.FormattedAmountIn, e.Result.FormattedAmountOut, e.Result.TokenOutSymbol)
		}
		switch e.Status {
		case swap.StatusCompleted:
			color.Green("%s  tx: %s", line, e.TxHash)
		case swap.StatusFailed:
			color.Red("%s  error: %s", line, e.Error)
		case swap.StatusExecuting:
			color.Yellow("%s", line)
		default:
			fmt.Println(line)
		}
	}
}
