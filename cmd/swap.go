package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Mazzz-zzz/voca.fi/pkg/enso"
	"github.com/Mazzz-zzz/voca.fi/pkg/parser"
	"github.com/Mazzz-zzz/voca.fi/pkg/swap"
)

var swapYes bool

var swapCmd = &cobra.Command{
	Use:   "swap <instruction>",
	Short: "Prepare and execute a single swap",
	Long: `Parses a plain-text instruction like "swap 1.5 pol to usdc", fetches a
route and quote, shows the summary and executes after a y/N prompt.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSwap,
}

func init() {
	swapCmd.Flags().BoolVarP(&swapYes, "yes", "y", false, "execute without the y/N prompt")
	rootCmd.AddCommand(swapCmd)
}

func runSwap(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	instruction := strings.Join(args, " ")
	parsed, err := parser.Parse(instruction)
	if err != nil {
		return err
	}
	amountIn, err := swap.ParseUnits(parsed.Amount, enso.NativeTokenDecimals)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, true, nil)
	if err != nil {
		return err
	}
	defer a.close()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " fetching route and quote..."
	s.Start()
	prepared, err := a.preparer.PrepareSwap(ctx, amountIn, parsed.SymbolOut)
	s.Stop()
	if err != nil {
		return err
	}

	color.Cyan("Swap %s POL -> ~%s %s", prepared.FormattedAmountIn, prepared.FormattedAmountOut, prepared.TokenOutSymbol)
	fmt.Printf("  Token:        %s (%s)\n", prepared.TokenOutSymbol, prepared.TokenOutAddress)
	fmt.Printf("  Price impact: -%.2f%%\n", prepared.PriceImpact)
	fmt.Printf("  From:         %s\n", a.exec.Address().Hex())

	if !swapYes {
		fmt.Print("Proceed with swap? (y/N): ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			color.Yellow("Swap cancelled. Nothing was sent.")
			return nil
		}
	}

	entry := a.queue.Enqueue(swap.SwapArgs{AmountIn: amountIn, SymbolOut: parsed.SymbolOut}, prepared)

	s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " broadcasting and waiting for confirmation..."
	s.Start()
	hash, err := a.queue.Execute(ctx, entry.ID, a.exec)
	s.Stop()
	if err != nil {
		return err
	}

	color.Green("Transaction confirmed!")
	fmt.Printf("  https://polygonscan.com/tx/%s\n", hash)
	return nil
}
