package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var tokensSearch string

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "List swappable tokens on Polygon",
	RunE:  runTokens,
}

func init() {
	tokensCmd.Flags().StringVarP(&tokensSearch, "search", "s", "", "filter by symbol substring")
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false, nil)
	if err != nil {
		return err
	}
	defer a.close()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " fetching token list..."
	s.Start()
	tokens, err := a.enso.GetTokens(ctx, a.cfg.ChainID)
	s.Stop()
	if err != nil {
		return err
	}

	needle := strings.ToLower(strings.TrimSpace(tokensSearch))
	shown := 0
	for _, t := range tokens {
		if t.Symbol == "" {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(t.Symbol), needle) {
			continue
		}
		fmt.Printf("%-12s %s (decimals: %d)\n", t.Symbol, t.Address, t.Decimals)
		shown++
	}

	if shown == 0 {
		color.Yellow("No tokens matched.")
		return nil
	}
	fmt.Printf("\n%d tokens\n", shown)
	return nil
}
