// Package parser extracts swap intents from plain-text commands without a
// model round trip, for the one-shot CLI path.
package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// SwapCommand is a parsed plain-text swap instruction. Amount is the
// human-readable POL quantity; callers convert it to base units.
type SwapCommand struct {
	Amount    string
	SymbolOut string
}

var swapPattern = regexp.MustCompile(`(?i)^\s*(?:swap\s+)?([\d]+(?:\.\d+)?)\s*(?:pol|matic)?\s+(?:to|for|into)\s+([a-zA-Z0-9.]+)\s*$`)

// Parse reads instructions like "swap 1.5 pol to usdc" or "0.25 for weth".
func Parse(input string) (*SwapCommand, error) {
	m := swapPattern.FindStringSubmatch(input)
	if m == nil {
		return nil, fmt.Errorf("could not parse %q, expected something like \"swap 1.5 pol to usdc\"", strings.TrimSpace(input))
	}
	return &SwapCommand{
		Amount:    m[1],
		SymbolOut: strings.ToUpper(m[2]),
	}, nil
}
