package agent

import (
	"encoding/json"
	"fmt"

	"github.com/Mazzz-zzz/voca.fi/pkg/swap"
)

// Command is a validated, typed tool invocation. LLM arguments are untyped
// JSON and are never acted on before passing through ParseCommand.
type Command interface {
	commandName() swap.ToolName
}

// CreateSwapCommand requests preparing a POL-to-token swap.
type CreateSwapCommand struct {
	// AmountIn is the POL amount in base units (wei).
	AmountIn  string
	SymbolOut string
}

// ConfirmSwapCommand answers an outstanding confirmation prompt.
type ConfirmSwapCommand struct {
	Confirm bool
}

// GetTokenBalanceCommand requests the wallet's balance of a token.
type GetTokenBalanceCommand struct {
	TokenAddress string
}

// GetTokenPriceCommand requests the USD price of a token.
type GetTokenPriceCommand struct {
	TokenAddress string
}

func (CreateSwapCommand) commandName() swap.ToolName      { return swap.ToolCreateSwap }
func (ConfirmSwapCommand) commandName() swap.ToolName     { return swap.ToolConfirmSwap }
func (GetTokenBalanceCommand) commandName() swap.ToolName { return swap.ToolGetTokenBalance }
func (GetTokenPriceCommand) commandName() swap.ToolName   { return swap.ToolGetTokenPrice }

// ParseCommand validates raw tool-call arguments into a typed Command.
func ParseCommand(name string, rawArgs string) (Command, error) {
	switch swap.ToolName(name) {
	case swap.ToolCreateSwap:
		var args struct {
			AmountIn  string `json:"pol_outgoing_amount"`
			SymbolOut string `json:"token_received_symbol"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return nil, fmt.Errorf("invalid %s arguments: %w", name, err)
		}
		if !swap.ValidBaseUnits(args.AmountIn) {
			return nil, fmt.Errorf("pol_outgoing_amount %q is not a positive base-unit integer", args.AmountIn)
		}
		if args.SymbolOut == "" {
			return nil, fmt.Errorf("token_received_symbol is required")
		}
		return CreateSwapCommand{AmountIn: args.AmountIn, SymbolOut: args.SymbolOut}, nil

	case swap.ToolConfirmSwap:
		var args struct {
			Confirm bool `json:"confirm"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return nil, fmt.Errorf("invalid %s arguments: %w", name, err)
		}
		return ConfirmSwapCommand{Confirm: args.Confirm}, nil

	case swap.ToolGetTokenBalance:
		var args struct {
			TokenAddress string `json:"token_address"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return nil, fmt.Errorf("invalid %s arguments: %w", name, err)
		}
		if args.TokenAddress == "" {
			return nil, fmt.Errorf("token_address is required")
		}
		return GetTokenBalanceCommand{TokenAddress: args.TokenAddress}, nil

	case swap.ToolGetTokenPrice:
		var args struct {
			TokenAddress string `json:"token_address"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return nil, fmt.Errorf("invalid %s arguments: %w", name, err)
		}
		if args.TokenAddress == "" {
			return nil, fmt.Errorf("token_address is required")
		}
		return GetTokenPriceCommand{TokenAddress: args.TokenAddress}, nil
	}

	return nil, fmt.Errorf("unknown tool %q", name)
}
