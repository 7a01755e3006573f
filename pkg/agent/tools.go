package agent

import "github.com/tmc/langchaingo/llms"

// toolDefinitions declares the callable tools exposed to the model. The
// parameter schemas are the only contract the model sees; everything it
// sends back is still validated by ParseCommand.
func toolDefinitions() []llms.Tool {
	return []llms.Tool{
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "create_swap_transaction",
				Description: "Prepare a swap of POL for another token on Polygon. Amounts are base-unit integer strings (1 POL = 1000000000000000000).",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"pol_outgoing_amount": map[string]any{
							"type":        "string",
							"description": "Amount of POL to swap, in base units (wei) as an integer string.",
						},
						"token_received_symbol": map[string]any{
							"type":        "string",
							"description": "Symbol of the token to receive, e.g. USDC.",
						},
					},
					"required": []string{"pol_outgoing_amount", "token_received_symbol"},
				},
			},
		},
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "confirm_swap",
				Description: "Confirm or cancel the swap currently awaiting user confirmation.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"confirm": map[string]any{
							"type":        "boolean",
							"description": "True to execute the pending swap, false to cancel it.",
						},
					},
					"required": []string{"confirm"},
				},
			},
		},
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "get_token_balance",
				Description: "Get the connected wallet's balance of a token.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"token_address": map[string]any{
							"type":        "string",
							"description": "Token contract address, or 0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE for native POL.",
						},
					},
					"required": []string{"token_address"},
				},
			},
		},
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "get_token_price",
				Description: "Get the current USD price of a token.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"token_address": map[string]any{
							"type":        "string",
							"description": "Token contract address on Polygon.",
						},
					},
					"required": []string{"token_address"},
				},
			},
		},
	}
}
