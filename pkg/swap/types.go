package swap

import (
	"time"

	"github.com/Mazzz-zzz/voca.fi/pkg/enso"
)

// ToolName identifies the originating tool call of a queue entry.
type ToolName string

const (
	ToolCreateSwap      ToolName = "create_swap_transaction"
	ToolConfirmSwap     ToolName = "confirm_swap"
	ToolGetTokenBalance ToolName = "get_token_balance"
	ToolGetTokenPrice   ToolName = "get_token_price"
)

// Status is the state of a queued transaction.
type Status string

const (
	StatusPending   Status = "pending"   // prepared, not yet executed
	StatusExecuting Status = "executing" // handed to the wallet / awaiting confirmation
	StatusCompleted Status = "completed" // mined successfully
	StatusFailed    Status = "failed"    // rejected, reverted or failed to confirm
)

// PreparedSwap is the result of resolving and quoting one swap intent. It is
// created only by the Preparer and read-only thereafter.
type PreparedSwap struct {
	TokenOutAddress    string              `json:"token_out_address"`
	TokenOutSymbol     string              `json:"token_out_symbol"`
	TokenOutDecimals   int                 `json:"token_out_decimals"`
	AmountIn           string              `json:"amount_in"` // base units
	FormattedAmountIn  string              `json:"formatted_amount_in"`
	FormattedAmountOut string              `json:"formatted_amount_out"`
	PriceImpact        float64             `json:"price_impact"` // percent, a cost to the user
	RouteData          *enso.RouteResponse `json:"route_data"`   // required non-nil before execution
	QuoteData          *enso.QuoteResponse `json:"quote_data"`   // informational only
}

// SwapArgs are the tool-call parameters as received, preserved for display and
// audit. The field names follow the tool schema.
type SwapArgs struct {
	AmountIn  string `json:"pol_outgoing_amount"`
	SymbolOut string `json:"token_received_symbol"`
}

// QueuedTransaction is a unit of work in the transaction queue.
type QueuedTransaction struct {
	ID        string        `json:"id"`
	Name      ToolName      `json:"name"`
	Arguments SwapArgs      `json:"arguments"`
	Status    Status        `json:"status"`
	Result    *PreparedSwap `json:"result,omitempty"`
	TxHash    string        `json:"tx_hash,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}
