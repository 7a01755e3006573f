package chat

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mazzz-zzz/voca.fi/pkg/agent"
	"github.com/Mazzz-zzz/voca.fi/pkg/enso"
	"github.com/Mazzz-zzz/voca.fi/pkg/settings"
	"github.com/Mazzz-zzz/voca.fi/pkg/swap"
)

type fakeAssistant struct {
	replies []*agent.Reply
	calls   int
}

func (f *fakeAssistant) Respond(ctx context.Context, history []agent.Message) (*agent.Reply, error) {
	if f.calls >= len(f.replies) {
		return &agent.Reply{Text: "unexpected call"}, nil
	}
	reply := f.replies[f.calls]
	f.calls++
	return reply, nil
}

type fakePreparer struct {
	prepared *swap.PreparedSwap
	err      error
}

func (f *fakePreparer) PrepareSwap(ctx context.Context, amountIn, symbolOut string) (*swap.PreparedSwap, error) {
	return f.prepared, f.err
}

type fakeExecutor struct {
	hash  string
	err   error
	calls int
}

func (f *fakeExecutor) Execute(ctx context.Context, p *swap.PreparedSwap) (string, error) {
	f.calls++
	return f.hash, f.err
}

func (f *fakeExecutor) ExecuteBundled(ctx context.Context, ps []*swap.PreparedSwap) (string, error) {
	f.calls++
	return f.hash, f.err
}

type fakeChain struct {
	balance *big.Int
}

func (f *fakeChain) TokenBalance(ctx context.Context, tokenAddress string) (*big.Int, error) {
	return f.balance, nil
}

type fakePrices struct {
	price *enso.PriceResponse
}

func (f *fakePrices) GetPrice(ctx context.Context, chainID int64, address string) (*enso.PriceResponse, error) {
	return f.price, nil
}

func preparedUSDC() *swap.PreparedSwap {
	return &swap.PreparedSwap{
		TokenOutAddress:    "0x3c499c542cef5e3811e1192ce70d8cc03d5c3359",
		TokenOutSymbol:     "USDC",
		TokenOutDecimals:   6,
		AmountIn:           "1000000000000000000",
		FormattedAmountIn:  "1",
		FormattedAmountOut: "0.52",
		PriceImpact:        0.12,
		RouteData:          &enso.RouteResponse{Tx: &enso.Tx{To: "0xrouter"}},
	}
}

func swapCallReply() *agent.Reply {
	return &agent.Reply{Calls: []agent.ToolCall{{
		ID:   "call_1",
		Name: swap.ToolCreateSwap,
		Command: agent.CreateSwapCommand{
			AmountIn:  "1000000000000000000",
			SymbolOut: "USDC",
		},
	}}}
}

type sessionEnv struct {
	session   *Session
	assistant *fakeAssistant
	queue     *swap.Queue
	gate      *swap.ConfirmationGate
	exec      *fakeExecutor
}

func newTestSession(t *testing.T, assistant *fakeAssistant, preparer Preparer, exec *fakeExecutor, s *settings.Settings) *sessionEnv {
	t.Helper()

	queue, err := swap.NewQueue(nil, nil)
	require.NoError(t, err)
	gate := swap.NewConfirmationGate()

	session := NewSession(Config{
		Assistant: assistant,
		Preparer:  preparer,
		Queue:     queue,
		Gate:      gate,
		Executor:  exec,
		Chain:     &fakeChain{balance: big.NewInt(2_500_000_000_000_000_000)},
		Prices:    &fakePrices{price: &enso.PriceResponse{Price: 0.9998, Decimals: 6}},
		Settings:  s,
		ChainID:   137,
	})
	return &sessionEnv{session: session, assistant: assistant, queue: queue, gate: gate, exec: exec}
}

func TestSwapWaitsForConfirmation(t *testing.T) {
	env := newTestSession(t,
		&fakeAssistant{replies: []*agent.Reply{swapCallReply()}},
		&fakePreparer{prepared: preparedUSDC()},
		&fakeExecutor{hash: "0xabc"},
		&settings.Settings{},
	)

	reply, err := env.session.HandleMessage(context.Background(), "swap 1 pol to usdc")
	require.NoError(t, err)
	assert.Contains(t, reply, "USDC")
	assert.Contains(t, reply, "ok")

	// Nothing executed yet; the swap sits pending behind the gate.
	assert.Equal(t, 0, env.exec.calls)
	entries := env.queue.List()
	require.Len(t, entries, 1)
	assert.Equal(t, swap.StatusPending, entries[0].Status)
	require.NotNil(t, env.gate.Peek())

	reply, err = env.session.HandleMessage(context.Background(), "OK")
	require.NoError(t, err)
	assert.Contains(t, reply, "polygonscan.com/tx/0xabc")

	// Confirmation bypasses the model entirely.
	assert.Equal(t, 1, env.assistant.calls)
	assert.Equal(t, 1, env.exec.calls)
	entries = env.queue.List()
	assert.Equal(t, swap.StatusCompleted, entries[0].Status)
	assert.Nil(t, env.gate.Peek())
}

// An unrelated message while a swap is gated goes to the model and leaves
// the queue entry pending and the offer standing.
func TestUnrelatedInputLeavesSwapPending(t *testing.T) {
	env := newTestSession(t,
		&fakeAssistant{replies: []*agent.Reply{
			swapCallReply(),
			{Text: "POL is Polygon's native token."},
		}},
		&fakePreparer{prepared: preparedUSDC()},
		&fakeExecutor{hash: "0xabc"},
		&settings.Settings{},
	)

	_, err := env.session.HandleMessage(context.Background(), "swap 1 pol to usdc")
	require.NoError(t, err)

	reply, err := env.session.HandleMessage(context.Background(), "what is POL?")
	require.NoError(t, err)
	assert.Contains(t, reply, "native token")

	assert.Equal(t, 0, env.exec.calls)
	assert.Equal(t, swap.StatusPending, env.queue.List()[0].Status)
	require.NotNil(t, env.gate.Peek())

	// The earlier offer still confirms afterwards.
	reply, err = env.session.HandleMessage(context.Background(), "yes")
	require.NoError(t, err)
	assert.Contains(t, reply, "0xabc")
	assert.Equal(t, swap.StatusCompleted, env.queue.List()[0].Status)
}

func TestSendWithoutConfirmExecutesImmediately(t *testing.T) {
	env := newTestSession(t,
		&fakeAssistant{replies: []*agent.Reply{swapCallReply()}},
		&fakePreparer{prepared: preparedUSDC()},
		&fakeExecutor{hash: "0xabc"},
		&settings.Settings{SendWithoutConfirm: true},
	)

	reply, err := env.session.HandleMessage(context.Background(), "swap 1 pol to usdc")
	require.NoError(t, err)
	assert.Contains(t, reply, "polygonscan.com/tx/0xabc")

	assert.Equal(t, 1, env.exec.calls)
	assert.Equal(t, swap.StatusCompleted, env.queue.List()[0].Status)
	assert.Nil(t, env.gate.Peek())
}

func TestConfirmSwapFalseCancels(t *testing.T) {
	env := newTestSession(t,
		&fakeAssistant{replies: []*agent.Reply{
			swapCallReply(),
			{Calls: []agent.ToolCall{{Name: swap.ToolConfirmSwap, Command: agent.ConfirmSwapCommand{Confirm: false}}}},
		}},
		&fakePreparer{prepared: preparedUSDC()},
		&fakeExecutor{hash: "0xabc"},
		&settings.Settings{},
	)

	_, err := env.session.HandleMessage(context.Background(), "swap 1 pol to usdc")
	require.NoError(t, err)

	reply, err := env.session.HandleMessage(context.Background(), "actually, cancel that")
	require.NoError(t, err)
	assert.Contains(t, reply, "Cancelled")

	assert.Equal(t, 0, env.exec.calls)
	assert.Empty(t, env.queue.List())
	assert.Nil(t, env.gate.Peek())
}

func TestTokenNotFoundIsFriendly(t *testing.T) {
	env := newTestSession(t,
		&fakeAssistant{replies: []*agent.Reply{swapCallReply()}},
		&fakePreparer{err: &swap.TokenNotFoundError{Symbol: "NOPE"}},
		&fakeExecutor{},
		&settings.Settings{},
	)

	reply, err := env.session.HandleMessage(context.Background(), "swap 1 pol to nope")
	require.NoError(t, err)
	assert.Contains(t, reply, "NOPE")
	assert.Empty(t, env.queue.List())
}

func TestWalletRejectionIsNotAnError(t *testing.T) {
	env := newTestSession(t,
		&fakeAssistant{replies: []*agent.Reply{swapCallReply()}},
		&fakePreparer{prepared: preparedUSDC()},
		&fakeExecutor{err: &swap.UserRejectedError{}},
		&settings.Settings{SendWithoutConfirm: true},
	)

	reply, err := env.session.HandleMessage(context.Background(), "swap 1 pol to usdc")
	require.NoError(t, err)
	assert.Contains(t, reply, "rejected")
	assert.Equal(t, swap.StatusFailed, env.queue.List()[0].Status)
}

func TestConfirmationWithNothingGated(t *testing.T) {
	env := newTestSession(t,
		&fakeAssistant{replies: []*agent.Reply{
			{Calls: []agent.ToolCall{{Name: swap.ToolConfirmSwap, Command: agent.ConfirmSwapCommand{Confirm: true}}}},
		}},
		&fakePreparer{},
		&fakeExecutor{},
		&settings.Settings{},
	)

	reply, err := env.session.HandleMessage(context.Background(), "confirm the swap")
	require.NoError(t, err)
	assert.Contains(t, reply, "no swap awaiting confirmation")
}

func TestBalanceAndPriceTools(t *testing.T) {
	env := newTestSession(t,
		&fakeAssistant{replies: []*agent.Reply{
			{Calls: []agent.ToolCall{{Name: swap.ToolGetTokenBalance, Command: agent.GetTokenBalanceCommand{TokenAddress: enso.NativeToken}}}},
			{Calls: []agent.ToolCall{{Name: swap.ToolGetTokenPrice, Command: agent.GetTokenPriceCommand{TokenAddress: "0xusdc"}}}},
		}},
		&fakePreparer{},
		&fakeExecutor{},
		&settings.Settings{},
	)

	reply, err := env.session.HandleMessage(context.Background(), "what's my pol balance?")
	require.NoError(t, err)
	assert.Contains(t, reply, "2.5 POL")

	reply, err = env.session.HandleMessage(context.Background(), "price of usdc?")
	require.NoError(t, err)
	assert.Contains(t, reply, "$0.9998")
}
