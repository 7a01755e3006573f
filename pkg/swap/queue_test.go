package swap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	hash        string
	err         error
	singleCalls int
	bundleCalls int
	lastBundle  []*PreparedSwap
}

func (f *fakeExecutor) Execute(ctx context.Context, p *PreparedSwap) (string, error) {
	f.singleCalls++
	return f.hash, f.err
}

func (f *fakeExecutor) ExecuteBundled(ctx context.Context, ps []*PreparedSwap) (string, error) {
	f.bundleCalls++
	f.lastBundle = ps
	return f.hash, f.err
}

func testPrepared(symbol string) *PreparedSwap {
	return &PreparedSwap{
		TokenOutAddress:    "0x2791bca1f2de4661ed88a30c99a7a9449aa84174",
		TokenOutSymbol:     symbol,
		TokenOutDecimals:   6,
		AmountIn:           "1000000000000000000",
		FormattedAmountIn:  "1",
		FormattedAmountOut: "0.52",
	}
}

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	q, err := NewQueue(nil, nil)
	require.NoError(t, err)
	return q
}

func TestQueueEnqueue(t *testing.T) {
	q := newTestQueue(t)

	entry := q.Enqueue(SwapArgs{AmountIn: "1000000000000000000", SymbolOut: "USDC"}, testPrepared("USDC"))

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, StatusPending, entry.Status)
	assert.Equal(t, ToolCreateSwap, entry.Name)

	entries := q.List()
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
}

func TestQueueExecuteSuccess(t *testing.T) {
	q := newTestQueue(t)
	exec := &fakeExecutor{hash: "0xabc"}

	entry := q.Enqueue(SwapArgs{}, testPrepared("USDC"))

	hash, err := q.Execute(context.Background(), entry.ID, exec)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", hash)
	assert.Equal(t, 1, exec.singleCalls)

	got, ok := q.Get(entry.ID)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, "0xabc", got.TxHash)
}

func TestQueueExecuteFailure(t *testing.T) {
	q := newTestQueue(t)
	exec := &fakeExecutor{err: errors.New("reverted")}

	entry := q.Enqueue(SwapArgs{}, testPrepared("USDC"))

	_, err := q.Execute(context.Background(), entry.ID, exec)
	require.Error(t, err)

	got, _ := q.Get(entry.ID)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "reverted", got.Error)
}

func TestQueueExecuteOnlyPending(t *testing.T) {
	q := newTestQueue(t)
	exec := &fakeExecutor{hash: "0xabc"}

	entry := q.Enqueue(SwapArgs{}, testPrepared("USDC"))
	_, err := q.Execute(context.Background(), entry.ID, exec)
	require.NoError(t, err)

	_, err = q.Execute(context.Background(), entry.ID, exec)
	assert.ErrorIs(t, err, ErrNotPending)

	_, err = q.Execute(context.Background(), "no-such-id", exec)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueueReorder(t *testing.T) {
	q := newTestQueue(t)

	a := q.Enqueue(SwapArgs{}, testPrepared("A"))
	b := q.Enqueue(SwapArgs{}, testPrepared("B"))
	c := q.Enqueue(SwapArgs{}, testPrepared("C"))

	require.NoError(t, q.Reorder(c.ID, 0))

	entries := q.List()
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, ids(entries))

	// Out-of-range targets clamp rather than fail.
	require.NoError(t, q.Reorder(c.ID, 99))
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids(q.List()))
	require.NoError(t, q.Reorder(c.ID, -5))
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, ids(q.List()))
}

func TestQueueReorderNonPending(t *testing.T) {
	q := newTestQueue(t)
	exec := &fakeExecutor{hash: "0xabc"}

	a := q.Enqueue(SwapArgs{}, testPrepared("A"))
	q.Enqueue(SwapArgs{}, testPrepared("B"))
	_, err := q.Execute(context.Background(), a.ID, exec)
	require.NoError(t, err)

	assert.ErrorIs(t, q.Reorder(a.ID, 1), ErrNotPending)
	assert.ErrorIs(t, q.Reorder("missing", 0), ErrNotFound)
}

func TestQueueDelete(t *testing.T) {
	q := newTestQueue(t)
	exec := &fakeExecutor{hash: "0xabc"}

	a := q.Enqueue(SwapArgs{}, testPrepared("A"))
	b := q.Enqueue(SwapArgs{}, testPrepared("B"))
	_, err := q.Execute(context.Background(), a.ID, exec)
	require.NoError(t, err)

	// Deleting a completed entry is a silent no-op.
	require.NoError(t, q.Delete(a.ID))
	assert.Len(t, q.List(), 2)

	require.NoError(t, q.Delete(b.ID))
	assert.Len(t, q.List(), 1)

	assert.ErrorIs(t, q.Delete("missing"), ErrNotFound)
}

func TestQueueExecuteAllBundles(t *testing.T) {
	q := newTestQueue(t)
	exec := &fakeExecutor{hash: "0xbundle"}

	q.Enqueue(SwapArgs{}, testPrepared("A"))
	q.Enqueue(SwapArgs{}, testPrepared("B"))
	q.Enqueue(SwapArgs{}, testPrepared("C"))

	hash, err := q.ExecuteAll(context.Background(), exec)
	require.NoError(t, err)
	assert.Equal(t, "0xbundle", hash)
	assert.Equal(t, 0, exec.singleCalls)
	assert.Equal(t, 1, exec.bundleCalls)
	assert.Len(t, exec.lastBundle, 3)

	for _, e := range q.List() {
		assert.Equal(t, StatusCompleted, e.Status)
		assert.Equal(t, "0xbundle", e.TxHash)
	}
}

func TestQueueExecuteAllSingleEntryAvoidsBundle(t *testing.T) {
	q := newTestQueue(t)
	exec := &fakeExecutor{hash: "0xone"}

	q.Enqueue(SwapArgs{}, testPrepared("A"))

	_, err := q.ExecuteAll(context.Background(), exec)
	require.NoError(t, err)
	assert.Equal(t, 1, exec.singleCalls)
	assert.Equal(t, 0, exec.bundleCalls)
}

// A bundle is atomic on-chain, so a failed batch marks every member failed
// and leaves already-settled entries alone.
func TestQueueExecuteAllFailureMarksWholeBatch(t *testing.T) {
	q := newTestQueue(t)

	done := q.Enqueue(SwapArgs{}, testPrepared("DONE"))
	_, err := q.Execute(context.Background(), done.ID, &fakeExecutor{hash: "0xearlier"})
	require.NoError(t, err)

	q.Enqueue(SwapArgs{}, testPrepared("A"))
	q.Enqueue(SwapArgs{}, testPrepared("B"))

	_, err = q.ExecuteAll(context.Background(), &fakeExecutor{err: errors.New("bundle reverted")})
	require.Error(t, err)

	for _, e := range q.List() {
		if e.ID == done.ID {
			assert.Equal(t, StatusCompleted, e.Status)
			assert.Equal(t, "0xearlier", e.TxHash)
			continue
		}
		assert.Equal(t, StatusFailed, e.Status)
		assert.Equal(t, "bundle reverted", e.Error)
	}
}

func TestQueueExecuteAllEmpty(t *testing.T) {
	q := newTestQueue(t)

	_, err := q.ExecuteAll(context.Background(), &fakeExecutor{})
	assert.ErrorIs(t, err, ErrNothingPending)
}

// Reorder then delete then execute-all: the surviving entries execute as
// one bundle in their adjusted order.
func TestQueueReorderDeleteExecuteAll(t *testing.T) {
	q := newTestQueue(t)
	exec := &fakeExecutor{hash: "0xbundle"}

	q.Enqueue(SwapArgs{}, testPrepared("A"))
	b := q.Enqueue(SwapArgs{}, testPrepared("B"))
	c := q.Enqueue(SwapArgs{}, testPrepared("C"))

	require.NoError(t, q.Reorder(c.ID, 0))
	require.NoError(t, q.Delete(b.ID))

	_, err := q.ExecuteAll(context.Background(), exec)
	require.NoError(t, err)

	require.Len(t, exec.lastBundle, 2)
	assert.Equal(t, "C", exec.lastBundle[0].TokenOutSymbol)
	assert.Equal(t, "A", exec.lastBundle[1].TokenOutSymbol)
}

func TestQueueLoadMarksInterruptedAsFailed(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir + "/queue.json")
	require.NoError(t, err)

	require.NoError(t, store.Save([]*QueuedTransaction{
		{ID: "1", Status: StatusExecuting},
		{ID: "2", Status: StatusPending},
	}))

	q, err := NewQueue(store, nil)
	require.NoError(t, err)

	got, ok := q.Get("1")
	require.True(t, ok)
	assert.Equal(t, StatusFailed, got.Status)
	assert.NotEmpty(t, got.Error)

	got, ok = q.Get("2")
	require.True(t, ok)
	assert.Equal(t, StatusPending, got.Status)
}

func ids(entries []QueuedTransaction) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
