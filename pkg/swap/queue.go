package swap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotFound means no queue entry has the given id.
	ErrNotFound = errors.New("queue entry not found")
	// ErrNotPending means the operation is only permitted on pending entries.
	ErrNotPending = errors.New("queue entry is not pending")
	// ErrNothingPending means executeAll found no pending entries.
	ErrNothingPending = errors.New("no pending transactions in queue")
)

// Executor submits prepared swaps to the connected wallet and waits for
// on-chain confirmation.
type Executor interface {
	Execute(ctx context.Context, p *PreparedSwap) (string, error)
	ExecuteBundled(ctx context.Context, ps []*PreparedSwap) (string, error)
}

// Store persists the queue between runs. Implementations must write
// atomically.
type Store interface {
	Load() ([]*QueuedTransaction, error)
	Save(entries []*QueuedTransaction) error
}

// Queue is an ordered, user-reorderable list of prepared-but-not-executed
// transactions. It is the single writer of its entries: asynchronous
// completions are applied as id-keyed replacements under the lock, never as
// blind overwrites.
type Queue struct {
	mu      sync.Mutex
	entries []*QueuedTransaction
	store   Store
	log     *logrus.Logger
}

// NewQueue creates a queue, loading persisted entries when a store is
// given. Entries persisted mid-execution are marked failed: an entry must
// never be left stuck at executing.
func NewQueue(store Store, log *logrus.Logger) (*Queue, error) {
	if log == nil {
		log = logrus.New()
	}
	q := &Queue{store: store, log: log}

	if store != nil {
		entries, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load queue: %w", err)
		}
		for _, e := range entries {
			if e.Status == StatusExecuting {
				e.Status = StatusFailed
				e.Error = "interrupted before confirmation"
			}
		}
		q.entries = entries
	}
	return q, nil
}

// Enqueue appends a new pending entry holding an already-prepared swap.
// Preparation failures never reach the queue; the caller surfaces them.
func (q *Queue) Enqueue(args SwapArgs, prepared *PreparedSwap) *QueuedTransaction {
	entry := &QueuedTransaction{
		ID:        uuid.New().String(),
		Name:      ToolCreateSwap,
		Arguments: args,
		Status:    StatusPending,
		Result:    prepared,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	q.entries = append(q.entries, entry)
	q.persistLocked()
	q.mu.Unlock()

	q.log.WithFields(logrus.Fields{"id": entry.ID, "token_out": prepared.TokenOutSymbol}).Debug("enqueued swap")
	return entry
}

// List returns a snapshot of all entries in order.
func (q *Queue) List() []QueuedTransaction {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]QueuedTransaction, len(q.entries))
	for i, e := range q.entries {
		out[i] = *e
	}
	return out
}

// Get returns a snapshot of one entry.
func (q *Queue) Get(id string) (QueuedTransaction, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		if e.ID == id {
			return *e, true
		}
	}
	return QueuedTransaction{}, false
}

// Reorder moves a pending entry to newIndex as a stable remove-then-insert,
// preserving the relative order of every other entry. Entries that are not
// pending cannot be moved.
func (q *Queue) Reorder(id string, newIndex int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	from := -1
	for i, e := range q.entries {
		if e.ID == id {
			from = i
			break
		}
	}
	if from == -1 {
		return ErrNotFound
	}
	if q.entries[from].Status != StatusPending {
		return ErrNotPending
	}

	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex >= len(q.entries) {
		newIndex = len(q.entries) - 1
	}
	if newIndex == from {
		return nil
	}

	entry := q.entries[from]
	q.entries = append(q.entries[:from], q.entries[from+1:]...)
	q.entries = append(q.entries[:newIndex], append([]*QueuedTransaction{entry}, q.entries[newIndex:]...)...)
	q.persistLocked()
	return nil
}

// Delete removes a pending entry. Deleting a non-pending entry is a no-op:
// the queue does not assume the UI enforces the rule. Unknown ids are
// reported.
func (q *Queue) Delete(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.entries {
		if e.ID == id {
			if e.Status != StatusPending {
				return nil
			}
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			q.persistLocked()
			return nil
		}
	}
	return ErrNotFound
}

// Execute runs a single pending entry through the executor, transitioning
// it pending -> executing -> completed|failed. The transaction hash is
// attached on success; a failure always resolves to failed status.
func (q *Queue) Execute(ctx context.Context, id string, exec Executor) (string, error) {
	q.mu.Lock()
	var entry *QueuedTransaction
	for _, e := range q.entries {
		if e.ID == id {
			entry = e
			break
		}
	}
	if entry == nil {
		q.mu.Unlock()
		return "", ErrNotFound
	}
	if entry.Status != StatusPending {
		q.mu.Unlock()
		return "", ErrNotPending
	}
	entry.Status = StatusExecuting
	prepared := entry.Result
	q.persistLocked()
	q.mu.Unlock()

	hash, err := exec.Execute(ctx, prepared)
	q.finish([]string{id}, hash, err)
	return hash, err
}

// ExecuteAll transitions every currently pending entry to executing as one
// batch and hands the batch to the executor: a single call when there is
// one entry, a bundled call otherwise. The on-chain bundle is atomic, so on
// failure the whole batch is marked failed; entries in other states are
// untouched.
func (q *Queue) ExecuteAll(ctx context.Context, exec Executor) (string, error) {
	q.mu.Lock()
	var (
		ids      []string
		prepared []*PreparedSwap
	)
	for _, e := range q.entries {
		if e.Status == StatusPending {
			e.Status = StatusExecuting
			ids = append(ids, e.ID)
			prepared = append(prepared, e.Result)
		}
	}
	if len(ids) > 0 {
		q.persistLocked()
	}
	q.mu.Unlock()

	if len(ids) == 0 {
		return "", ErrNothingPending
	}

	var (
		hash string
		err  error
	)
	if len(prepared) == 1 {
		hash, err = exec.Execute(ctx, prepared[0])
	} else {
		hash, err = exec.ExecuteBundled(ctx, prepared)
	}
	q.finish(ids, hash, err)
	return hash, err
}

// finish applies a batch outcome as id-keyed updates so that completions
// landing close together cannot lose each other's writes.
func (q *Queue) finish(ids []string, hash string, execErr error) {
	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		if _, ok := idSet[e.ID]; !ok {
			continue
		}
		if execErr != nil {
			e.Status = StatusFailed
			e.Error = execErr.Error()
		} else {
			e.Status = StatusCompleted
			e.TxHash = hash
		}
	}
	q.persistLocked()

	if execErr != nil {
		q.log.WithError(execErr).WithField("entries", len(ids)).Warn("batch execution failed")
	} else {
		q.log.WithFields(logrus.Fields{"entries": len(ids), "tx_hash": hash}).Info("batch executed")
	}
}

func (q *Queue) persistLocked() {
	if q.store == nil {
		return
	}
	if err := q.store.Save(q.entries); err != nil {
		q.log.WithError(err).Warn("failed to persist queue")
	}
}
