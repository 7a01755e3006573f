package swap

import (
	"strings"
	"sync"
)

// PendingSwap is a prepared swap waiting behind the confirmation gate,
// keyed to its queue entry.
type PendingSwap struct {
	EntryID string
	Swap    *PreparedSwap
}

// ConfirmationGate holds at most one prepared swap awaiting an explicit
// user affirmation. There is no timeout: a swap may stay offered
// indefinitely until confirmed, cancelled, or replaced by a newer offer.
type ConfirmationGate struct {
	mu      sync.Mutex
	pending *PendingSwap
}

// NewConfirmationGate creates an empty gate.
func NewConfirmationGate() *ConfirmationGate {
	return &ConfirmationGate{}
}

// Offer places a prepared swap behind the gate, replacing any earlier offer.
func (g *ConfirmationGate) Offer(p *PendingSwap) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = p
}

// Peek returns the currently offered swap without releasing it.
func (g *ConfirmationGate) Peek() *PendingSwap {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

// Take releases and clears the offered swap; nil when nothing is offered.
func (g *ConfirmationGate) Take() *PendingSwap {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.pending
	g.pending = nil
	return p
}

// Clear drops the offered swap, if any.
func (g *ConfirmationGate) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = nil
}

// IsConfirmation reports whether a user input releases the gate. Only a
// case-insensitive "ok" or "yes" counts; anything else is treated as a new,
// unrelated instruction.
func IsConfirmation(input string) bool {
	s := strings.ToLower(strings.TrimSpace(input))
	return s == "ok" || s == "yes"
}
