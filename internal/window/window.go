// Package window maintains the rolling in-memory set of normalized
// transactions that queries run against.
package window

import (
	"sync"
	"time"

	"github.com/amdonatusprince/shield/internal/domain"
)

// Window is a bounded, time-pruned transaction buffer. Queries never touch
// the live slice: Snapshot hands out a copy, so each query invocation stays
// a pure computation over materialized data.
type Window struct {
	mu     sync.RWMutex
	data   []domain.NormalizedTransaction
	maxAge time.Duration
	clock  func() time.Time
}

// New creates a window retaining transactions no older than maxAge. A
// non-positive maxAge disables pruning.
func New(maxAge time.Duration) *Window {
	return &Window{
		maxAge: maxAge,
		clock:  time.Now,
	}
}

// WithClock sets a custom clock for deterministic pruning in tests.
func (w *Window) WithClock(clock func() time.Time) *Window {
	w.clock = clock
	return w
}

// Add appends normalized transactions to the window.
func (w *Window) Add(txs ...domain.NormalizedTransaction) {
	if len(txs) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.data = append(w.data, txs...)
}

// Snapshot returns a copy of the current window wrapped as StreamData.
func (w *Window) Snapshot() domain.StreamData {
	w.mu.RLock()
	defer w.mu.RUnlock()
	data := make([]domain.NormalizedTransaction, len(w.data))
	copy(data, w.data)
	return domain.StreamData{Data: data}
}

// Len returns the current number of retained transactions.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.data)
}

// Prune drops transactions older than the retention window and returns the
// number removed. Input order of the survivors is preserved.
func (w *Window) Prune() int {
	if w.maxAge <= 0 {
		return 0
	}
	cutoff := w.clock().Add(-w.maxAge).Unix()

	w.mu.Lock()
	defer w.mu.Unlock()

	kept := w.data[:0]
	for _, tx := range w.data {
		if tx.Timestamp >= cutoff {
			kept = append(kept, tx)
		}
	}
	removed := len(w.data) - len(kept)
	w.data = kept
	return removed
}
