package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/amdonatusprince/shield/internal/domain"
	"github.com/amdonatusprince/shield/internal/storage"
)

// TransactionArchive is an in-memory implementation of
// storage.TransactionArchive.
type TransactionArchive struct {
	mu   sync.RWMutex
	data []domain.NormalizedTransaction
}

// NewTransactionArchive creates a new in-memory archive.
func NewTransactionArchive() *TransactionArchive {
	return &TransactionArchive{}
}

// InsertBulk appends a batch of normalized transactions.
func (a *TransactionArchive) InsertBulk(_ context.Context, txs []domain.NormalizedTransaction) error {
	if len(txs) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.data = append(a.data, txs...)

	return nil
}

// GetByTimeRange retrieves transactions within [start, end) sorted by
// (slot, transaction id).
func (a *TransactionArchive) GetByTimeRange(_ context.Context, start, end int64) ([]domain.NormalizedTransaction, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var result []domain.NormalizedTransaction
	for _, tx := range a.data {
		if tx.Timestamp >= start && tx.Timestamp < end {
			result = append(result, tx)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].BlockSlot != result[j].BlockSlot {
			return result[i].BlockSlot < result[j].BlockSlot
		}
		return result[i].TransactionID < result[j].TransactionID
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.TransactionArchive = (*TransactionArchive)(nil)
