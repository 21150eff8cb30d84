// Package storage defines the persistence boundaries of the service: a
// keyed metric snapshot store and a long-term archive of normalized
// transactions.
package storage

import (
	"context"
	"time"

	"github.com/amdonatusprince/shield/internal/domain"
)

// MetricSnapshot is one stored analytics result, keyed by
// (protocol, metric). Value holds the JSON-encoded analytics view.
type MetricSnapshot struct {
	Protocol  string
	Metric    string
	Value     []byte
	UpdatedAt time.Time
}

// MetricStore is the keyed get/put store for computed metrics.
type MetricStore interface {
	// Put upserts a snapshot under its (protocol, metric) key.
	Put(ctx context.Context, snap *MetricSnapshot) error

	// Get retrieves a snapshot. Returns ErrNotFound when the key has never
	// been written.
	Get(ctx context.Context, protocol, metric string) (*MetricSnapshot, error)

	// List returns all snapshots for a protocol sorted by metric name.
	List(ctx context.Context, protocol string) ([]*MetricSnapshot, error)
}

// TransactionArchive stores normalized transactions for long-term
// analytical queries.
type TransactionArchive interface {
	// InsertBulk appends a batch of normalized transactions.
	InsertBulk(ctx context.Context, txs []domain.NormalizedTransaction) error

	// GetByTimeRange retrieves transactions within [start, end) unix
	// seconds, sorted by (slot, transaction id).
	GetByTimeRange(ctx context.Context, start, end int64) ([]domain.NormalizedTransaction, error)
}
