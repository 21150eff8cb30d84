package postgres

import (
	"context"
	"fmt"

	"github.com/amdonatusprince/shield/internal/storage"
)

// MetricStore is the Postgres implementation of storage.MetricStore.
type MetricStore struct {
	pool *Pool
}

// NewMetricStore creates a metric store backed by the given pool.
func NewMetricStore(pool *Pool) *MetricStore {
	return &MetricStore{pool: pool}
}

// Put upserts a snapshot under its (protocol, metric) key.
func (s *MetricStore) Put(ctx context.Context, snap *storage.MetricSnapshot) error {
	if snap == nil || snap.Protocol == "" || snap.Metric == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO metric_snapshots (protocol, metric, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (protocol, metric)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	_, err := s.pool.Exec(ctx, query, snap.Protocol, snap.Metric, snap.Value, snap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert metric snapshot: %w", err)
	}

	return nil
}

// Get retrieves a snapshot, or storage.ErrNotFound.
func (s *MetricStore) Get(ctx context.Context, protocol, metric string) (*storage.MetricSnapshot, error) {
	query := `
		SELECT protocol, metric, value, updated_at
		FROM metric_snapshots
		WHERE protocol = $1 AND metric = $2`

	var snap storage.MetricSnapshot
	err := s.pool.QueryRow(ctx, query, protocol, metric).Scan(
		&snap.Protocol, &snap.Metric, &snap.Value, &snap.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get metric snapshot: %w", err)
	}

	return &snap, nil
}

// List returns all snapshots for a protocol sorted by metric name.
func (s *MetricStore) List(ctx context.Context, protocol string) ([]*storage.MetricSnapshot, error) {
	query := `
		SELECT protocol, metric, value, updated_at
		FROM metric_snapshots
		WHERE protocol = $1
		ORDER BY metric`

	rows, err := s.pool.Query(ctx, query, protocol)
	if err != nil {
		return nil, fmt.Errorf("list metric snapshots: %w", err)
	}
	defer rows.Close()

	var result []*storage.MetricSnapshot
	for rows.Next() {
		var snap storage.MetricSnapshot
		if err := rows.Scan(&snap.Protocol, &snap.Metric, &snap.Value, &snap.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan metric snapshot: %w", err)
		}
		result = append(result, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metric snapshots: %w", err)
	}

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.MetricStore = (*MetricStore)(nil)
