// Package memory provides in-memory storage implementations, used in tests
// and when the service runs without external databases.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/amdonatusprince/shield/internal/storage"
)

// metricKey is the composite lookup key for metric snapshots.
type metricKey struct {
	Protocol string
	Metric   string
}

// MetricStore is an in-memory implementation of storage.MetricStore.
type MetricStore struct {
	mu   sync.RWMutex
	data map[metricKey]*storage.MetricSnapshot
}

// NewMetricStore creates a new in-memory metric store.
func NewMetricStore() *MetricStore {
	return &MetricStore{data: make(map[metricKey]*storage.MetricSnapshot)}
}

// Put upserts a snapshot under its (protocol, metric) key.
func (s *MetricStore) Put(_ context.Context, snap *storage.MetricSnapshot) error {
	if snap == nil || snap.Protocol == "" || snap.Metric == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy
	copied := *snap
	copied.Value = append([]byte(nil), snap.Value...)
	s.data[metricKey{Protocol: snap.Protocol, Metric: snap.Metric}] = &copied

	return nil
}

// Get retrieves a snapshot, or ErrNotFound.
func (s *MetricStore) Get(_ context.Context, protocol, metric string) (*storage.MetricSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[metricKey{Protocol: protocol, Metric: metric}]
	if !ok {
		return nil, storage.ErrNotFound
	}

	copied := *snap
	copied.Value = append([]byte(nil), snap.Value...)
	return &copied, nil
}

// List returns all snapshots for a protocol sorted by metric name.
func (s *MetricStore) List(_ context.Context, protocol string) ([]*storage.MetricSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*storage.MetricSnapshot
	for key, snap := range s.data {
		if key.Protocol != protocol {
			continue
		}
		copied := *snap
		copied.Value = append([]byte(nil), snap.Value...)
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Metric < result[j].Metric
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.MetricStore = (*MetricStore)(nil)
