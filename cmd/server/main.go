// Package main runs the classification service:
// - Ingestion (continuous): WebSocket feed of raw transaction batches
// - Classification: protocol matching and normalization into the window
// - Query API: analytics over the current window
// - Snapshots (scheduled): persisted per-protocol metric views
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/amdonatusprince/shield/internal/analytics"
	"github.com/amdonatusprince/shield/internal/classify"
	"github.com/amdonatusprince/shield/internal/domain"
	"github.com/amdonatusprince/shield/internal/ingestion"
	"github.com/amdonatusprince/shield/internal/observability"
	"github.com/amdonatusprince/shield/internal/pubkey"
	"github.com/amdonatusprince/shield/internal/registry"
	"github.com/amdonatusprince/shield/internal/storage"
	chstore "github.com/amdonatusprince/shield/internal/storage/clickhouse"
	"github.com/amdonatusprince/shield/internal/storage/memory"
	pgstore "github.com/amdonatusprince/shield/internal/storage/postgres"
	"github.com/amdonatusprince/shield/internal/window"
)

// Server holds all components of the service.
type Server struct {
	// Configuration
	wsEndpoint       string
	protocolFilter   string
	snapshotInterval time.Duration
	pruneInterval    time.Duration

	// Components
	pipeline *classify.Pipeline
	engine   *analytics.Engine
	window   *window.Window
	metrics  storage.MetricStore
	archive  storage.TransactionArchive
	logger   *log.Logger

	// State
	mu            sync.Mutex
	started       time.Time
	lastBatch     time.Time
	lastSnapshot  time.Time
	batchCount    int
	queryCount    int
	snapshotCount int
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("FEED_WS_ENDPOINT"), "Transaction feed WebSocket endpoint")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of external databases")
	protocolFilter := flag.String("protocol", "", "Keep only transactions for this protocol (empty keeps all)")
	windowAge := flag.Duration("window-age", 24*time.Hour, "Retention of the in-memory query window")
	snapshotInterval := flag.Duration("snapshot-interval", 15*time.Minute, "Metric snapshot persistence interval")
	pruneInterval := flag.Duration("prune-interval", 1*time.Minute, "Window prune interval")
	httpAddr := flag.String("http-addr", ":8080", "HTTP listen address for query/health/metrics")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *wsEndpoint == "" {
		logger.Fatal("--ws-endpoint is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())

	metricStore, archive, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	server := &Server{
		wsEndpoint:       *wsEndpoint,
		protocolFilter:   *protocolFilter,
		snapshotInterval: *snapshotInterval,
		pruneInterval:    *pruneInterval,
		pipeline:         classify.NewPipeline(),
		engine:           analytics.NewEngine(),
		window:           window.New(*windowAge),
		metrics:          metricStore,
		archive:          archive,
		logger:           logger,
		started:          time.Now(),
	}

	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	go server.startHTTPServer(*httpAddr)

	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates the metric store and transaction archive.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (storage.MetricStore, storage.TransactionArchive, func(), error) {
	if useMemory {
		return memory.NewMetricStore(), memory.NewTransactionArchive(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	chConn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return pgstore.NewMetricStore(pool), chstore.NewArchiveStore(chConn), cleanup, nil
}

// Run starts ingestion, the snapshot scheduler, and the prune loop.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting server...")

	errCh := make(chan error, 2)

	go func() {
		err := s.runIngestion(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("ingestion: %w", err)
		}
	}()

	go func() {
		err := s.runSnapshotScheduler(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("snapshot scheduler: %w", err)
		}
	}()

	go s.runPruneLoop(ctx)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runIngestion consumes raw batches from the feed and classifies them.
func (s *Server) runIngestion(ctx context.Context) error {
	s.logger.Printf("Connecting to feed at %s...", s.wsEndpoint)

	source, err := ingestion.NewWSSource(ctx, s.wsEndpoint, nil,
		log.New(os.Stdout, "[ingestion] ", log.LstdFlags|log.Lshortfile))
	if err != nil {
		return fmt.Errorf("create websocket source: %w", err)
	}
	defer source.Close()

	s.logger.Println("Ingestion started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-source.Batches():
			if !ok {
				return fmt.Errorf("feed closed")
			}
			s.processBatch(ctx, raw)
		}
	}
}

// processBatch classifies one raw payload into the window and the archive.
func (s *Server) processBatch(ctx context.Context, raw []byte) {
	parsed, err := classify.ParseRawTransactions(raw)
	if err != nil {
		observability.RecordParseError()
		s.logger.Printf("Dropping malformed batch: %v", err)
		return
	}

	normalized := s.pipeline.ClassifyBatch(parsed, s.protocolFilter)
	if dropped := len(parsed) - len(normalized); dropped > 0 {
		observability.RecordDropped(dropped)
	}

	highestSlot := int64(0)
	for _, tx := range normalized {
		observability.RecordClassified(tx.Protocol)
		if tx.BlockSlot > highestSlot {
			highestSlot = tx.BlockSlot
		}
	}

	s.window.Add(normalized...)
	observability.UpdateWindowSize(s.window.Len())
	if highestSlot > 0 {
		observability.UpdateHighestSlot(highestSlot)
	}

	if len(normalized) > 0 {
		insertStart := time.Now()
		err := s.archive.InsertBulk(ctx, normalized)
		observability.ObserveDBQuery("clickhouse", "insert_bulk", time.Since(insertStart).Seconds())
		if err != nil {
			observability.RecordStorageError("clickhouse")
			s.logger.Printf("Archive insert failed: %v", err)
		} else {
			observability.DefaultMetrics.ArchiveInserts.Add(float64(len(normalized)))
		}
	}

	observability.RecordBatch(time.Now().Unix())

	s.mu.Lock()
	s.batchCount++
	s.lastBatch = time.Now()
	s.mu.Unlock()
}

// runSnapshotScheduler persists per-protocol metric views on an interval.
func (s *Server) runSnapshotScheduler(ctx context.Context) error {
	s.logger.Printf("Starting snapshot scheduler (interval: %v)...", s.snapshotInterval)

	ticker := time.NewTicker(s.snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.writeSnapshots(ctx)
		}
	}
}

// writeSnapshots computes and persists the standing metric views.
func (s *Server) writeSnapshots(ctx context.Context) {
	stream := s.window.Snapshot()
	now := time.Now().UTC()

	for _, protocol := range protocolNames() {
		views := map[string]interface{}{
			string(domain.QueryVolume):        s.engine.Volume(stream, protocol, 24*time.Hour),
			string(domain.QueryDailyStats):    s.engine.Daily(stream, protocol),
			string(domain.QueryActiveWallets): s.engine.ActiveWallets(stream, protocol),
		}
		for metric, view := range views {
			s.putSnapshot(ctx, protocol, metric, view, now)
		}
	}

	// Cross-protocol view stored under its own key.
	s.putSnapshot(ctx, "ALL", string(domain.QueryMultiProtocolStats), s.engine.MultiProtocolStats(stream), now)

	s.mu.Lock()
	s.lastSnapshot = now
	s.snapshotCount++
	s.mu.Unlock()
}

// putSnapshot encodes one view and upserts it.
func (s *Server) putSnapshot(ctx context.Context, protocol, metric string, view interface{}, now time.Time) {
	value, err := json.Marshal(view)
	if err != nil {
		s.logger.Printf("Snapshot encode failed for %s/%s: %v", protocol, metric, err)
		return
	}

	putStart := time.Now()
	err = s.metrics.Put(ctx, &storage.MetricSnapshot{
		Protocol:  protocol,
		Metric:    metric,
		Value:     value,
		UpdatedAt: now,
	})
	observability.ObserveDBQuery("postgres", "upsert", time.Since(putStart).Seconds())
	if err != nil {
		observability.RecordStorageError("postgres")
		s.logger.Printf("Snapshot write failed for %s/%s: %v", protocol, metric, err)
		return
	}
	observability.RecordSnapshotWritten(metric)
}

// runPruneLoop drops expired transactions from the window.
func (s *Server) runPruneLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.window.Prune(); removed > 0 {
				observability.RecordPruned(removed)
				observability.UpdateWindowSize(s.window.Len())
			}
		}
	}
}

// protocolNames returns the registry protocols sorted by name.
func protocolNames() []string {
	names := make([]string, 0, len(registry.Programs))
	for name := range registry.Programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// startHTTPServer starts the HTTP server for queries, health, and metrics.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/query", s.handleQuery)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// handleQuery evaluates one analytics query against the current window.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var q domain.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		http.Error(w, fmt.Sprintf("decode query: %v", err), http.StatusBadRequest)
		return
	}

	if err := validateQuery(q); err != nil {
		http.Error(w, fmt.Sprintf("invalid query: %v", err), http.StatusBadRequest)
		return
	}

	start := time.Now()
	stream := s.window.Snapshot()

	var result interface{}
	var err error
	if q.Kind == domain.QueryAlertLarge {
		// Over HTTP the alert sink collects matches into the response.
		var alerts []domain.NormalizedTransaction
		q.Sink = func(tx domain.NormalizedTransaction) error {
			alerts = append(alerts, tx)
			return nil
		}
		_, err = s.engine.Dispatch(stream, q)
		result = alerts
	} else {
		result, err = s.engine.Dispatch(stream, q)
	}

	observability.RecordQuery(string(q.Kind), time.Since(start).Seconds())

	s.mu.Lock()
	s.queryCount++
	s.mu.Unlock()

	if err != nil {
		http.Error(w, fmt.Sprintf("query failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// validateQuery rejects address parameters that cannot be Solana public
// keys. Only the kinds that match on an address are checked; everything
// else passes through unvalidated.
func validateQuery(q domain.Query) error {
	switch q.Kind {
	case domain.QuerySearchWallet:
		if !pubkey.IsValid(q.Wallet) {
			return fmt.Errorf("wallet %q is not a valid Solana address", q.Wallet)
		}
	case domain.QueryTotalValueTransferred:
		if q.Mint != "" && !pubkey.IsValid(q.Mint) {
			return fmt.Errorf("mint %q is not a valid Solana address", q.Mint)
		}
	}
	return nil
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status        string    `json:"status"`
	Uptime        string    `json:"uptime"`
	Started       time.Time `json:"started"`
	LastBatch     time.Time `json:"last_batch,omitempty"`
	LastSnapshot  time.Time `json:"last_snapshot,omitempty"`
	BatchCount    int       `json:"batch_count"`
	QueryCount    int       `json:"query_count"`
	SnapshotCount int       `json:"snapshot_count"`
	WindowSize    int       `json:"window_size"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:        "running",
		Uptime:        time.Since(s.started).String(),
		Started:       s.started,
		LastBatch:     s.lastBatch,
		LastSnapshot:  s.lastSnapshot,
		BatchCount:    s.batchCount,
		QueryCount:    s.queryCount,
		SnapshotCount: s.snapshotCount,
	}
	s.mu.Unlock()
	resp.WindowSize = s.window.Len()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
