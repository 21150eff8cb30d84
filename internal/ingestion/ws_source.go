// Package ingestion connects to the upstream transaction feed and delivers
// raw batches to the classification pipeline.
package ingestion

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/amdonatusprince/shield/internal/observability"
)

// WSSourceConfig configures WebSocket source behavior.
type WSSourceConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the exponential backoff between attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing messages.
	WriteTimeout time.Duration
	// BufferSize is the capacity of the delivered batch channel.
	BufferSize int
}

// DefaultWSConfig returns default WebSocket source configuration.
func DefaultWSConfig() WSSourceConfig {
	return WSSourceConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		BufferSize:        1024,
	}
}

// WSSource reads raw transaction batches from a WebSocket feed. Each
// message is an opaque JSON payload handed to the pipeline unparsed.
// The source reconnects with exponential backoff on read failures.
type WSSource struct {
	endpoint string
	config   WSSourceConfig
	logger   *log.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	batches chan []byte
	done    chan struct{}
	wg      sync.WaitGroup

	reconnecting atomic.Bool
}

// NewWSSource connects to the feed endpoint and starts delivering batches.
func NewWSSource(ctx context.Context, endpoint string, config *WSSourceConfig, logger *log.Logger) (*WSSource, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[ingestion] ", log.LstdFlags|log.Lshortfile)
	}

	s := &WSSource{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
		batches:  make(chan []byte, cfg.BufferSize),
		done:     make(chan struct{}),
	}

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go s.readLoop()

	s.wg.Add(1)
	go s.pingLoop()

	return s, nil
}

// Batches returns the channel of raw batch payloads. The channel is closed
// when the source is closed.
func (s *WSSource) Batches() <-chan []byte {
	return s.batches
}

// connect establishes the WebSocket connection.
func (s *WSSource) connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	s.conn = conn
	return nil
}

// Close closes the WebSocket connection and the batch channel.
func (s *WSSource) Close() error {
	if s.closed.Swap(true) {
		return nil // Already closed
	}

	close(s.done)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	close(s.batches)
	return nil
}

// readLoop reads messages from the WebSocket and delivers them.
func (s *WSSource) readLoop() {
	defer s.wg.Done()

	reconnectDelay := s.config.ReconnectDelay

	for !s.closed.Load() {
		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}

			if !s.reconnecting.Swap(true) {
				go s.reconnect(reconnectDelay)
			}

			// Exponential backoff for the next attempt
			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > s.config.MaxReconnectDelay {
				reconnectDelay = s.config.MaxReconnectDelay
			}

			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = s.config.ReconnectDelay

		observability.DefaultMetrics.WSMessagesReceived.Inc()

		// Block until the consumer takes the batch - never drop input
		select {
		case s.batches <- message:
		case <-s.done:
			return
		}
	}
}

// reconnect waits out the backoff delay and re-dials the feed.
func (s *WSSource) reconnect(delay time.Duration) {
	defer s.reconnecting.Store(false)

	if s.closed.Load() {
		return
	}

	select {
	case <-s.done:
		return
	case <-time.After(delay):
	}

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.connect(ctx); err != nil {
		s.logger.Printf("reconnect failed: %v", err)
		return
	}

	observability.DefaultMetrics.WSReconnects.Inc()
	s.logger.Printf("reconnected to %s", s.endpoint)
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (s *WSSource) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil {
				s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
				// On write failure the reader detects the dead
				// connection and reconnects.
				_ = s.conn.WriteMessage(websocket.PingMessage, nil)
			}
			s.connMu.Unlock()
		}
	}
}
