package market

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"token-holder-lab/internal/observability"
)

// StreamConfig configures the reserve stream client.
type StreamConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the backoff between reconnect attempts.
	MaxReconnectDelay time.Duration
	// ReadTimeout is the per-message read deadline.
	ReadTimeout time.Duration
	// WriteTimeout is the deadline for writing the subscribe frame.
	WriteTimeout time.Duration
}

// DefaultStreamConfig returns default stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// ReserveStream subscribes to live pool reserve updates over WebSocket and
// delivers them on a channel. The stream reconnects with exponential backoff
// and resubscribes after connection loss; ticks arriving while the consumer
// lags are dropped rather than blocking the read loop.
type ReserveStream struct {
	endpoint string
	pool     string
	config   StreamConfig
	log      *zap.Logger
	metrics  *observability.Metrics

	ticks   chan ReserveTick
	dropped atomic.Uint64
}

// NewReserveStream creates a reserve stream for one pool address.
func NewReserveStream(endpoint, pool string, config *StreamConfig, log *zap.Logger) *ReserveStream {
	cfg := DefaultStreamConfig()
	if config != nil {
		cfg = *config
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReserveStream{
		endpoint: endpoint,
		pool:     pool,
		config:   cfg,
		log:      log,
		ticks:    make(chan ReserveTick, 64),
	}
}

// WithMetrics instruments the stream.
func (s *ReserveStream) WithMetrics(m *observability.Metrics) *ReserveStream {
	s.metrics = m
	return s
}

// Ticks returns the channel of reserve updates. It is closed when Run exits.
func (s *ReserveStream) Ticks() <-chan ReserveTick {
	return s.ticks
}

// Dropped returns the number of ticks discarded because the consumer lagged.
func (s *ReserveStream) Dropped() uint64 {
	return s.dropped.Load()
}

// Run connects and pumps reserve updates until ctx is cancelled. It returns
// ctx.Err() on cancellation; connection failures are retried internally.
func (s *ReserveStream) Run(ctx context.Context) error {
	defer close(s.ticks)

	delay := s.config.ReconnectDelay
	for {
		err := s.pump(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Warn("reserve stream disconnected",
			zap.String("pool", s.pool),
			zap.Duration("retry_in", delay),
			zap.Error(err))

		if s.metrics != nil {
			s.metrics.StreamReconnects.Inc()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > s.config.MaxReconnectDelay {
			delay = s.config.MaxReconnectDelay
		}
	}
}

// pump runs one connection lifetime: dial, subscribe, read until failure.
func (s *ReserveStream) pump(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: s.config.WriteTimeout}
	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.endpoint, err)
	}
	defer conn.Close()

	// Close the connection when ctx is cancelled so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	sub := map[string]string{"op": "subscribe", "channel": "reserves", "pool": s.pool}
	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe pool %s: %w", s.pool, err)
	}

	s.log.Info("reserve stream connected", zap.String("pool", s.pool))

	for {
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		var update reserveUpdate
		if err := json.Unmarshal(msg, &update); err != nil {
			s.log.Warn("skipping malformed reserve update", zap.Error(err))
			continue
		}
		if update.Pool != "" && update.Pool != s.pool {
			continue
		}
		if update.Reserve0 <= 0 || update.Reserve1 <= 0 {
			continue
		}

		tick := ReserveTick{
			Pool:      s.pool,
			Reserve0:  update.Reserve0,
			Reserve1:  update.Reserve1,
			Timestamp: update.Ts,
		}
		select {
		case s.ticks <- tick:
			if s.metrics != nil {
				s.metrics.ReserveTicks.Inc()
			}
		default:
			s.dropped.Add(1)
			if s.metrics != nil {
				s.metrics.ReserveTicksDropped.Inc()
			}
		}
	}
}
