package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"market-pulse/src/logger"
	"market-pulse/src/models"
)

// -----------------------------------------------------------------------------
// Connection States
// -----------------------------------------------------------------------------

type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateError
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	case StateError:
		return "ERROR"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// -----------------------------------------------------------------------------
// Session
//
// Stream subscriber. One goroutine (the read loop) owns all map writes; every
// accessor hands out copies, so consumers never observe a partial update. On
// any transport failure the session parks in ERROR, waits out the backoff and
// dials again. Only Close (or context cancellation) reaches CLOSED.
// -----------------------------------------------------------------------------

type Session struct {
	BaseURL    string
	Logger     *logger.Logger
	Backoff    Backoff
	HTTPClient *http.Client

	// OnTick, when set, fires for every accepted tick after the local state
	// has been updated.
	OnTick func(models.MTick)

	state         atomic.Int32
	mu            sync.RWMutex
	latest        map[string]models.MTick
	latencyMs     map[string]int64
	lastHeartbeat atomic.Int64

	cancel context.CancelFunc
	now    func() time.Time
}

// -----------------------------------------------------------------------------

func NewSession(baseURL string, log *logger.Logger) *Session {
	s := &Session{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Logger:     log,
		Backoff:    DefaultBackoff(),
		HTTPClient: &http.Client{},
		latest:     make(map[string]models.MTick),
		latencyMs:  make(map[string]int64),
		now:        time.Now,
	}
	s.state.Store(int32(StateConnecting))
	return s
}

// -----------------------------------------------------------------------------

// Run consumes the stream until the context is cancelled or Close is called.
// Reconnects indefinitely with backoff between attempts.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	attempt := 0
	for {
		if ctx.Err() != nil {
			s.state.Store(int32(StateClosed))
			return
		}

		s.state.Store(int32(StateConnecting))
		attempt++

		err := s.consume(ctx)
		if ctx.Err() != nil {
			s.state.Store(int32(StateClosed))
			s.Logger.Info("Session closed")
			return
		}

		// A connection that reached OPEN earns a fresh backoff schedule.
		if s.State() == StateOpen {
			attempt = 0
		}

		s.state.Store(int32(StateError))
		wait := s.Backoff.Next(attempt)
		s.Logger.Warning("Stream dropped (%v), reconnecting in %s", err, wait)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			s.state.Store(int32(StateClosed))
			return
		}
	}
}

// -----------------------------------------------------------------------------

// Close terminates the session. Idempotent.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// -----------------------------------------------------------------------------

// consume runs one connection: dial, then read framed events until the pipe
// breaks. A nil-free return only happens via context cancellation.
func (s *Session) consume(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+models.StreamPath, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", models.StreamContentType)

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream endpoint returned %d", resp.StatusCode)
	}

	s.state.Store(int32(StateOpen))
	s.lastHeartbeat.Store(s.now().UnixMilli())
	s.Logger.Info("Stream connected to %s", s.BaseURL)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, models.StreamDataPrefix) {
			// Unknown framing; skip rather than kill the connection.
			continue
		}
		s.handleEvent(strings.TrimPrefix(line, models.StreamDataPrefix))
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("stream ended")
}

// -----------------------------------------------------------------------------

func (s *Session) handleEvent(payload string) {
	if payload == models.HeartbeatSentinel {
		s.lastHeartbeat.Store(s.now().UnixMilli())
		return
	}

	var tick models.MTick
	if err := json.Unmarshal([]byte(payload), &tick); err != nil {
		s.Logger.Debug("Dropping malformed event: %v", err)
		return
	}
	if tick.Ticker == "" || tick.Price <= 0 {
		s.Logger.Debug("Dropping incomplete tick: %q", payload)
		return
	}

	latency := int64(0)
	if ts, err := tick.Time(); err == nil {
		latency = s.now().Sub(ts).Milliseconds()
	}

	s.mu.Lock()
	s.latest[tick.Ticker] = tick
	s.latencyMs[tick.Ticker] = latency
	s.mu.Unlock()

	s.lastHeartbeat.Store(s.now().UnixMilli())

	if s.OnTick != nil {
		s.OnTick(tick)
	}
}

// -----------------------------------------------------------------------------
// Accessors
// -----------------------------------------------------------------------------

// State returns the current connection state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// -----------------------------------------------------------------------------

// LatestTick returns the newest tick seen for a ticker.
func (s *Session) LatestTick(ticker string) (models.MTick, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tick, ok := s.latest[ticker]
	return tick, ok
}

// -----------------------------------------------------------------------------

// Snapshot returns a copy of every ticker's newest tick.
func (s *Session) Snapshot() map[string]models.MTick {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.MTick, len(s.latest))
	for k, v := range s.latest {
		out[k] = v
	}
	return out
}

// -----------------------------------------------------------------------------

// LatencyMs returns the delivery latency measured for a ticker's newest tick.
func (s *Session) LatencyMs(ticker string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ms, ok := s.latencyMs[ticker]
	return ms, ok
}

// -----------------------------------------------------------------------------

// Stale reports whether nothing (ticks or heartbeats) has arrived within the
// given window. Only meaningful while the session is OPEN.
func (s *Session) Stale(window time.Duration) bool {
	last := s.lastHeartbeat.Load()
	if last == 0 {
		return true
	}
	return s.now().UnixMilli()-last > window.Milliseconds()
}
