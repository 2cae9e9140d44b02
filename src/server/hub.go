package server

import (
	"sync"
	"sync/atomic"
	"time"

	"market-pulse/src/logger"
	"market-pulse/src/models"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
//
// One goroutine owns the subscriber set; Publish feeds it through a buffered
// channel so pollers never block on slow consumers. The SSE gateway and the
// WebSocket mirror both attach through Subscribe.
// -----------------------------------------------------------------------------

type Subscription struct {
	hub *Hub
	// Buffered channel to prevent blocking the Hub loop
	send chan models.MTick
}

// C returns the tick channel; closed by the hub on disconnect.
func (s *Subscription) C() <-chan models.MTick { return s.send }

// Close detaches the subscription from the hub.
func (s *Subscription) Close() {
	select {
	case s.hub.unregister <- s:
	case <-s.hub.done:
	}
}

// -----------------------------------------------------------------------------

type Hub struct {
	Logger *logger.Logger

	subscribers map[*Subscription]struct{}
	broadcast   chan models.MTick
	register    chan *Subscription
	unregister  chan *Subscription
	done        chan struct{}

	// Latest accepted tick per ticker, behind the monotonic gate.
	latest     map[string]models.MTick
	latestTime map[string]time.Time
	stateMutex sync.RWMutex

	bufferSize int
	subCount   atomic.Int64
}

// -----------------------------------------------------------------------------

func NewHub(bufferSize int, log *logger.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = models.DefaultSubscriberSize
	}
	return &Hub{
		Logger:      log,
		subscribers: make(map[*Subscription]struct{}),
		broadcast:   make(chan models.MTick, bufferSize),
		register:    make(chan *Subscription),
		unregister:  make(chan *Subscription),
		done:        make(chan struct{}),
		latest:      make(map[string]models.MTick),
		latestTime:  make(map[string]time.Time),
		bufferSize:  bufferSize,
	}
}

// -----------------------------------------------------------------------------

// Run is the main Hub loop. Must be started exactly once.
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.register:
			h.subscribers[sub] = struct{}{}
			h.subCount.Store(int64(len(h.subscribers)))

		case sub := <-h.unregister:
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				close(sub.send)
				h.subCount.Store(int64(len(h.subscribers)))
			}

		case tick := <-h.broadcast:
			for sub := range h.subscribers {
				select {
				case sub.send <- tick:
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(h.subscribers, sub)
					close(sub.send)
					h.Logger.Warning("Dropped slow subscriber (%d remaining)", len(h.subscribers))
				}
			}
			h.subCount.Store(int64(len(h.subscribers)))

		case <-h.done:
			for sub := range h.subscribers {
				delete(h.subscribers, sub)
				close(sub.send)
			}
			return
		}
	}
}

// -----------------------------------------------------------------------------

// Stop terminates the hub loop and detaches every subscriber.
func (h *Hub) Stop() {
	close(h.done)
}

// -----------------------------------------------------------------------------

// Subscribe attaches a new consumer to the broadcast fan-out.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		hub:  h,
		send: make(chan models.MTick, h.bufferSize),
	}
	select {
	case h.register <- sub:
	case <-h.done:
		close(sub.send)
	}
	return sub
}

// -----------------------------------------------------------------------------

// Publish accepts a tick into the fan-out. Per ticker, timestamps must not go
// backwards: a tick older than the last accepted one for the same ticker is
// dropped so subscribers never observe a price regression.
func (h *Hub) Publish(tick models.MTick) {
	ts, err := tick.Time()
	if err != nil {
		h.Logger.Debug("Rejecting tick with bad timestamp for %s: %v", tick.Ticker, err)
		return
	}

	h.stateMutex.Lock()
	if last, ok := h.latestTime[tick.Ticker]; ok && ts.Before(last) {
		h.stateMutex.Unlock()
		h.Logger.Debug("Dropping out-of-order tick for %s (%s < %s)", tick.Ticker, ts, last)
		return
	}
	h.latest[tick.Ticker] = tick
	h.latestTime[tick.Ticker] = ts
	h.stateMutex.Unlock()

	select {
	case h.broadcast <- tick:
	case <-h.done:
	}
}

// -----------------------------------------------------------------------------

// Latest returns the last accepted tick for a ticker.
func (h *Hub) Latest(ticker string) (models.MTick, bool) {
	h.stateMutex.RLock()
	defer h.stateMutex.RUnlock()

	tick, ok := h.latest[ticker]
	return tick, ok
}

// -----------------------------------------------------------------------------

// Subscribers reports the current fan-out size. Health endpoint only; the
// count is a snapshot maintained by the hub loop.
func (h *Hub) Subscribers() int {
	return int(h.subCount.Load())
}
