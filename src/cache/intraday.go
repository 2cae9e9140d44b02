package cache

import (
	"sync"
	"time"

	"market-pulse/src/logger"
	"market-pulse/src/models"
)

// -----------------------------------------------------------------------------

// IntradayCache holds today's minute series per ticker: seeded once from the
// provider at startup, then extended live by the poller. One point per minute
// bucket; a tick landing in the bucket of the newest point replaces it in
// place, a newer bucket appends. Single writer (the poller), many readers
// (the REST handler).
type IntradayCache struct {
	mu        sync.RWMutex
	buffers   map[string]*RingBuffer
	prevClose map[string]*float64
	assetType map[string]string
	capacity  int
	Logger    *logger.Logger
}

// -----------------------------------------------------------------------------

func NewIntradayCache(capacity int, log *logger.Logger) *IntradayCache {
	return &IntradayCache{
		buffers:   make(map[string]*RingBuffer),
		prevClose: make(map[string]*float64),
		assetType: make(map[string]string),
		capacity:  capacity,
		Logger:    log,
	}
}

// -----------------------------------------------------------------------------

// Seed installs a freshly fetched intraday baseline for a ticker, replacing
// anything cached.
func (c *IntradayCache) Seed(series models.MIntradaySeries) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rb := NewRingBuffer(c.capacity)
	for _, p := range series.Points {
		rb.Append(p)
	}
	c.buffers[series.Ticker] = rb
	c.prevClose[series.Ticker] = series.PrevClose
	c.assetType[series.Ticker] = series.AssetType

	c.Logger.Info("Seeded intraday cache for %s: %d points", series.Ticker, rb.Size())
}

// -----------------------------------------------------------------------------

// Apply merges one live tick into the ticker's minute series.
func (c *IntradayCache) Apply(tick models.MTick) {
	ts, err := tick.Time()
	if err != nil {
		c.Logger.Debug("Dropping tick with bad timestamp for %s: %v", tick.Ticker, err)
		return
	}

	point := models.MSeriesPoint{
		Timestamp: ts.Truncate(time.Minute),
		Price:     tick.Price,
		Volume:    tick.Volume,
	}
	if tick.PrevClose > 0 {
		prev := tick.PrevClose
		point.PrevClose = &prev
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rb, ok := c.buffers[tick.Ticker]
	if !ok {
		rb = NewRingBuffer(c.capacity)
		c.buffers[tick.Ticker] = rb
		c.assetType[tick.Ticker] = tick.Type
	}

	if last, ok := rb.Last(); ok {
		lastBucket := last.Timestamp.Truncate(time.Minute)
		if point.Timestamp.Before(lastBucket) {
			// Stale relative to the series; the channel already delivered
			// something newer for this ticker.
			return
		}
		if point.Timestamp.Equal(lastBucket) {
			if point.Volume == 0 {
				point.Volume = last.Volume
			}
			if point.PrevClose == nil {
				point.PrevClose = last.PrevClose
			}
			rb.ReplaceLast(point)
			return
		}
	}
	rb.Append(point)
}

// -----------------------------------------------------------------------------

// Series returns a copy of the cached intraday series for a ticker.
func (c *IntradayCache) Series(ticker string) (models.MIntradaySeries, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rb, ok := c.buffers[ticker]
	if !ok {
		return models.MIntradaySeries{}, false
	}

	return models.MIntradaySeries{
		Ticker:    ticker,
		AssetType: c.assetType[ticker],
		Points:    rb.GetAll(),
		PrevClose: c.prevClose[ticker],
	}, true
}

// -----------------------------------------------------------------------------

// Tickers returns the tickers currently cached.
func (c *IntradayCache) Tickers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.buffers))
	for t := range c.buffers {
		out = append(out, t)
	}
	return out
}
