package utils

import (
	"sync"
	"time"

	"market-pulse/src/logger"
)

// -----------------------------------------------------------------------------

// MarketScheduler maps stock tickers to their exchange calendars so the
// poller can idle while every tracked market is closed. Crypto never appears
// here; the continuous universe is always "open".
type MarketScheduler struct {
	Calendars map[string]*TradingCalendar
	Logger    *logger.Logger
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(tickers []string, l *logger.Logger) *MarketScheduler {
	ms := &MarketScheduler{
		Calendars: make(map[string]*TradingCalendar),
		Logger:    l,
	}
	ms.UpdateTickers(tickers)
	return ms
}

// -----------------------------------------------------------------------------

// UpdateTickers replaces the tracked ticker set.
func (ms *MarketScheduler) UpdateTickers(tickers []string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.Calendars = make(map[string]*TradingCalendar)
	for _, ticker := range tickers {
		ms.Calendars[ticker] = GetCalendar(ticker)
	}

	ms.Logger.Info("MarketScheduler: tracking %d tickers", len(tickers))
}

// -----------------------------------------------------------------------------

// AnyMarketOpen reports whether any tracked exchange is open right now.
func (ms *MarketScheduler) AnyMarketOpen() bool {
	now := time.Now().UTC()

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for _, cal := range ms.Calendars {
		if cal.IsOpenOnMinute(now) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// CalendarFor returns the calendar tracked for a ticker, or a fresh one.
func (ms *MarketScheduler) CalendarFor(ticker string) *TradingCalendar {
	ms.mu.RLock()
	cal, ok := ms.Calendars[ticker]
	ms.mu.RUnlock()

	if ok {
		return cal
	}
	return GetCalendar(ticker)
}
