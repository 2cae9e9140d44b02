package utils

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// Regular session bounds used when the library calendar is unavailable and
// for the intraday chart domain. Exchange-local, DST handled by Location.
const (
	SessionOpenHour    = 9
	SessionOpenMinute  = 30
	SessionCloseHour   = 16
	SessionCloseMinute = 0
)

// -----------------------------------------------------------------------------

// TradingCalendar wraps an exchange calendar (scmhub/calendar, keyed by ISO
// 10383 MIC) for one symbol's listing venue.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Location *time.Location
}

// -----------------------------------------------------------------------------

// GetCalendar resolves a ticker to its exchange calendar by listing suffix.
// Unsuffixed tickers are assumed US (NYSE calendar, which shares holidays
// with NASDAQ for scheduling purposes).
func GetCalendar(ticker string) *TradingCalendar {
	mic := "xnys"
	switch {
	case strings.HasSuffix(ticker, ".L"):
		mic = "xlon"
	case strings.HasSuffix(ticker, ".PA"):
		mic = "xpar"
	case strings.HasSuffix(ticker, ".DE"):
		mic = "xfra"
	case strings.HasSuffix(ticker, ".T"):
		mic = "xtks"
	case strings.HasSuffix(ticker, ".HK"):
		mic = "xhkg"
	case strings.HasSuffix(ticker, ".TO"):
		mic = "xtse"
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}

	if cal == nil {
		// Last resort: Mon-Fri 09:30-16:00 New York.
		nyLoc, err := time.LoadLocation("America/New_York")
		if err != nil {
			nyLoc = time.UTC
		}
		return &TradingCalendar{Fallback: true, Location: nyLoc}
	}

	return &TradingCalendar{Calendar: cal, Location: cal.Loc}
}

// -----------------------------------------------------------------------------

// IsTradingDay reports whether date is a business day on this exchange.
func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	date = date.In(tc.Location)

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific instant.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	t = t.In(tc.Location)

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}
		hour, minute := t.Hour(), t.Minute()
		afterOpen := hour > SessionOpenHour || (hour == SessionOpenHour && minute >= SessionOpenMinute)
		return afterOpen && hour < SessionCloseHour
	}

	return tc.Calendar.IsOpen(t)
}

// -----------------------------------------------------------------------------

// SessionWindow returns the regular session bounds (09:30-16:00 exchange
// local) for the calendar day that `date` falls on in the exchange's zone.
// The zone handles DST; callers must pass the date of the data, never "today"
// by wall clock, or a weekend chart would show an empty window.
func (tc *TradingCalendar) SessionWindow(date time.Time) (time.Time, time.Time) {
	local := date.In(tc.Location)
	y, m, d := local.Date()

	start := time.Date(y, m, d, SessionOpenHour, SessionOpenMinute, 0, 0, tc.Location)
	end := time.Date(y, m, d, SessionCloseHour, SessionCloseMinute, 0, 0, tc.Location)
	return start, end
}
