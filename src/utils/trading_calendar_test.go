package utils

import (
	"testing"
	"time"

	"market-pulse/src/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger { return logger.NewLogger("ERROR", "test") }

// -----------------------------------------------------------------------------

func TestGetCalendarSuffixMapping(t *testing.T) {
	us := GetCalendar("AAPL")
	require.NotNil(t, us)
	require.NotNil(t, us.Location)

	london := GetCalendar("VOD.L")
	require.NotNil(t, london)
	require.NotNil(t, london.Location)

	// Different venues resolve to different zones.
	winter := time.Date(2026, 2, 4, 12, 0, 0, 0, time.UTC)
	_, usOffset := winter.In(us.Location).Zone()
	_, lonOffset := winter.In(london.Location).Zone()
	assert.NotEqual(t, usOffset, lonOffset)
}

// -----------------------------------------------------------------------------

func TestSessionWindowWinter(t *testing.T) {
	cal := GetCalendar("AAPL")
	// Wednesday 2026-02-04, New York on EST (UTC-5).
	start, end := cal.SessionWindow(time.Date(2026, 2, 4, 18, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2026, 2, 4, 14, 30, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, time.Date(2026, 2, 4, 21, 0, 0, 0, time.UTC), end.UTC())
}

func TestSessionWindowSummerDST(t *testing.T) {
	cal := GetCalendar("AAPL")
	// Wednesday 2026-07-08, New York on EDT (UTC-4).
	start, end := cal.SessionWindow(time.Date(2026, 7, 8, 18, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2026, 7, 8, 13, 30, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, time.Date(2026, 7, 8, 20, 0, 0, 0, time.UTC), end.UTC())
}

// -----------------------------------------------------------------------------

func TestIsTradingDayWeekend(t *testing.T) {
	cal := GetCalendar("AAPL")

	saturday := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	assert.False(t, cal.IsTradingDay(saturday))

	wednesday := time.Date(2026, 2, 4, 12, 0, 0, 0, time.UTC)
	assert.True(t, cal.IsTradingDay(wednesday))
}

// -----------------------------------------------------------------------------

func TestIsOpenOnMinute(t *testing.T) {
	cal := GetCalendar("AAPL")

	// 15:00 UTC on a Wednesday in winter = 10:00 New York: open.
	assert.True(t, cal.IsOpenOnMinute(time.Date(2026, 2, 4, 15, 0, 0, 0, time.UTC)))

	// 03:00 New York: closed.
	assert.False(t, cal.IsOpenOnMinute(time.Date(2026, 2, 4, 8, 0, 0, 0, time.UTC)))

	// Saturday: closed all day.
	assert.False(t, cal.IsOpenOnMinute(time.Date(2026, 2, 7, 15, 0, 0, 0, time.UTC)))
}

// -----------------------------------------------------------------------------

func TestMarketSchedulerAggregates(t *testing.T) {
	log := testLogger()
	ms := NewMarketScheduler([]string{"AAPL", "GOOGL"}, log)

	require.Len(t, ms.Calendars, 2)
	assert.NotNil(t, ms.CalendarFor("AAPL"))
	// Unknown tickers fall back to a fresh calendar rather than nil.
	assert.NotNil(t, ms.CalendarFor("UNTRACKED"))
}
