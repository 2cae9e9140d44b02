package storage

import (
	"path/filepath"
	"testing"
	"time"

	"market-pulse/src/logger"
	"market-pulse/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()

	cfg := &models.MConfig{}
	cfg.Storage.DBType = "sqlite"
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "test.db")
	cfg.History.RetentionDays = 7

	db, err := NewSQLiteDB(cfg, logger.NewLogger("ERROR", "test"))
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	t.Cleanup(func() { db.Close() })
	return db
}

func fp(v float64) *float64 { return &v }

// -----------------------------------------------------------------------------

func TestSaveDailyBarsUpsert(t *testing.T) {
	db := newTestDB(t)

	bars := []models.MDailyBar{
		{Ticker: "AAPL", TradeDate: "2026-02-03", Close: 100, TotalVolume: 1e6},
		{Ticker: "AAPL", TradeDate: "2026-02-04", Close: 101, TotalVolume: 2e6, DailyReturn: fp(1.0), PrevClose: fp(100)},
	}
	require.NoError(t, db.SaveDailyBars(bars))

	// Second write for the same day replaces, not duplicates.
	bars[1].Close = 102
	require.NoError(t, db.SaveDailyBars(bars[1:]))

	history, err := db.DailyHistory("AAPL", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2026-02-03", history[0].TradeDate)
	assert.Equal(t, 102.0, history[1].Close)
	require.NotNil(t, history[1].PrevClose)
	assert.Equal(t, 100.0, *history[1].PrevClose)
	assert.Nil(t, history[0].RSI14)
}

// -----------------------------------------------------------------------------

func TestDailyHistoryLimitsToMostRecent(t *testing.T) {
	db := newTestDB(t)

	var bars []models.MDailyBar
	for i := 1; i <= 5; i++ {
		bars = append(bars, models.MDailyBar{
			Ticker:    "AAPL",
			TradeDate: time.Date(2026, 2, i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			Close:     float64(100 + i),
		})
	}
	require.NoError(t, db.SaveDailyBars(bars))

	history, err := db.DailyHistory("AAPL", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	// Ascending order, trimmed from the oldest end.
	assert.Equal(t, "2026-02-03", history[0].TradeDate)
	assert.Equal(t, "2026-02-05", history[2].TradeDate)
}

// -----------------------------------------------------------------------------

func TestDashboardSummaryPreservesRequestOrder(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.SaveDailyBars([]models.MDailyBar{
		{Ticker: "AAPL", TradeDate: "2026-02-03", Close: 100},
		{Ticker: "AAPL", TradeDate: "2026-02-04", Close: 105, RSI14: fp(61.2)},
		{Ticker: "BTC", TradeDate: "2026-02-04", Close: 50000},
	}))

	rows, err := db.DashboardSummary([]string{"BTC", "AAPL", "MISSING"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "BTC", rows[0].Ticker)
	assert.Equal(t, "AAPL", rows[1].Ticker)
	assert.Equal(t, 105.0, rows[1].Close)
	require.NotNil(t, rows[1].RSI14)
}

// -----------------------------------------------------------------------------

func TestSaveTicksAndCleanup(t *testing.T) {
	db := newTestDB(t)

	old := time.Now().UTC().AddDate(0, 0, -30)
	fresh := time.Now().UTC()

	ticks := []models.MTick{
		{Ticker: "AAPL", Price: 100, Timestamp: old.Format(time.RFC3339), Source: "yahoo"},
		{Ticker: "AAPL", Price: 101, Timestamp: fresh.Format(time.RFC3339), Source: "yahoo"},
		{Ticker: "AAPL", Price: 1, Timestamp: "garbage", Source: "yahoo"},
	}
	require.NoError(t, db.SaveTicks(ticks))

	var count int
	require.NoError(t, db.DB.QueryRow("SELECT COUNT(*) FROM tick_archive").Scan(&count))
	assert.Equal(t, 2, count)

	require.NoError(t, db.CleanupOldData())
	require.NoError(t, db.DB.QueryRow("SELECT COUNT(*) FROM tick_archive").Scan(&count))
	assert.Equal(t, 1, count)
}
