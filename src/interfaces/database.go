package interfaces

import "market-pulse/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for the local warehouse.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveDailyBars upserts a batch of daily gold rows.
	SaveDailyBars(bars []models.MDailyBar) error

	// -----------------------------------------------------------------------------

	// SaveTicks appends normalized ticks to the archive.
	SaveTicks(ticks []models.MTick) error

	// -----------------------------------------------------------------------------

	// DashboardSummary returns the latest gold row per ticker, in the order
	// the tickers were requested.
	DashboardSummary(tickers []string) ([]models.MDashboardRow, error)

	// -----------------------------------------------------------------------------

	// DailyHistory returns the ascending daily series for a ticker, limited
	// to the most recent `days` trading days.
	DailyHistory(ticker string, days int) ([]models.MDailyBar, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData removes archived ticks older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection.
	Close() error
}
