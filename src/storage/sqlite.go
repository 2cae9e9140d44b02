package storage

import (
	"database/sql"
	"fmt"
	"time"

	"market-pulse/src/logger"
	"market-pulse/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*SQLiteDB, error) {
	return &SQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) createTables() error {
	// gold_daily holds one enriched row per ticker and trading day. It
	// survives restarts; the seeder upserts over it.
	query := `
		CREATE TABLE IF NOT EXISTS gold_daily (
			ticker TEXT,
			trade_date TEXT,
			close REAL,
			total_volume REAL,
			daily_return REAL,
			prev_close REAL,
			ma_20 REAL,
			ma_50 REAL,
			rsi_14 REAL,
			bb_upper REAL,
			bb_middle REAL,
			bb_lower REAL,
			macd_line REAL,
			macd_signal REAL,
			macd_histogram REAL,
			PRIMARY KEY (ticker, trade_date)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create gold_daily: %w", err)
	}

	// tick_archive is append-only and trimmed by retention.
	query = `
		CREATE TABLE IF NOT EXISTS tick_archive (
			ticker TEXT,
			timestamp INTEGER,
			price REAL,
			prev_close REAL,
			daily_return REAL,
			volume REAL,
			source TEXT
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create tick_archive: %w", err)
	}

	query = `CREATE INDEX IF NOT EXISTS idx_tick_archive_ticker_ts ON tick_archive (ticker, timestamp);`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to index tick_archive: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) SaveDailyBars(bars []models.MDailyBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO gold_daily (ticker, trade_date, close, total_volume, daily_return, prev_close,
			ma_20, ma_50, rsi_14, bb_upper, bb_middle, bb_lower, macd_line, macd_signal, macd_histogram)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (ticker, trade_date) DO UPDATE SET
			close = excluded.close,
			total_volume = excluded.total_volume,
			daily_return = excluded.daily_return,
			prev_close = excluded.prev_close,
			ma_20 = excluded.ma_20,
			ma_50 = excluded.ma_50,
			rsi_14 = excluded.rsi_14,
			bb_upper = excluded.bb_upper,
			bb_middle = excluded.bb_middle,
			bb_lower = excluded.bb_lower,
			macd_line = excluded.macd_line,
			macd_signal = excluded.macd_signal,
			macd_histogram = excluded.macd_histogram
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range bars {
		_, err := stmt.Exec(b.Ticker, b.TradeDate, b.Close, b.TotalVolume, b.DailyReturn, b.PrevClose,
			b.MA20, b.MA50, b.RSI14, b.BBUpper, b.BBMiddle, b.BBLower, b.MACDLine, b.MACDSignal, b.MACDHist)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) SaveTicks(ticks []models.MTick) error {
	if len(ticks) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO tick_archive (ticker, timestamp, price, prev_close, daily_return, volume, source)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range ticks {
		ts, err := t.Time()
		if err != nil {
			continue
		}
		_, err = stmt.Exec(t.Ticker, ts.Unix(), t.Price, t.PrevClose, t.DailyReturn, t.Volume, t.Source)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) DashboardSummary(tickers []string) ([]models.MDashboardRow, error) {
	stmt, err := d.DB.Prepare(`
		SELECT ticker, trade_date, close, daily_return, rsi_14
		FROM gold_daily
		WHERE ticker = ?
		ORDER BY trade_date DESC
		LIMIT 1
	`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var rows []models.MDashboardRow
	for _, ticker := range tickers {
		var r models.MDashboardRow
		err := stmt.QueryRow(ticker).Scan(&r.Ticker, &r.TradeDate, &r.Close, &r.DailyReturn, &r.RSI14)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) DailyHistory(ticker string, days int) ([]models.MDailyBar, error) {
	rows, err := d.DB.Query(`
		SELECT ticker, trade_date, close, total_volume, daily_return, prev_close,
			ma_20, ma_50, rsi_14, bb_upper, bb_middle, bb_lower, macd_line, macd_signal, macd_histogram
		FROM (
			SELECT * FROM gold_daily WHERE ticker = ? ORDER BY trade_date DESC LIMIT ?
		)
		ORDER BY trade_date ASC
	`, ticker, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDailyBars(rows)
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) CleanupOldData() error {
	retentionDays := d.Config.History.RetentionDays
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	d.Logger.Info("Cleaning up ticks older than %d days (timestamp < %d)...", retentionDays, cutoff)

	if _, err := d.DB.Exec("DELETE FROM tick_archive WHERE timestamp < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup tick_archive error: %v", err)
	}

	d.Logger.Info("Cleanup completed")
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------

// scanDailyBars maps a gold_daily result set onto bars; shared by both
// backends since the column order is fixed.
func scanDailyBars(rows *sql.Rows) ([]models.MDailyBar, error) {
	var bars []models.MDailyBar
	for rows.Next() {
		var b models.MDailyBar
		err := rows.Scan(&b.Ticker, &b.TradeDate, &b.Close, &b.TotalVolume, &b.DailyReturn, &b.PrevClose,
			&b.MA20, &b.MA50, &b.RSI14, &b.BBUpper, &b.BBMiddle, &b.BBLower, &b.MACDLine, &b.MACDSignal, &b.MACDHist)
		if err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}
