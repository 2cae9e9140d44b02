package storage

import (
	"database/sql"
	"fmt"
	"time"

	"market-pulse/src/logger"
	"market-pulse/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	return &PostgresDB{
		Config: cfg,
		Schema: cfg.Name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."gold_daily" (
			ticker TEXT,
			trade_date TEXT,
			close DOUBLE PRECISION,
			total_volume DOUBLE PRECISION,
			daily_return DOUBLE PRECISION,
			prev_close DOUBLE PRECISION,
			ma_20 DOUBLE PRECISION,
			ma_50 DOUBLE PRECISION,
			rsi_14 DOUBLE PRECISION,
			bb_upper DOUBLE PRECISION,
			bb_middle DOUBLE PRECISION,
			bb_lower DOUBLE PRECISION,
			macd_line DOUBLE PRECISION,
			macd_signal DOUBLE PRECISION,
			macd_histogram DOUBLE PRECISION,
			PRIMARY KEY (ticker, trade_date)
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create gold_daily: %w", err)
	}

	query = fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."tick_archive" (
			ticker TEXT,
			timestamp BIGINT,
			price DOUBLE PRECISION,
			prev_close DOUBLE PRECISION,
			daily_return DOUBLE PRECISION,
			volume DOUBLE PRECISION,
			source TEXT
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create tick_archive: %w", err)
	}

	query = fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_tick_archive_ticker_ts ON "%s"."tick_archive" (ticker, timestamp);`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to index tick_archive: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveDailyBars(bars []models.MDailyBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO "%s"."gold_daily" (ticker, trade_date, close, total_volume, daily_return, prev_close,
			ma_20, ma_50, rsi_14, bb_upper, bb_middle, bb_lower, macd_line, macd_signal, macd_histogram)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (ticker, trade_date) DO UPDATE SET
			close = EXCLUDED.close,
			total_volume = EXCLUDED.total_volume,
			daily_return = EXCLUDED.daily_return,
			prev_close = EXCLUDED.prev_close,
			ma_20 = EXCLUDED.ma_20,
			ma_50 = EXCLUDED.ma_50,
			rsi_14 = EXCLUDED.rsi_14,
			bb_upper = EXCLUDED.bb_upper,
			bb_middle = EXCLUDED.bb_middle,
			bb_lower = EXCLUDED.bb_lower,
			macd_line = EXCLUDED.macd_line,
			macd_signal = EXCLUDED.macd_signal,
			macd_histogram = EXCLUDED.macd_histogram
	`, d.Schema)
	stmt, err := tx.Prepare(query)
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

func (d *PostgresDB) SaveTicks(ticks []models.MTick) error {
	if len(ticks) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO "%s"."tick_archive" (ticker, timestamp, price, prev_close, daily_return, volume, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, d.Schema)
	stmt, err := tx.Prepare(query)
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

func (d *PostgresDB) DashboardSummary(tickers []string) ([]models.MDashboardRow, error) {
	query := fmt.Sprintf(`
		SELECT ticker, trade_date, close, daily_return, rsi_14
		FROM "%s"."gold_daily"
		WHERE ticker = $1
		ORDER BY trade_date DESC
		LIMIT 1
	`, d.Schema)
	stmt, err := d.DB.Prepare(query)
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

func (d *PostgresDB) DailyHistory(ticker string, days int) ([]models.MDailyBar, error) {
	query := fmt.Sprintf(`
		SELECT ticker, trade_date, close, total_volume, daily_return, prev_close,
			ma_20, ma_50, rsi_14, bb_upper, bb_middle, bb_lower, macd_line, macd_signal, macd_histogram
		FROM (
			SELECT * FROM "%s"."gold_daily" WHERE ticker = $1 ORDER BY trade_date DESC LIMIT $2
		) recent
		ORDER BY trade_date ASC
	`, d.Schema)
	rows, err := d.DB.Query(query, ticker, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDailyBars(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CleanupOldData() error {
	retentionDays := d.Config.History.RetentionDays
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	d.Logger.Info("Cleaning up ticks older than %d days (timestamp < %d)...", retentionDays, cutoff)

	query := fmt.Sprintf(`DELETE FROM "%s"."tick_archive" WHERE timestamp < $1`, d.Schema)
	if _, err := d.DB.Exec(query, cutoff); err != nil {
		d.Logger.Error("Cleanup tick_archive error: %v", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
