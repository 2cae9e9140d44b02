package models

import "time"

// -----------------------------------------------------------------------------
// Historical series
// -----------------------------------------------------------------------------

// MDailyBar is one row of the daily gold series for a ticker: close plus the
// indicator columns the warehouse carries. Indicator fields are pointers so a
// not-yet-warm value serializes as null instead of a fake zero.
type MDailyBar struct {
	Ticker      string   `json:"ticker"`
	TradeDate   string   `json:"trade_date"` // "2006-01-02"
	Close       float64  `json:"close"`
	TotalVolume float64  `json:"total_volume,omitempty"`
	DailyReturn *float64 `json:"daily_return,omitempty"`
	PrevClose   *float64 `json:"prev_close,omitempty"`
	MA20        *float64 `json:"ma_20,omitempty"`
	MA50        *float64 `json:"ma_50,omitempty"`
	RSI14       *float64 `json:"rsi_14,omitempty"`
	BBUpper     *float64 `json:"bb_upper,omitempty"`
	BBMiddle    *float64 `json:"bb_middle,omitempty"`
	BBLower     *float64 `json:"bb_lower,omitempty"`
	MACDLine    *float64 `json:"macd_line,omitempty"`
	MACDSignal  *float64 `json:"macd_signal,omitempty"`
	MACDHist    *float64 `json:"macd_histogram,omitempty"`
}

// -----------------------------------------------------------------------------

// Date parses TradeDate as a UTC calendar day.
func (b MDailyBar) Date() (time.Time, error) {
	return time.Parse("2006-01-02", b.TradeDate)
}

// -----------------------------------------------------------------------------

// MSeriesPoint is the chart currency: one time/price/volume sample. Both the
// intraday baseline and the daily closes are converted to this shape before
// reconciliation. Immutable once fetched for a given range; the reconciler
// derives new slices, it never mutates a baseline in place.
type MSeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume,omitempty"`
	PrevClose *float64  `json:"prev_close,omitempty"`
	IsLive    bool      `json:"is_live,omitempty"`
}

// -----------------------------------------------------------------------------

// MDailyCandle is a raw provider daily bar before indicator enrichment.
type MDailyCandle struct {
	Date   time.Time
	Close  float64
	Volume float64
}

// -----------------------------------------------------------------------------

// MIntradaySeries is the /api/intraday-history response: today's ordered
// minute points for one ticker plus the authoritative previous close, when
// the provider supplied one.
type MIntradaySeries struct {
	Ticker    string         `json:"ticker"`
	AssetType string         `json:"asset_type"`
	Points    []MSeriesPoint `json:"points"`
	PrevClose *float64       `json:"prev_close,omitempty"`
}
