package models

import "time"

// -----------------------------------------------------------------------------
// Canonical live tick
// -----------------------------------------------------------------------------

// Asset classes carried on a tick. Crypto trades continuously; stocks follow
// exchange sessions.
const (
	AssetStock  = "stock"
	AssetCrypto = "crypto"
)

// MTick is one normalized live price update for a single ticker. It always
// describes the latest known state at Timestamp; consumers retain only the
// most recent tick per ticker, never a history.
type MTick struct {
	Ticker      string  `json:"ticker"`
	Price       float64 `json:"price"`
	PrevClose   float64 `json:"prev_close,omitempty"`
	DailyReturn float64 `json:"daily_return,omitempty"`
	Timestamp   string  `json:"timestamp"` // ISO-8601, UTC instant
	Type        string  `json:"type"`      // AssetStock or AssetCrypto
	Volume      float64 `json:"volume,omitempty"`
	Volume24h   float64 `json:"volume_24h,omitempty"`
	MarketCap   float64 `json:"market_cap,omitempty"`
	Source      string  `json:"source,omitempty"`
}

// -----------------------------------------------------------------------------

// Time parses the tick timestamp as a UTC instant.
func (t MTick) Time() (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, t.Timestamp)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}

// -----------------------------------------------------------------------------

// IsContinuous reports whether the asset trades 24/7.
func (t MTick) IsContinuous() bool {
	return t.Type == AssetCrypto
}
