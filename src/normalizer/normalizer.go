package normalizer

import (
	"time"

	"market-pulse/src/models"
)

// -----------------------------------------------------------------------------
// Tick Normalizer
//
// Provider payloads are loosely shaped: fields go missing, nulls appear mid
// stream. Everything is converted to the canonical MTick right here at the
// boundary; nothing downstream branches on provider-specific shape. A payload
// without a usable price yields ok=false (skip), never an error that could
// stall the poll loop.
// -----------------------------------------------------------------------------

// StockQuote is the raw quote shape for an exchange-traded symbol. Pointers
// model fields the provider may omit.
type StockQuote struct {
	Symbol           string
	LastPrice        *float64
	RegularPrevClose *float64 // official session close, excludes after-hours
	PrevClose        *float64
	Volume           *float64
	MarketTime       int64 // unix seconds; 0 means unknown
}

// CryptoQuote is the raw CoinGecko simple-price entry for one coin.
type CryptoQuote struct {
	USD          *float64 `json:"usd"`
	USD24hChange *float64 `json:"usd_24h_change"`
	USD24hVol    *float64 `json:"usd_24h_vol"`
	USDMarketCap *float64 `json:"usd_market_cap"`
}

// -----------------------------------------------------------------------------

// NormalizeStockQuote converts a raw stock quote into a canonical tick.
// The regular-market previous close is preferred over the plain previous
// close: it is the official 16:00 session close and matches what price apps
// display for daily change.
func NormalizeStockQuote(raw StockQuote, now time.Time) (models.MTick, bool) {
	if raw.Symbol == "" || raw.LastPrice == nil || *raw.LastPrice <= 0 {
		return models.MTick{}, false
	}

	tick := models.MTick{
		Ticker: raw.Symbol,
		Price:  *raw.LastPrice,
		Type:   models.AssetStock,
		Source: "yahoo_realtime",
	}

	prev := raw.RegularPrevClose
	if prev == nil {
		prev = raw.PrevClose
	}
	if prev != nil && *prev > 0 {
		tick.PrevClose = *prev
		tick.DailyReturn = (tick.Price - *prev) / *prev * 100
	}

	if raw.Volume != nil && *raw.Volume >= 0 {
		tick.Volume = *raw.Volume
	}

	ts := now.UTC()
	if raw.MarketTime > 0 {
		ts = time.Unix(raw.MarketTime, 0).UTC()
	}
	tick.Timestamp = ts.Format(time.RFC3339)

	return tick, true
}

// -----------------------------------------------------------------------------

// NormalizeCryptoQuote converts a CoinGecko entry into a canonical tick.
// CoinGecko has no previous-close field; it is derived from the 24h change:
// price = prev * (1 + change/100)  =>  prev = price / (1 + change/100).
func NormalizeCryptoQuote(ticker string, raw CryptoQuote, now time.Time) (models.MTick, bool) {
	if ticker == "" || raw.USD == nil || *raw.USD <= 0 {
		return models.MTick{}, false
	}

	tick := models.MTick{
		Ticker:    ticker,
		Price:     *raw.USD,
		Type:      models.AssetCrypto,
		Source:    "coingecko_realtime",
		Timestamp: now.UTC().Format(time.RFC3339),
	}

	if raw.USD24hChange != nil {
		change := *raw.USD24hChange
		tick.DailyReturn = change
		if denom := 1 + change/100; denom > 0 {
			tick.PrevClose = tick.Price / denom
		}
	}
	if raw.USD24hVol != nil && *raw.USD24hVol >= 0 {
		tick.Volume24h = *raw.USD24hVol
	}
	if raw.USDMarketCap != nil && *raw.USDMarketCap > 0 {
		tick.MarketCap = *raw.USDMarketCap
	}

	return tick, true
}
