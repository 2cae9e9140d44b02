package normalizer

import (
	"testing"
	"time"

	"market-pulse/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

// -----------------------------------------------------------------------------

func TestNormalizeStockQuote(t *testing.T) {
	now := time.Date(2026, 2, 4, 15, 30, 0, 0, time.UTC)

	raw := StockQuote{
		Symbol:           "AAPL",
		LastPrice:        fp(97),
		RegularPrevClose: fp(100),
		PrevClose:        fp(101), // after-hours close, must lose to regular
		Volume:           fp(1200),
		MarketTime:       now.Unix(),
	}

	tick, ok := NormalizeStockQuote(raw, now)
	require.True(t, ok)

	assert.Equal(t, "AAPL", tick.Ticker)
	assert.Equal(t, models.AssetStock, tick.Type)
	assert.Equal(t, 97.0, tick.Price)
	assert.Equal(t, 100.0, tick.PrevClose)
	assert.InDelta(t, -3.0, tick.DailyReturn, 1e-9)
	assert.Equal(t, 1200.0, tick.Volume)

	ts, err := tick.Time()
	require.NoError(t, err)
	assert.True(t, ts.Equal(now))
}

// -----------------------------------------------------------------------------

func TestNormalizeStockQuoteFallsBackToPlainPrevClose(t *testing.T) {
	tick, ok := NormalizeStockQuote(StockQuote{
		Symbol:    "NFLX",
		LastPrice: fp(500),
		PrevClose: fp(480),
	}, time.Now())
	require.True(t, ok)
	assert.Equal(t, 480.0, tick.PrevClose)
}

// -----------------------------------------------------------------------------

func TestNormalizeStockQuoteSkipsMissingPrice(t *testing.T) {
	cases := []StockQuote{
		{Symbol: "AAPL"},                    // no price at all
		{Symbol: "AAPL", LastPrice: fp(0)},  // zero price
		{Symbol: "AAPL", LastPrice: fp(-1)}, // negative price
		{Symbol: "", LastPrice: fp(100)},    // no symbol
	}
	for _, raw := range cases {
		_, ok := NormalizeStockQuote(raw, time.Now())
		assert.False(t, ok)
	}
}

// -----------------------------------------------------------------------------

func TestNormalizeStockQuoteWithoutPrevClose(t *testing.T) {
	tick, ok := NormalizeStockQuote(StockQuote{
		Symbol:    "GOOGL",
		LastPrice: fp(150),
	}, time.Now())
	require.True(t, ok)
	assert.Zero(t, tick.PrevClose)
	assert.Zero(t, tick.DailyReturn)
}

// -----------------------------------------------------------------------------

func TestNormalizeCryptoQuote(t *testing.T) {
	now := time.Date(2026, 2, 4, 15, 30, 0, 0, time.UTC)

	tick, ok := NormalizeCryptoQuote("BTC", CryptoQuote{
		USD:          fp(50000),
		USD24hChange: fp(25),
		USD24hVol:    fp(1e9),
		USDMarketCap: fp(1e12),
	}, now)
	require.True(t, ok)

	assert.Equal(t, "BTC", tick.Ticker)
	assert.Equal(t, models.AssetCrypto, tick.Type)
	assert.True(t, tick.IsContinuous())
	assert.Equal(t, 50000.0, tick.Price)
	assert.Equal(t, 25.0, tick.DailyReturn)
	// prev = 50000 / 1.25
	assert.InDelta(t, 40000.0, tick.PrevClose, 1e-9)
	assert.Equal(t, 1e9, tick.Volume24h)
	assert.Equal(t, 1e12, tick.MarketCap)
}

// -----------------------------------------------------------------------------

func TestNormalizeCryptoQuoteGuardsDegenerateChange(t *testing.T) {
	// A -100% 24h change would divide by zero; prev_close must stay unset.
	tick, ok := NormalizeCryptoQuote("ETH", CryptoQuote{
		USD:          fp(3000),
		USD24hChange: fp(-100),
	}, time.Now())
	require.True(t, ok)
	assert.Zero(t, tick.PrevClose)
	assert.Equal(t, -100.0, tick.DailyReturn)
}

// -----------------------------------------------------------------------------

func TestNormalizeCryptoQuoteSkipsMissingPrice(t *testing.T) {
	_, ok := NormalizeCryptoQuote("BTC", CryptoQuote{}, time.Now())
	assert.False(t, ok)

	_, ok = NormalizeCryptoQuote("", CryptoQuote{USD: fp(100)}, time.Now())
	assert.False(t, ok)
}
