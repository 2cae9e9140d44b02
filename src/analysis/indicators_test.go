package analysis

import (
	"testing"
	"time"

	"market-pulse/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestSMAWarmupAndValues(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}

	out := SMA(closes, 3)
	require.Len(t, out, 5)
	assert.Nil(t, out[0])
	assert.Nil(t, out[1])
	require.NotNil(t, out[2])
	assert.InDelta(t, 2.0, *out[2], 1e-9)
	assert.InDelta(t, 4.0, *out[4], 1e-9)
}

func TestSMAShortInputAllNil(t *testing.T) {
	out := SMA([]float64{1, 2}, 5)
	for _, v := range out {
		assert.Nil(t, v)
	}
}

// -----------------------------------------------------------------------------

func TestRSIMonotonicSeries(t *testing.T) {
	// Strictly rising closes: no losses, RSI pegs at 100.
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	out := RSI(closes, 14)
	assert.Nil(t, out[13])
	require.NotNil(t, out[14])
	assert.InDelta(t, 100.0, *out[14], 1e-9)
	assert.InDelta(t, 100.0, *out[19], 1e-9)
}

func TestRSIWilderSmoothing(t *testing.T) {
	// Alternating +2/-1 moves keep gains above losses; RSI stays in (50, 100).
	closes := []float64{100}
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			closes = append(closes, closes[len(closes)-1]+2)
		} else {
			closes = append(closes, closes[len(closes)-1]-1)
		}
	}

	out := RSI(closes, 14)
	last := out[len(out)-1]
	require.NotNil(t, last)
	assert.Greater(t, *last, 50.0)
	assert.Less(t, *last, 100.0)
}

// -----------------------------------------------------------------------------

func TestBollingerBandsAroundConstantSeries(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 50
	}

	upper, middle, lower := Bollinger(closes, 20, 2.0)
	require.NotNil(t, middle[24])
	assert.InDelta(t, 50.0, *middle[24], 1e-9)
	// Zero variance collapses the band onto the mean.
	assert.InDelta(t, 50.0, *upper[24], 1e-9)
	assert.InDelta(t, 50.0, *lower[24], 1e-9)
}

// -----------------------------------------------------------------------------

func TestMACDWarmup(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	line, signal, hist := MACD(closes)
	assert.Nil(t, line[24])
	require.NotNil(t, line[25])
	assert.Nil(t, signal[32])
	require.NotNil(t, signal[33])
	require.NotNil(t, hist[33])
	assert.InDelta(t, *line[33]-*signal[33], *hist[33], 1e-9)
}

// -----------------------------------------------------------------------------

func TestBuildDailyBars(t *testing.T) {
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	candles := []models.MDailyCandle{
		{Date: base, Close: 100, Volume: 1e6},
		{Date: base.AddDate(0, 0, 1), Close: 97, Volume: 2e6},
	}

	bars := BuildDailyBars("AAPL", candles)
	require.Len(t, bars, 2)

	assert.Equal(t, "AAPL", bars[0].Ticker)
	assert.Equal(t, "2026-01-05", bars[0].TradeDate)
	assert.Nil(t, bars[0].DailyReturn)

	require.NotNil(t, bars[1].PrevClose)
	assert.Equal(t, 100.0, *bars[1].PrevClose)
	require.NotNil(t, bars[1].DailyReturn)
	assert.InDelta(t, -3.0, *bars[1].DailyReturn, 1e-9)
	// Too short for any indicator to warm up.
	assert.Nil(t, bars[1].MA20)
	assert.Nil(t, bars[1].RSI14)
}
