package analysis

import "market-pulse/src/models"

// -----------------------------------------------------------------------------

// BuildDailyBars enriches raw provider candles into gold rows: per-day return
// and previous close, plus the full indicator set. Input must be ascending by
// date; the provider fetch already guarantees that.
func BuildDailyBars(ticker string, candles []models.MDailyCandle) []models.MDailyBar {
	if len(candles) == 0 {
		return nil
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	ma20 := SMA(closes, 20)
	ma50 := SMA(closes, 50)
	rsi14 := RSI(closes, 14)
	bbUpper, bbMiddle, bbLower := Bollinger(closes, 20, 2.0)
	macdLine, macdSignal, macdHist := MACD(closes)

	bars := make([]models.MDailyBar, len(candles))
	for i, c := range candles {
		bar := models.MDailyBar{
			Ticker:      ticker,
			TradeDate:   c.Date.UTC().Format("2006-01-02"),
			Close:       c.Close,
			TotalVolume: c.Volume,
			MA20:        ma20[i],
			MA50:        ma50[i],
			RSI14:       rsi14[i],
			BBUpper:     bbUpper[i],
			BBMiddle:    bbMiddle[i],
			BBLower:     bbLower[i],
			MACDLine:    macdLine[i],
			MACDSignal:  macdSignal[i],
			MACDHist:    macdHist[i],
		}
		if i > 0 && closes[i-1] > 0 {
			prev := closes[i-1]
			ret := (c.Close - prev) / prev * 100.0
			bar.PrevClose = &prev
			bar.DailyReturn = &ret
		}
		bars[i] = bar
	}
	return bars
}
