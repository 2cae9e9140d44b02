package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"market-pulse/src/helpers"
	"market-pulse/src/interfaces"
	"market-pulse/src/logger"
	"market-pulse/src/models"
	"market-pulse/src/normalizer"
)

const chartURL = "https://query1.finance.yahoo.com/v8/finance/chart/%s"

// Per-cycle fan-out cap against provider rate limits.
const maxConcurrentFetches = 4

// -----------------------------------------------------------------------------

// Source polls Yahoo Finance chart data for exchange-traded tickers and
// serves the intraday/daily history fetches for the whole universe (crypto
// history goes through the BTC-USD style pair symbols).
type Source struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	Network interfaces.INetworkManager
	Breaker *helpers.CircuitBreaker
}

// -----------------------------------------------------------------------------

func NewSource(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *Source {
	return &Source{
		Config:  cfg,
		Logger:  log,
		Network: netMgr,
		Breaker: helpers.NewCircuitBreaker(
			cfg.Poll.BreakerThreshold,
			time.Duration(cfg.Poll.BreakerRecoverySec)*time.Second,
		),
	}
}

// -----------------------------------------------------------------------------

func (s *Source) Name() string { return "yahoo" }

func (s *Source) AssetType() string { return models.AssetStock }

func (s *Source) Tickers() []string { return s.Config.Universe.Stocks }

// -----------------------------------------------------------------------------

// Poll fetches the latest quote for every stock ticker concurrently. A ticker
// whose circuit is open is skipped this cycle; individual failures are
// recorded and dropped so one flaky symbol never stalls the rest.
func (s *Source) Poll(ctx context.Context) ([]models.MTick, error) {
	tickers := s.Tickers()
	if len(tickers) == 0 {
		return nil, nil
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		ticks []models.MTick
		errs  []error
	)
	sem := make(chan struct{}, maxConcurrentFetches)

	for _, ticker := range tickers {
		if s.Breaker.IsOpen(ticker) {
			s.Logger.Debug("Circuit open for %s, skipping cycle", ticker)
			continue
		}

		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			tick, err := s.fetchQuote(ctx, ticker)
			if err != nil {
				s.Breaker.RecordFailure(ticker)
				s.Logger.Warning("Quote fetch failed for %s: %v", ticker, err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}

			s.Breaker.RecordSuccess(ticker)
			mu.Lock()
			ticks = append(ticks, tick)
			mu.Unlock()
		}(ticker)
	}
	wg.Wait()

	if len(ticks) == 0 && len(errs) > 0 {
		for _, err := range errs {
			if helpers.IsRateLimit(err) {
				return nil, err
			}
		}
		return nil, fmt.Errorf("all quote fetches failed: %w", errs[0])
	}

	return ticks, nil
}

// -----------------------------------------------------------------------------

// fetchQuote pulls the 1m chart for the day and reduces it to a single quote:
// the meta block carries the regular market price and official previous close.
func (s *Source) fetchQuote(ctx context.Context, ticker string) (models.MTick, error) {
	resp, err := s.fetchChart(ctx, ticker, "1d", "1m")
	if err != nil {
		return models.MTick{}, err
	}

	meta := resp.meta()
	raw := normalizer.StockQuote{
		Symbol:     ticker,
		MarketTime: meta.RegularMarketTime,
	}
	if meta.RegularMarketPrice > 0 {
		price := meta.RegularMarketPrice
		raw.LastPrice = &price
	}
	if meta.ChartPreviousClose > 0 {
		prev := meta.ChartPreviousClose
		raw.RegularPrevClose = &prev
	}
	if vol := resp.lastVolume(); vol != nil {
		raw.Volume = vol
	}

	tick, ok := normalizer.NormalizeStockQuote(raw, time.Now())
	if !ok {
		return models.MTick{}, &helpers.DataSourceError{MarketPulseError: helpers.MarketPulseError{
			Message: fmt.Sprintf("no usable price for %s", ticker),
		}}
	}
	return tick, nil
}

// -----------------------------------------------------------------------------

// FetchIntraday returns today's 1-minute series for a dashboard ticker plus
// the authoritative previous close. Crypto tickers are translated to their
// Yahoo pair symbol; the points keep the dashboard ticker.
func (s *Source) FetchIntraday(ctx context.Context, ticker string) (models.MIntradaySeries, error) {
	symbol, assetType := s.resolveSymbol(ticker)

	resp, err := s.fetchChart(ctx, symbol, "1d", "1m")
	if err != nil {
		return models.MIntradaySeries{}, err
	}

	series := models.MIntradaySeries{Ticker: ticker, AssetType: assetType}
	if prev := resp.meta().ChartPreviousClose; prev > 0 {
		series.PrevClose = &prev
	}

	for _, pt := range resp.points() {
		p := models.MSeriesPoint{
			Timestamp: pt.ts,
			Price:     pt.close,
			Volume:    pt.volume,
			PrevClose: series.PrevClose,
		}
		series.Points = append(series.Points, p)
	}

	s.Logger.Debug("Fetched intraday %s: %d points", ticker, len(series.Points))
	return series, nil
}

// -----------------------------------------------------------------------------

// FetchDailyHistory returns ascending daily candles covering at least the
// last `days` days. The chart API only takes fixed range tokens, so the
// smallest covering range is requested and the caller trims.
func (s *Source) FetchDailyHistory(ctx context.Context, ticker string, days int) ([]models.MDailyCandle, error) {
	symbol, _ := s.resolveSymbol(ticker)

	resp, err := s.fetchChart(ctx, symbol, rangeToken(days), "1d")
	if err != nil {
		return nil, err
	}

	var candles []models.MDailyCandle
	for _, pt := range resp.points() {
		candles = append(candles, models.MDailyCandle{
			Date:   pt.ts,
			Close:  pt.close,
			Volume: pt.volume,
		})
	}
	return candles, nil
}

// -----------------------------------------------------------------------------

// rangeToken maps a day count to the smallest chart API range covering it.
func rangeToken(days int) string {
	switch {
	case days <= 5:
		return "5d"
	case days <= 30:
		return "1mo"
	case days <= 91:
		return "3mo"
	case days <= 182:
		return "6mo"
	case days <= 365:
		return "1y"
	case days <= 730:
		return "2y"
	default:
		return "5y"
	}
}

// -----------------------------------------------------------------------------

func (s *Source) resolveSymbol(ticker string) (string, string) {
	if ct, ok := s.Config.CryptoByTicker(ticker); ok && ct.YahooSymbol != "" {
		return ct.YahooSymbol, models.AssetCrypto
	}
	return ticker, models.AssetStock
}

// -----------------------------------------------------------------------------

func (s *Source) fetchChart(ctx context.Context, symbol, rangeStr, interval string) (*chartResponse, error) {
	params := map[string]string{
		"interval":       interval,
		"range":          rangeStr,
		"includePrePost": "false",
	}

	body, err := s.Network.Get(ctx, fmt.Sprintf(chartURL, symbol), params)
	if err != nil {
		return nil, err
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &helpers.DecodeError{MarketPulseError: helpers.MarketPulseError{
			Message: fmt.Sprintf("chart response for %s", symbol), Cause: err,
		}}
	}

	if resp.Chart.Error != nil {
		return nil, &helpers.DataSourceError{MarketPulseError: helpers.MarketPulseError{
			Message: fmt.Sprintf("yahoo api error for %s: %s - %s",
				symbol, resp.Chart.Error.Code, resp.Chart.Error.Description),
		}}
	}
	if len(resp.Chart.Result) == 0 {
		return nil, &helpers.DataSourceError{MarketPulseError: helpers.MarketPulseError{
			Message: fmt.Sprintf("no result in response for %s", symbol),
		}}
	}

	return &resp, nil
}

// -----------------------------------------------------------------------------
// Chart response decoding
// -----------------------------------------------------------------------------

type chartMeta struct {
	Symbol             string  `json:"symbol"`
	RegularMarketTime  int64   `json:"regularMarketTime"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	ChartPreviousClose float64 `json:"chartPreviousClose"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta       chartMeta `json:"meta"`
			Timestamp  []int64   `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					// Pointers to survive nulls inside the arrays.
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartPoint struct {
	ts     time.Time
	close  float64
	volume float64
}

// -----------------------------------------------------------------------------

func (r *chartResponse) meta() chartMeta {
	return r.Chart.Result[0].Meta
}

// -----------------------------------------------------------------------------

// points flattens the timestamp/close/volume arrays, drops null or
// non-positive samples and returns the rest ordered ascending by time.
func (r *chartResponse) points() []chartPoint {
	result := r.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	quote := result.Indicators.Quote[0]
	if len(result.Timestamp) != len(quote.Close) {
		return nil
	}

	var pts []chartPoint
	for i, ts := range result.Timestamp {
		if quote.Close[i] == nil || *quote.Close[i] <= 0 {
			continue
		}
		pt := chartPoint{
			ts:    time.Unix(ts, 0).UTC(),
			close: *quote.Close[i],
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil && *quote.Volume[i] >= 0 {
			pt.volume = *quote.Volume[i]
		}
		pts = append(pts, pt)
	}

	sort.Slice(pts, func(i, j int) bool { return pts[i].ts.Before(pts[j].ts) })
	return pts
}

// -----------------------------------------------------------------------------

func (r *chartResponse) lastVolume() *float64 {
	pts := r.points()
	for i := len(pts) - 1; i >= 0; i-- {
		if pts[i].volume > 0 {
			v := pts[i].volume
			return &v
		}
	}
	return nil
}
