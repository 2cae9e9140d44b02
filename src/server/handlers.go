package server

import (
	"net/http"
	"strconv"
	"time"

	"market-pulse/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// REST Handlers
// -----------------------------------------------------------------------------

// getDashboard returns the latest warehouse row per configured ticker,
// patched with the live price where the hub holds a fresher tick.
func (s *Server) getDashboard(c *gin.Context) {
	tickers := s.Config.AllTickers()

	rows, err := s.DB.DashboardSummary(tickers)
	if err != nil {
		s.Logger.Error("Dashboard query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dashboard query failed"})
		return
	}

	byTicker := make(map[string]int, len(rows))
	for i := range rows {
		byTicker[rows[i].Ticker] = i
	}

	// Patch in place by index; appending while patching through pointers
	// would let a reallocation strand later writes on the old array.
	var liveOnly []models.MDashboardRow
	for _, ticker := range tickers {
		tick, ok := s.Hub.Latest(ticker)
		if !ok {
			continue
		}
		idx, exists := byTicker[ticker]
		if !exists {
			// No warehouse history yet; the live tick is all we have.
			liveOnly = append(liveOnly, liveRow(tick))
			continue
		}
		row := &rows[idx]
		row.Close = tick.Price
		row.Live = true
		if tick.DailyReturn != 0 || tick.PrevClose > 0 {
			ret := tick.DailyReturn
			row.DailyReturn = &ret
		}
	}
	rows = append(rows, liveOnly...)

	c.JSON(http.StatusOK, gin.H{"rows": rows, "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

func liveRow(tick models.MTick) models.MDashboardRow {
	row := models.MDashboardRow{
		Ticker: tick.Ticker,
		Close:  tick.Price,
		Live:   true,
	}
	if ts, err := tick.Time(); err == nil {
		row.TradeDate = ts.Format("2006-01-02")
	}
	if tick.DailyReturn != 0 || tick.PrevClose > 0 {
		ret := tick.DailyReturn
		row.DailyReturn = &ret
	}
	return row
}

// -----------------------------------------------------------------------------

// getIntradayHistory serves today's minute series for one ticker from the
// cache, previous close included when the provider supplied one.
func (s *Server) getIntradayHistory(c *gin.Context) {
	ticker := c.Query("ticker")
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticker is required"})
		return
	}

	series, ok := s.Cache.Series(ticker)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no intraday data for " + ticker})
		return
	}

	c.JSON(http.StatusOK, series)
}

// -----------------------------------------------------------------------------

// getDailyHistory serves the ascending gold series for one ticker.
func (s *Server) getDailyHistory(c *gin.Context) {
	ticker := c.Query("ticker")
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticker is required"})
		return
	}

	days := s.Config.History.SeedDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = parsed
	}

	bars, err := s.DB.DailyHistory(ticker, days)
	if err != nil {
		s.Logger.Error("Daily history query failed for %s: %v", ticker, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history query failed"})
		return
	}
	if len(bars) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no history for " + ticker})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticker": ticker, "bars": bars})
}

// -----------------------------------------------------------------------------

// postIngest accepts an externally produced tick and feeds it through the
// same path as the pollers: hub fan-out plus intraday cache merge.
func (s *Server) postIngest(c *gin.Context) {
	var tick models.MTick
	if err := c.ShouldBindJSON(&tick); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tick payload"})
		return
	}

	if tick.Ticker == "" || tick.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticker and positive price are required"})
		return
	}
	if tick.Timestamp == "" {
		tick.Timestamp = time.Now().UTC().Format(time.RFC3339)
	} else if _, err := tick.Time(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timestamp must be RFC 3339"})
		return
	}
	if tick.Source == "" {
		tick.Source = "ingest"
	}

	s.Hub.Publish(tick)
	s.Cache.Apply(tick)

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// -----------------------------------------------------------------------------

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": s.Hub.Subscribers(),
		"tickers":     len(s.Config.AllTickers()),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}
