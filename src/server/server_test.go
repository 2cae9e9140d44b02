package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"market-pulse/src/cache"
	"market-pulse/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

// fakeDB serves canned dashboard rows so handler tests stay off disk.
type fakeDB struct {
	rows []models.MDashboardRow
	bars []models.MDailyBar
}

func (f *fakeDB) Initialize() error                      { return nil }
func (f *fakeDB) SaveDailyBars([]models.MDailyBar) error { return nil }
func (f *fakeDB) SaveTicks([]models.MTick) error         { return nil }
func (f *fakeDB) CleanupOldData() error                  { return nil }
func (f *fakeDB) Close() error                           { return nil }

func (f *fakeDB) DashboardSummary(tickers []string) ([]models.MDashboardRow, error) {
	var out []models.MDashboardRow
	for _, t := range tickers {
		for _, r := range f.rows {
			if r.Ticker == t {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (f *fakeDB) DailyHistory(ticker string, days int) ([]models.MDailyBar, error) {
	var out []models.MDailyBar
	for _, b := range f.bars {
		if b.Ticker == ticker {
			out = append(out, b)
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func newTestServer(t *testing.T, db *fakeDB) (*Server, *httptest.Server) {
	t.Helper()

	cfg := &models.MConfig{Name: "test", LogLevel: "ERROR"}
	cfg.Universe.Stocks = []string{"AAPL"}
	cfg.Universe.Crypto = []models.MCryptoTicker{{Ticker: "BTC", CoinGeckoID: "bitcoin", YahooSymbol: "BTC-USD"}}
	cfg.Stream.HeartbeatSeconds = 1
	cfg.Stream.SubscriberBuffer = 16
	cfg.History.SeedDays = 365
	cfg.History.IntradayCapacity = 64

	log := testLogger()
	hub := NewHub(cfg.Stream.SubscriberBuffer, log)
	go hub.Run()
	t.Cleanup(hub.Stop)

	s := NewServer(cfg, hub, cache.NewIntradayCache(cfg.History.IntradayCapacity, log), db, log)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

// -----------------------------------------------------------------------------

func TestStreamDeliversFramedTicks(t *testing.T) {
	s, ts := newTestServer(t, &fakeDB{})

	resp, err := http.Get(ts.URL + models.StreamPath)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, models.StreamContentType, resp.Header.Get("Content-Type"))

	// The subscriber is attached before Publish returns, so the tick cannot
	// race the subscription.
	waitForSubscribers(t, s.Hub, 1)
	s.Hub.Publish(tickAt("AAPL", time.Now(), 123.45))

	reader := bufio.NewReader(resp.Body)
	line := readEventLine(t, reader)
	require.True(t, strings.HasPrefix(line, models.StreamDataPrefix))

	var tick models.MTick
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, models.StreamDataPrefix)), &tick))
	assert.Equal(t, "AAPL", tick.Ticker)
	assert.Equal(t, 123.45, tick.Price)
}

// -----------------------------------------------------------------------------

func TestStreamHeartbeatWithoutTraffic(t *testing.T) {
	s, ts := newTestServer(t, &fakeDB{})
	_ = s

	resp, err := http.Get(ts.URL + models.StreamPath)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	line := readEventLine(t, reader)
	assert.Equal(t, models.StreamDataPrefix+models.HeartbeatSentinel, line)
}

// -----------------------------------------------------------------------------

func TestIngestFeedsHubAndCache(t *testing.T) {
	s, ts := newTestServer(t, &fakeDB{})

	tick := tickAt("AAPL", time.Now(), 187.5)
	payload, _ := json.Marshal(tick)

	resp, err := http.Post(ts.URL+"/ingest", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	latest, ok := s.Hub.Latest("AAPL")
	require.True(t, ok)
	assert.Equal(t, 187.5, latest.Price)

	series, ok := s.Cache.Series("AAPL")
	require.True(t, ok)
	require.Len(t, series.Points, 1)
	assert.Equal(t, 187.5, series.Points[0].Price)
}

// -----------------------------------------------------------------------------

func TestIngestRejectsInvalidTicks(t *testing.T) {
	_, ts := newTestServer(t, &fakeDB{})

	cases := []string{
		`{"price": 10}`,
		`{"ticker": "AAPL", "price": 0}`,
		`{"ticker": "AAPL", "price": 10, "timestamp": "not-a-time"}`,
		`not json`,
	}
	for _, body := range cases {
		resp, err := http.Post(ts.URL+"/ingest", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "payload: %s", body)
	}
}

// -----------------------------------------------------------------------------

func TestDashboardPatchesLivePrices(t *testing.T) {
	db := &fakeDB{rows: []models.MDashboardRow{
		{Ticker: "AAPL", TradeDate: "2026-02-03", Close: 100},
	}}
	s, ts := newTestServer(t, db)

	live := tickAt("AAPL", time.Now(), 105)
	live.DailyReturn = 5.0
	live.PrevClose = 100
	s.Hub.Publish(live)

	resp, err := http.Get(ts.URL + "/api/dashboard")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Rows []models.MDashboardRow `json:"rows"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Rows, 1)
	assert.True(t, body.Rows[0].Live)
	assert.Equal(t, 105.0, body.Rows[0].Close)
	require.NotNil(t, body.Rows[0].DailyReturn)
	assert.Equal(t, 5.0, *body.Rows[0].DailyReturn)
}

// -----------------------------------------------------------------------------

func TestDashboardPatchesRowsAfterLiveOnlyAppend(t *testing.T) {
	// AAPL sits before BTC in the universe and has a live tick but no
	// warehouse row, so its synthesized row joins the response while BTC
	// still needs its warehouse close patched.
	db := &fakeDB{rows: []models.MDashboardRow{
		{Ticker: "BTC", TradeDate: "2026-02-03", Close: 100},
	}}
	s, ts := newTestServer(t, db)

	s.Hub.Publish(tickAt("AAPL", time.Now(), 187.5))
	s.Hub.Publish(tickAt("BTC", time.Now(), 999))

	resp, err := http.Get(ts.URL + "/api/dashboard")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Rows []models.MDashboardRow `json:"rows"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Rows, 2)

	byTicker := make(map[string]models.MDashboardRow, len(body.Rows))
	for _, r := range body.Rows {
		byTicker[r.Ticker] = r
	}

	btc := byTicker["BTC"]
	assert.True(t, btc.Live)
	assert.Equal(t, 999.0, btc.Close)

	aapl := byTicker["AAPL"]
	assert.True(t, aapl.Live)
	assert.Equal(t, 187.5, aapl.Close)
}

// -----------------------------------------------------------------------------

func TestIntradayHistoryEndpoint(t *testing.T) {
	s, ts := newTestServer(t, &fakeDB{})
	s.Cache.Apply(tickAt("BTC", time.Now(), 50000))

	resp, err := http.Get(ts.URL + "/api/intraday-history?ticker=BTC")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var series models.MIntradaySeries
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&series))
	assert.Equal(t, "BTC", series.Ticker)
	require.Len(t, series.Points, 1)

	missing, err := http.Get(ts.URL + "/api/intraday-history?ticker=NOPE")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func readEventLine(t *testing.T, reader *bufio.Reader) string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line != "" {
			return line
		}
	}
	t.Fatal("timed out waiting for event line")
	return ""
}

func waitForSubscribers(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.Subscribers() >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("never reached %d subscribers", n)
}
