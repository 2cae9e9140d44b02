package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"market-pulse/src/helpers"
	"market-pulse/src/models"
)

// -----------------------------------------------------------------------------

// History is the REST-side companion to the stream session: baseline series
// and dashboard snapshots come from here, live deltas from the session.
type History struct {
	BaseURL    string
	HTTPClient *http.Client
}

// -----------------------------------------------------------------------------

func NewHistory(baseURL string) *History {
	return &History{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
	}
}

// -----------------------------------------------------------------------------

// GetIntraday fetches today's minute series for a ticker.
func (h *History) GetIntraday(ctx context.Context, ticker string) (models.MIntradaySeries, error) {
	var series models.MIntradaySeries
	err := h.getJSON(ctx, "/api/intraday-history", url.Values{"ticker": {ticker}}, &series)
	return series, err
}

// -----------------------------------------------------------------------------

// GetDaily fetches the ascending daily series for a ticker.
func (h *History) GetDaily(ctx context.Context, ticker string, days int) ([]models.MDailyBar, error) {
	params := url.Values{"ticker": {ticker}}
	if days > 0 {
		params.Set("days", strconv.Itoa(days))
	}

	var body struct {
		Ticker string             `json:"ticker"`
		Bars   []models.MDailyBar `json:"bars"`
	}
	if err := h.getJSON(ctx, "/api/daily-history", params, &body); err != nil {
		return nil, err
	}
	return body.Bars, nil
}

// -----------------------------------------------------------------------------

// GetDashboard fetches the summary rows.
func (h *History) GetDashboard(ctx context.Context) ([]models.MDashboardRow, error) {
	var body struct {
		Rows []models.MDashboardRow `json:"rows"`
	}
	if err := h.getJSON(ctx, "/api/dashboard", nil, &body); err != nil {
		return nil, err
	}
	return body.Rows, nil
}

// -----------------------------------------------------------------------------

func (h *History) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := h.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := h.HTTPClient.Do(req)
	if err != nil {
		return &helpers.NetworkError{MarketPulseError: helpers.MarketPulseError{
			Message: "history request failed", Cause: err,
		}}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &helpers.DecodeError{MarketPulseError: helpers.MarketPulseError{
			Message: "history response", Cause: err,
		}}
	}
	return nil
}
