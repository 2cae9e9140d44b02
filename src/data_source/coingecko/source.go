package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"market-pulse/src/helpers"
	"market-pulse/src/interfaces"
	"market-pulse/src/logger"
	"market-pulse/src/models"
	"market-pulse/src/normalizer"
)

const simplePriceURL = "https://api.coingecko.com/api/v3/simple/price"

// -----------------------------------------------------------------------------

// Source polls CoinGecko's simple-price endpoint for the crypto universe.
// One batched request covers every coin; CoinGecko rate limits aggressively,
// so a 429 propagates as a RateLimitError for the poller to widen its delay.
type Source struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	Network interfaces.INetworkManager
}

// -----------------------------------------------------------------------------

func NewSource(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *Source {
	return &Source{Config: cfg, Logger: log, Network: netMgr}
}

// -----------------------------------------------------------------------------

func (s *Source) Name() string { return "coingecko" }

func (s *Source) AssetType() string { return models.AssetCrypto }

func (s *Source) Tickers() []string {
	out := make([]string, 0, len(s.Config.Universe.Crypto))
	for _, ct := range s.Config.Universe.Crypto {
		out = append(out, ct.Ticker)
	}
	return out
}

// -----------------------------------------------------------------------------

// Poll fetches all configured coins in a single request and normalizes each
// entry. A coin missing from the response is skipped, not an error.
func (s *Source) Poll(ctx context.Context) ([]models.MTick, error) {
	crypto := s.Config.Universe.Crypto
	if len(crypto) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(crypto))
	for _, ct := range crypto {
		ids = append(ids, ct.CoinGeckoID)
	}

	params := map[string]string{
		"ids":                 strings.Join(ids, ","),
		"vs_currencies":       "usd",
		"include_24hr_change": "true",
		"include_24hr_vol":    "true",
		"include_market_cap":  "true",
	}

	body, err := s.Network.Get(ctx, simplePriceURL, params)
	if err != nil {
		return nil, err
	}

	var payload map[string]normalizer.CryptoQuote
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &helpers.DecodeError{MarketPulseError: helpers.MarketPulseError{
			Message: "coingecko simple-price response", Cause: err,
		}}
	}

	now := time.Now()
	var ticks []models.MTick
	for _, ct := range crypto {
		raw, ok := payload[ct.CoinGeckoID]
		if !ok {
			s.Logger.Debug("CoinGecko response missing %s", ct.CoinGeckoID)
			continue
		}
		tick, ok := normalizer.NormalizeCryptoQuote(ct.Ticker, raw, now)
		if !ok {
			s.Logger.Warning("Unusable CoinGecko entry for %s", ct.CoinGeckoID)
			continue
		}
		ticks = append(ticks, tick)
	}

	if len(ticks) == 0 {
		return nil, fmt.Errorf("no usable entries in coingecko response")
	}
	return ticks, nil
}
