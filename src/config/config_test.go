package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

const validConfig = `
name: test-pulse
host: 127.0.0.1
port: 8000
log_level: INFO
poll:
  interval_seconds: 5
universe:
  stocks: [AAPL]
  crypto:
    - ticker: BTC
      coingecko_id: bitcoin
      yahoo_symbol: BTC-USD
storage:
  db_type: sqlite
  db_path: test.db
network:
  timeout: 10
`

// -----------------------------------------------------------------------------

func TestNewConfigAppliesDefaults(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, 300, cfg.Poll.MaxIntervalSeconds)
	assert.Equal(t, 3, cfg.Poll.BreakerThreshold)
	assert.Equal(t, 60, cfg.Poll.BreakerRecoverySec)
	assert.Equal(t, 5, cfg.Stream.HeartbeatSeconds)
	assert.Equal(t, 256, cfg.Stream.SubscriberBuffer)
	assert.Equal(t, 365, cfg.History.SeedDays)
	assert.Equal(t, 1440, cfg.History.IntradayCapacity)
}

// -----------------------------------------------------------------------------

func TestNewConfigUniverseHelpers(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "BTC"}, cfg.AllTickers())
	assert.True(t, cfg.IsCrypto("BTC"))
	assert.False(t, cfg.IsCrypto("AAPL"))

	ct, ok := cfg.CryptoByTicker("BTC")
	require.True(t, ok)
	assert.Equal(t, "bitcoin", ct.CoinGeckoID)
}

// -----------------------------------------------------------------------------

func TestNewConfigValidationFailures(t *testing.T) {
	cases := map[string]string{
		"privileged port": `
name: x
host: 127.0.0.1
port: 80
poll: {interval_seconds: 5}
universe: {stocks: [AAPL]}
storage: {db_type: sqlite, db_path: x.db}
network: {timeout: 10}
`,
		"empty universe": `
name: x
host: 127.0.0.1
port: 8000
poll: {interval_seconds: 5}
universe: {}
storage: {db_type: sqlite, db_path: x.db}
network: {timeout: 10}
`,
		"sqlite without path": `
name: x
host: 127.0.0.1
port: 8000
poll: {interval_seconds: 5}
universe: {stocks: [AAPL]}
storage: {db_type: sqlite}
network: {timeout: 10}
`,
		"crypto without id": `
name: x
host: 127.0.0.1
port: 8000
poll: {interval_seconds: 5}
universe:
  crypto:
    - ticker: BTC
storage: {db_type: sqlite, db_path: x.db}
network: {timeout: 10}
`,
	}

	for name, body := range cases {
		_, err := NewConfig(writeConfig(t, body))
		assert.Error(t, err, name)
	}
}

// -----------------------------------------------------------------------------

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig("/nonexistent/config.yaml")
	assert.Error(t, err)
}
