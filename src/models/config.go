package models

// MConfig is the YAML-backed application configuration.
type MConfig struct {
	Name     string          `yaml:"name"`
	Host     string          `yaml:"host"`
	Port     int             `yaml:"port"`
	LogLevel string          `yaml:"log_level"`
	Poll     MPollConfig     `yaml:"poll"`
	Universe MUniverseConfig `yaml:"universe"`
	Storage  MStorageConfig  `yaml:"storage"`
	Network  MNetworkConfig  `yaml:"network"`
	Stream   MStreamConfig   `yaml:"stream"`
	History  MHistoryConfig  `yaml:"history"`
}

type MPollConfig struct {
	IntervalSeconds    int `yaml:"interval_seconds"`
	MaxIntervalSeconds int `yaml:"max_interval_seconds"`
	BreakerThreshold   int `yaml:"breaker_threshold"`
	BreakerRecoverySec int `yaml:"breaker_recovery_seconds"`
}

type MUniverseConfig struct {
	Stocks []string        `yaml:"stocks"`
	Crypto []MCryptoTicker `yaml:"crypto"`
}

// MCryptoTicker maps a dashboard ticker to its provider identities: the
// CoinGecko id for live quotes, the Yahoo pair symbol for history.
type MCryptoTicker struct {
	Ticker      string `yaml:"ticker"`
	CoinGeckoID string `yaml:"coingecko_id"`
	YahooSymbol string `yaml:"yahoo_symbol"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // "sqlite" or "postgres"
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout"`
	MaxRetries     int    `yaml:"retries"`
	UserAgent      string `yaml:"user_agent"`
}

type MStreamConfig struct {
	HeartbeatSeconds int `yaml:"heartbeat_seconds"`
	SubscriberBuffer int `yaml:"subscriber_buffer"`
}

type MHistoryConfig struct {
	SeedDays         int `yaml:"seed_days"`
	RetentionDays    int `yaml:"retention_days"`
	IntradayCapacity int `yaml:"intraday_capacity"`
}

// -----------------------------------------------------------------------------

// AllTickers returns the configured universe in display order, stocks first.
func (c *MConfig) AllTickers() []string {
	out := make([]string, 0, len(c.Universe.Stocks)+len(c.Universe.Crypto))
	out = append(out, c.Universe.Stocks...)
	for _, ct := range c.Universe.Crypto {
		out = append(out, ct.Ticker)
	}
	return out
}

// -----------------------------------------------------------------------------

// CryptoByTicker looks up the provider mapping for a crypto ticker.
func (c *MConfig) CryptoByTicker(ticker string) (MCryptoTicker, bool) {
	for _, ct := range c.Universe.Crypto {
		if ct.Ticker == ticker {
			return ct, true
		}
	}
	return MCryptoTicker{}, false
}

// -----------------------------------------------------------------------------

// IsCrypto reports whether the ticker belongs to the continuous universe.
func (c *MConfig) IsCrypto(ticker string) bool {
	_, ok := c.CryptoByTicker(ticker)
	return ok
}
