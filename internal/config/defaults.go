package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL           = "https://data-api.polymarket.com"
	DefaultFeedURL           = "wss://ws-subscriptions-clob.polymarket.com/ws/market"
	DefaultAPITimeout        = 10 * time.Second
	DefaultMaxRetries        = 3
	DefaultReconnectDelay    = 5 * time.Second
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultWriteTimeout      = 5 * time.Second
	DefaultFeedBufferSize    = 1000
	DefaultPollInterval      = 5 * time.Second
	DefaultMarketsRefresh    = 5 * time.Minute
	DefaultTopMarkets        = 10
	DefaultPageLimit         = 100
	DefaultRequestTimeout    = 10 * time.Second
	DefaultDedupMaxEntries   = 10000
	DefaultDedupTrimTo       = 5000
	DefaultGlobalWindow      = 5000
	DefaultMarketWindow      = 500
	DefaultMinSamples        = 10
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
	DefaultRedisChannel      = "whale-alerts"
	DefaultBatchSize         = 100
	DefaultFlushInterval     = 1 * time.Second
	DefaultOpsPort           = 8080
	DefaultMetricsPath       = "/metrics"
)

func (c *WatcherConfig) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	// Feed defaults
	if c.Feed.URL == "" {
		c.Feed.URL = DefaultFeedURL
	}
	if c.Feed.ReconnectDelay == 0 {
		c.Feed.ReconnectDelay = DefaultReconnectDelay
	}
	if c.Feed.HeartbeatInterval == 0 {
		c.Feed.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.Feed.WriteTimeout == 0 {
		c.Feed.WriteTimeout = DefaultWriteTimeout
	}
	if c.Feed.BufferSize == 0 {
		c.Feed.BufferSize = DefaultFeedBufferSize
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.MarketsRefresh == 0 {
		c.Poller.MarketsRefresh = DefaultMarketsRefresh
	}
	if c.Poller.TopMarkets == 0 {
		c.Poller.TopMarkets = DefaultTopMarkets
	}
	if c.Poller.PageLimit == 0 {
		c.Poller.PageLimit = DefaultPageLimit
	}
	if c.Poller.RequestTimeout == 0 {
		c.Poller.RequestTimeout = DefaultRequestTimeout
	}

	// Dedup defaults
	if c.Dedup.MaxEntries == 0 {
		c.Dedup.MaxEntries = DefaultDedupMaxEntries
	}
	if c.Dedup.TrimTo == 0 {
		c.Dedup.TrimTo = DefaultDedupTrimTo
	}

	// Stats defaults
	if c.Stats.GlobalWindow == 0 {
		c.Stats.GlobalWindow = DefaultGlobalWindow
	}
	if c.Stats.MarketWindow == 0 {
		c.Stats.MarketWindow = DefaultMarketWindow
	}
	if c.Stats.MinSamples == 0 {
		c.Stats.MinSamples = DefaultMinSamples
	}

	// Database defaults (only when the sink is configured)
	if c.Database.Postgres.Host != "" {
		applyDBDefaults(&c.Database.Postgres)
	}

	// Redis defaults
	if c.Redis.URL != "" && c.Redis.Channel == "" {
		c.Redis.Channel = DefaultRedisChannel
	}

	// Writer defaults
	if c.Writer.BatchSize == 0 {
		c.Writer.BatchSize = DefaultBatchSize
	}
	if c.Writer.FlushInterval == 0 {
		c.Writer.FlushInterval = DefaultFlushInterval
	}

	// Ops defaults
	if c.Ops.Port == 0 {
		c.Ops.Port = DefaultOpsPort
	}
	if c.Ops.MetricsPath == "" {
		c.Ops.MetricsPath = DefaultMetricsPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
