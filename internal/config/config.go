package config

import "time"

// WatcherConfig is the root configuration for a watcher instance.
type WatcherConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	API      APIConfig      `yaml:"api"`
	Feed     FeedConfig     `yaml:"feed"`
	Poller   PollerConfig   `yaml:"poller"`
	Dedup    DedupConfig    `yaml:"dedup"`
	Stats    StatsConfig    `yaml:"stats"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Writer   WriterConfig   `yaml:"writer"`
	Ops      OpsConfig      `yaml:"ops"`
}

// InstanceConfig identifies this watcher.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds data API (polling feed) settings.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// FeedConfig holds websocket push feed settings.
type FeedConfig struct {
	URL               string        `yaml:"url"`
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	BufferSize        int           `yaml:"buffer_size"`
}

// PollerConfig holds poll collector settings.
type PollerConfig struct {
	Interval        time.Duration `yaml:"interval"`
	MarketsRefresh  time.Duration `yaml:"markets_refresh"`
	TopMarkets      int           `yaml:"top_markets"`
	PageLimit       int           `yaml:"page_limit"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
}

// DedupConfig holds deduplication cache settings.
type DedupConfig struct {
	MaxEntries int `yaml:"max_entries"`
	TrimTo     int `yaml:"trim_to"`
}

// StatsConfig holds rolling statistics window settings.
type StatsConfig struct {
	GlobalWindow int `yaml:"global_window"`
	MarketWindow int `yaml:"market_window"`
	MinSamples   int `yaml:"min_samples"`
}

// DatabaseConfig holds the PostgreSQL connection for anomaly persistence.
// All fields empty disables the postgres sink.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RedisConfig holds the live broadcast publisher settings.
// Empty URL disables the redis sink.
type RedisConfig struct {
	URL     string `yaml:"url"`
	Channel string `yaml:"channel"`
}

// WriterConfig holds batch writer settings for the postgres sink.
type WriterConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// OpsConfig holds the health/metrics HTTP server settings.
type OpsConfig struct {
	Port        int    `yaml:"port"`
	MetricsPath string `yaml:"metrics_path"`
}
