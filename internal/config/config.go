// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers file and env on top.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DBDSN is the SQLite database path, or ":memory:" for ephemeral runs.
	DBDSN string `koanf:"db_dsn"`

	// AttentionURL and DispositionURL point at the regulator feeds.
	AttentionURL   string `koanf:"attention_url"`
	DispositionURL string `koanf:"disposition_url"`

	// FetchIntervalMinutes sets how often an ingestion pass runs.
	FetchIntervalMinutes int `koanf:"fetch_interval_minutes"`

	// FetchTimeoutSeconds bounds each upstream HTTP request.
	FetchTimeoutSeconds int `koanf:"fetch_timeout_seconds"`

	// FetchOnStart triggers an ingestion pass immediately at startup.
	FetchOnStart bool `koanf:"fetch_on_start"`

	// CandidateWindowDays sets how far back the risk report looks for
	// recently flagged securities.
	CandidateWindowDays int `koanf:"candidate_window_days"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		DBDSN:                "vigil.db",
		AttentionURL:         "https://openapi.twse.com.tw/v1/announcement/notetrans",
		DispositionURL:       "https://openapi.twse.com.tw/v1/announcement/punish",
		FetchIntervalMinutes: 60,
		FetchTimeoutSeconds:  15,
		FetchOnStart:         true,
		CandidateWindowDays:  10,
	}
}
