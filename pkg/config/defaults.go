package config

import (
	"strings"
	"time"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", nil) are replaced with defaults
//   - Explicit values are preserved
//   - Spellings are normalized (log level to uppercase, semantics to the
//     canonical at-most-once/at-least-once forms)
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyAdminDefaults(&cfg.Admin)
	applyClientDefaults(&cfg.Client)
	applyLoggingDefaults(&cfg.Logging)
}

// applyServerDefaults sets UDP server defaults.
func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Bind == "" {
		cfg.Bind = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 9000
	}
	// LossReq/LossRep default to 0 (no simulated loss); zero value is correct.
	// LossSeed defaults to 0 (time-seeded); zero value is correct.
	if cfg.DedupTTL == 0 {
		cfg.DedupTTL = 60 * time.Second
	}
	if cfg.ReadBuffer == 0 {
		cfg.ReadBuffer = 65535
	}
}

// applyAdminDefaults sets admin HTTP listener defaults.
// Enabled cannot be defaulted here (zero value is false); the registered
// viper default covers it for loaded configs and GetDefaultConfig for
// constructed ones.
func applyAdminDefaults(cfg *AdminConfig) {
	if cfg.Bind == "" {
		cfg.Bind = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 9100
	}
}

// applyClientDefaults sets client defaults and normalizes the semantics
// spelling.
func applyClientDefaults(cfg *ClientConfig) {
	if cfg.Server == "" {
		cfg.Server = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 9000
	}
	if cfg.Semantics == "" {
		cfg.Semantics = SemanticsAtMostOnce
	}
	cfg.Semantics = NormalizeSemantics(cfg.Semantics)
	if cfg.Timeout == 0 {
		cfg.Timeout = 500 * time.Millisecond
	}
	if cfg.Retry == 0 {
		cfg.Retry = 5
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files (dittobank config init)
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		Admin: AdminConfig{
			Enabled: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
