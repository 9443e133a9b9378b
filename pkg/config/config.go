package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/dittobank/internal/bytesize"
)

// Canonical spellings for the client invocation semantics.
const (
	SemanticsAtMostOnce  = "at-most-once"
	SemanticsAtLeastOnce = "at-least-once"
)

// Config represents the DittoBank configuration.
//
// This structure captures static configuration aspects of both binaries:
//   - Server settings (bind address, simulated loss, dedup TTL)
//   - Admin HTTP listener (health, metrics, stats)
//   - Client settings (server address, semantics, timeout, retry)
//   - Logging configuration
//   - Metrics toggle
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (DITTOBANK_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
type Config struct {
	// Server configures the UDP bank server.
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Admin configures the HTTP admin listener (health, metrics, stats).
	Admin AdminConfig `mapstructure:"admin" yaml:"admin"`

	// Client configures the dittobankctl invoker.
	Client ClientConfig `mapstructure:"client" yaml:"client"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig contains the UDP server settings.
type ServerConfig struct {
	// Bind is the address the UDP socket binds to.
	// Default: 0.0.0.0
	Bind string `mapstructure:"bind" validate:"required" yaml:"bind"`

	// Port is the UDP port the server listens on.
	// Default: 9000
	Port int `mapstructure:"port" validate:"required,min=1,max=65535" yaml:"port"`

	// LossReq is the probability in [0,1) that an inbound request datagram
	// is dropped before processing, to exercise client retry behavior.
	// Default: 0
	LossReq float64 `mapstructure:"loss_req" validate:"gte=0,lt=1" yaml:"loss_req"`

	// LossRep is the probability in [0,1) that an outbound reply datagram
	// is dropped after processing. Combined with at-least-once clients this
	// provokes duplicate execution.
	// Default: 0
	LossRep float64 `mapstructure:"loss_rep" validate:"gte=0,lt=1" yaml:"loss_rep"`

	// LossSeed seeds the loss simulation RNG so drop sequences can be
	// reproduced. 0 means seed from the clock.
	LossSeed int64 `mapstructure:"loss_seed" yaml:"loss_seed"`

	// DedupTTL is how long cached replies are retained for at-most-once
	// duplicate suppression.
	// Default: 60s
	DedupTTL time.Duration `mapstructure:"dedup_ttl" validate:"required,gt=0" yaml:"dedup_ttl"`

	// ReadBuffer is the size of the datagram receive buffer. Accepts plain
	// byte counts and human-readable sizes like "64KiB".
	// Default: 65535 (maximum UDP payload)
	ReadBuffer bytesize.ByteSize `mapstructure:"read_buffer" validate:"required,min=512,max=65535" yaml:"read_buffer"`
}

// AdminConfig configures the HTTP admin listener.
// When Enabled is false no listener is started.
type AdminConfig struct {
	// Enabled controls whether the admin HTTP listener is started.
	// Default: true
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Bind is the address the admin listener binds to. The listener is
	// meant for local lab inspection, so it defaults to loopback.
	// Default: 127.0.0.1
	Bind string `mapstructure:"bind" yaml:"bind"`

	// Port is the admin HTTP port.
	// Default: 9100
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// ClientConfig contains the dittobankctl invoker settings.
type ClientConfig struct {
	// Server is the bank server address (IP or hostname).
	// Default: 127.0.0.1
	Server string `mapstructure:"server" validate:"required" yaml:"server"`

	// Port is the bank server UDP port.
	// Default: 9000
	Port int `mapstructure:"port" validate:"required,min=1,max=65535" yaml:"port"`

	// Semantics selects the invocation semantics: "at-most-once" requests
	// server-side duplicate suppression, "at-least-once" does not.
	// The spellings "atmost" and "atleast" are accepted and normalized.
	// Default: at-most-once
	Semantics string `mapstructure:"semantics" validate:"required,oneof=at-most-once at-least-once" yaml:"semantics"`

	// Timeout is how long the client waits for a reply before resending.
	// Default: 500ms
	Timeout time.Duration `mapstructure:"timeout" validate:"required,gt=0" yaml:"timeout"`

	// Retry is the number of send attempts before giving up.
	// Default: 5
	Retry int `mapstructure:"retry" validate:"required,min=1" yaml:"retry"`
}

// AtMostOnce reports whether the configured semantics request server-side
// duplicate suppression.
func (c ClientConfig) AtMostOnce() bool {
	return NormalizeSemantics(c.Semantics) == SemanticsAtMostOnce
}

// NormalizeSemantics maps accepted spellings of the invocation semantics to
// their canonical values. Only "atmost" and "at-most-once" (case-insensitive)
// select at-most-once; any other value selects at-least-once.
func NormalizeSemantics(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "atmost", "at-most-once":
		return SemanticsAtMostOnce
	default:
		return SemanticsAtLeastOnce
	}
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// MetricsConfig configures Prometheus metrics collection.
// When Enabled is false, no metrics are collected (zero overhead).
type MetricsConfig struct {
	// Enabled controls whether metrics collection is enabled.
	// Default: true
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (DITTOBANK_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string searches the default
//     locations: ./config.yaml, ~/.dittobank/config.yaml,
//     /etc/dittobank/config.yaml)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Configure viper
	setupViper(v, configPath)

	// Read configuration file if it exists; a missing file is fine because
	// every key carries a registered default.
	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	// Unmarshal into config struct with custom decode hooks
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults for any missing values and normalize spellings
	ApplyDefaults(&cfg)

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages.
// It checks if an explicitly requested config file exists and provides
// user-friendly instructions if not.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default locations)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: User-friendly error with instructions if config not found
func MustLoad(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  dittobank config init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path.
// The configuration is saved in YAML format using proper yaml tags.
func SaveConfig(cfg *Config, path string) error {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Use yaml.Marshal directly to respect yaml tags
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file with restricted permissions (0600 = owner read/write only).
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Set up environment variable support
	// Environment variables use DITTOBANK_ prefix and underscores
	// Example: DITTOBANK_SERVER_PORT=9001
	v.SetEnvPrefix("DITTOBANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Register every key with its default so environment overrides work
	// even for keys the config file does not mention. Booleans in
	// particular cannot be defaulted after unmarshal: the zero value is
	// indistinguishable from an explicit false.
	registerDefaults(v)

	// Configure config file search
	if configPath != "" {
		// Use explicitly specified config file
		v.SetConfigFile(configPath)
	} else {
		// Search ./config.yaml, then the per-user directory, then /etc
		v.AddConfigPath(".")
		v.AddConfigPath(getConfigDir())
		v.AddConfigPath("/etc/dittobank")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// registerDefaults registers the default value for every configuration key.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("server.bind", "0.0.0.0")
	v.SetDefault("server.port", 9000)
	v.SetDefault("server.loss_req", 0.0)
	v.SetDefault("server.loss_rep", 0.0)
	v.SetDefault("server.loss_seed", 0)
	v.SetDefault("server.dedup_ttl", "60s")
	v.SetDefault("server.read_buffer", 65535)

	v.SetDefault("admin.enabled", true)
	v.SetDefault("admin.bind", "127.0.0.1")
	v.SetDefault("admin.port", 9100)

	v.SetDefault("client.server", "127.0.0.1")
	v.SetDefault("client.port", 9000)
	v.SetDefault("client.semantics", SemanticsAtMostOnce)
	v.SetDefault("client.timeout", "500ms")
	v.SetDefault("client.retry", 5)

	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("metrics.enabled", true)
}

// readConfigFile reads the configuration file if it exists.
// A missing file is acceptable; the registered defaults apply.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		// Check if error is "config file not found"
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		// Also check for os.PathError when explicit config file doesn't exist
		if os.IsNotExist(err) {
			return nil
		}
		// Other errors are problems
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		byteSizeDecodeHook(),
	)
}

// durationDecodeHook returns a mapstructure decode hook that converts strings
// to time.Duration. This enables config files to use human-readable durations
// like "500ms", "60s", "2m".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		// Only handle conversion to time.Duration
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			// Parse duration string like "500ms", "60s", "2m"
			return time.ParseDuration(v)
		case int:
			// Assume nanoseconds for raw integers
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// byteSizeDecodeHook returns a mapstructure decode hook that converts
// strings and integers to bytesize.ByteSize. This enables config files to
// use human-readable sizes like "64KiB" or "32Ki" for buffer settings.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the per-user configuration directory path
// (~/.dittobank), or the current directory if the home directory cannot
// be determined.
func getConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".dittobank")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for the
// config init command).
func GetConfigDir() string {
	return getConfigDir()
}
