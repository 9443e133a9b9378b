package commands

import (
	"fmt"

	"github.com/marmos91/dittobank/internal/logger"
	"github.com/marmos91/dittobank/pkg/config"
)

// InitLogger initializes the structured logger from configuration. The
// --log-level persistent flag takes precedence over the configured level.
func InitLogger(cfg *config.Config) error {
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}

	loggerCfg := logger.Config{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

// adminBaseURL resolves the admin listener URL for inspection commands.
// An explicit --addr wins; otherwise the address comes from the loaded
// configuration, with the wildcard bind mapped to loopback for dialing.
func adminBaseURL(addrFlag string) (string, error) {
	if addrFlag != "" {
		return "http://" + addrFlag, nil
	}

	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}

	bind := cfg.Admin.Bind
	if bind == "" || bind == "0.0.0.0" {
		bind = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", bind, cfg.Admin.Port), nil
}
