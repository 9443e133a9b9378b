package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultConfig(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Write minimal config; everything else should come from defaults
	configContent := `
server:
  port: 9000

logging:
  level: "INFO"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Load config
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify defaults were applied
	if cfg.Server.Bind != "0.0.0.0" {
		t.Errorf("Expected default bind '0.0.0.0', got %q", cfg.Server.Bind)
	}
	if cfg.Server.DedupTTL != 60*time.Second {
		t.Errorf("Expected default dedup_ttl 60s, got %v", cfg.Server.DedupTTL)
	}
	if cfg.Server.ReadBuffer != 65535 {
		t.Errorf("Expected default read_buffer 65535, got %d", cfg.Server.ReadBuffer)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if !cfg.Admin.Enabled {
		t.Error("Expected admin listener enabled by default")
	}
	if cfg.Admin.Port != 9100 {
		t.Errorf("Expected default admin port 9100, got %d", cfg.Admin.Port)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Expected metrics enabled by default")
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Loading with no config file returns a valid default config.
	// This allows running the server without a config file for quick testing.
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}

	// Verify default config is returned
	if cfg == nil {
		t.Fatal("Expected default config to be returned")
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Expected default server port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Client.Semantics != SemanticsAtMostOnce {
		t.Errorf("Expected default semantics %q, got %q", SemanticsAtMostOnce, cfg.Client.Semantics)
	}
	if cfg.Client.Timeout != 500*time.Millisecond {
		t.Errorf("Expected default client timeout 500ms, got %v", cfg.Client.Timeout)
	}
	if cfg.Client.Retry != 5 {
		t.Errorf("Expected default client retry 5, got %d", cfg.Client.Retry)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	// Write invalid YAML
	configContent := `
server:
  port: 9000
  invalid yaml here [[[
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Should return error
	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_DurationStrings(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  dedup_ttl: 2m

client:
  timeout: 250ms
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.DedupTTL != 2*time.Minute {
		t.Errorf("Expected dedup_ttl 2m, got %v", cfg.Server.DedupTTL)
	}
	if cfg.Client.Timeout != 250*time.Millisecond {
		t.Errorf("Expected client timeout 250ms, got %v", cfg.Client.Timeout)
	}
}

func TestLoad_ByteSizeStrings(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  read_buffer: 32KiB
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.ReadBuffer != 32*1024 {
		t.Errorf("Expected read_buffer 32768, got %d", cfg.Server.ReadBuffer)
	}
}

func TestLoad_SemanticsNormalization(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
client:
  semantics: atmost
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Client.Semantics != SemanticsAtMostOnce {
		t.Errorf("Expected 'atmost' normalized to %q, got %q", SemanticsAtMostOnce, cfg.Client.Semantics)
	}
	if !cfg.Client.AtMostOnce() {
		t.Error("Expected AtMostOnce() true for 'atmost'")
	}
}

func TestNormalizeSemantics(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"atmost", SemanticsAtMostOnce},
		{"ATMOST", SemanticsAtMostOnce},
		{"at-most-once", SemanticsAtMostOnce},
		{"At-Most-Once", SemanticsAtMostOnce},
		{"atleast", SemanticsAtLeastOnce},
		{"at-least-once", SemanticsAtLeastOnce},
		// Anything unrecognized falls back to at-least-once
		{"exactly-once", SemanticsAtLeastOnce},
		{"", SemanticsAtLeastOnce},
	}

	for _, tc := range cases {
		if got := NormalizeSemantics(tc.in); got != tc.want {
			t.Errorf("NormalizeSemantics(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	// Verify all defaults are set
	if cfg.Server.Port != 9000 {
		t.Errorf("Expected default server port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.LossReq != 0 || cfg.Server.LossRep != 0 {
		t.Errorf("Expected zero loss probabilities, got %v/%v", cfg.Server.LossReq, cfg.Server.LossRep)
	}
	if cfg.Server.DedupTTL != 60*time.Second {
		t.Errorf("Expected default dedup TTL 60s, got %v", cfg.Server.DedupTTL)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if !cfg.Admin.Enabled {
		t.Error("Expected admin listener enabled by default")
	}
	if cfg.Admin.Bind != "127.0.0.1" {
		t.Errorf("Expected default admin bind '127.0.0.1', got %q", cfg.Admin.Bind)
	}
	if cfg.Client.Server != "127.0.0.1" {
		t.Errorf("Expected default client server '127.0.0.1', got %q", cfg.Client.Server)
	}

	// The default config must validate
	if err := Validate(cfg); err != nil {
		t.Errorf("Expected default config to be valid, got: %v", err)
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()

	if filepath.Base(path) != "config.yaml" {
		t.Errorf("Expected filename 'config.yaml', got %q", filepath.Base(path))
	}
	if filepath.Base(filepath.Dir(path)) != ".dittobank" {
		t.Errorf("Expected directory '.dittobank', got %q", filepath.Dir(path))
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	// Set environment variables
	_ = os.Setenv("DITTOBANK_LOGGING_LEVEL", "ERROR")
	_ = os.Setenv("DITTOBANK_SERVER_PORT", "9001")
	defer func() {
		_ = os.Unsetenv("DITTOBANK_LOGGING_LEVEL")
		_ = os.Unsetenv("DITTOBANK_SERVER_PORT")
	}()

	// Create minimal config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9000

logging:
  level: "INFO"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify environment variables override config file
	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("Expected port 9001 from env var, got %d", cfg.Server.Port)
	}
}

func TestSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sub", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Server.Port = 9005

	if err := SaveConfig(cfg, configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	// Config files may carry sensitive values; they must not be world-readable
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Saved config missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected file mode 0600, got %v", perm)
	}

	// Round-trip through Load
	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}
	if loaded.Server.Port != 9005 {
		t.Errorf("Expected saved port 9005, got %d", loaded.Server.Port)
	}
}
