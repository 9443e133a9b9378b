package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log format")
	}
}

func TestValidate_InvalidServerPort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Port = 70000 // Out of range

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for port out of range")
	}
	if !strings.Contains(err.Error(), "max") {
		t.Errorf("Expected 'max' validation error, got: %v", err)
	}
}

func TestValidate_NegativePort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Port = -1

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for negative port")
	}
}

func TestValidate_LossProbabilityRange(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.LossReq = 1.0 // Must stay below 1: the server would drop everything

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for loss_req = 1.0")
	}
	if !strings.Contains(err.Error(), "lt") {
		t.Errorf("Expected 'lt' validation error, got: %v", err)
	}

	cfg = GetDefaultConfig()
	cfg.Server.LossRep = -0.1

	err = Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for negative loss_rep")
	}
}

func TestValidate_InvalidSemantics(t *testing.T) {
	// Validate sees post-normalization values; an unnormalized spelling
	// must be rejected so callers cannot skip ApplyDefaults.
	cfg := GetDefaultConfig()
	cfg.Client.Semantics = "atmost"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for unnormalized semantics")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_ZeroRetry(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Client.Retry = 0

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for retry = 0")
	}
}

func TestValidate_ZeroDedupTTL(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.DedupTTL = 0

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for zero dedup TTL")
	}
}

func TestValidate_LogLevelCaseInsensitive(t *testing.T) {
	// Validation accepts both uppercase and lowercase log levels
	testCases := []string{"info", "INFO", "debug", "DEBUG", "warn", "WARN", "error", "ERROR"}

	for _, level := range testCases {
		cfg := GetDefaultConfig()
		cfg.Logging.Level = level

		err := Validate(cfg)
		if err != nil {
			t.Errorf("Validation failed for level %q: %v", level, err)
		}

		// Validation should NOT normalize - level should remain as-is
		if cfg.Logging.Level != level {
			t.Errorf("Expected level to remain %q after validation, got %q", level, cfg.Logging.Level)
		}
	}
}
