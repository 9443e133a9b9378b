package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is shared across calls; validator instances cache struct metadata.
var validate = validator.New()

// Validate checks the configuration against the struct validation tags
// (ports in 1..65535, loss probabilities in [0,1), retry >= 1, log level
// and format restricted to the supported sets).
//
// Validation does not mutate the configuration; normalization happens in
// ApplyDefaults before this is called.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
