// Package prompt provides the interactive terminal prompts used by the
// dittobankctl shell: account fields, masked passwords, menu selection,
// and retry confirmation.
package prompt

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user aborts a prompt (Ctrl+C).
var ErrAborted = errors.New("aborted")

// IsAborted returns true if the error indicates the user aborted (Ctrl+C).
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, ErrAborted)
}

// wrapError converts promptui interrupt/abort errors to ErrAborted for
// consistent handling.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsAborted(err) {
		return ErrAborted
	}
	return err
}

// Input prompts for text input with an optional default.
func Input(label string, defaultValue string) (string, error) {
	prompt := promptui.Prompt{
		Label:   label,
		Default: defaultValue,
	}

	result, err := prompt.Run()
	return result, wrapError(err)
}

// InputRequired prompts for text input that must not be empty. Used for
// the account holder name.
func InputRequired(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if input == "" {
				return fmt.Errorf("value is required")
			}
			return nil
		},
	}

	result, err := prompt.Run()
	return result, wrapError(err)
}

// InputAccountNo prompts for an account number (positive 32-bit integer).
func InputAccountNo(label string) (int32, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			no, err := strconv.ParseInt(input, 10, 32)
			if err != nil || no <= 0 {
				return fmt.Errorf("must be a positive account number")
			}
			return nil
		},
	}

	result, err := prompt.Run()
	if err != nil {
		return 0, wrapError(err)
	}

	no, _ := strconv.ParseInt(result, 10, 32) // Already validated
	return int32(no), nil
}

// InputAmount prompts for a monetary amount (positive, finite).
func InputAmount(label string) (float64, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			v, err := strconv.ParseFloat(input, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
				return fmt.Errorf("must be a positive amount")
			}
			return nil
		},
	}

	result, err := prompt.Run()
	if err != nil {
		return 0, wrapError(err)
	}

	v, _ := strconv.ParseFloat(result, 64) // Already validated
	return v, nil
}

// InputSeconds prompts for a monitor subscription lifetime in seconds
// (1-65535, the range the wire field can carry).
func InputSeconds(label string) (uint16, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			v, err := strconv.ParseUint(input, 10, 16)
			if err != nil || v == 0 {
				return fmt.Errorf("must be between 1 and 65535")
			}
			return nil
		},
	}

	result, err := prompt.Run()
	if err != nil {
		return 0, wrapError(err)
	}

	v, _ := strconv.ParseUint(result, 10, 16) // Already validated
	return uint16(v), nil
}
