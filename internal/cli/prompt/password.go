package prompt

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ErrPasswordMismatch indicates passwords don't match.
var ErrPasswordMismatch = errors.New("passwords do not match")

// The wire format carries passwords in a fixed 16-byte field, so a valid
// password is 1 to 16 bytes.
const maxPasswordLen = 16

// Password prompts for an existing account's password with masking. No
// length validation: the server is the authority on whether it matches.
func Password(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Mask:  '*',
	}

	result, err := prompt.Run()
	return result, wrapError(err)
}

// NewPassword prompts for a new account password with masking, enforcing
// the 1-16 byte wire limit, then asks for confirmation.
func NewPassword(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Mask:  '*',
		Validate: func(input string) error {
			if len(input) == 0 || len(input) > maxPasswordLen {
				return fmt.Errorf("password must be 1-%d characters", maxPasswordLen)
			}
			return nil
		},
	}

	password, err := prompt.Run()
	if err != nil {
		return "", wrapError(err)
	}

	confirm, err := Password("Confirm " + label)
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", ErrPasswordMismatch
	}

	return password, nil
}
