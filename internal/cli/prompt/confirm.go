package prompt

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// Confirm prompts the user for yes/no confirmation. The shell uses it to
// offer a re-send after a request times out.
// Returns ErrAborted if the user presses Ctrl+C.
func Confirm(label string, defaultYes bool) (bool, error) {
	defaultStr := "y/N"
	if defaultYes {
		defaultStr = "Y/n"
	}

	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("%s [%s]", label, defaultStr),
		IsConfirm: true,
		Default:   "",
	}

	result, err := prompt.Run()
	if err != nil {
		// Ctrl+C should abort
		if err == promptui.ErrInterrupt {
			return false, ErrAborted
		}
		// promptui returns ErrAbort for "n" response
		if err == promptui.ErrAbort {
			return false, nil
		}
		// Empty input uses default
		if result == "" {
			return defaultYes, nil
		}
		return false, err
	}

	return strings.ToLower(result) == "y" || strings.ToLower(result) == "yes", nil
}
