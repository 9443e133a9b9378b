package prompt

import (
	"github.com/manifoldco/promptui"
)

// SelectOption represents an item in a selection list.
type SelectOption struct {
	Label       string
	Value       string
	Description string
}

// selectTemplates returns the standard templates for selection prompts.
func selectTemplates() *promptui.SelectTemplates {
	return &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label | white }}",
		Selected: "* {{ .Label | green }}",
	}
}

// Select prompts the user to select from a list of options. The shell
// menu is built on this.
// Returns the selected option's value.
func Select(label string, options []SelectOption) (string, error) {
	templates := selectTemplates()

	if len(options) > 0 && options[0].Description != "" {
		templates.Details = `
{{ "Description:" | faint }}	{{ .Description }}`
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	i, _, err := prompt.Run()
	if err != nil {
		return "", wrapError(err)
	}

	return options[i].Value, nil
}

// SelectString prompts the user to select from a list of strings. Used
// for the currency picker.
// Returns the selected string.
func SelectString(label string, items []string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
	}

	_, result, err := prompt.Run()
	return result, wrapError(err)
}
