package session

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// Prompt defaults are deliberately uneven: gates that commit state ("did it
// render?", "update master?") default to No so an empty answer is
// reject-safe, while courtesy confirmations default to Yes.

func confirm(title string, def bool) (bool, error) {
	v := def
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(title).Value(&v),
	)).WithTheme(huh.ThemeCatppuccin())
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt cancelled: %w", err)
	}
	return v, nil
}

func selectString(title string, options []string) (string, error) {
	opts := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		opts = append(opts, huh.NewOption(o, o))
	}
	var v string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title(title).Options(opts...).Value(&v),
	)).WithTheme(huh.ThemeCatppuccin())
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return v, nil
}

// labeled pairs a display label with a value, for menus whose label and
// result differ.
type labeled[T comparable] struct {
	label string
	value T
}

func selectLabeled[T comparable](title string, items []labeled[T]) (T, error) {
	opts := make([]huh.Option[T], 0, len(items))
	for _, it := range items {
		opts = append(opts, huh.NewOption(it.label, it.value))
	}
	var v T
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[T]().Title(title).Options(opts...).Value(&v),
	)).WithTheme(huh.ThemeCatppuccin())
	if err := form.Run(); err != nil {
		var zero T
		return zero, fmt.Errorf("selection cancelled: %w", err)
	}
	return v, nil
}

func input(title, placeholder string) (string, error) {
	var v string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title(title).Placeholder(placeholder).Value(&v).
			Validate(func(s string) error {
				if s == "" {
					return fmt.Errorf("value cannot be empty")
				}
				return nil
			}),
	)).WithTheme(huh.ThemeCatppuccin())
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("input cancelled: %w", err)
	}
	return v, nil
}
