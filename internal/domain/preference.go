package domain

import "strings"

// Theme is the visual theme preference.
type Theme string

// Supported themes. Dark is used until the user picks one.
const (
	ThemeDark    Theme = "dark"
	ThemeLight   Theme = "light"
	DefaultTheme       = ThemeDark
)

// ParseTheme parses a theme name case-insensitively.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeDark:
		return ThemeDark, nil
	case ThemeLight:
		return ThemeLight, nil
	default:
		return "", NewValidationError("theme", "must be light or dark", ErrInvalidTheme)
	}
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}
