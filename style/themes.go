package style

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme defines a complete color palette for the TUI.
type Theme struct {
	Name                                        string
	Dark                                        bool
	Primary, Secondary, Success, Warning, Error color.Color
	Muted, Dim, Border                          color.Color
	MsgBorderUser, MsgBorderAgent               color.Color
	MsgBorderArchived                           color.Color

	InputBg     color.Color // composer background
	SelectionBg color.Color // attachment chip background

	// Gradient endpoints (A=from, B=to)
	GradA color.Color
	GradB color.Color
}

// Built-in themes.
var (
	darkTheme = Theme{
		Name:              "dark",
		Dark:              true,
		Primary:           lipgloss.Color("#7C3AED"),
		Secondary:         lipgloss.Color("#06B6D4"),
		Success:           lipgloss.Color("#22C55E"),
		Warning:           lipgloss.Color("#F59E0B"),
		Error:             lipgloss.Color("#EF4444"),
		Muted:             lipgloss.Color("#6B7280"),
		Dim:               lipgloss.Color("#374151"),
		Border:            lipgloss.Color("#4B5563"),
		MsgBorderUser:     lipgloss.Color("#06B6D4"),
		MsgBorderAgent:    lipgloss.Color("#7C3AED"),
		MsgBorderArchived: lipgloss.Color("#374151"),
		InputBg:           lipgloss.Color("#111827"),
		SelectionBg:       lipgloss.Color("#312E81"),
		GradA:             lipgloss.Color("#7C3AED"),
		GradB:             lipgloss.Color("#06B6D4"),
	}

	lightTheme = Theme{
		Name:              "light",
		Primary:           lipgloss.Color("#6D28D9"),
		Secondary:         lipgloss.Color("#0891B2"),
		Success:           lipgloss.Color("#16A34A"),
		Warning:           lipgloss.Color("#D97706"),
		Error:             lipgloss.Color("#DC2626"),
		Muted:             lipgloss.Color("#9CA3AF"),
		Dim:               lipgloss.Color("#D1D5DB"),
		Border:            lipgloss.Color("#9CA3AF"),
		MsgBorderUser:     lipgloss.Color("#0891B2"),
		MsgBorderAgent:    lipgloss.Color("#6D28D9"),
		MsgBorderArchived: lipgloss.Color("#D1D5DB"),
		InputBg:           lipgloss.Color("#FFFFFF"),
		SelectionBg:       lipgloss.Color("#DDD6FE"),
		GradA:             lipgloss.Color("#6D28D9"),
		GradB:             lipgloss.Color("#0891B2"),
	}

	catppuccinTheme = Theme{
		Name:              "catppuccin",
		Dark:              true,
		Primary:           lipgloss.Color("#CBA6F7"),
		Secondary:         lipgloss.Color("#89DCEB"),
		Success:           lipgloss.Color("#A6E3A1"),
		Warning:           lipgloss.Color("#F9E2AF"),
		Error:             lipgloss.Color("#F38BA8"),
		Muted:             lipgloss.Color("#6C7086"),
		Dim:               lipgloss.Color("#45475A"),
		Border:            lipgloss.Color("#585B70"),
		MsgBorderUser:     lipgloss.Color("#89DCEB"),
		MsgBorderAgent:    lipgloss.Color("#CBA6F7"),
		MsgBorderArchived: lipgloss.Color("#45475A"),
		InputBg:           lipgloss.Color("#181825"),
		SelectionBg:       lipgloss.Color("#313244"),
		GradA:             lipgloss.Color("#CBA6F7"),
		GradB:             lipgloss.Color("#89DCEB"),
	}

	tokyoNightTheme = Theme{
		Name:              "tokyo-night",
		Dark:              true,
		Primary:           lipgloss.Color("#7AA2F7"),
		Secondary:         lipgloss.Color("#7DCFFF"),
		Success:           lipgloss.Color("#9ECE6A"),
		Warning:           lipgloss.Color("#E0AF68"),
		Error:             lipgloss.Color("#F7768E"),
		Muted:             lipgloss.Color("#565F89"),
		Dim:               lipgloss.Color("#3B4261"),
		Border:            lipgloss.Color("#414868"),
		MsgBorderUser:     lipgloss.Color("#7DCFFF"),
		MsgBorderAgent:    lipgloss.Color("#7AA2F7"),
		MsgBorderArchived: lipgloss.Color("#3B4261"),
		InputBg:           lipgloss.Color("#13141E"),
		SelectionBg:       lipgloss.Color("#283457"),
		GradA:             lipgloss.Color("#7AA2F7"),
		GradB:             lipgloss.Color("#7DCFFF"),
	}
)

// Themes maps theme names to their definitions.
var Themes = map[string]Theme{
	"dark":        darkTheme,
	"light":       lightTheme,
	"catppuccin":  catppuccinTheme,
	"tokyo-night": tokyoNightTheme,
}

// ThemeNames lists available themes in display order.
var ThemeNames = []string{"dark", "light", "catppuccin", "tokyo-night"}

// Lookup returns the named theme, falling back to dark.
func Lookup(name string) (Theme, bool) {
	t, ok := Themes[name]
	if !ok {
		return darkTheme, false
	}
	return t, true
}

// Next returns the theme after t in ThemeNames, wrapping around.
func Next(t Theme) Theme {
	for i, n := range ThemeNames {
		if n == t.Name {
			return Themes[ThemeNames[(i+1)%len(ThemeNames)]]
		}
	}
	return darkTheme
}
