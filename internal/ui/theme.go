package ui

import (
	"encoding/json"
	"errors"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-seats/internal/logging"
	"github.com/litescript/ls-seats/internal/storage"
)

// DarkModeKey is the local-store key holding the theme preference.
const DarkModeKey = "darkMode"

// Theme is the color palette for chrome around the map. Seat colors do not
// change with the theme.
type Theme struct {
	Dark bool

	Text    lipgloss.Color
	Muted   lipgloss.Color
	Dim     lipgloss.Color
	Accent  lipgloss.Color
	Border  lipgloss.Color
	Canvas  lipgloss.Color
	Label   lipgloss.Color
	Error   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
}

var (
	darkTheme = Theme{
		Dark:    true,
		Text:    lipgloss.Color("#F9FAFB"),
		Muted:   lipgloss.Color("#9CA3AF"),
		Dim:     lipgloss.Color("#4B5563"),
		Accent:  lipgloss.Color("#60A5FA"),
		Border:  lipgloss.Color("#374151"),
		Canvas:  lipgloss.Color("#111827"),
		Label:   lipgloss.Color("#D1D5DB"),
		Error:   lipgloss.Color("#F87171"),
		Success: lipgloss.Color("#34D399"),
		Warning: lipgloss.Color("#FBBF24"),
	}
	lightTheme = Theme{
		Text:    lipgloss.Color("#111827"),
		Muted:   lipgloss.Color("#4B5563"),
		Dim:     lipgloss.Color("#9CA3AF"),
		Accent:  lipgloss.Color("#2563EB"),
		Border:  lipgloss.Color("#D1D5DB"),
		Canvas:  lipgloss.Color("#F9FAFB"),
		Label:   lipgloss.Color("#374151"),
		Error:   lipgloss.Color("#DC2626"),
		Success: lipgloss.Color("#059669"),
		Warning: lipgloss.Color("#D97706"),
	}
)

// ThemeFor returns the dark or light palette.
func ThemeFor(dark bool) Theme {
	if dark {
		return darkTheme
	}
	return lightTheme
}

// LoadDarkMode reads the saved preference. Without one, the terminal
// background decides.
func LoadDarkMode(s storage.Store, log *logging.Logger) bool {
	raw, err := s.Get(DarkModeKey)
	if err == nil {
		var dark bool
		if err := json.Unmarshal([]byte(raw), &dark); err == nil {
			return dark
		}
		log.Warn("ignoring invalid %s value %q", DarkModeKey, raw)
	} else if !errors.Is(err, storage.ErrNotFound) {
		log.Warn("read %s: %v", DarkModeKey, err)
	}
	return lipgloss.HasDarkBackground()
}

// SaveDarkMode persists the preference. Failures are logged only.
func SaveDarkMode(s storage.Store, log *logging.Logger, dark bool) {
	data, _ := json.Marshal(dark)
	if err := s.Set(DarkModeKey, string(data)); err != nil {
		log.Error("persist %s: %v", DarkModeKey, err)
	}
}

func (t Theme) text() lipgloss.Style   { return lipgloss.NewStyle().Foreground(t.Text) }
func (t Theme) muted() lipgloss.Style  { return lipgloss.NewStyle().Foreground(t.Muted) }
func (t Theme) dim() lipgloss.Style    { return lipgloss.NewStyle().Foreground(t.Dim) }
func (t Theme) accent() lipgloss.Style { return lipgloss.NewStyle().Foreground(t.Accent).Bold(true) }
func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) panel(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1).
		Width(width)
}
