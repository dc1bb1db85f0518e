// Package theme provides the desktop's color roles, backed by bubbletint.
package theme

import (
	"fmt"
	"image/color"

	"charm.land/lipgloss/v2"
	tint "github.com/lrstanley/bubbletint/v2"
)

var enabled bool

// Initialize selects themeName from the default registry. An empty name
// disables theming and the fallback palette below is used. Unknown names fall
// back to the registry default and report false.
func Initialize(themeName string) bool {
	if themeName == "" {
		enabled = false
		return true
	}

	enabled = true
	tint.NewDefaultRegistry()
	if !tint.SetTintID(themeName) {
		tint.SetTintID("default")
		return false
	}
	return true
}

// IsEnabled returns true if theming is enabled.
func IsEnabled() bool {
	return enabled
}

// Current returns the active tint, or nil when theming is disabled.
func Current() *tint.Tint {
	if !enabled {
		return nil
	}
	return tint.Current()
}

func pick(fallback string, f func(*tint.Tint) color.Color) color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color(fallback)
	}
	return f(t)
}

// Desktop

func DesktopBg() color.Color {
	return pick("#101418", func(t *tint.Tint) color.Color { return t.Bg })
}

func DesktopFg() color.Color {
	return pick("#3a4450", func(t *tint.Tint) color.Color { return t.BrightBlack })
}

// Window chrome

func BorderFocused() color.Color {
	return pick("#AFFFFF", func(t *tint.Tint) color.Color { return t.BrightCyan })
}

func BorderUnfocused() color.Color {
	return pick("#5f6b78", func(t *tint.Tint) color.Color { return t.BrightBlack })
}

func TitleFocused() color.Color {
	return pick("#ffffff", func(t *tint.Tint) color.Color { return t.BrightWhite })
}

func TitleUnfocused() color.Color {
	return pick("#9aa5b1", func(t *tint.Tint) color.Color { return t.White })
}

func WindowBg() color.Color {
	return pick("#161b22", func(t *tint.Tint) color.Color { return t.Bg })
}

func WindowFg() color.Color {
	return pick("#e5e5e5", func(t *tint.Tint) color.Color { return t.Fg })
}

// ButtonClose is the close control. Minimize and maximize share ButtonFg.
func ButtonClose() color.Color {
	return pick("#ff5f56", func(t *tint.Tint) color.Color { return t.BrightRed })
}

func ButtonFg() color.Color {
	return pick("#ffbd2e", func(t *tint.Tint) color.Color { return t.Yellow })
}

// Taskbar

func TaskbarBg() color.Color {
	return pick("#1f2630", func(t *tint.Tint) color.Color { return t.Black })
}

func TaskbarFg() color.Color {
	return pick("#c9d1d9", func(t *tint.Tint) color.Color { return t.White })
}

func TaskbarActive() color.Color {
	return pick("#5c5cff", func(t *tint.Tint) color.Color { return t.BrightBlue })
}

func TaskbarDimmed() color.Color {
	return pick("#6e7681", func(t *tint.Tint) color.Color { return t.BrightBlack })
}

// Market colors

func Up() color.Color {
	return pick("#3fb950", func(t *tint.Tint) color.Color { return t.BrightGreen })
}

func Down() color.Color {
	return pick("#f85149", func(t *tint.Tint) color.Color { return t.BrightRed })
}

func Accent() color.Color {
	return pick("#d2a8ff", func(t *tint.Tint) color.Color { return t.BrightPurple })
}

func Muted() color.Color {
	return pick("#8b949e", func(t *tint.Tint) color.Color { return t.BrightBlack })
}

// Overlays

func OverlayBg() color.Color {
	return pick("#0d1117", func(t *tint.Tint) color.Color { return t.Black })
}

func OverlayBorder() color.Color {
	return pick("#58a6ff", func(t *tint.Tint) color.Color { return t.Blue })
}

func OverlaySelected() color.Color {
	return pick("#1f6feb", func(t *tint.Tint) color.Color { return t.Blue })
}

func DialogBorder() color.Color {
	return pick("#ffbd2e", func(t *tint.Tint) color.Color { return t.Yellow })
}

// Log levels

func LogError() color.Color {
	return pick("#ff5555", func(t *tint.Tint) color.Color { return t.BrightRed })
}

func LogWarn() color.Color {
	return pick("#ffb86c", func(t *tint.Tint) color.Color { return t.Yellow })
}

func LogInfo() color.Color {
	return pick("#8be9fd", func(t *tint.Tint) color.Color { return t.Cyan })
}

func LogDebug() color.Color {
	return pick("#6272a4", func(t *tint.Tint) color.Color { return t.BrightBlack })
}

// CLI tables

func CLITableHeader() color.Color {
	return pick("#bd93f9", func(t *tint.Tint) color.Color { return t.Purple })
}

func CLITableBorder() color.Color {
	return pick("#44475a", func(t *tint.Tint) color.Color { return t.BrightBlack })
}

func CLITableKey() color.Color {
	return pick("#50fa7b", func(t *tint.Tint) color.Color { return t.Green })
}

// ColorToString formats c as a #rrggbb hex string.
func ColorToString(c color.Color) string {
	if c == nil {
		return "#000000"
	}
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
