// Package config provides configuration, keybindings and tunables for TermDesk.
package config

import "time"

// Rendering and update rates.
const (
	// NormalFPS is the target frame rate of the desktop.
	NormalFPS = 60
	// InteractionFPS is used while a drag or resize is in progress.
	InteractionFPS = 30
)

// Desktop geometry, measured in terminal cells.
const (
	// TaskbarHeight is the number of rows reserved at the bottom of the screen.
	TaskbarHeight = 1
	// DefaultMinWindowWidth is the smallest width a window can be resized to.
	DefaultMinWindowWidth = 24
	// DefaultMinWindowHeight is the smallest height a window can be resized to.
	DefaultMinWindowHeight = 6
	// DefaultCascadeBase is the offset of the first window from the top-left corner.
	DefaultCascadeBase = 2
	// DefaultCascadeStep is the per-window offset applied on both axes.
	DefaultCascadeStep = 2
	// DefaultCascadeSlots is how many windows are staggered before wrapping.
	DefaultCascadeSlots = 8
)

// Z-index bands for overlay layers. Windows use their own Z which grows
// from 1, so overlays sit far above them.
const (
	ZIndexBackground = 0
	ZIndexTaskbar    = 1 << 20
	ZIndexLauncher   = ZIndexTaskbar + 1
	ZIndexOverlay    = ZIndexTaskbar + 2
	ZIndexDialog     = ZIndexTaskbar + 3
)

// Timings.
const (
	NotificationDuration = 3 * time.Second
	SysInfoInterval      = 2 * time.Second
	DefaultTickInterval  = time.Second
	NewsInterval         = 6 * time.Second
	AssistantTimeout     = 60 * time.Second
	BrowserTimeout       = 15 * time.Second
)

// Limits.
const (
	MaxLogMessages   = 500
	MaxSeriesCandles = 240
	MaxChatMessages  = 200
)
