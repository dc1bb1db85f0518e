package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// AppName is used for every XDG path TermDesk owns.
const AppName = "termdesk"

// UserConfig is the on-disk TOML configuration.
type UserConfig struct {
	Appearance  AppearanceConfig  `toml:"appearance"`
	Desktop     DesktopConfig     `toml:"desktop"`
	Market      MarketConfig      `toml:"market"`
	Trading     TradingConfig     `toml:"trading"`
	Assistant   AssistantConfig   `toml:"assistant"`
	Keybindings KeybindingsConfig `toml:"keybindings"`
}

// AppearanceConfig controls theming and chrome.
type AppearanceConfig struct {
	Theme       string `toml:"theme"`
	BorderStyle string `toml:"border_style"` // rounded, normal, thick, double
	HideClock   bool   `toml:"hide_clock"`
	HideSysInfo bool   `toml:"hide_sysinfo"`
}

// DesktopConfig controls window placement and the resize floor.
type DesktopConfig struct {
	CascadeBase     int `toml:"cascade_base"`
	CascadeStep     int `toml:"cascade_step"`
	CascadeSlots    int `toml:"cascade_slots"`
	MinWindowWidth  int `toml:"min_window_width"`
	MinWindowHeight int `toml:"min_window_height"`
}

// MarketConfig controls the simulated feed.
type MarketConfig struct {
	Symbol       string  `toml:"symbol"`
	StartPrice   float64 `toml:"start_price"`
	Volatility   float64 `toml:"volatility"`
	TickInterval string  `toml:"tick_interval"` // Go duration, e.g. "1s"
	Seed         int64   `toml:"seed"`
}

// Interval parses TickInterval, falling back to DefaultTickInterval.
func (m MarketConfig) Interval() time.Duration {
	d, err := time.ParseDuration(m.TickInterval)
	if err != nil || d <= 0 {
		return DefaultTickInterval
	}
	return d
}

// TradingConfig controls the hotkey order path.
type TradingConfig struct {
	HotkeyQuantity int64 `toml:"hotkey_quantity"`
}

// AssistantConfig controls the AI chat app. The API key is read from
// ANTHROPIC_API_KEY and never stored in the file.
type AssistantConfig struct {
	Model        string `toml:"model"`
	MaxTokens    int64  `toml:"max_tokens"`
	SystemPrompt string `toml:"system_prompt"`
}

// KeybindingsConfig maps action names to key lists, grouped like the help overlay.
type KeybindingsConfig struct {
	Desktop map[string][]string `toml:"desktop"`
	Trading map[string][]string `toml:"trading"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *UserConfig {
	return &UserConfig{
		Appearance: AppearanceConfig{
			Theme:       "",
			BorderStyle: "rounded",
		},
		Desktop: DesktopConfig{
			CascadeBase:     DefaultCascadeBase,
			CascadeStep:     DefaultCascadeStep,
			CascadeSlots:    DefaultCascadeSlots,
			MinWindowWidth:  DefaultMinWindowWidth,
			MinWindowHeight: DefaultMinWindowHeight,
		},
		Market: MarketConfig{
			Symbol:       "TDSK",
			StartPrice:   100,
			Volatility:   0.01,
			TickInterval: DefaultTickInterval.String(),
		},
		Trading: TradingConfig{
			HotkeyQuantity: 10,
		},
		Assistant: AssistantConfig{
			Model:        "claude-sonnet-4-5",
			MaxTokens:    1024,
			SystemPrompt: "You are a concise trading desk assistant inside a simulated terminal. Prices are not real.",
		},
		Keybindings: KeybindingsConfig{
			Desktop: map[string][]string{
				"open_launcher":   {"ctrl+k"},
				"next_window":     {"alt+n"},
				"prev_window":     {"alt+p"},
				"close_window":    {"alt+w"},
				"minimize_window": {"alt+m"},
				"maximize_window": {"alt+f"},
				"restore_all":     {"alt+r"},
				"toggle_help":     {"f1", "alt+h"},
				"toggle_logs":     {"alt+l"},
				"quit":            {"ctrl+q"},
			},
			Trading: map[string][]string{
				"quick_buy":  {"alt+b"},
				"quick_sell": {"alt+s"},
			},
		},
	}
}

// GetConfigPath returns the path of the user config file.
func GetConfigPath() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join(AppName, "config.toml"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	return path, nil
}

// GetStateDir returns the directory that holds persisted desktop state and logs.
func GetStateDir() (string, error) {
	dir := filepath.Join(xdg.StateHome, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create state dir: %w", err)
	}
	return dir, nil
}

// LoadUserConfig loads the config file, writing the defaults first when it
// does not exist yet.
func LoadUserConfig() (*UserConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		if err := WriteConfig(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	return LoadFromPath(path)
}

// LoadFromPath reads and validates a config file. Missing fields fall back
// to the defaults.
func LoadFromPath(path string) (*UserConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	mergeKeybindings(cfg.Keybindings.Desktop, DefaultConfig().Keybindings.Desktop)
	mergeKeybindings(cfg.Keybindings.Trading, DefaultConfig().Keybindings.Trading)
	cfg.normalize()
	return cfg, nil
}

// WriteConfig marshals cfg with a short header and writes it to path.
func WriteConfig(path string, cfg *UserConfig) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# TermDesk Configuration File\n")
	sb.WriteString("# Keybindings map an action to a list of keys.\n")
	sb.WriteString("# Set ANTHROPIC_API_KEY in the environment to enable the assistant.\n\n")
	sb.Write(data)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func mergeKeybindings(dst, defaults map[string][]string) {
	if dst == nil {
		return
	}
	for action, keys := range defaults {
		if _, ok := dst[action]; !ok {
			dst[action] = keys
		}
	}
}

// normalize clamps values that would break placement or the feed.
func (c *UserConfig) normalize() {
	d := &c.Desktop
	if d.MinWindowWidth < 8 {
		d.MinWindowWidth = 8
	}
	if d.MinWindowHeight < 3 {
		d.MinWindowHeight = 3
	}
	if d.CascadeSlots < 1 {
		d.CascadeSlots = 1
	}
	if d.CascadeStep < 0 {
		d.CascadeStep = 0
	}
	if _, err := time.ParseDuration(c.Market.TickInterval); err != nil {
		c.Market.TickInterval = DefaultTickInterval.String()
	}
	if c.Market.StartPrice <= 0 {
		c.Market.StartPrice = 100
	}
	if c.Trading.HotkeyQuantity <= 0 {
		c.Trading.HotkeyQuantity = 1
	}
	if c.Assistant.MaxTokens <= 0 {
		c.Assistant.MaxTokens = 1024
	}
	if c.Keybindings.Desktop == nil {
		c.Keybindings.Desktop = DefaultConfig().Keybindings.Desktop
	}
	if c.Keybindings.Trading == nil {
		c.Keybindings.Trading = DefaultConfig().Keybindings.Trading
	}
}

// Overrides carries command-line flags that take precedence over the file.
type Overrides struct {
	ThemeName   string
	BorderStyle string
	HideClock   bool
	Seed        int64
}

// ApplyOverrides applies non-zero overrides to cfg.
func ApplyOverrides(o Overrides, cfg *UserConfig) {
	if cfg == nil {
		return
	}
	if o.ThemeName != "" {
		cfg.Appearance.Theme = o.ThemeName
	}
	if o.BorderStyle != "" {
		cfg.Appearance.BorderStyle = o.BorderStyle
	}
	if o.HideClock {
		cfg.Appearance.HideClock = true
	}
	if o.Seed != 0 {
		cfg.Market.Seed = o.Seed
	}
}
