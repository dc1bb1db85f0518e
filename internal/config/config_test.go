package config_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Gaurav-Gosain/termdesk/internal/config"
)

// =============================================================================
// Default Configuration Tests
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if cfg.Appearance.BorderStyle == "" {
		t.Error("Expected default border style to be set")
	}

	if cfg.Desktop.MinWindowWidth <= 0 || cfg.Desktop.MinWindowHeight <= 0 {
		t.Errorf("Expected positive min window size, got %dx%d",
			cfg.Desktop.MinWindowWidth, cfg.Desktop.MinWindowHeight)
	}

	if cfg.Market.Interval() != config.DefaultTickInterval {
		t.Errorf("Expected default tick interval %v, got %v", config.DefaultTickInterval, cfg.Market.Interval())
	}
}

func TestDefaultKeybindings(t *testing.T) {
	cfg := config.DefaultConfig()

	requiredActions := []string{
		"open_launcher",
		"close_window",
		"next_window",
		"quit",
	}

	for _, action := range requiredActions {
		keys, ok := cfg.Keybindings.Desktop[action]
		if !ok {
			t.Errorf("Expected %s keybinding to exist", action)
			continue
		}
		if len(keys) == 0 {
			t.Errorf("Expected %s to have at least one key bound", action)
		}
	}

	for _, action := range []string{"quick_buy", "quick_sell"} {
		if len(cfg.Keybindings.Trading[action]) == 0 {
			t.Errorf("Expected trading hotkey %s to be bound", action)
		}
	}
}

// =============================================================================
// File Loading Tests
// =============================================================================

func TestLoadFromPath_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[desktop]
min_window_width = 40

[market]
tick_interval = "250ms"

[keybindings.desktop]
quit = ["ctrl+x"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Desktop.MinWindowWidth != 40 {
		t.Errorf("Expected min width 40, got %d", cfg.Desktop.MinWindowWidth)
	}
	if cfg.Desktop.MinWindowHeight != config.DefaultMinWindowHeight {
		t.Errorf("Expected default min height, got %d", cfg.Desktop.MinWindowHeight)
	}
	if cfg.Market.Interval() != 250*time.Millisecond {
		t.Errorf("Expected 250ms tick, got %v", cfg.Market.Interval())
	}
	if got := cfg.Keybindings.Desktop["quit"]; len(got) != 1 || got[0] != "ctrl+x" {
		t.Errorf("Expected quit rebound to ctrl+x, got %v", got)
	}
	if len(cfg.Keybindings.Desktop["open_launcher"]) == 0 {
		t.Error("Expected unspecified actions to keep default keys")
	}
}

func TestLoadFromPath_InvalidValuesAreClamped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[desktop]
min_window_width = 1
cascade_slots = 0

[market]
tick_interval = "soon"
start_price = -5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Desktop.MinWindowWidth < 8 {
		t.Errorf("Expected min width clamped to >= 8, got %d", cfg.Desktop.MinWindowWidth)
	}
	if cfg.Desktop.CascadeSlots != 1 {
		t.Errorf("Expected cascade slots clamped to 1, got %d", cfg.Desktop.CascadeSlots)
	}
	if cfg.Market.Interval() != config.DefaultTickInterval {
		t.Errorf("Expected fallback tick interval, got %v", cfg.Market.Interval())
	}
	if cfg.Market.StartPrice <= 0 {
		t.Errorf("Expected positive start price, got %v", cfg.Market.StartPrice)
	}
}

func TestLoadFromPath_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[desktop\nnope"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := config.LoadFromPath(path); err == nil {
		t.Error("Expected parse error for malformed TOML")
	}
}

func TestWriteConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := config.DefaultConfig()
	cfg.Appearance.Theme = "dracula"

	if err := config.WriteConfig(path, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# TermDesk Configuration File") {
		t.Error("Expected config header")
	}

	loaded, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.Appearance.Theme != "dracula" {
		t.Errorf("Expected theme to round-trip, got %q", loaded.Appearance.Theme)
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	config.ApplyOverrides(config.Overrides{ThemeName: "nord", Seed: 42}, cfg)

	if cfg.Appearance.Theme != "nord" {
		t.Errorf("Expected theme override, got %q", cfg.Appearance.Theme)
	}
	if cfg.Market.Seed != 42 {
		t.Errorf("Expected seed override, got %d", cfg.Market.Seed)
	}
	if cfg.Appearance.BorderStyle != "rounded" {
		t.Errorf("Expected untouched border style, got %q", cfg.Appearance.BorderStyle)
	}

	// nil config must not panic
	config.ApplyOverrides(config.Overrides{ThemeName: "x"}, nil)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.WriteConfig(path, config.DefaultConfig()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reloaded := make(chan *config.UserConfig, 1)
	done := make(chan error, 1)
	go func() {
		done <- config.Watch(ctx, path, func(cfg *config.UserConfig) {
			select {
			case reloaded <- cfg:
			default:
			}
		}, nil)
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	cfg := config.DefaultConfig()
	cfg.Trading.HotkeyQuantity = 77
	if err := config.WriteConfig(path, cfg); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-reloaded:
		if got.Trading.HotkeyQuantity != 77 {
			t.Errorf("Expected reloaded hotkey quantity 77, got %d", got.Trading.HotkeyQuantity)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for config reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned error: %v", err)
	}
}

// =============================================================================
// KeybindRegistry Tests
// =============================================================================

func TestKeybindRegistry_GetKeys(t *testing.T) {
	registry := config.NewKeybindRegistry(config.DefaultConfig())

	keys := registry.GetKeys("open_launcher")
	if len(keys) == 0 {
		t.Error("Expected open_launcher to have keys")
	}
}

func TestKeybindRegistry_GetAction(t *testing.T) {
	registry := config.NewKeybindRegistry(config.DefaultConfig())

	keys := registry.GetKeys("quick_buy")
	if len(keys) == 0 {
		t.Skip("No keys bound to quick_buy")
	}

	action := registry.GetAction(keys[0])
	if action != "quick_buy" {
		t.Errorf("Expected action 'quick_buy', got %q", action)
	}
}

func TestKeybindRegistry_CaseInsensitive(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Keybindings.Desktop["quit"] = []string{"Ctrl+Q"}
	registry := config.NewKeybindRegistry(cfg)

	if got := registry.GetAction("ctrl+q"); got != "quit" {
		t.Errorf("Expected quit for ctrl+q, got %q", got)
	}
}

func TestKeybindRegistry_UnknownAction(t *testing.T) {
	registry := config.NewKeybindRegistry(config.DefaultConfig())

	keys := registry.GetKeys("nonexistent_action")
	if len(keys) != 0 {
		t.Errorf("Expected empty keys for nonexistent action, got %v", keys)
	}
}

func TestKeybindRegistry_UnknownKey(t *testing.T) {
	registry := config.NewKeybindRegistry(config.DefaultConfig())

	action := registry.GetAction("ctrl+shift+alt+super+hyper+x")
	if action != "" {
		t.Errorf("Expected empty action for unbound key, got %q", action)
	}
}

func TestGetKeybindings_Sections(t *testing.T) {
	sections := config.GetKeybindings(config.NewKeybindRegistry(config.DefaultConfig()))
	titles := map[string]bool{}
	for _, s := range sections {
		titles[s.Title] = true
		if len(s.Bindings) == 0 {
			t.Errorf("Section %q has no bindings", s.Title)
		}
	}
	for _, want := range []string{"DESKTOP", "TRADING", "MOUSE"} {
		if !titles[want] {
			t.Errorf("Expected help section %q", want)
		}
	}
}

// =============================================================================
// Key Normalizer Tests
// =============================================================================

func TestKeyNormalizer(t *testing.T) {
	normalizer := config.NewKeyNormalizer()

	tests := []struct {
		input    string
		expected string
	}{
		{"ctrl+a", "ctrl+a"},
		{"Ctrl+A", "ctrl+a"},
		{"CTRL+A", "ctrl+a"},
		{"return", "enter"},
		{"escape", "esc"},
		{"alt+return", "alt+enter"},
		{"ctrl++", "ctrl++"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got := normalizer.NormalizeKey(tc.input)
			if len(got) == 0 {
				t.Errorf("NormalizeKey(%q) returned empty slice", tc.input)
				return
			}
			found := false
			for _, k := range got {
				if k == tc.expected {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("NormalizeKey(%q) = %v, want to contain %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestKeyNormalizer_ValidateKey(t *testing.T) {
	normalizer := config.NewKeyNormalizer()

	tests := []struct {
		input   string
		isValid bool
	}{
		{"ctrl+a", true},
		{"n", true},
		{"enter", true},
		{"+", true},
		{"", false},
		{"   ", false},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			valid, _ := normalizer.ValidateKey(tc.input)
			if valid != tc.isValid {
				t.Errorf("ValidateKey(%q) = %v, want %v", tc.input, valid, tc.isValid)
			}
		})
	}
}

func TestActionDescriptions(t *testing.T) {
	cfg := config.DefaultConfig()
	for _, section := range []map[string][]string{cfg.Keybindings.Desktop, cfg.Keybindings.Trading} {
		for action := range section {
			if config.ActionDescriptions[action] == "" {
				t.Errorf("Expected description for action %q", action)
			}
		}
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkKeybindRegistry_GetAction(b *testing.B) {
	registry := config.NewKeybindRegistry(config.DefaultConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = registry.GetAction("alt+n")
	}
}

func BenchmarkNormalizeKey(b *testing.B) {
	normalizer := config.NewKeyNormalizer()
	keys := []string{"ctrl+a", "Ctrl+Shift+B", "alt+1", "return"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = normalizer.NormalizeKey(keys[i%len(keys)])
	}
}
