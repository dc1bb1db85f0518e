package config

import (
	"fmt"
	"slices"
	"strings"
)

// ActionDescriptions maps action names to human-readable descriptions.
var ActionDescriptions = map[string]string{
	"open_launcher":   "Open app launcher",
	"next_window":     "Focus next window",
	"prev_window":     "Focus previous window",
	"close_window":    "Close focused window",
	"minimize_window": "Minimize focused window",
	"maximize_window": "Toggle maximize",
	"restore_all":     "Restore all windows",
	"toggle_help":     "Toggle help",
	"toggle_logs":     "Toggle log viewer",
	"quit":            "Quit",
	"quick_buy":       "Market buy (hotkey)",
	"quick_sell":      "Market sell (hotkey)",
}

// Keybinding represents a single keybinding entry for display.
type Keybinding struct {
	Key         string
	Description string
}

// KeybindingSection groups related keybindings for the help overlay.
type KeybindingSection struct {
	Title    string
	Bindings []Keybinding
}

// KeybindRegistry resolves keys to actions and back.
type KeybindRegistry struct {
	actionToKeys map[string][]string
	keyToAction  map[string]string
	normalizer   *KeyNormalizer
}

// NewKeybindRegistry builds a registry from the user config.
func NewKeybindRegistry(cfg *UserConfig) *KeybindRegistry {
	r := &KeybindRegistry{
		actionToKeys: make(map[string][]string),
		keyToAction:  make(map[string]string),
		normalizer:   NewKeyNormalizer(),
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	r.load(cfg.Keybindings.Desktop)
	r.load(cfg.Keybindings.Trading)
	return r
}

func (r *KeybindRegistry) load(section map[string][]string) {
	actions := make([]string, 0, len(section))
	for action := range section {
		actions = append(actions, action)
	}
	// Deterministic conflict resolution: the first action alphabetically wins.
	slices.Sort(actions)

	for _, action := range actions {
		for _, key := range section[action] {
			if valid, _ := r.normalizer.ValidateKey(key); !valid {
				continue
			}
			r.actionToKeys[action] = append(r.actionToKeys[action], key)
			for _, variant := range r.normalizer.NormalizeKey(key) {
				if _, taken := r.keyToAction[variant]; !taken {
					r.keyToAction[variant] = action
				}
			}
		}
	}
}

// GetKeys returns the configured keys for an action.
func (r *KeybindRegistry) GetKeys(action string) []string {
	return r.actionToKeys[action]
}

// GetAction returns the action bound to key, or "" when unbound.
func (r *KeybindRegistry) GetAction(key string) string {
	return r.keyToAction[strings.ToLower(key)]
}

// GetKeysForDisplay returns the keys for action joined for display.
func (r *KeybindRegistry) GetKeysForDisplay(action string) string {
	keys := r.GetKeys(action)
	if len(keys) == 0 {
		return ""
	}
	return strings.Join(keys, ", ")
}

// GetKeybindings returns the help overlay sections.
func GetKeybindings(registry *KeybindRegistry) []KeybindingSection {
	if registry == nil {
		registry = NewKeybindRegistry(nil)
	}

	desktop := KeybindingSection{Title: "DESKTOP"}
	for _, action := range []string{
		"open_launcher", "next_window", "prev_window", "close_window",
		"minimize_window", "maximize_window", "restore_all",
		"toggle_help", "toggle_logs", "quit",
	} {
		addBinding(&desktop, registry, action)
	}

	trading := KeybindingSection{Title: "TRADING"}
	addBinding(&trading, registry, "quick_buy")
	addBinding(&trading, registry, "quick_sell")

	mouse := KeybindingSection{
		Title: "MOUSE",
		Bindings: []Keybinding{
			{"Drag title bar", "Move window"},
			{"Drag border/corner", "Resize window"},
			{"Right-drag", "Resize from nearest edge"},
			{"Taskbar click", "Minimize / restore"},
		},
	}

	sections := []KeybindingSection{}
	for _, s := range []KeybindingSection{desktop, trading, mouse} {
		if len(s.Bindings) > 0 {
			sections = append(sections, s)
		}
	}
	return sections
}

func addBinding(section *KeybindingSection, registry *KeybindRegistry, action string) {
	keys := registry.GetKeysForDisplay(action)
	if keys == "" {
		return
	}
	section.Bindings = append(section.Bindings, Keybinding{
		Key:         keys,
		Description: ActionDescriptions[action],
	})
}

// KeyNormalizer canonicalizes key strings so "Ctrl+A" and "ctrl+a" match.
type KeyNormalizer struct {
	aliases map[string][]string
}

// NewKeyNormalizer returns a normalizer with the common key aliases.
func NewKeyNormalizer() *KeyNormalizer {
	return &KeyNormalizer{
		aliases: map[string][]string{
			"return": {"enter"},
			"enter":  {"return"},
			"escape": {"esc"},
			"esc":    {"escape"},
		},
	}
}

// NormalizeKey returns the canonical key and its aliases.
func (n *KeyNormalizer) NormalizeKey(key string) []string {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return nil
	}

	out := []string{key}
	mods, base := splitModifiers(key)
	for _, alias := range n.aliases[base] {
		out = append(out, mods+alias)
	}
	return out
}

// ValidateKey reports whether key is usable in a binding.
func (n *KeyNormalizer) ValidateKey(key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, fmt.Errorf("empty key")
	}
	_, base := splitModifiers(strings.ToLower(key))
	if base == "" {
		return false, fmt.Errorf("key %q has no base key", key)
	}
	return true, nil
}

func splitModifiers(key string) (mods, base string) {
	idx := strings.LastIndex(key, "+")
	if idx < 0 || idx == len(key)-1 {
		// "+" on its own (or a trailing "+") is the plus key.
		if idx == len(key)-1 && idx > 0 {
			return key[:idx], "+"
		}
		return "", key
	}
	return key[:idx+1], key[idx+1:]
}
