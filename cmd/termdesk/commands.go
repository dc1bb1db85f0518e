package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/Gaurav-Gosain/termdesk/internal/config"
	"github.com/Gaurav-Gosain/termdesk/internal/store"
	"github.com/Gaurav-Gosain/termdesk/internal/window"
	"github.com/charmbracelet/colorprofile"
)

// stdout downsamples colors to what the terminal supports, or strips them
// when piped.
var stdout = colorprofile.NewWriter(os.Stdout, os.Environ())

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func printConfigPath() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}
	fmt.Println(path)
	return nil
}

// editConfigFile opens the config file in $EDITOR
func editConfigFile() error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		fmt.Printf("Config file doesn't exist, creating default at: %s\n", configPath)
		if _, err := config.LoadUserConfig(); err != nil {
			return fmt.Errorf("could not create config file: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"vim", "vi", "nano", "emacs"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return errors.New("no editor found. Please set $EDITOR environment variable")
	}

	cmd := exec.Command(editor, configPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// confirmPrompt asks a yes/no question on stdin.
func confirmPrompt(question string) bool {
	fmt.Printf("%s (yes/no): ", question)
	var response string
	_, _ = fmt.Scanln(&response)
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "yes" || response == "y"
}

func resetConfigToDefaults() error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Warning: This will overwrite your existing configuration at:\n")
		fmt.Printf("  %s\n\n", configPath)
		if !confirmPrompt("Are you sure you want to reset to defaults?") {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	if err := config.WriteConfig(configPath, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("Configuration reset to defaults\n")
	fmt.Printf("  Location: %s\n", configPath)
	fmt.Println("\nYou can customize it with: termdesk config edit")
	return nil
}

// listKeybindings prints the same sections the help overlay shows.
func listKeybindings() error {
	userConfig, err := config.LoadUserConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintln(os.Stderr, "Using default keybindings...")
		userConfig = config.DefaultConfig()
	}
	config.ApplyOverrides(overrides(), userConfig)
	registry := config.NewKeybindRegistry(userConfig)

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, titleStyle.Render("TermDesk Keybindings"))
	fmt.Fprintln(stdout)

	for _, section := range config.GetKeybindings(registry) {
		t := newTable("Keys", "Action")
		for _, b := range section.Bindings {
			t.Row(b.Key, b.Description)
		}
		fmt.Fprintln(stdout, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")).Render(section.Title))
		fmt.Fprintln(stdout, t.String())
		fmt.Fprintln(stdout)
	}
	return nil
}

// openDesktopStore opens the persisted desktop state used by the local
// desktop.
func openDesktopStore() (*store.Store, error) {
	stateDir, err := config.GetStateDir()
	if err != nil {
		return nil, err
	}
	backend, err := store.NewFileBackend(filepath.Join(stateDir, desktopDir))
	if err != nil {
		return nil, err
	}
	return store.New(backend, nil), nil
}

func showLayout() error {
	st, err := openDesktopStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	records := store.Open(st, window.LayoutKey, []window.Record{}).Get()
	if len(records) == 0 {
		fmt.Fprintln(stdout, dimStyle.Render("No saved windows."))
		return nil
	}

	t := newTable("Title", "App", "Position", "Size", "Z", "State")
	for _, r := range records {
		state := "open"
		switch {
		case r.Minimized:
			state = "minimized"
		case r.Maximized:
			state = "maximized"
		}
		g := r.Geometry
		t.Row(
			r.Title,
			string(r.Kind),
			fmt.Sprintf("%d,%d", g.X, g.Y),
			fmt.Sprintf("%dx%d", g.Width, g.Height),
			strconv.Itoa(r.Z),
			state,
		)
	}
	fmt.Fprintln(stdout, t.String())
	return nil
}

func resetLayout() error {
	if !confirmPrompt("Close every saved window?") {
		fmt.Println("Reset cancelled.")
		return nil
	}
	st, err := openDesktopStore()
	if err != nil {
		return err
	}
	window.NewRegistry(st, window.Policy{}, nil).Reset()
	if err := st.Close(); err != nil {
		return err
	}
	fmt.Println("Layout reset.")
	return nil
}
