// Package main implements TermDesk, a trading desk that runs in the terminal.
// Charts, order tickets, a ledger and helper apps open as overlapping windows
// that can be moved, resized, minimized and maximized with mouse or keyboard.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Global flags
var (
	debugMode   bool
	themeName   string
	borderStyle string
	hideClock   bool
	seed        int64
	noSysInfo   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "termdesk",
		Short: "A trading desk for the terminal",
		Long: `TermDesk - a trading desk for the terminal

Open price charts, order tickets, a positions ledger and helper apps as
windows on a desktop. Every order passes through a confirmation dialog and
the layout is restored on the next start.`,
		Example: `  # Run TermDesk
  termdesk

  # Use another theme and a fixed market seed
  termdesk --theme dracula --seed 42

  # Serve the desktop over SSH
  termdesk ssh --port 2222

  # Edit configuration
  termdesk config edit

  # List all keybindings
  termdesk keybinds list`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocal(cmd.Context())
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "", "Theme name (see bubbletint)")
	rootCmd.PersistentFlags().StringVar(&borderStyle, "border-style", "", "Window border: rounded, normal, thick, double, ascii")
	rootCmd.PersistentFlags().BoolVar(&hideClock, "hide-clock", false, "Hide the taskbar clock")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Seed for the simulated market feed")
	rootCmd.Flags().BoolVar(&noSysInfo, "no-sysinfo", false, "Hide CPU and memory usage in the taskbar")

	var sshPort, sshHost, sshKeyPath string

	sshCmd := &cobra.Command{
		Use:   "ssh",
		Short: "Serve TermDesk over SSH",
		Long: `Serve TermDesk over SSH

Every connection gets its own desktop. Layouts, notes and positions of SSH
sessions are kept in memory and discarded when the session ends.`,
		Example: `  # Start SSH server on default port
  termdesk ssh

  # Specify custom host key
  termdesk ssh --key-path /path/to/host_key`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSSHServer(cmd.Context(), sshHost, sshPort, sshKeyPath)
		},
	}

	sshCmd.Flags().StringVar(&sshPort, "port", "2222", "SSH server port")
	sshCmd.Flags().StringVar(&sshHost, "host", "localhost", "SSH server host")
	sshCmd.Flags().StringVar(&sshKeyPath, "key-path", "", "Path to SSH host key (auto-generated if not specified)")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage TermDesk configuration",
	}
	configCmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print configuration file path",
			RunE: func(cmd *cobra.Command, args []string) error {
				return printConfigPath()
			},
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Edit configuration in $EDITOR",
			Long: `Open the TermDesk configuration file in your default editor

The editor is determined by checking $EDITOR, $VISUAL, or common editors
like vim, vi, nano, and emacs in that order. A running desktop picks up
saved changes without a restart.`,
			RunE: func(cmd *cobra.Command, args []string) error {
				return editConfigFile()
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Reset configuration to defaults",
			RunE: func(cmd *cobra.Command, args []string) error {
				return resetConfigToDefaults()
			},
		},
	)

	keybindsCmd := &cobra.Command{
		Use:     "keybinds",
		Aliases: []string{"keys", "kb"},
		Short:   "View keybinding configuration",
	}
	keybindsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all keybindings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listKeybindings()
		},
	})

	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "Inspect the saved window layout",
	}
	layoutCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the saved windows",
			RunE: func(cmd *cobra.Command, args []string) error {
				return showLayout()
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Close every saved window",
			RunE: func(cmd *cobra.Command, args []string) error {
				return resetLayout()
			},
		},
	)

	rootCmd.AddCommand(sshCmd, configCmd, keybindsCmd, layoutCmd)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s\nBy: %s", version, commit, date, builtBy)),
	); err != nil {
		os.Exit(1)
	}
}
