package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"charm.land/log/v2"
	"github.com/Gaurav-Gosain/termdesk/internal/assistant"
	"github.com/Gaurav-Gosain/termdesk/internal/config"
	"github.com/Gaurav-Gosain/termdesk/internal/logging"
	"github.com/Gaurav-Gosain/termdesk/internal/server"
	"github.com/Gaurav-Gosain/termdesk/internal/shell"
	"github.com/Gaurav-Gosain/termdesk/internal/store"
	"github.com/Gaurav-Gosain/termdesk/internal/webview"
	"golang.org/x/term"
)

// desktopDir is the subdirectory of the state dir holding persisted values.
const desktopDir = "desktop"

// filterMouseMotion drops mouse motion unless a window is being moved or
// resized. Apps never need hover events.
func filterMouseMotion(model tea.Model, msg tea.Msg) tea.Msg {
	if _, ok := msg.(tea.MouseMotionMsg); !ok {
		return msg
	}
	if m, ok := model.(*shell.Model); ok && m.Interacting() {
		return msg
	}
	return nil
}

func overrides() config.Overrides {
	return config.Overrides{
		ThemeName:   themeName,
		BorderStyle: borderStyle,
		HideClock:   hideClock,
		Seed:        seed,
	}
}

// loadConfig loads the user config with command-line overrides applied. A
// broken file falls back to the defaults.
func loadConfig(logger *log.Logger) *config.UserConfig {
	cfg, err := config.LoadUserConfig()
	if err != nil {
		logger.Warn("failed to load config, using defaults", "err", err)
		if cfg == nil {
			cfg = config.DefaultConfig()
		}
	}
	config.ApplyOverrides(overrides(), cfg)
	return cfg
}

func newAssistant(cfg *config.UserConfig) assistant.Client {
	client, err := assistant.NewAnthropic(os.Getenv("ANTHROPIC_API_KEY"), cfg.Assistant.Model, int(cfg.Assistant.MaxTokens))
	if err != nil {
		return assistant.Unavailable{Err: err}
	}
	return client
}

func runLocal(ctx context.Context) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("termdesk needs an interactive terminal")
	}

	stateDir, err := config.GetStateDir()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{
		Dir:      stateDir,
		Debug:    debugMode,
		RingSize: config.MaxLogMessages,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	cfg := loadConfig(logger.Logger)

	backend, err := store.NewFileBackend(filepath.Join(stateDir, desktopDir))
	if err != nil {
		return err
	}
	st := store.New(backend, logger.Logger)
	defer func() { _ = st.Close() }()

	fetcher, err := webview.NewFetcher(nil, config.BrowserTimeout, logger.Logger)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	m := shell.New(shell.Options{
		Store:     st,
		Config:    cfg,
		Logger:    logger,
		Assistant: newAssistant(cfg),
		Fetcher:   fetcher,
		SysInfo:   !noSysInfo,
	})
	defer m.Close()

	p := tea.NewProgram(
		m,
		tea.WithFPS(config.NormalFPS),
		tea.WithoutSignalHandler(),
		tea.WithFilter(filterMouseMotion),
	)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	go watchConfig(ctx, p, logger.Logger)

	logger.Info("desktop started", "version", version)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

// watchConfig forwards config file edits to the running desktop.
func watchConfig(ctx context.Context, p *tea.Program, logger *log.Logger) {
	path, err := config.GetConfigPath()
	if err != nil {
		logger.Warn("config reload disabled", "err", err)
		return
	}
	err = config.Watch(ctx, path, func(cfg *config.UserConfig) {
		config.ApplyOverrides(overrides(), cfg)
		logger.Info("config reloaded")
		p.Send(shell.ConfigMsg{Config: cfg})
	}, func(err error) {
		logger.Warn("config reload failed", "err", err)
	})
	if err != nil {
		logger.Warn("config reload disabled", "err", err)
	}
}

func runSSHServer(ctx context.Context, host, port, keyPath string) error {
	level := log.InfoLevel
	if debugMode {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "termdesk",
	})

	cfg := loadConfig(logger)
	fetcher, err := webview.NewFetcher(nil, config.BrowserTimeout, logger)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.New(server.Config{
		Host:      host,
		Port:      port,
		KeyPath:   keyPath,
		Desktop:   cfg,
		Assistant: newAssistant(cfg),
		Fetcher:   fetcher,
		Logger:    logger,
	})
	return srv.ListenAndServe(ctx)
}
