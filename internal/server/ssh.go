// Package server serves the TermDesk desktop over SSH.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"charm.land/log/v2"
	"charm.land/wish/v2"
	"charm.land/wish/v2/bubbletea"
	"charm.land/wish/v2/logging"
	"github.com/Gaurav-Gosain/termdesk/internal/assistant"
	"github.com/Gaurav-Gosain/termdesk/internal/config"
	"github.com/Gaurav-Gosain/termdesk/internal/shell"
	"github.com/Gaurav-Gosain/termdesk/internal/store"
	"github.com/Gaurav-Gosain/termdesk/internal/webview"
	"github.com/charmbracelet/ssh"
)

// Config holds configuration for the SSH server.
type Config struct {
	Host    string
	Port    string
	KeyPath string

	// Desktop is shared by every session. Layouts, notes and positions are
	// per session and live only in memory.
	Desktop   *config.UserConfig
	Assistant assistant.Client
	Fetcher   *webview.Fetcher
	Logger    *log.Logger
}

// Server runs one desktop per SSH session.
type Server struct {
	cfg Config
}

// New returns a server for cfg.
func New(cfg Config) *Server {
	if cfg.Desktop == nil {
		cfg.Desktop = config.DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Server{cfg: cfg}
}

// hostKeyPath returns the configured key path or ~/.ssh/termdesk_host_key.
func (s *Server) hostKeyPath() (string, error) {
	if s.cfg.KeyPath != "" {
		return s.cfg.KeyPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".ssh", "termdesk_host_key"), nil
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	keyPath, err := s.hostKeyPath()
	if err != nil {
		return err
	}

	srv, err := wish.NewServer(
		wish.WithAddress(net.JoinHostPort(s.cfg.Host, s.cfg.Port)),
		wish.WithHostKeyPath(keyPath),
		wish.WithMiddleware(
			bubbletea.Middleware(s.teaHandler),
			logging.Middleware(),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create SSH server: %w", err)
	}

	errc := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("starting SSH server", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, ssh.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.cfg.Logger.Info("shutting down SSH server")
	return srv.Shutdown(context.Background())
}

// teaHandler creates a desktop for one session.
func (s *Server) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, active := sess.Pty()
	if !active {
		wish.Fatalln(sess, "termdesk needs an interactive terminal (ssh -t)")
		return nil, nil
	}

	logger := s.cfg.Logger.With("user", sess.User(), "remote", sess.RemoteAddr().String())
	st := store.New(store.NewMemoryBackend(), logger)

	m := shell.New(shell.Options{
		Store:     st,
		Config:    s.cfg.Desktop,
		Assistant: s.cfg.Assistant,
		Fetcher:   s.cfg.Fetcher,
		Width:     pty.Window.Width,
		Height:    pty.Window.Height,
	})
	logger.Info("session started", "size", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

	go func() {
		<-sess.Context().Done()
		m.Close()
		_ = st.Close()
		logger.Info("session ended")
	}()

	return m, []tea.ProgramOption{
		tea.WithFPS(config.NormalFPS),
	}
}
