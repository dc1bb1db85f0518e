// Package apps holds the bodies hosted inside desktop windows. Each catalog
// kind has exactly one implementation, registered in the factory table
// below. Apps never touch the window registry: they only render into the
// rectangle the shell gives them and report failures inline.
package apps

import (
	"io"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"charm.land/log/v2"
	"github.com/Gaurav-Gosain/termdesk/internal/assistant"
	"github.com/Gaurav-Gosain/termdesk/internal/catalog"
	"github.com/Gaurav-Gosain/termdesk/internal/config"
	"github.com/Gaurav-Gosain/termdesk/internal/market"
	"github.com/Gaurav-Gosain/termdesk/internal/store"
	"github.com/Gaurav-Gosain/termdesk/internal/theme"
	"github.com/Gaurav-Gosain/termdesk/internal/trading"
	"github.com/Gaurav-Gosain/termdesk/internal/webview"
	"github.com/charmbracelet/x/ansi"
)

// App is the content of one window.
type App interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	// View renders the app into exactly width x height cells.
	View(width, height int) string
}

// Focuser is implemented by apps that track keyboard focus.
type Focuser interface {
	Focus() tea.Cmd
	Blur()
}

// Closer is implemented by apps holding resources past their window.
type Closer interface {
	Close()
}

// Addressed is implemented by messages meant for a single window. The shell
// delivers them only to the app with that id.
type Addressed interface {
	WindowID() string
}

// ClickMsg is a primary press inside an app's content area, relative to its
// top-left cell.
type ClickMsg struct {
	X, Y int
}

// Env is what apps may use. Any collaborator can be nil; apps degrade to an
// inline message in that case.
type Env struct {
	Store     *store.Store
	Book      *trading.Book
	Feed      *market.Feed
	Assistant assistant.Client
	Fetcher   *webview.Fetcher
	Config    *config.UserConfig
	Logger    *log.Logger
	Now       func() time.Time
}

func (e *Env) logger() *log.Logger {
	if e.Logger == nil {
		return log.New(io.Discard)
	}
	return e.Logger
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Env) config() *config.UserConfig {
	if e.Config == nil {
		return config.DefaultConfig()
	}
	return e.Config
}

// Factory builds the app for a window.
type Factory func(id string, env *Env) App

var factories = map[catalog.Kind]Factory{
	catalog.Chart:     func(id string, env *Env) App { return NewChart(id, env) },
	catalog.Ticket:    func(id string, env *Env) App { return NewTicket(id, env) },
	catalog.Ledger:    func(id string, env *Env) App { return NewLedger(id, env) },
	catalog.Notepad:   func(id string, env *Env) App { return NewNotepad(id, env) },
	catalog.Importer:  func(id string, env *Env) App { return NewImporter(id, env) },
	catalog.Assistant: func(id string, env *Env) App { return NewAssistant(id, env) },
	catalog.News:      func(id string, env *Env) App { return NewNews(id, env) },
	catalog.Browser:   func(id string, env *Env) App { return NewBrowser(id, env) },
}

// New builds the app for kind. It reports false for kinds without a
// registered implementation.
func New(kind catalog.Kind, id string, env *Env) (App, bool) {
	f, ok := factories[kind]
	if !ok {
		return nil, false
	}
	if env == nil {
		env = &Env{}
	}
	return f(id, env), true
}

// Fit pads or cuts s to exactly width x height cells.
func Fit(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, l := range lines {
		l = ansi.Truncate(l, width, "")
		if pad := width - ansi.StringWidth(l); pad > 0 {
			l += strings.Repeat(" ", pad)
		}
		lines[i] = l
	}
	return strings.Join(lines, "\n")
}

// withFooter fits body above a one-line footer.
func withFooter(body, footer string, width, height int) string {
	if height <= 1 {
		return Fit(footer, width, height)
	}
	return Fit(body, width, height-1) + "\n" + Fit(footer, width, 1)
}

var (
	mutedStyle = lipgloss.NewStyle()
	errorStyle = lipgloss.NewStyle()
	titleStyle = lipgloss.NewStyle().Bold(true)
)

func muted(s string) string  { return mutedStyle.Foreground(theme.Muted()).Render(s) }
func failed(s string) string { return errorStyle.Foreground(theme.LogError()).Render(s) }
func accent(s string) string { return titleStyle.Foreground(theme.Accent()).Render(s) }

// status renders a one-line footer: the error when set, otherwise hint.
func status(err error, hint string) string {
	if err != nil {
		return failed("! " + err.Error())
	}
	return muted(hint)
}
