// Package shell is the desktop's root Bubble Tea model. It owns the window
// registry and wires the launcher, the drag/resize controller, the
// confirmation gate, the taskbar and the app instances together.
package shell

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/log/v2"
	"github.com/Gaurav-Gosain/termdesk/internal/apps"
	"github.com/Gaurav-Gosain/termdesk/internal/assistant"
	"github.com/Gaurav-Gosain/termdesk/internal/config"
	"github.com/Gaurav-Gosain/termdesk/internal/confirm"
	"github.com/Gaurav-Gosain/termdesk/internal/interact"
	"github.com/Gaurav-Gosain/termdesk/internal/launcher"
	"github.com/Gaurav-Gosain/termdesk/internal/logging"
	"github.com/Gaurav-Gosain/termdesk/internal/market"
	"github.com/Gaurav-Gosain/termdesk/internal/store"
	"github.com/Gaurav-Gosain/termdesk/internal/theme"
	"github.com/Gaurav-Gosain/termdesk/internal/trading"
	"github.com/Gaurav-Gosain/termdesk/internal/webview"
	"github.com/Gaurav-Gosain/termdesk/internal/window"
)

// Options configures New.
type Options struct {
	Store     *store.Store
	Config    *config.UserConfig
	Logger    *logging.Logger
	Assistant assistant.Client
	Fetcher   *webview.Fetcher

	// Width and Height seed the screen size until the first WindowSizeMsg.
	Width  int
	Height int

	// SysInfo enables the CPU and memory readout in the taskbar.
	SysInfo bool

	Now func() time.Time
}

// ConfigMsg delivers a reloaded configuration.
type ConfigMsg struct {
	Config *config.UserConfig
}

// Model is the desktop.
type Model struct {
	cfg    *config.UserConfig
	keys   *config.KeybindRegistry
	logger *log.Logger
	ring   *logging.Ring
	now    func() time.Time

	store      *store.Store
	registry   *window.Registry
	bus        *interact.Bus
	controller *interact.Controller
	launcher   *launcher.Launcher
	gate       confirm.Gate

	book *trading.Book
	feed *market.Feed
	env  *apps.Env

	apps    map[string]apps.App
	focused string
	queued  []tea.Cmd

	width, height int

	showHelp  bool
	showLogs  bool
	logOffset int

	sysInfo     bool
	sys         sysInfo
	notice      string
	noticeSeq   int
	unsubscribe func()
}

// New builds the desktop and restores the persisted layout from opts.Store.
func New(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	lg := opts.Logger
	if lg == nil {
		lg = logging.Discard()
	}
	s := opts.Store
	if s == nil {
		s = store.New(store.NewMemoryBackend(), lg.Logger)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	theme.Initialize(cfg.Appearance.Theme)

	registry := window.NewRegistry(s, policyFor(cfg), lg.Logger)
	bus := interact.NewBus()
	book := trading.NewBook(s, lg.Logger)
	feed := newFeed(cfg, now())

	m := &Model{
		cfg:        cfg,
		keys:       config.NewKeybindRegistry(cfg),
		logger:     lg.With("component", "shell"),
		ring:       lg.Ring,
		now:        now,
		store:      s,
		registry:   registry,
		bus:        bus,
		controller: interact.NewController(bus, registry, minFor(cfg), lg.Logger),
		launcher:   launcher.New(registry),
		book:       book,
		feed:       feed,
		apps:       make(map[string]apps.App),
		width:      opts.Width,
		height:     opts.Height,
		sysInfo:    opts.SysInfo && !cfg.Appearance.HideSysInfo,
	}
	m.env = &apps.Env{
		Store:     s,
		Book:      book,
		Feed:      feed,
		Assistant: opts.Assistant,
		Fetcher:   opts.Fetcher,
		Config:    cfg,
		Logger:    lg.Logger,
		Now:       now,
	}

	m.unsubscribe = registry.Subscribe(func(ev window.Event) {
		m.reconcile(ev.Layout)
	})
	m.reconcile(registry.Layout())
	return m
}

func newFeed(cfg *config.UserConfig, epoch time.Time) *market.Feed {
	g := market.NewGenerator(market.GeneratorConfig{
		Start:      cfg.Market.StartPrice,
		Volatility: cfg.Market.Volatility,
		Interval:   cfg.Market.Interval(),
		Seed:       uint64(cfg.Market.Seed),
		Epoch:      epoch,
	})
	feed := market.NewFeed(cfg.Market.Symbol, g, cfg.Market.Interval(), config.MaxSeriesCandles)
	feed.Prime(config.MaxSeriesCandles / 2)
	return feed
}

func policyFor(cfg *config.UserConfig) window.Policy {
	return window.Policy{
		CascadeBase:  cfg.Desktop.CascadeBase,
		CascadeStep:  cfg.Desktop.CascadeStep,
		CascadeSlots: cfg.Desktop.CascadeSlots,
		Min:          minFor(cfg),
	}
}

func minFor(cfg *config.UserConfig) window.Size {
	return window.Size{Width: cfg.Desktop.MinWindowWidth, Height: cfg.Desktop.MinWindowHeight}
}

// Registry exposes the window registry.
func (m *Model) Registry() *window.Registry { return m.registry }

// Book exposes the trading book.
func (m *Model) Book() *trading.Book { return m.book }

// App returns the live app for a window id.
func (m *Model) App(id string) (apps.App, bool) {
	a, ok := m.apps[id]
	return a, ok
}

// Focused returns the id of the window receiving keys.
func (m *Model) Focused() string { return m.focused }

// Interacting reports whether a move or resize is in progress.
func (m *Model) Interacting() bool {
	_, ok := m.controller.Active()
	return ok
}

// Close releases everything the desktop started. The store is left to its
// owner.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.controller.Cancel()
	for id, a := range m.apps {
		if c, ok := a.(apps.Closer); ok {
			c.Close()
		}
		delete(m.apps, id)
	}
	m.feed.Stop()
}

// desktop is the area windows live in: the screen minus the taskbar.
func (m *Model) desktop() window.Geometry {
	return window.Geometry{Width: m.width, Height: max(m.height-config.TaskbarHeight, 0)}
}

// reconcile creates apps for new windows, closes apps whose windows are gone
// and moves keyboard focus to the topmost visible window. A gesture on a
// window that no longer exists is cancelled.
func (m *Model) reconcile(l window.Layout) {
	if s, ok := m.controller.Active(); ok {
		if _, live := l.Find(s.ID()); !live {
			m.controller.Cancel()
		}
	}
	live := make(map[string]bool, l.Len())
	for _, rec := range l.Records() {
		live[rec.ID] = true
		if _, ok := m.apps[rec.ID]; ok {
			continue
		}
		a, ok := apps.New(rec.Kind, rec.ID, m.env)
		if !ok {
			continue
		}
		m.apps[rec.ID] = a
		m.queue(a.Init())
	}
	for id, a := range m.apps {
		if live[id] {
			continue
		}
		if c, ok := a.(apps.Closer); ok {
			c.Close()
		}
		delete(m.apps, id)
		if m.focused == id {
			m.focused = ""
		}
	}
	m.syncFocus(l)
}

func (m *Model) syncFocus(l window.Layout) {
	next := ""
	if visible := l.Visible(); len(visible) > 0 {
		next = visible[len(visible)-1].ID
	}
	if next == m.focused {
		return
	}
	if f, ok := m.apps[m.focused].(apps.Focuser); ok {
		f.Blur()
	}
	m.focused = next
	if f, ok := m.apps[next].(apps.Focuser); ok {
		m.queue(f.Focus())
	}
}

func (m *Model) queue(cmd tea.Cmd) {
	if cmd != nil {
		m.queued = append(m.queued, cmd)
	}
}

// drain returns and clears commands produced by registry callbacks.
func (m *Model) drain() []tea.Cmd {
	out := m.queued
	m.queued = nil
	return out
}

func (m *Model) Init() tea.Cmd {
	cmds := append(m.drain(), m.feed.Tick())
	if m.sysInfo {
		cmds = append(cmds, sampleSysInfo(0))
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.update(msg)}
	cmds = append(cmds, m.drain()...)
	return m, tea.Batch(cmds...)
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseClickMsg:
		return m.handleClick(tea.Mouse(msg))
	case tea.MouseMotionMsg:
		m.bus.DispatchMove(interact.Point{X: msg.X, Y: msg.Y})
		return nil
	case tea.MouseReleaseMsg:
		m.bus.DispatchUp(interact.Point{X: msg.X, Y: msg.Y})
		return nil
	case tea.MouseWheelMsg:
		return m.handleWheel(msg)

	case market.TickMsg:
		return tea.Batch(m.feed.Update(msg), m.broadcast(msg))

	case sysInfoMsg:
		return m.handleSysInfo(msg)

	case ConfigMsg:
		m.applyConfig(msg.Config)
		return nil

	case confirm.RequestMsg:
		m.gate.Open(msg)
		return nil

	case hotkeyFilledMsg:
		return m.handleHotkeyFill(msg)

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return nil

	case apps.Addressed:
		if a, ok := m.apps[msg.WindowID()]; ok {
			return a.Update(msg)
		}
		return nil
	}

	return m.broadcast(msg)
}

// broadcast hands msg to every app. Apps ignore what they do not use.
func (m *Model) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, a := range m.apps {
		cmds = append(cmds, a.Update(msg))
	}
	return tea.Batch(cmds...)
}

// applyConfig re-applies a reloaded config. The market feed keeps running
// with the settings it started with.
func (m *Model) applyConfig(cfg *config.UserConfig) {
	if cfg == nil {
		return
	}
	m.cfg = cfg
	m.env.Config = cfg
	m.keys = config.NewKeybindRegistry(cfg)
	theme.Initialize(cfg.Appearance.Theme)
	m.registry.SetPolicy(policyFor(cfg))
	m.controller.SetMin(minFor(cfg))
	m.logger.Info("configuration reloaded")
}

func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeAllMotion
	v.WindowTitle = "TermDesk"
	return v
}
