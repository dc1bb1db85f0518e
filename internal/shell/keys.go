package shell

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/Gaurav-Gosain/termdesk/internal/config"
	"github.com/Gaurav-Gosain/termdesk/internal/confirm"
	"github.com/Gaurav-Gosain/termdesk/internal/trading"
	"github.com/shopspring/decimal"
)

// hotkeyFilledMsg reports a confirmed hotkey order.
type hotkeyFilledMsg struct {
	Trade trading.Trade
	Err   error
}

type noticeExpiredMsg struct{ seq int }

// isText reports whether msg types printable text rather than a shortcut.
func isText(msg tea.KeyPressMsg) bool {
	return msg.Text != "" && msg.Mod&(tea.ModCtrl|tea.ModAlt) == 0
}

// handleKey routes a key press. The confirmation dialog is modal, then the
// launcher, then global shortcuts, then overlays; anything left goes to the
// focused app.
func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if m.gate.Active() {
		return m.gate.Update(msg)
	}

	key := msg.String()
	action := m.keys.GetAction(key)

	if m.launcher.IsOpen() {
		if action == "open_launcher" || action == "quit" {
			return m.runAction(action)
		}
		return m.launcherKey(msg)
	}

	if action != "" {
		return m.runAction(action)
	}

	if m.showHelp {
		if key == "esc" || key == "q" {
			m.showHelp = false
		}
		return nil
	}
	if m.showLogs {
		return m.logsKey(key)
	}

	if a, ok := m.apps[m.focused]; ok {
		return a.Update(msg)
	}
	return nil
}

func (m *Model) runAction(action string) tea.Cmd {
	switch action {
	case "open_launcher":
		m.launcher.Toggle()
	case "next_window":
		m.cycleFocus(1)
	case "prev_window":
		m.cycleFocus(-1)
	case "close_window":
		m.registry.Close(m.focused)
	case "minimize_window":
		m.registry.ToggleMinimize(m.focused)
	case "maximize_window":
		m.registry.ToggleMaximize(m.focused)
	case "restore_all":
		for _, r := range m.registry.Layout().Records() {
			if r.Minimized {
				m.registry.ToggleMinimize(r.ID)
			}
		}
	case "toggle_help":
		m.showHelp = !m.showHelp
		m.showLogs = false
	case "toggle_logs":
		m.showLogs = !m.showLogs
		m.showHelp = false
		m.logOffset = 0
	case "quit":
		return tea.Quit
	case "quick_buy":
		return m.quickOrder(trading.Buy)
	case "quick_sell":
		return m.quickOrder(trading.Sell)
	}
	return nil
}

// cycleFocus raises the next visible window in registry order.
func (m *Model) cycleFocus(delta int) {
	var ids []string
	for _, r := range m.registry.Layout().Records() {
		if !r.Minimized {
			ids = append(ids, r.ID)
		}
	}
	if len(ids) < 2 {
		return
	}
	cur := 0
	for i, id := range ids {
		if id == m.focused {
			cur = i
			break
		}
	}
	next := (cur + delta + len(ids)) % len(ids)
	m.registry.Focus(ids[next])
}

func (m *Model) launcherKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.launcher.Close()
	case "enter":
		if _, ok := m.launcher.LaunchSelected(); !ok {
			m.notify("no matching app")
			return m.noticeCmd()
		}
	case "up", "shift+tab", "ctrl+p":
		m.launcher.MoveSelection(-1)
	case "down", "tab", "ctrl+n":
		m.launcher.MoveSelection(1)
	case "backspace":
		m.launcher.Backspace()
	default:
		if isText(msg) {
			m.launcher.Type(msg.Text)
		}
	}
	return nil
}

func (m *Model) logsKey(key string) tea.Cmd {
	switch key {
	case "esc", "q":
		m.showLogs = false
	case "up", "k":
		m.logOffset = min(m.logOffset+1, max(m.ring.Len()-1, 0))
	case "down", "j":
		m.logOffset = max(m.logOffset-1, 0)
	case "home", "g":
		m.logOffset = max(m.ring.Len()-1, 0)
	case "end", "G":
		m.logOffset = 0
	}
	return nil
}

// quickOrder is the hotkey path: a market order for the configured
// quantity at the last price. It goes through the confirmation gate and
// fills with Book.QuickFill, not the ticket's Book.Fill.
func (m *Model) quickOrder(side trading.Side) tea.Cmd {
	last := m.feed.Last()
	if last <= 0 {
		m.notify("no market price yet")
		return m.noticeCmd()
	}
	qty := m.cfg.Trading.HotkeyQuantity
	price := decimal.NewFromFloat(last).Round(2)
	symbol, book := m.feed.Symbol, m.book

	prompt := fmt.Sprintf("Market %s %d %s @ %s?", strings.ToUpper(string(side)), qty, symbol, price.StringFixed(2))
	return confirm.Request(prompt, func() tea.Msg {
		tr, err := book.QuickFill(symbol, side, qty, price)
		return hotkeyFilledMsg{Trade: tr, Err: err}
	})
}

func (m *Model) handleHotkeyFill(msg hotkeyFilledMsg) tea.Cmd {
	if msg.Err != nil {
		m.logger.Warn("hotkey order rejected", "err", msg.Err)
		m.notify("order rejected: " + msg.Err.Error())
		return m.noticeCmd()
	}
	t := msg.Trade
	m.notify(fmt.Sprintf("filled %s %s %s @ %s", t.Side, t.Quantity, t.Symbol, t.Price.StringFixed(2)))
	return m.noticeCmd()
}

func (m *Model) notify(text string) {
	m.notice = text
	m.noticeSeq++
}

// noticeCmd clears the current notice after a while.
func (m *Model) noticeCmd() tea.Cmd {
	if m.notice == "" {
		return nil
	}
	seq := m.noticeSeq
	return tea.Tick(config.NotificationDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}
