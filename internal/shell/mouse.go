package shell

import (
	tea "charm.land/bubbletea/v2"
	"github.com/Gaurav-Gosain/termdesk/internal/apps"
	"github.com/Gaurav-Gosain/termdesk/internal/interact"
	"github.com/Gaurav-Gosain/termdesk/internal/window"
)

// control is a title bar button.
type control int

const (
	noControl control = iota
	minimizeControl
	maximizeControl
	closeControl
)

// controlsWidth is the width of " − □ × " at the right of the title row.
const controlsWidth = 7

// controlAt maps a point on the title row to a button. The buttons sit at
// fixed offsets from the right corner.
func controlAt(g window.Geometry, x, y int) control {
	if y != g.Y || g.Width < controlsWidth+3 {
		return noControl
	}
	switch g.Right() - x {
	case 7:
		return minimizeControl
	case 5:
		return maximizeControl
	case 3:
		return closeControl
	}
	return noControl
}

// contentArea is the inside of a window's border.
func contentArea(g window.Geometry) window.Geometry {
	return window.Geometry{X: g.X + 1, Y: g.Y + 1, Width: max(g.Width-2, 0), Height: max(g.Height-2, 0)}
}

func (m *Model) handleClick(ev tea.Mouse) tea.Cmd {
	if m.gate.Active() {
		return nil
	}
	if m.launcher.IsOpen() {
		m.launcherClick(ev.X, ev.Y)
		return nil
	}
	if m.showHelp || m.showLogs {
		m.showHelp, m.showLogs = false, false
		return nil
	}

	if ev.Y >= m.desktop().Height {
		return m.taskbarClick(ev.X)
	}

	desktop := m.desktop()
	rec, ok := m.registry.Layout().HitTest(ev.X, ev.Y, desktop)
	if !ok {
		return nil
	}
	g := window.Effective(rec, desktop)
	p := interact.Point{X: ev.X, Y: ev.Y}

	if ev.Button == tea.MouseLeft {
		switch controlAt(g, ev.X, ev.Y) {
		case minimizeControl:
			m.registry.ToggleMinimize(rec.ID)
			return nil
		case maximizeControl:
			m.registry.ToggleMaximize(rec.ID)
			m.registry.Focus(rec.ID)
			return nil
		case closeControl:
			m.registry.Close(rec.ID)
			return nil
		}
	}

	if ev.Button != tea.MouseLeft && ev.Button != tea.MouseRight {
		return nil
	}
	if h, ok := interact.HandleAt(g, p, ev.Button == tea.MouseRight); ok {
		m.controller.Begin(rec.ID, h, p)
		return nil
	}

	// Content press: raise the window and let the app see the click.
	m.registry.Focus(rec.ID)
	inner := contentArea(g)
	if a, ok := m.apps[rec.ID]; ok {
		return a.Update(apps.ClickMsg{X: ev.X - inner.X, Y: ev.Y - inner.Y})
	}
	return nil
}

func (m *Model) handleWheel(msg tea.MouseWheelMsg) tea.Cmd {
	if m.gate.Active() || m.launcher.IsOpen() {
		return nil
	}
	if m.showLogs {
		switch msg.Button {
		case tea.MouseWheelUp:
			m.logsKey("up")
		case tea.MouseWheelDown:
			m.logsKey("down")
		}
		return nil
	}
	desktop := m.desktop()
	rec, ok := m.registry.Layout().HitTest(msg.X, msg.Y, desktop)
	if !ok || !contentArea(window.Effective(rec, desktop)).Contains(msg.X, msg.Y) {
		return nil
	}
	if a, ok := m.apps[rec.ID]; ok {
		return a.Update(msg)
	}
	return nil
}

// taskbarClick toggles the clicked window's minimized state and raises it
// when it comes back.
func (m *Model) taskbarClick(x int) tea.Cmd {
	if x < len([]rune(appsButton)) {
		m.launcher.Toggle()
		return nil
	}
	for _, item := range m.taskbarItems() {
		if x < item.x0 || x >= item.x1 || item.id == "" {
			continue
		}
		rec, ok := m.registry.Find(item.id)
		if !ok {
			return nil
		}
		m.registry.ToggleMinimize(rec.ID)
		if rec.Minimized {
			m.registry.Focus(rec.ID)
		}
		return nil
	}
	return nil
}

func (m *Model) launcherClick(x, y int) {
	box := m.launcherBox()
	if !box.Contains(x, y) {
		m.launcher.Close()
		return
	}
	row := y - box.Y - launcherHeaderRows
	matches := m.launcher.Matches()
	if row >= 0 && row < len(matches) && row < launcherMaxRows {
		m.launcher.Launch(matches[row].Kind)
	}
}
