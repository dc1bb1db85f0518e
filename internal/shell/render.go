package shell

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/Gaurav-Gosain/termdesk/internal/apps"
	"github.com/Gaurav-Gosain/termdesk/internal/config"
	"github.com/Gaurav-Gosain/termdesk/internal/theme"
	"github.com/Gaurav-Gosain/termdesk/internal/window"
	"github.com/charmbracelet/x/ansi"
)

const (
	appsButton = " ≡ Apps "

	taskbarItemMax = 18

	launcherInnerWidth = 36
	launcherMaxRows    = 8
	// launcherHeaderRows is the border, title and query rows above the list.
	launcherHeaderRows = 3
)

// borderFor maps the configured style name to a lipgloss border.
func borderFor(name string) lipgloss.Border {
	switch name {
	case "normal":
		return lipgloss.NormalBorder()
	case "thick":
		return lipgloss.ThickBorder()
	case "double":
		return lipgloss.DoubleBorder()
	case "ascii":
		return lipgloss.ASCIIBorder()
	}
	return lipgloss.RoundedBorder()
}

func (m *Model) render() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	desktop := m.desktop()
	layout := m.registry.Layout()

	layers := []*lipgloss.Layer{
		lipgloss.NewLayer(m.renderBackground(desktop, layout.Len() == 0)).Z(config.ZIndexBackground),
	}

	for _, rec := range layout.Visible() {
		g := window.Effective(rec, desktop)
		content, x, y := clip(m.renderWindow(rec, g, rec.ID == m.focused), g.X, g.Y, desktop.Width, desktop.Height)
		if content == "" {
			continue
		}
		layers = append(layers, lipgloss.NewLayer(content).X(x).Y(y).Z(rec.Z).ID(rec.ID))
	}

	if desktop.Height < m.height {
		layers = append(layers, lipgloss.NewLayer(m.renderTaskbar()).X(0).Y(desktop.Height).Z(config.ZIndexTaskbar))
	}

	layers = append(layers, m.overlays(desktop)...)

	canvas := lipgloss.NewCanvas(m.width, m.height)
	return canvas.Compose(lipgloss.NewCompositor(layers...)).Render()
}

// clip cuts a rendered block placed at (x, y) to a w x h viewport.
func clip(content string, x, y, w, h int) (string, int, int) {
	left, right := max(0, -x), w-x
	if right <= left {
		return "", 0, 0
	}
	var out []string
	for i, line := range strings.Split(content, "\n") {
		row := y + i
		if row < 0 {
			continue
		}
		if row >= h {
			break
		}
		out = append(out, ansi.Cut(line, left, right))
	}
	if len(out) == 0 {
		return "", 0, 0
	}
	return strings.Join(out, "\n"), max(x, 0), max(y, 0)
}

func (m *Model) renderBackground(desktop window.Geometry, empty bool) string {
	bg := lipgloss.NewStyle().Background(theme.DesktopBg()).Foreground(theme.DesktopFg())
	blank := bg.Render(strings.Repeat(" ", m.width))

	lines := make([]string, m.height)
	for i := range lines {
		lines[i] = blank
	}
	if empty && desktop.Height > 2 {
		hint := fmt.Sprintf("press %s to open an app", m.keys.GetKeysForDisplay("open_launcher"))
		lines[desktop.Height/2] = bg.Render(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, ansi.Truncate(hint, m.width, "")))
	}
	return strings.Join(lines, "\n")
}

// renderWindow draws the chrome around an app's view. The title row carries
// the minimize, maximize and close buttons at the offsets controlAt expects.
func (m *Model) renderWindow(rec window.Record, g window.Geometry, focused bool) string {
	if g.Width < 2 || g.Height < 2 {
		return ""
	}
	border := borderFor(m.cfg.Appearance.BorderStyle)
	color, titleColor := theme.BorderUnfocused(), theme.TitleUnfocused()
	if focused {
		color, titleColor = theme.BorderFocused(), theme.TitleFocused()
	}
	edge := lipgloss.NewStyle().Foreground(color).Render
	inner := g.Width - 2

	titleSpace := inner
	controls := ""
	if g.Width >= controlsWidth+3 {
		titleSpace -= controlsWidth
		btn := lipgloss.NewStyle().Foreground(theme.ButtonFg())
		closeBtn := lipgloss.NewStyle().Foreground(theme.ButtonClose()).Bold(true)
		controls = " " + btn.Render("−") + " " + btn.Render("□") + " " + closeBtn.Render("×") + " "
	}
	title := ansi.Truncate(" "+rec.Title+" ", titleSpace, "…")
	fill := max(titleSpace-ansi.StringWidth(title), 0)

	var b strings.Builder
	b.WriteString(edge(border.TopLeft))
	b.WriteString(lipgloss.NewStyle().Foreground(titleColor).Bold(focused).Render(title))
	b.WriteString(edge(strings.Repeat(border.Top, fill)))
	b.WriteString(controls)
	b.WriteString(edge(border.TopRight))

	if body := g.Height - 2; body > 0 {
		content := ""
		if a, ok := m.apps[rec.ID]; ok {
			content = a.View(inner, body)
		}
		left, right := edge(border.Left), edge(border.Right)
		for _, line := range strings.Split(apps.Fit(content, inner, body), "\n") {
			b.WriteString("\n")
			b.WriteString(left)
			b.WriteString(line)
			b.WriteString(right)
		}
	}

	b.WriteString("\n")
	b.WriteString(edge(border.BottomLeft + strings.Repeat(border.Bottom, inner) + border.BottomRight))
	return b.String()
}

type taskItem struct {
	id     string
	label  string
	x0, x1 int
}

// taskbarStatus is the plain right-hand side of the taskbar.
func (m *Model) taskbarStatus() string {
	parts := []string{fmt.Sprintf("%s %.2f", m.feed.Symbol, m.feed.Last())}
	parts = append(parts, "P&L "+m.book.Realized().StringFixed(2))
	if m.sys.ok {
		parts = append(parts, fmt.Sprintf("CPU %3.0f%% MEM %3.0f%%", m.sys.cpu, m.sys.mem))
	}
	if !m.cfg.Appearance.HideClock {
		parts = append(parts, m.now().Format("15:04"))
	}
	return " " + strings.Join(parts, " │ ") + " "
}

// taskbarItems lays out one entry per window in registry order. When the
// bar runs out of room the remaining windows collapse into a trailing "+N"
// entry with no id.
func (m *Model) taskbarItems() []taskItem {
	limit := m.width - ansi.StringWidth(m.taskbarStatus()) - 1
	x := ansi.StringWidth(appsButton) + 1

	records := m.registry.Layout().Records()
	var items []taskItem
	for i, r := range records {
		label := " " + ansi.Truncate(r.Title, taskbarItemMax, "…") + " "
		w := ansi.StringWidth(label)
		reserve := 0
		if rest := len(records) - i - 1; rest > 0 {
			reserve = ansi.StringWidth(overflowLabel(rest)) + 1
		}
		if x+w+reserve > limit {
			marker := overflowLabel(len(records) - i)
			if mw := ansi.StringWidth(marker); x+mw <= limit {
				items = append(items, taskItem{label: marker, x0: x, x1: x + mw})
			}
			break
		}
		items = append(items, taskItem{id: r.ID, label: label, x0: x, x1: x + w})
		x += w + 1
	}
	return items
}

func overflowLabel(hidden int) string { return fmt.Sprintf(" +%d ", hidden) }

func (m *Model) renderTaskbar() string {
	bar := lipgloss.NewStyle().Background(theme.TaskbarBg()).Foreground(theme.TaskbarFg())
	active := bar.Foreground(theme.TaskbarActive()).Bold(true).Reverse(true)
	dimmed := bar.Foreground(theme.TaskbarDimmed()).Italic(true)

	var b strings.Builder
	x := 0
	pad := func(to int) {
		if to > x {
			b.WriteString(bar.Render(strings.Repeat(" ", to-x)))
			x = to
		}
	}

	b.WriteString(bar.Foreground(theme.Accent()).Bold(true).Render(appsButton))
	x = ansi.StringWidth(appsButton)

	for _, item := range m.taskbarItems() {
		pad(item.x0)
		style := bar
		if item.id == "" {
			style = dimmed
		} else if rec, ok := m.registry.Find(item.id); ok {
			switch {
			case rec.Minimized:
				style = dimmed
			case rec.ID == m.focused:
				style = active
			}
		}
		b.WriteString(style.Render(item.label))
		x = item.x1
	}

	status := m.taskbarStatus()
	pad(m.width - ansi.StringWidth(status))
	b.WriteString(bar.Render(status))
	return ansi.Truncate(b.String(), m.width, "")
}

func (m *Model) overlays(desktop window.Geometry) []*lipgloss.Layer {
	var layers []*lipgloss.Layer
	center := func(content string, z int) {
		w, h := lipgloss.Width(content), lipgloss.Height(content)
		x := max((m.width-w)/2, 0)
		y := max((desktop.Height-h)/2, 0)
		layers = append(layers, lipgloss.NewLayer(content).X(x).Y(y).Z(z))
	}

	if m.showHelp {
		center(m.renderHelp(), config.ZIndexOverlay)
	}
	if m.showLogs {
		center(m.renderLogs(desktop), config.ZIndexOverlay)
	}
	if m.launcher.IsOpen() {
		box := m.launcherBox()
		layers = append(layers, lipgloss.NewLayer(m.renderLauncher()).X(box.X).Y(box.Y).Z(config.ZIndexLauncher))
	}
	if req, ok := m.gate.Pending(); ok {
		center(m.renderDialog(req.Message), config.ZIndexDialog)
	}
	if m.notice != "" && desktop.Height > 0 {
		n := lipgloss.NewStyle().Foreground(theme.OverlayBg()).Background(theme.Accent()).Render(" " + m.notice + " ")
		x := max(m.width-lipgloss.Width(n)-1, 0)
		layers = append(layers, lipgloss.NewLayer(n).X(x).Y(desktop.Height-1).Z(config.ZIndexOverlay))
	}
	return layers
}

// launcherBox is where the launcher is drawn; mouse hits use the same box.
func (m *Model) launcherBox() window.Geometry {
	rows := max(min(len(m.launcher.Matches()), launcherMaxRows), 1)
	w := launcherInnerWidth + 2
	h := launcherHeaderRows + rows + 1
	return window.Geometry{
		X:      max((m.width-w)/2, 0),
		Y:      max((m.desktop().Height-h)/3, 0),
		Width:  w,
		Height: h,
	}
}

func (m *Model) renderLauncher() string {
	accent := lipgloss.NewStyle().Foreground(theme.Accent()).Bold(true)
	muted := lipgloss.NewStyle().Foreground(theme.Muted())
	selected := lipgloss.NewStyle().Foreground(theme.OverlaySelected()).Bold(true)

	lines := []string{
		accent.Render("Launch an app"),
		"> " + m.launcher.Query() + "▏",
	}
	matches := m.launcher.Matches()
	if len(matches) == 0 {
		lines = append(lines, muted.Render("no matches"))
	}
	for i, e := range matches {
		if i >= launcherMaxRows {
			break
		}
		size := muted.Render(fmt.Sprintf("%dx%d", e.Width, e.Height))
		if i == m.launcher.Selected() {
			lines = append(lines, selected.Render("› "+e.Name)+"  "+size)
		} else {
			lines = append(lines, "  "+e.Name+"  "+size)
		}
	}

	body := apps.Fit(strings.Join(lines, "\n"), launcherInnerWidth, len(lines))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.OverlayBorder()).
		Render(body)
}

func (m *Model) renderHelp() string {
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.CLITableHeader()).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	keyCell := cell.Foreground(theme.CLITableKey())

	parts := []string{lipgloss.NewStyle().Bold(true).Foreground(theme.Accent()).Render("TermDesk keys")}
	for _, section := range config.GetKeybindings(m.keys) {
		rows := make([][]string, 0, len(section.Bindings))
		for _, kb := range section.Bindings {
			rows = append(rows, []string{kb.Key, kb.Description})
		}
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(theme.CLITableBorder())).
			Headers(section.Title, "").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return header
				case col == 0:
					return keyCell
				}
				return cell
			})
		parts = append(parts, t.String())
	}
	parts = append(parts, lipgloss.NewStyle().Foreground(theme.Muted()).Render("esc to close"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.OverlayBorder()).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func logColor(line string) lipgloss.Style {
	s := lipgloss.NewStyle()
	switch {
	case strings.Contains(line, "ERRO"):
		return s.Foreground(theme.LogError())
	case strings.Contains(line, "WARN"):
		return s.Foreground(theme.LogWarn())
	case strings.Contains(line, "DEBU"):
		return s.Foreground(theme.LogDebug())
	}
	return s.Foreground(theme.LogInfo())
}

func (m *Model) renderLogs(desktop window.Geometry) string {
	w := max(min(m.width-4, 100), 10)
	h := max(min(desktop.Height-4, 20), 3)

	all := m.ring.Lines()
	end := max(len(all)-m.logOffset, 0)
	start := max(end-h, 0)

	lines := make([]string, 0, h)
	for _, line := range all[start:end] {
		lines = append(lines, logColor(line).Render(ansi.Truncate(line, w, "…")))
	}
	if len(lines) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Muted()).Render("no log messages"))
	}

	title := fmt.Sprintf(" Logs %d/%d ", end, len(all))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.OverlayBorder()).
		Render(apps.Fit(strings.Join(lines, "\n"), w, h))

	// Put the counter into the top border.
	rows := strings.SplitN(box, "\n", 2)
	if len(rows) == 2 && w > len(title)+2 {
		edge := lipgloss.NewStyle().Foreground(theme.OverlayBorder())
		top := edge.Render("╭─") + lipgloss.NewStyle().Bold(true).Render(title) +
			edge.Render(strings.Repeat("─", w-len(title)-1)+"╮")
		return top + "\n" + rows[1]
	}
	return box
}

func (m *Model) renderDialog(message string) string {
	muted := lipgloss.NewStyle().Foreground(theme.Muted())
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(message),
		"",
		lipgloss.NewStyle().Foreground(theme.Up()).Render("[y] confirm") + "   " +
			lipgloss.NewStyle().Foreground(theme.Down()).Render("[n] cancel"),
	}
	if n := m.gate.Len(); n > 1 {
		lines = append(lines, muted.Render(fmt.Sprintf("%d more waiting", n-1)))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.DialogBorder()).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}
