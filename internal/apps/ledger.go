package apps

import (
	"fmt"
	"slices"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/Gaurav-Gosain/termdesk/internal/theme"
	"github.com/shopspring/decimal"
)

type ledgerTab int

const (
	tabPositions ledgerTab = iota
	tabTrades
)

// Ledger shows open positions marked to the feed and the trade history,
// newest first. It is read-only.
type Ledger struct {
	id     string
	env    *Env
	tab    ledgerTab
	offset int
}

func NewLedger(id string, env *Env) *Ledger {
	return &Ledger{id: id, env: env}
}

func (l *Ledger) Init() tea.Cmd { return nil }

func (l *Ledger) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "tab", "left", "right":
			l.tab = 1 - l.tab
			l.offset = 0
		case "down", "j":
			l.offset++
		case "up", "k":
			l.offset = max(0, l.offset-1)
		case "home", "g":
			l.offset = 0
		}
	case tea.MouseWheelMsg:
		if msg.Button == tea.MouseWheelDown {
			l.offset++
		} else if msg.Button == tea.MouseWheelUp {
			l.offset = max(0, l.offset-1)
		}
	}
	return nil
}

func (l *Ledger) mark(symbol string) (decimal.Decimal, bool) {
	if l.env.Feed == nil || l.env.Feed.Symbol != symbol || l.env.Feed.Last() <= 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(l.env.Feed.Last()), true
}

func (l *Ledger) View(width, height int) string {
	if l.env.Book == nil {
		return Fit(failed("trading book unavailable"), width, height)
	}

	tabs := []string{"Positions", "Trades"}
	for i, name := range tabs {
		if ledgerTab(i) == l.tab {
			tabs[i] = accent("[" + name + "]")
		} else {
			tabs[i] = muted(" " + name + " ")
		}
	}
	header := tabs[0] + " " + tabs[1] + muted("  realized ") + signed(l.env.Book.Realized())

	var headers []string
	var rows [][]string
	if l.tab == tabPositions {
		headers, rows = l.positionRows()
	} else {
		headers, rows = l.tradeRows()
	}

	if len(rows) == 0 {
		return withFooter(header+"\n\n"+muted("nothing yet"), muted("tab: switch view"), width, height)
	}

	// Tab row, footer, table header and three border rows.
	visible := max(height-6, 1)
	l.offset = min(l.offset, max(len(rows)-visible, 0))
	end := min(l.offset+visible, len(rows))

	border := lipgloss.NewStyle().Foreground(theme.Muted())
	head := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent())
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(border).
		Headers(headers...).
		Rows(rows[l.offset:end]...).
		Width(width).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return head.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	footer := muted(fmt.Sprintf("tab: switch view  ↑/↓: scroll  %d-%d of %d", l.offset+1, end, len(rows)))
	return withFooter(header+"\n"+t.String(), footer, width, height)
}

func (l *Ledger) positionRows() ([]string, [][]string) {
	headers := []string{"Symbol", "Qty", "Avg", "Mark", "Unrealized"}
	var rows [][]string
	for _, p := range l.env.Book.Positions() {
		if p.Quantity.IsZero() {
			continue
		}
		mark, unreal := "-", "-"
		if m, ok := l.mark(p.Symbol); ok {
			mark = m.StringFixed(2)
			unreal = signed(p.Unrealized(m))
		}
		rows = append(rows, []string{p.Symbol, p.Quantity.String(), p.AvgPrice.StringFixed(2), mark, unreal})
	}
	return headers, rows
}

func (l *Ledger) tradeRows() ([]string, [][]string) {
	headers := []string{"Time", "Symbol", "Side", "Qty", "Price", "P&L", "Via"}
	trades := l.env.Book.Trades()
	slices.Reverse(trades)

	rows := make([][]string, 0, len(trades))
	for _, t := range trades {
		pnl := "-"
		if !t.Realized.IsZero() {
			pnl = signed(t.Realized)
		}
		rows = append(rows, []string{
			t.Time.Local().Format("01-02 15:04:05"),
			t.Symbol,
			string(t.Side),
			t.Quantity.String(),
			t.Price.StringFixed(2),
			pnl,
			string(t.Source),
		})
	}
	return headers, rows
}

func signed(d decimal.Decimal) string {
	style := lipgloss.NewStyle().Foreground(theme.Up())
	if d.IsNegative() {
		style = style.Foreground(theme.Down())
	}
	s := d.StringFixed(2)
	if d.IsPositive() {
		s = "+" + s
	}
	return style.Render(s)
}
