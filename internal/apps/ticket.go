package apps

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/Gaurav-Gosain/termdesk/internal/confirm"
	"github.com/Gaurav-Gosain/termdesk/internal/theme"
	"github.com/Gaurav-Gosain/termdesk/internal/trading"
	"github.com/shopspring/decimal"
)

// FilledMsg reports the outcome of a confirmed ticket order.
type FilledMsg struct {
	ID    string
	Trade trading.Trade
	Err   error
}

func (m FilledMsg) WindowID() string { return m.ID }

var errNoPrice = errors.New("no market price yet; enter a limit price")

const (
	fieldSide = iota
	fieldQty
	fieldPrice
	fieldCount
)

// Ticket is the order entry form. Submitting it asks for confirmation and
// only then fills the order against the book.
type Ticket struct {
	id      string
	env     *Env
	side    trading.Side
	qty     textinput.Model
	price   textinput.Model
	field   int
	focused bool
	pending string
	last    string
	err     error
}

func NewTicket(id string, env *Env) *Ticket {
	t := &Ticket{
		id:    id,
		env:   env,
		side:  trading.Buy,
		qty:   newInput("", "quantity"),
		price: newInput("", "market"),
		field: fieldQty,
	}
	t.qty.CharLimit = 12
	t.price.CharLimit = 12
	return t
}

func (t *Ticket) Init() tea.Cmd { return nil }

func (t *Ticket) Focus() tea.Cmd {
	t.focused = true
	return t.focusField()
}

func (t *Ticket) Blur() {
	t.focused = false
	t.qty.Blur()
	t.price.Blur()
}

func (t *Ticket) focusField() tea.Cmd {
	t.qty.Blur()
	t.price.Blur()
	if !t.focused {
		return nil
	}
	switch t.field {
	case fieldQty:
		return t.qty.Focus()
	case fieldPrice:
		return t.price.Focus()
	}
	return nil
}

func (t *Ticket) symbol() string {
	if t.env.Feed != nil {
		return t.env.Feed.Symbol
	}
	return t.env.config().Market.Symbol
}

func (t *Ticket) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case FilledMsg:
		t.pending = ""
		t.err = msg.Err
		if msg.Err == nil {
			tr := msg.Trade
			t.last = fmt.Sprintf("filled %s %s %s @ %s", tr.Side, tr.Quantity, tr.Symbol, tr.Price.StringFixed(2))
			t.qty.Reset()
		}
		return nil

	case confirm.ResolvedMsg:
		if !msg.Accepted && msg.Message == t.pending {
			t.pending = ""
			t.last = "order cancelled"
		}
		return nil

	case ClickMsg:
		// Rows: 0 symbol, 2 side, 3 qty, 4 price.
		if f := msg.Y - 2; f >= fieldSide && f < fieldCount {
			t.field = f
			return t.focusField()
		}
		return nil

	case tea.KeyPressMsg:
		return t.handleKey(msg)
	}
	return nil
}

func (t *Ticket) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		t.field = (t.field + 1) % fieldCount
		return t.focusField()
	case "shift+tab", "up":
		t.field = (t.field + fieldCount - 1) % fieldCount
		return t.focusField()
	case "enter":
		return t.submit()
	}

	if t.field == fieldSide {
		switch msg.String() {
		case "left", "right", "space", "b", "s":
			t.toggleSide(msg.String())
		}
		return nil
	}

	var cmd tea.Cmd
	if t.field == fieldQty {
		t.qty, cmd = t.qty.Update(msg)
	} else {
		t.price, cmd = t.price.Update(msg)
	}
	return cmd
}

func (t *Ticket) toggleSide(key string) {
	switch key {
	case "b":
		t.side = trading.Buy
	case "s":
		t.side = trading.Sell
	default:
		if t.side == trading.Buy {
			t.side = trading.Sell
		} else {
			t.side = trading.Buy
		}
	}
}

// order builds the order from the form. An empty price means the last
// traded price.
func (t *Ticket) order() (trading.Order, error) {
	qty, err := decimal.NewFromString(strings.TrimSpace(t.qty.Value()))
	if err != nil {
		return trading.Order{}, fmt.Errorf("%w: quantity %q", trading.ErrInvalidOrder, t.qty.Value())
	}

	var price decimal.Decimal
	if raw := strings.TrimSpace(t.price.Value()); raw != "" {
		price, err = decimal.NewFromString(raw)
		if err != nil {
			return trading.Order{}, fmt.Errorf("%w: price %q", trading.ErrInvalidOrder, raw)
		}
	} else {
		if t.env.Feed == nil || t.env.Feed.Last() <= 0 {
			return trading.Order{}, errNoPrice
		}
		price = decimal.NewFromFloat(t.env.Feed.Last()).Round(2)
	}

	o := trading.Order{Symbol: t.symbol(), Side: t.side, Quantity: qty, Price: price}
	return o, o.Validate()
}

func (t *Ticket) submit() tea.Cmd {
	if t.pending != "" {
		return nil
	}
	if t.env.Book == nil {
		t.err = errors.New("trading book unavailable")
		return nil
	}
	o, err := t.order()
	if err != nil {
		t.err = err
		return nil
	}

	t.err = nil
	book, id := t.env.Book, t.id
	t.pending = fmt.Sprintf("%s %s %s @ %s?", strings.ToUpper(string(o.Side)), o.Quantity, o.Symbol, o.Price.StringFixed(2))
	t.last = "awaiting confirmation"
	return confirm.Request(t.pending, func() tea.Msg {
		tr, err := book.Fill(o)
		return FilledMsg{ID: id, Trade: tr, Err: err}
	})
}

func (t *Ticket) View(width, height int) string {
	label := lipgloss.NewStyle().Width(10)
	marker := func(f int) string {
		if t.focused && t.field == f {
			return accent("›") + " "
		}
		return "  "
	}

	sideStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.Up())
	if t.side == trading.Sell {
		sideStyle = sideStyle.Foreground(theme.Down())
	}

	last := "-"
	if t.env.Feed != nil && t.env.Feed.Last() > 0 {
		last = fmt.Sprintf("%.2f", t.env.Feed.Last())
	}

	t.qty.SetWidth(max(width-14, 4))
	t.price.SetWidth(max(width-14, 4))

	rows := []string{
		accent(t.symbol()) + muted("  last "+last),
		"",
		marker(fieldSide) + label.Render("Side") + sideStyle.Render(strings.ToUpper(string(t.side))),
		marker(fieldQty) + label.Render("Quantity") + t.qty.View(),
		marker(fieldPrice) + label.Render("Price") + t.price.View(),
		"",
	}
	if t.last != "" {
		rows = append(rows, muted(t.last))
	}

	body := strings.Join(rows, "\n")
	footer := status(t.err, "tab: field  ←/→: side  enter: submit")
	return withFooter(body, footer, width, height)
}
