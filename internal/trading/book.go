// Package trading keeps the simulated account: open positions and the trade
// history. Every mutation here is expected to run only after the desktop's
// confirmation dialog was accepted.
package trading

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"charm.land/log/v2"
	"github.com/Gaurav-Gosain/termdesk/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store keys.
const (
	PositionsKey = "positions"
	TradesKey    = "trade-history"
)

// ErrInvalidOrder is returned for orders that cannot be filled.
var ErrInvalidOrder = errors.New("invalid order")

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// ParseSide accepts buy/sell in any case, plus b/s.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "b":
		return Buy, nil
	case "sell", "s":
		return Sell, nil
	}
	return "", fmt.Errorf("%w: unknown side %q", ErrInvalidOrder, s)
}

// sign is +1 for buys and -1 for sells.
func (s Side) sign() decimal.Decimal {
	if s == Sell {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// Source records which path produced a trade.
type Source string

const (
	SourceTicket Source = "ticket"
	SourceHotkey Source = "hotkey"
	SourceImport Source = "import"
)

// Position is a net holding. Quantity is signed: negative means short.
type Position struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
	AvgPrice decimal.Decimal `json:"avgPrice"`
}

// Trade is one fill.
type Trade struct {
	ID       string          `json:"id"`
	Time     time.Time       `json:"time"`
	Symbol   string          `json:"symbol"`
	Side     Side            `json:"side"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Realized decimal.Decimal `json:"realized"`
	Source   Source          `json:"source"`
}

// Order is a request to trade at a given price.
type Order struct {
	Symbol   string
	Side     Side
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// Validate checks that o can be filled.
func (o Order) Validate() error {
	switch {
	case strings.TrimSpace(o.Symbol) == "":
		return fmt.Errorf("%w: missing symbol", ErrInvalidOrder)
	case o.Side != Buy && o.Side != Sell:
		return fmt.Errorf("%w: unknown side %q", ErrInvalidOrder, o.Side)
	case !o.Quantity.IsPositive():
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidOrder)
	case !o.Price.IsPositive():
		return fmt.Errorf("%w: price must be positive", ErrInvalidOrder)
	}
	return nil
}

// Book owns positions and trade history.
type Book struct {
	positions *store.Value[[]Position]
	trades    *store.Value[[]Trade]
	logger    *log.Logger
	now       func() time.Time
}

// NewBook loads the account from s. A nil logger discards output.
func NewBook(s *store.Store, logger *log.Logger) *Book {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Book{
		positions: store.Open(s, PositionsKey, []Position{}),
		trades:    store.Open(s, TradesKey, []Trade{}),
		logger:    logger.With("component", "trading"),
		now:       time.Now,
	}
}

// Positions returns the open positions in opening order.
func (b *Book) Positions() []Position {
	return slices.Clone(b.positions.Get())
}

// Trades returns the trade history, oldest first.
func (b *Book) Trades() []Trade {
	return slices.Clone(b.trades.Get())
}

// Position returns the open position in symbol.
func (b *Book) Position(symbol string) (Position, bool) {
	for _, p := range b.positions.Get() {
		if p.Symbol == symbol {
			return p, true
		}
	}
	return Position{}, false
}

func (b *Book) record(t Trade) Trade {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Time.IsZero() {
		t.Time = b.now()
	}
	b.trades.Set(append(b.Trades(), t))
	return t
}

// setPosition replaces or removes the position for p.Symbol. A zero quantity
// removes it.
func (b *Book) setPosition(p Position) {
	positions := b.Positions()
	i := slices.IndexFunc(positions, func(q Position) bool { return q.Symbol == p.Symbol })
	switch {
	case p.Quantity.IsZero() && i >= 0:
		positions = slices.Delete(positions, i, i+1)
	case p.Quantity.IsZero():
		return
	case i >= 0:
		positions[i] = p
	default:
		positions = append(positions, p)
	}
	b.positions.Set(positions)
}

// Fill executes an order from the order ticket. Same-side fills average into
// the position; opposite-side fills reduce it, realizing profit on the closed
// part, and a fill larger than the position flips it at the fill price.
func (b *Book) Fill(o Order) (Trade, error) {
	if err := o.Validate(); err != nil {
		return Trade{}, err
	}

	pos, _ := b.Position(o.Symbol)
	pos.Symbol = o.Symbol
	delta := o.Quantity.Mul(o.Side.sign())
	next := pos.Quantity.Add(delta)
	realized := decimal.Zero

	switch {
	case pos.Quantity.IsZero() || pos.Quantity.Sign() == delta.Sign():
		cost := pos.Quantity.Abs().Mul(pos.AvgPrice).Add(o.Quantity.Mul(o.Price))
		pos.AvgPrice = cost.Div(next.Abs())
	default:
		closed := decimal.Min(pos.Quantity.Abs(), o.Quantity)
		realized = o.Price.Sub(pos.AvgPrice).Mul(closed).Mul(decimal.NewFromInt(int64(pos.Quantity.Sign())))
		if !next.IsZero() && next.Sign() != pos.Quantity.Sign() {
			pos.AvgPrice = o.Price
		}
	}
	pos.Quantity = next
	b.setPosition(pos)

	t := b.record(Trade{
		Symbol:   o.Symbol,
		Side:     o.Side,
		Quantity: o.Quantity,
		Price:    o.Price,
		Realized: realized,
		Source:   SourceTicket,
	})
	b.logger.Info("order filled", "symbol", o.Symbol, "side", o.Side, "qty", o.Quantity, "price", o.Price)
	return t, nil
}

// QuickFill executes a hotkey order. It is intentionally a separate, simpler
// path than Fill: buys average into the position, sells only reduce a long
// position and stop at flat, and no profit is realized.
func (b *Book) QuickFill(symbol string, side Side, qty int64, price decimal.Decimal) (Trade, error) {
	o := Order{Symbol: symbol, Side: side, Quantity: decimal.NewFromInt(qty), Price: price}
	if err := o.Validate(); err != nil {
		return Trade{}, err
	}

	pos, ok := b.Position(symbol)
	switch side {
	case Buy:
		total := pos.Quantity.Add(o.Quantity)
		if ok && !total.IsZero() {
			pos.AvgPrice = pos.AvgPrice.Mul(pos.Quantity).Add(price.Mul(o.Quantity)).Div(total)
		} else {
			pos.AvgPrice = price
		}
		pos.Symbol = symbol
		pos.Quantity = total
	case Sell:
		if !ok || !pos.Quantity.IsPositive() {
			return Trade{}, fmt.Errorf("%w: no position in %s to sell", ErrInvalidOrder, symbol)
		}
		pos.Quantity = decimal.Max(decimal.Zero, pos.Quantity.Sub(o.Quantity))
	}
	b.setPosition(pos)

	t := b.record(Trade{
		Symbol:   symbol,
		Side:     side,
		Quantity: o.Quantity,
		Price:    price,
		Source:   SourceHotkey,
	})
	b.logger.Info("hotkey order filled", "symbol", symbol, "side", side, "qty", qty, "price", price)
	return t, nil
}

// Import appends trades to the history without touching positions. Trades
// missing an id or timestamp get fresh ones.
func (b *Book) Import(trades []Trade) int {
	if len(trades) == 0 {
		return 0
	}
	history := b.Trades()
	for _, t := range trades {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.Time.IsZero() {
			t.Time = b.now()
		}
		t.Source = SourceImport
		history = append(history, t)
	}
	b.trades.Set(history)
	b.logger.Info("trades imported", "count", len(trades))
	return len(trades)
}

// Realized sums realized profit across the history.
func (b *Book) Realized() decimal.Decimal {
	total := decimal.Zero
	for _, t := range b.trades.Get() {
		total = total.Add(t.Realized)
	}
	return total
}

// Unrealized returns the open profit of p at mark.
func (p Position) Unrealized(mark decimal.Decimal) decimal.Decimal {
	return mark.Sub(p.AvgPrice).Mul(p.Quantity)
}
