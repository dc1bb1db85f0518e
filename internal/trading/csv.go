package trading

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// csvColumns is the expected header, in order. Time is optional per row.
var csvColumns = []string{"time", "symbol", "side", "quantity", "price"}

// ParseCSV reads trades in the form time,symbol,side,quantity,price. A header
// row is skipped when present. Time accepts RFC 3339 or a date; an empty time
// is filled in on import. The first malformed row aborts the parse.
func ParseCSV(r io.Reader) ([]Trade, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvColumns)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var trades []Trade
	for first := true; ; first = false {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if first && strings.EqualFold(strings.TrimSpace(row[0]), csvColumns[0]) {
			continue
		}

		t, err := parseRow(row)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func parseRow(row []string) (Trade, error) {
	var t Trade

	if ts := strings.TrimSpace(row[0]); ts != "" {
		parsed, err := parseTime(ts)
		if err != nil {
			return Trade{}, err
		}
		t.Time = parsed
	}

	side, err := ParseSide(row[2])
	if err != nil {
		return Trade{}, err
	}
	qty, err := decimal.NewFromString(strings.TrimSpace(row[3]))
	if err != nil {
		return Trade{}, fmt.Errorf("quantity %q: %w", row[3], err)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(row[4]))
	if err != nil {
		return Trade{}, fmt.Errorf("price %q: %w", row[4], err)
	}

	o := Order{Symbol: strings.ToUpper(strings.TrimSpace(row[1])), Side: side, Quantity: qty, Price: price}
	if err := o.Validate(); err != nil {
		return Trade{}, err
	}

	t.Symbol = o.Symbol
	t.Side = side
	t.Quantity = qty
	t.Price = price
	return t, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
