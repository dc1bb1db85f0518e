// Package catalog is the static table of app kinds the desktop can launch.
package catalog

import "strings"

// Kind identifies an app. It is stored in persisted layouts, so values must
// never change once released.
type Kind string

// App kinds, in launcher order.
const (
	Chart     Kind = "chart"
	Ticket    Kind = "order-ticket"
	Ledger    Kind = "ledger"
	Notepad   Kind = "notepad"
	Importer  Kind = "csv-importer"
	Assistant Kind = "assistant"
	News      Kind = "news"
	Browser   Kind = "browser"
)

// Entry describes one launchable app. Sizes are in terminal cells.
type Entry struct {
	Kind   Kind
	Name   string
	Width  int
	Height int
}

var entries = []Entry{
	{Kind: Chart, Name: "Price Chart", Width: 64, Height: 18},
	{Kind: Ticket, Name: "Order Ticket", Width: 40, Height: 14},
	{Kind: Ledger, Name: "Positions & Trades", Width: 70, Height: 16},
	{Kind: Notepad, Name: "Notepad", Width: 48, Height: 14},
	{Kind: Importer, Name: "CSV Importer", Width: 60, Height: 14},
	{Kind: Assistant, Name: "AI Assistant", Width: 60, Height: 18},
	{Kind: News, Name: "News Ticker", Width: 56, Height: 8},
	{Kind: Browser, Name: "Web View", Width: 72, Height: 20},
}

// Entries returns the catalog in declaration order.
func Entries() []Entry {
	return append([]Entry(nil), entries...)
}

// Lookup returns the entry for kind.
func Lookup(kind Kind) (Entry, bool) {
	for _, e := range entries {
		if e.Kind == kind {
			return e, true
		}
	}
	return Entry{}, false
}

// Filter returns the entries whose display name contains query, ignoring
// case, in declaration order. An empty query matches everything.
func Filter(query string) []Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Entries()
	}

	var out []Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, e)
		}
	}
	return out
}
