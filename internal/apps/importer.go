package apps

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/Gaurav-Gosain/termdesk/internal/confirm"
	"github.com/Gaurav-Gosain/termdesk/internal/trading"
)

// ParsedMsg carries the result of reading a CSV file.
type ParsedMsg struct {
	ID     string
	Path   string
	Trades []trading.Trade
	Err    error
}

func (m ParsedMsg) WindowID() string { return m.ID }

// ImportedMsg reports how many trades were appended to the history.
type ImportedMsg struct {
	ID    string
	Count int
}

func (m ImportedMsg) WindowID() string { return m.ID }

// Importer loads trades from a CSV file into the trade history after
// confirmation. Parse errors stay in the window.
type Importer struct {
	id      string
	env     *Env
	input   textinput.Model
	preview []trading.Trade
	pending string
	note    string
	err     error
}

func NewImporter(id string, env *Env) *Importer {
	return &Importer{
		id:    id,
		env:   env,
		input: newInput("path: ", "~/trades.csv"),
	}
}

func (im *Importer) Init() tea.Cmd { return nil }

func (im *Importer) Focus() tea.Cmd { return im.input.Focus() }
func (im *Importer) Blur()          { im.input.Blur() }

// expandHome resolves a leading ~ to the home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// parseFile reads and parses path off the update loop.
func parseFile(id, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return ParsedMsg{ID: id, Path: path, Err: err}
		}
		defer f.Close()
		trades, err := trading.ParseCSV(f)
		return ParsedMsg{ID: id, Path: path, Trades: trades, Err: err}
	}
}

func (im *Importer) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ParsedMsg:
		im.err = msg.Err
		im.preview = msg.Trades
		if msg.Err != nil {
			im.env.logger().Warn("csv import failed", "path", msg.Path, "err", msg.Err)
			return nil
		}
		if len(msg.Trades) == 0 {
			im.note = "file has no trades"
			return nil
		}
		return im.requestImport(msg.Path, msg.Trades)

	case ImportedMsg:
		im.pending = ""
		im.preview = nil
		im.note = fmt.Sprintf("imported %d trades", msg.Count)
		im.input.Reset()
		return nil

	case confirm.ResolvedMsg:
		if !msg.Accepted && msg.Message == im.pending {
			im.pending = ""
			im.note = "import cancelled"
		}
		return nil

	case tea.KeyPressMsg:
		if msg.String() == "enter" {
			return im.submit()
		}
		var cmd tea.Cmd
		im.input, cmd = im.input.Update(msg)
		return cmd
	}
	return nil
}

func (im *Importer) submit() tea.Cmd {
	if im.pending != "" {
		return nil
	}
	path := strings.TrimSpace(im.input.Value())
	if path == "" {
		im.err = errors.New("enter a file path")
		return nil
	}
	im.err = nil
	im.note = "reading " + path
	return parseFile(im.id, expandHome(path))
}

func (im *Importer) requestImport(path string, trades []trading.Trade) tea.Cmd {
	if im.env.Book == nil {
		im.err = errors.New("trading book unavailable")
		return nil
	}
	book, id := im.env.Book, im.id
	im.pending = fmt.Sprintf("Import %d trades from %s?", len(trades), filepath.Base(path))
	im.note = "awaiting confirmation"
	return confirm.Request(im.pending, func() tea.Msg {
		return ImportedMsg{ID: id, Count: book.Import(trades)}
	})
}

func (im *Importer) View(width, height int) string {
	im.input.SetWidth(max(width-8, 4))
	lines := []string{
		muted("columns: time,symbol,side,quantity,price"),
		im.input.View(),
		"",
	}
	if im.note != "" {
		lines = append(lines, muted(im.note))
	}
	for i, t := range im.preview {
		if len(lines) >= height-2 {
			lines = append(lines, muted(fmt.Sprintf("… %d more", len(im.preview)-i)))
			break
		}
		when := "now"
		if !t.Time.IsZero() {
			when = t.Time.Format("2006-01-02 15:04")
		}
		lines = append(lines, fmt.Sprintf("%s  %-5s %-4s %s @ %s", when, t.Symbol, t.Side, t.Quantity, t.Price.StringFixed(2)))
	}
	return withFooter(strings.Join(lines, "\n"), status(im.err, "enter: load file"), width, height)
}
