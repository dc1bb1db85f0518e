package apps

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"github.com/Gaurav-Gosain/termdesk/internal/config"
	"github.com/Gaurav-Gosain/termdesk/internal/webview"
	"github.com/charmbracelet/x/ansi"
)

// PageMsg carries a loaded page or the reason it could not be shown.
type PageMsg struct {
	ID   string
	Page webview.Page
	Err  error
}

func (m PageMsg) WindowID() string { return m.ID }

var errNoFetcher = errors.New("web view unavailable")

// Browser shows web pages as text. Links are numbered; typing a number in
// the address bar follows that link.
type Browser struct {
	id      string
	env     *Env
	address textinput.Model
	view    viewport.Model
	page    webview.Page
	loading string
	err     error
	cancel  context.CancelFunc
	editing bool
	focused bool
}

func NewBrowser(id string, env *Env) *Browser {
	b := &Browser{
		id:      id,
		env:     env,
		address: newInput("url: ", "example.com"),
		view:    viewport.New(),
		editing: true,
	}
	b.view.SoftWrap = true
	return b
}

func (b *Browser) Init() tea.Cmd { return nil }

func (b *Browser) Focus() tea.Cmd {
	b.focused = true
	if b.editing {
		return b.address.Focus()
	}
	return nil
}

func (b *Browser) Blur() {
	b.focused = false
	b.address.Blur()
}

func (b *Browser) Close() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

// Page returns the page on screen.
func (b *Browser) Page() webview.Page { return b.page }

// resolve turns the address bar into a URL. A bare number follows the
// matching link on the current page.
func (b *Browser) resolve(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return raw, nil
	}
	if n < 1 || n > len(b.page.Links) {
		return "", fmt.Errorf("no link [%d] on this page", n)
	}
	base, err := url.Parse(b.page.URL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(b.page.Links[n-1])
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// Load fetches raw off the update loop.
func (b *Browser) Load(raw string) tea.Cmd {
	if b.env.Fetcher == nil {
		b.err = errNoFetcher
		return nil
	}
	target, err := b.resolve(raw)
	if err != nil {
		b.err = err
		return nil
	}
	b.Close()
	ctx, cancel := context.WithTimeout(context.Background(), config.BrowserTimeout)
	b.cancel = cancel
	b.loading = target
	b.err = nil

	fetcher, id := b.env.Fetcher, b.id
	return func() tea.Msg {
		defer cancel()
		page, err := fetcher.Fetch(ctx, target)
		return PageMsg{ID: id, Page: page, Err: err}
	}
}

func (b *Browser) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PageMsg:
		b.loading = ""
		b.cancel = nil
		if msg.Err != nil {
			b.err = msg.Err
			b.env.logger().Warn("page load failed", "err", msg.Err)
			return nil
		}
		b.err = nil
		b.page = msg.Page
		b.address.SetValue(msg.Page.URL)
		b.view.GotoTop()
		b.editing = false
		b.address.Blur()
		return nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		b.view, cmd = b.view.Update(msg)
		return cmd

	case tea.KeyPressMsg:
		if msg.String() == "tab" || (msg.String() == "esc" && b.editing) {
			b.editing = !b.editing
			if b.editing {
				return b.address.Focus()
			}
			b.address.Blur()
			return nil
		}
		if b.editing {
			if msg.String() == "enter" {
				return b.Load(b.address.Value())
			}
			var cmd tea.Cmd
			b.address, cmd = b.address.Update(msg)
			return cmd
		}
		switch msg.String() {
		case "r":
			if b.page.URL != "" {
				return b.Load(b.page.URL)
			}
			return nil
		case "/", "g":
			b.editing = true
			b.address.SetValue("")
			return b.address.Focus()
		}
		var cmd tea.Cmd
		b.view, cmd = b.view.Update(msg)
		return cmd
	}
	return nil
}

func (b *Browser) content() string {
	if b.page.URL == "" {
		return muted("Enter an address and press enter.")
	}
	var sb strings.Builder
	sb.WriteString(accent(b.page.Title))
	sb.WriteString("\n\n")
	sb.WriteString(b.page.Text)
	if len(b.page.Links) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(muted("Links"))
		for i, l := range b.page.Links {
			fmt.Fprintf(&sb, "\n%s %s", muted(fmt.Sprintf("[%d]", i+1)), l)
		}
	}
	return sb.String()
}

func (b *Browser) View(width, height int) string {
	b.address.SetWidth(max(width-6, 1))
	bar := b.address.View()
	if !b.editing {
		bar = muted("url: ") + ansi.Truncate(b.page.URL, max(width-5, 1), "…")
	}

	hint := "tab: address  r: reload  ↑/↓: scroll"
	if b.editing {
		hint = "enter: go  number: follow link  tab: page"
	}
	if b.loading != "" {
		hint = "loading " + b.loading + "..."
	}
	footer := status(b.err, hint)

	if height < 3 {
		return withFooter(bar, footer, width, height)
	}
	b.view.SetWidth(width)
	b.view.SetHeight(height - 2)
	b.view.SetContent(b.content())
	return Fit(bar, width, 1) + "\n" + Fit(b.view.View(), width, height-2) + "\n" + Fit(footer, width, 1)
}
