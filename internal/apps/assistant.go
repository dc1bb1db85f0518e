package apps

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/Gaurav-Gosain/termdesk/internal/assistant"
	"github.com/Gaurav-Gosain/termdesk/internal/config"
	"github.com/Gaurav-Gosain/termdesk/internal/theme"
	"github.com/charmbracelet/x/ansi"
)

// ReplyMsg carries the model's answer, or why there is none.
type ReplyMsg struct {
	ID   string
	Text string
	Err  error
}

func (m ReplyMsg) WindowID() string { return m.ID }

type speaker int

const (
	speakerUser speaker = iota
	speakerModel
	speakerSystem
)

type chatLine struct {
	who  speaker
	text string
}

// Chat is the AI assistant window. A failed request adds one system line to
// the transcript and is never sent back to the model.
type Chat struct {
	id         string
	env        *Env
	client     assistant.Client
	transcript []chatLine
	input      textinput.Model
	view       viewport.Model
	spin       spinner.Model
	waiting    bool
	cancel     context.CancelFunc
	follow     bool
}

func NewAssistant(id string, env *Env) *Chat {
	client := env.Assistant
	if client == nil {
		client = assistant.Unavailable{Err: assistant.ErrNoAPIKey}
	}
	c := &Chat{
		id:     id,
		env:    env,
		client: client,
		input:  newInput("> ", "ask about the market..."),
		view:   viewport.New(),
		spin:   spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		follow: true,
	}
	c.view.KeyMap = viewport.KeyMap{}
	if u, ok := client.(assistant.Unavailable); ok {
		c.system("assistant unavailable: " + u.Err.Error())
	}
	return c
}

func (c *Chat) Init() tea.Cmd { return nil }

func (c *Chat) Focus() tea.Cmd { return c.input.Focus() }
func (c *Chat) Blur()          { c.input.Blur() }

// Close abandons an in-flight request.
func (c *Chat) Close() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Transcript returns the visible conversation as plain lines.
func (c *Chat) Transcript() []string {
	out := make([]string, len(c.transcript))
	for i, l := range c.transcript {
		out[i] = prefixFor(l.who) + l.text
	}
	return out
}

func (c *Chat) append(l chatLine) {
	c.transcript = append(c.transcript, l)
	if over := len(c.transcript) - config.MaxChatMessages; over > 0 {
		c.transcript = c.transcript[over:]
	}
	c.follow = true
}

func (c *Chat) system(text string) { c.append(chatLine{who: speakerSystem, text: text}) }

// history is what the model sees: user and model turns only.
func (c *Chat) history() []assistant.Turn {
	var turns []assistant.Turn
	for _, l := range c.transcript {
		switch l.who {
		case speakerUser:
			turns = append(turns, assistant.Turn{Role: assistant.User, Text: l.text})
		case speakerModel:
			turns = append(turns, assistant.Turn{Role: assistant.Assistant, Text: l.text})
		}
	}
	return turns
}

func (c *Chat) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ReplyMsg:
		c.waiting = false
		c.cancel = nil
		if msg.Err != nil {
			c.env.logger().Warn("assistant request failed", "err", msg.Err)
			c.system("assistant error: " + msg.Err.Error())
			return nil
		}
		c.append(chatLine{who: speakerModel, text: strings.TrimSpace(msg.Text)})
		return nil

	case spinner.TickMsg:
		if !c.waiting {
			return nil
		}
		var cmd tea.Cmd
		c.spin, cmd = c.spin.Update(msg)
		return cmd

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		c.view, cmd = c.view.Update(msg)
		c.follow = c.view.AtBottom()
		return cmd

	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter":
			return c.send()
		case "pgup":
			c.view.PageUp()
			c.follow = false
			return nil
		case "pgdown":
			c.view.PageDown()
			c.follow = c.view.AtBottom()
			return nil
		}
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		return cmd
	}
	return nil
}

func (c *Chat) send() tea.Cmd {
	text := strings.TrimSpace(c.input.Value())
	if text == "" || c.waiting {
		return nil
	}
	c.input.Reset()
	c.append(chatLine{who: speakerUser, text: text})
	c.waiting = true

	cfg := c.env.config().Assistant
	ctx, cancel := context.WithTimeout(context.Background(), config.AssistantTimeout)
	c.cancel = cancel
	client, history, id := c.client, c.history(), c.id

	ask := func() tea.Msg {
		defer cancel()
		reply, err := client.Reply(ctx, cfg.SystemPrompt, history)
		return ReplyMsg{ID: id, Text: reply, Err: err}
	}
	return tea.Batch(ask, c.spin.Tick)
}

func prefixFor(who speaker) string {
	switch who {
	case speakerUser:
		return "you: "
	case speakerModel:
		return "ai: "
	}
	return "-- "
}

func (c *Chat) render(width int) string {
	you := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent())
	ai := lipgloss.NewStyle().Bold(true).Foreground(theme.Up())
	sys := lipgloss.NewStyle().Italic(true).Foreground(theme.Muted())

	var b strings.Builder
	for i, l := range c.transcript {
		if i > 0 {
			b.WriteString("\n")
		}
		var line string
		switch l.who {
		case speakerUser:
			line = you.Render(prefixFor(l.who)) + l.text
		case speakerModel:
			line = ai.Render(prefixFor(l.who)) + l.text
		default:
			line = sys.Render(prefixFor(l.who) + l.text)
		}
		b.WriteString(ansi.Wrap(line, max(width, 1), ""))
	}
	return b.String()
}

func (c *Chat) View(width, height int) string {
	c.view.SetWidth(width)
	c.view.SetHeight(max(height-1, 1))
	c.view.SetContent(c.render(width))
	if c.follow {
		c.view.GotoBottom()
	}

	c.input.SetWidth(max(width-3, 1))
	prompt := c.input.View()
	if c.waiting {
		prompt = c.spin.View() + muted(" thinking...")
	}
	if height <= 1 {
		return Fit(prompt, width, height)
	}
	return Fit(c.view.View(), width, height-1) + "\n" + Fit(prompt, width, 1)
}
