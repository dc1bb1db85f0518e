package apps

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/Gaurav-Gosain/termdesk/internal/store"
)

// Store keys owned by the notepad.
const (
	NotepadKey    = "notepad-text"
	StrategiesKey = "strategies"
)

type notepadPane int

const (
	paneNotes notepadPane = iota
	paneStrategies
)

// Notepad is a free-form text area plus a list of saved strategy lines.
// Both are persisted on every change.
type Notepad struct {
	id         string
	text       *store.Value[string]
	strategies *store.Value[[]string]

	pane     notepadPane
	area     textarea.Model
	input    textinput.Model
	selected int
	focused  bool
}

func NewNotepad(id string, env *Env) *Notepad {
	s := env.Store
	if s == nil {
		s = store.New(store.NewMemoryBackend(), env.logger())
	}
	n := &Notepad{
		id:         id,
		text:       store.Open(s, NotepadKey, ""),
		strategies: store.Open(s, StrategiesKey, []string{}),
		area:       newTextArea("Notes..."),
		input:      newInput("+ ", "new strategy"),
	}
	n.area.SetValue(n.text.Get())
	return n
}

func (n *Notepad) Init() tea.Cmd { return nil }

func (n *Notepad) Focus() tea.Cmd {
	n.focused = true
	return n.focusPane()
}

func (n *Notepad) Blur() {
	n.focused = false
	n.area.Blur()
	n.input.Blur()
}

func (n *Notepad) focusPane() tea.Cmd {
	n.area.Blur()
	n.input.Blur()
	if !n.focused {
		return nil
	}
	if n.pane == paneNotes {
		return n.area.Focus()
	}
	return n.input.Focus()
}

// syncArea pulls in edits another notepad window made to the shared text.
func (n *Notepad) syncArea() {
	if text := n.text.Get(); text != n.area.Value() {
		n.area.SetValue(text)
	}
}

// Strategies returns the saved strategy lines.
func (n *Notepad) Strategies() []string { return slices.Clone(n.strategies.Get()) }

// Text returns the note text.
func (n *Notepad) Text() string { return n.text.Get() }

func (n *Notepad) Update(msg tea.Msg) tea.Cmd {
	key, isKey := msg.(tea.KeyPressMsg)
	if isKey && key.String() == "tab" {
		n.pane = 1 - n.pane
		return n.focusPane()
	}

	if n.pane == paneNotes {
		n.syncArea()
		before := n.area.Value()
		var cmd tea.Cmd
		n.area, cmd = n.area.Update(msg)
		if after := n.area.Value(); after != before {
			n.text.Set(after)
		}
		return cmd
	}

	if !isKey {
		return nil
	}
	list := n.strategies.Get()
	switch key.String() {
	case "enter":
		if s := strings.TrimSpace(n.input.Value()); s != "" {
			n.strategies.Set(append(slices.Clone(list), s))
			n.input.Reset()
			n.selected = len(list)
		}
		return nil
	case "up":
		n.selected = max(0, n.selected-1)
		return nil
	case "down":
		n.selected = max(0, min(len(list)-1, n.selected+1))
		return nil
	case "delete", "ctrl+d":
		if n.selected >= 0 && n.selected < len(list) {
			n.strategies.Set(slices.Delete(slices.Clone(list), n.selected, n.selected+1))
			n.selected = max(0, min(n.selected, len(list)-2))
		}
		return nil
	}

	var cmd tea.Cmd
	n.input, cmd = n.input.Update(msg)
	return cmd
}

func (n *Notepad) View(width, height int) string {
	var tabs string
	if n.pane == paneNotes {
		tabs = accent("[Notes]") + " " + muted(" Strategies ")
	} else {
		tabs = muted(" Notes ") + " " + accent("[Strategies]")
	}
	bodyH := max(height-2, 1)

	if n.pane == paneNotes {
		n.syncArea()
		n.area.SetWidth(width)
		n.area.SetHeight(bodyH)
		return withFooter(tabs+"\n"+n.area.View(), muted("tab: strategies"), width, height)
	}

	list := n.strategies.Get()
	n.input.SetWidth(max(width-4, 1))
	lines := []string{n.input.View()}
	if len(list) == 0 {
		lines = append(lines, muted("no strategies saved"))
	}
	// Keep the selection in view.
	rows := max(bodyH-1, 1)
	start := max(0, n.selected-rows+1)
	for i := start; i < len(list) && i < start+rows; i++ {
		prefix := "  "
		if i == n.selected {
			prefix = accent("› ")
		}
		lines = append(lines, prefix+fmt.Sprintf("%d. %s", i+1, list[i]))
	}
	return withFooter(tabs+"\n"+strings.Join(lines, "\n"), muted("enter: add  del: remove  tab: notes"), width, height)
}
