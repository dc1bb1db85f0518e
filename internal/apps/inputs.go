package apps

import (
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	"github.com/Gaurav-Gosain/termdesk/internal/theme"
)

// newInput returns a single-line input with a steady cursor. Blinking
// cursors would keep every window redrawing.
func newInput(prompt, placeholder string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	s := in.Styles()
	s.Cursor.Blink = false
	s.Cursor.Color = theme.Accent()
	in.SetStyles(s)
	return in
}

func newTextArea(placeholder string) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.MaxHeight = 0
	s := ta.Styles()
	s.Cursor.Blink = false
	s.Cursor.Color = theme.Accent()
	ta.SetStyles(s)
	return ta
}
