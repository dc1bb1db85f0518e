// Package launcher is the command palette that opens new windows.
package launcher

import (
	"github.com/Gaurav-Gosain/termdesk/internal/catalog"
	"github.com/Gaurav-Gosain/termdesk/internal/window"
)

// Creator opens a window for an app kind.
type Creator interface {
	Create(kind catalog.Kind) (window.Record, bool)
}

// Launcher holds the palette's query, visibility and selection. The match
// list is recomputed from the catalog on every read and never stored.
type Launcher struct {
	creator  Creator
	query    string
	open     bool
	selected int
}

// New returns a closed launcher that opens windows through c.
func New(c Creator) *Launcher {
	return &Launcher{creator: c}
}

func (l *Launcher) Open() {
	l.open = true
	l.selected = 0
}

// Close hides the palette and clears the query.
func (l *Launcher) Close() {
	l.open = false
	l.query = ""
	l.selected = 0
}

// Toggle opens a closed launcher and closes an open one.
func (l *Launcher) Toggle() {
	if l.open {
		l.Close()
	} else {
		l.Open()
	}
}

func (l *Launcher) IsOpen() bool  { return l.open }
func (l *Launcher) Query() string { return l.query }
func (l *Launcher) Selected() int { return l.selected }

// SetQuery replaces the query and resets the selection.
func (l *Launcher) SetQuery(q string) {
	l.query = q
	l.selected = 0
}

// Type appends text to the query.
func (l *Launcher) Type(text string) {
	l.SetQuery(l.query + text)
}

// Backspace removes the last rune of the query.
func (l *Launcher) Backspace() {
	r := []rune(l.query)
	if len(r) == 0 {
		return
	}
	l.SetQuery(string(r[:len(r)-1]))
}

// Matches returns the catalog entries matching the current query.
func (l *Launcher) Matches() []catalog.Entry {
	return catalog.Filter(l.query)
}

// MoveSelection shifts the cursor by delta, wrapping at both ends.
func (l *Launcher) MoveSelection(delta int) {
	n := len(l.Matches())
	if n == 0 {
		l.selected = 0
		return
	}
	l.selected = ((l.selected+delta)%n + n) % n
}

// Launch creates a window for kind, then clears the query and closes the
// palette.
func (l *Launcher) Launch(kind catalog.Kind) (window.Record, bool) {
	rec, ok := l.creator.Create(kind)
	l.Close()
	return rec, ok
}

// LaunchSelected launches the highlighted match. With no matches it does
// nothing and leaves the palette open.
func (l *Launcher) LaunchSelected() (window.Record, bool) {
	matches := l.Matches()
	if len(matches) == 0 {
		return window.Record{}, false
	}
	return l.Launch(matches[min(l.selected, len(matches)-1)].Kind)
}
