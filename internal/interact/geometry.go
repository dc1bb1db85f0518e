// Package interact turns pointer gestures into window geometry changes.
//
// A gesture is a Session: it starts on a press over a window handle,
// receives pointer motion through a Bus while active, and releases its bus
// subscription exactly once when the pointer is released or the gesture is
// cancelled.
package interact

import "github.com/Gaurav-Gosain/termdesk/internal/window"

// Kind is what a gesture does to its window.
type Kind int

const (
	None Kind = iota
	Move
	Resize
)

func (k Kind) String() string {
	switch k {
	case Move:
		return "move"
	case Resize:
		return "resize"
	default:
		return "none"
	}
}

// Edges is the set of window edges a resize drags.
type Edges uint8

const (
	Left Edges = 1 << iota
	Right
	Top
	Bottom
)

// Has reports whether e includes every edge in o.
func (e Edges) Has(o Edges) bool { return e&o == o }

func (e Edges) String() string {
	if e == 0 {
		return "none"
	}
	var s string
	for _, part := range []struct {
		edge Edges
		name string
	}{{Top, "top"}, {Bottom, "bottom"}, {Left, "left"}, {Right, "right"}} {
		if e.Has(part.edge) {
			if s != "" {
				s += "-"
			}
			s += part.name
		}
	}
	return s
}

// Point is a pointer position in screen cells.
type Point struct {
	X, Y int
}

// Sub returns p - o.
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

// MoveBy translates start by (dx, dy).
func MoveBy(start window.Geometry, dx, dy int) window.Geometry {
	start.X += dx
	start.Y += dy
	return start
}

// ResizeBy drags the given edges of start by (dx, dy). Right and bottom only
// change the size. Left and top change the size and shift the origin by the
// same amount, so the opposite edge stays where it was even when min clamps
// the size. Each axis is handled independently.
func ResizeBy(start window.Geometry, edges Edges, dx, dy int, min window.Size) window.Geometry {
	g := start

	switch {
	case edges.Has(Left):
		g.Width = max(min.Width, start.Width-dx)
		g.X = start.X + (start.Width - g.Width)
	case edges.Has(Right):
		g.Width = max(min.Width, start.Width+dx)
	}

	switch {
	case edges.Has(Top):
		g.Height = max(min.Height, start.Height-dy)
		g.Y = start.Y + (start.Height - g.Height)
	case edges.Has(Bottom):
		g.Height = max(min.Height, start.Height+dy)
	}

	return g
}

// Handle is the part of a window a press landed on.
type Handle struct {
	Kind  Kind
	Edges Edges
}

// HandleAt maps a press at p inside g to a handle. With the primary button
// the title row moves the window, its corners and the other borders resize.
// With the secondary button the window is split into a 3x3 grid and any cell
// resizes towards its nearest edges; the centre cell drags the bottom-right
// corner. Presses in the content area with the primary button, or outside g,
// return false.
func HandleAt(g window.Geometry, p Point, secondary bool) (Handle, bool) {
	if !g.Contains(p.X, p.Y) {
		return Handle{}, false
	}
	if secondary {
		return gridHandle(g, p), true
	}

	left, right := p.X == g.X, p.X == g.Right()-1
	top, bottom := p.Y == g.Y, p.Y == g.Bottom()-1

	var e Edges
	if left {
		e |= Left
	}
	if right {
		e |= Right
	}
	if bottom {
		e |= Bottom
	}

	switch {
	case top && (left || right):
		return Handle{Kind: Resize, Edges: e | Top}, true
	case top:
		return Handle{Kind: Move}, true
	case e != 0:
		return Handle{Kind: Resize, Edges: e}, true
	}
	return Handle{}, false
}

func gridHandle(g window.Geometry, p Point) Handle {
	col := (p.X - g.X) * 3 / max(g.Width, 1)
	row := (p.Y - g.Y) * 3 / max(g.Height, 1)

	var e Edges
	switch col {
	case 0:
		e |= Left
	case 2:
		e |= Right
	}
	switch row {
	case 0:
		e |= Top
	case 2:
		e |= Bottom
	}
	if e == 0 {
		e = Bottom | Right
	}
	return Handle{Kind: Resize, Edges: e}
}
