package interact

import (
	"io"
	"sync"

	"charm.land/log/v2"
	"github.com/Gaurav-Gosain/termdesk/internal/window"
)

// Listener receives pointer events while subscribed to a Bus.
type Listener interface {
	Move(p Point)
	End(p Point, cancelled bool)
}

// Bus is the desktop-wide pointer scope. Motion and release events that are
// not addressed to a particular window are dispatched here, to whichever
// gesture is currently subscribed.
type Bus struct {
	mu        sync.Mutex
	listeners map[int]Listener
	next      int
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[int]Listener)}
}

// Subscribe adds l and returns its release func. Release is safe to call
// more than once; only the first call has an effect.
func (b *Bus) Subscribe(l Listener) (release func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.listeners[id] = l
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Len returns the number of subscribed listeners.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

func (b *Bus) snapshot() []Listener {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		out = append(out, l)
	}
	return out
}

// DispatchMove delivers pointer motion. It reports whether anyone listened.
func (b *Bus) DispatchMove(p Point) bool {
	ls := b.snapshot()
	for _, l := range ls {
		l.Move(p)
	}
	return len(ls) > 0
}

// DispatchUp delivers a pointer release.
func (b *Bus) DispatchUp(p Point) bool {
	ls := b.snapshot()
	for _, l := range ls {
		l.End(p, false)
	}
	return len(ls) > 0
}

// DispatchCancel aborts every subscribed gesture.
func (b *Bus) DispatchCancel() bool {
	ls := b.snapshot()
	for _, l := range ls {
		l.End(Point{}, true)
	}
	return len(ls) > 0
}

// Target is the window state a session reads and writes.
type Target interface {
	Find(id string) (window.Record, bool)
	Focus(id string)
	Update(id string, patch window.Patch)
}

// Session is one move or resize gesture. Geometry is always derived from the
// anchor captured at start, never from the previous frame.
type Session struct {
	id     string
	handle Handle
	min    window.Size
	target Target

	anchor Point
	start  window.Geometry

	release func()
	once    sync.Once
	onEnd   func(*Session)
	ended   bool
}

// start focuses the window, captures the anchor and subscribes to bus.
func start(bus *Bus, target Target, id string, h Handle, p Point, min window.Size, onEnd func(*Session)) (*Session, bool) {
	target.Focus(id)
	rec, ok := target.Find(id)
	if !ok {
		return nil, false
	}

	s := &Session{
		id:     id,
		handle: h,
		min:    min,
		target: target,
		anchor: p,
		start:  rec.Geometry,
		onEnd:  onEnd,
	}
	s.release = bus.Subscribe(s)
	return s, true
}

// ID returns the window the session drags.
func (s *Session) ID() string { return s.id }

// Handle returns what the session drags.
func (s *Session) Handle() Handle { return s.handle }

// Active reports whether the session still receives events.
func (s *Session) Active() bool { return !s.ended }

// Geometry computes the geometry for pointer position p.
func (s *Session) Geometry(p Point) window.Geometry {
	d := p.Sub(s.anchor)
	if s.handle.Kind == Resize {
		return ResizeBy(s.start, s.handle.Edges, d.X, d.Y, s.min)
	}
	return MoveBy(s.start, d.X, d.Y)
}

// Move applies pointer motion. A session whose window has gone away ends
// without writing.
func (s *Session) Move(p Point) {
	if s.ended {
		return
	}
	if _, ok := s.target.Find(s.id); !ok {
		s.finish()
		return
	}
	s.target.Update(s.id, window.SetAll(s.Geometry(p)))
}

// End finishes the gesture. No update is issued on release: the last motion
// event already wrote the final geometry.
func (s *Session) End(Point, bool) {
	s.finish()
}

func (s *Session) finish() {
	s.once.Do(func() {
		s.ended = true
		s.release()
		if s.onEnd != nil {
			s.onEnd(s)
		}
	})
}

// Controller admits at most one active session at a time.
type Controller struct {
	bus    *Bus
	target Target
	min    window.Size
	logger *log.Logger

	active *Session
}

// NewController returns a controller writing to target. A nil logger
// discards output.
func NewController(bus *Bus, target Target, min window.Size, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{
		bus:    bus,
		target: target,
		min:    min,
		logger: logger.With("component", "interact"),
	}
}

// SetMin changes the resize floor for future sessions.
func (c *Controller) SetMin(min window.Size) { c.min = min }

// Active returns the running session, if any.
func (c *Controller) Active() (*Session, bool) {
	return c.active, c.active != nil
}

// Begin starts a gesture on id at p. It always focuses the window. It
// refuses to start a session while another one is active, for a maximized
// window, or for a window that does not exist.
func (c *Controller) Begin(id string, h Handle, p Point) bool {
	if c.active != nil {
		c.logger.Debug("gesture refused, session already active", "id", id, "active", c.active.id)
		return false
	}

	rec, ok := c.target.Find(id)
	if !ok {
		return false
	}
	if rec.Maximized || h.Kind == None {
		c.target.Focus(id)
		return false
	}

	s, ok := start(c.bus, c.target, id, h, p, c.min, c.ended)
	if !ok {
		return false
	}
	c.active = s
	c.logger.Debug("gesture started", "id", id, "kind", h.Kind, "edges", h.Edges)
	return true
}

// Cancel ends the active session, if any.
func (c *Controller) Cancel() {
	if c.active != nil {
		c.active.finish()
	}
}

func (c *Controller) ended(s *Session) {
	if c.active == s {
		c.active = nil
	}
	c.logger.Debug("gesture ended", "id", s.id)
}
