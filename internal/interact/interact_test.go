package interact

import (
	"testing"

	"github.com/Gaurav-Gosain/termdesk/internal/catalog"
	"github.com/Gaurav-Gosain/termdesk/internal/store"
	"github.com/Gaurav-Gosain/termdesk/internal/window"
)

var minSize = window.Size{Width: 200, Height: 150}

func TestResizeBy(t *testing.T) {
	start := window.Geometry{X: 100, Y: 100, Width: 400, Height: 300}

	tests := []struct {
		name   string
		edges  Edges
		dx, dy int
		want   window.Geometry
	}{
		{"right grows", Right, 50, 0, window.Geometry{X: 100, Y: 100, Width: 450, Height: 300}},
		{"bottom shrinks", Bottom, 0, -40, window.Geometry{X: 100, Y: 100, Width: 400, Height: 260}},
		{"left grows and shifts", Left, -30, 0, window.Geometry{X: 70, Y: 100, Width: 430, Height: 300}},
		{"top shrinks and shifts", Top, 0, 20, window.Geometry{X: 100, Y: 120, Width: 400, Height: 280}},
		{"left clamps and pins right edge", Left, 1000, 0, window.Geometry{X: 300, Y: 100, Width: 200, Height: 300}},
		{"top clamps and pins bottom edge", Top, 0, 1000, window.Geometry{X: 100, Y: 250, Width: 400, Height: 150}},
		{"bottom-right clamps", Bottom | Right, -1000, -1000, window.Geometry{X: 100, Y: 100, Width: 200, Height: 150}},
		{"top-left combines axes", Top | Left, -10, 10, window.Geometry{X: 90, Y: 110, Width: 410, Height: 290}},
		{"right ignores dy", Right, 10, 500, window.Geometry{X: 100, Y: 100, Width: 410, Height: 300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResizeBy(start, tt.edges, tt.dx, tt.dy, minSize)
			if got != tt.want {
				t.Errorf("ResizeBy(%s, %d, %d) = %+v, want %+v", tt.edges, tt.dx, tt.dy, got, tt.want)
			}
		})
	}
}

func TestResizeBy_LeftPinning(t *testing.T) {
	start := window.Geometry{X: 40, Y: 0, Width: 260, Height: 200}
	for dx := 0; dx <= 400; dx += 7 {
		got := ResizeBy(start, Left, dx, 0, minSize)
		if got.Right() != start.Right() {
			t.Fatalf("dx=%d moved right edge from %d to %d", dx, start.Right(), got.Right())
		}
		if start.Width-dx < minSize.Width && got.Width != minSize.Width {
			t.Fatalf("dx=%d width %d, want floor %d", dx, got.Width, minSize.Width)
		}
	}
}

func TestHandleAt(t *testing.T) {
	g := window.Geometry{X: 10, Y: 5, Width: 30, Height: 12}

	tests := []struct {
		name      string
		p         Point
		secondary bool
		want      Handle
		ok        bool
	}{
		{"title bar moves", Point{20, 5}, false, Handle{Kind: Move}, true},
		{"top-left corner", Point{10, 5}, false, Handle{Resize, Top | Left}, true},
		{"top-right corner", Point{39, 5}, false, Handle{Resize, Top | Right}, true},
		{"left border", Point{10, 9}, false, Handle{Resize, Left}, true},
		{"right border", Point{39, 9}, false, Handle{Resize, Right}, true},
		{"bottom border", Point{20, 16}, false, Handle{Resize, Bottom}, true},
		{"bottom-left corner", Point{10, 16}, false, Handle{Resize, Bottom | Left}, true},
		{"bottom-right corner", Point{39, 16}, false, Handle{Resize, Bottom | Right}, true},
		{"content is not a handle", Point{20, 9}, false, Handle{}, false},
		{"outside", Point{0, 0}, false, Handle{}, false},
		{"grid top-left", Point{11, 6}, true, Handle{Resize, Top | Left}, true},
		{"grid top", Point{25, 6}, true, Handle{Resize, Top}, true},
		{"grid centre", Point{25, 10}, true, Handle{Resize, Bottom | Right}, true},
		{"grid left", Point{11, 10}, true, Handle{Resize, Left}, true},
		{"grid bottom-right", Point{38, 15}, true, Handle{Resize, Bottom | Right}, true},
		{"grid outside", Point{100, 100}, true, Handle{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := HandleAt(g, tt.p, tt.secondary)
			if ok != tt.ok || got != tt.want {
				t.Errorf("HandleAt(%+v) = %+v, %v; want %+v, %v", tt.p, got, ok, tt.want, tt.ok)
			}
		})
	}
}

type countingListener struct {
	moves, ends int
}

func (c *countingListener) Move(Point)      { c.moves++ }
func (c *countingListener) End(Point, bool) { c.ends++ }

func TestBus_ReleaseIsIdempotent(t *testing.T) {
	bus := NewBus()
	l := &countingListener{}
	release := bus.Subscribe(l)
	other := bus.Subscribe(&countingListener{})

	release()
	release()
	if bus.Len() != 1 {
		t.Fatalf("expected 1 listener after double release, got %d", bus.Len())
	}
	bus.DispatchMove(Point{})
	if l.moves != 0 {
		t.Error("released listener still received events")
	}
	other()
	if bus.DispatchUp(Point{}) {
		t.Error("expected no listeners")
	}
}

func newRegistry(t *testing.T) *window.Registry {
	t.Helper()
	s := store.New(store.NewMemoryBackend(), nil)
	t.Cleanup(func() { _ = s.Close() })
	return window.NewRegistry(s, window.Policy{
		CascadeBase:  50,
		CascadeStep:  20,
		CascadeSlots: 8,
		Min:          minSize,
	}, nil)
}

func TestScenarioB_Drag(t *testing.T) {
	reg := newRegistry(t)
	bus := NewBus()
	c := NewController(bus, reg, minSize, nil)

	a, _ := reg.Create(catalog.Chart)
	reg.Create(catalog.Ticket)

	if !c.Begin(a.ID, Handle{Kind: Move}, Point{60, 50}) {
		t.Fatal("expected drag to start")
	}
	focused, _ := reg.Find(a.ID)
	if focused.Z != reg.Layout().TopZ() {
		t.Error("drag start should bring the window to front")
	}

	bus.DispatchMove(Point{70, 45})
	bus.DispatchMove(Point{90, 40})
	bus.DispatchUp(Point{90, 40})

	got, _ := reg.Find(a.ID)
	if got.Geometry.X != 80 || got.Geometry.Y != 40 {
		t.Errorf("expected (80,40), got (%d,%d)", got.Geometry.X, got.Geometry.Y)
	}
	if got.Z != focused.Z {
		t.Errorf("z changed during drag from %d to %d", focused.Z, got.Z)
	}
	if bus.Len() != 0 {
		t.Error("listener leaked after pointer up")
	}
	if _, ok := c.Active(); ok {
		t.Error("controller still has an active session")
	}

	// Motion after release writes nothing.
	bus.DispatchMove(Point{0, 0})
	if after, _ := reg.Find(a.ID); after.Geometry != got.Geometry {
		t.Error("geometry changed after session ended")
	}
}

func TestScenarioD_ResizeCornerClamps(t *testing.T) {
	reg := newRegistry(t)
	bus := NewBus()
	c := NewController(bus, reg, minSize, nil)

	reg.Create(catalog.Chart)
	b, _ := reg.Create(catalog.Ticket)
	reg.Update(b.ID, window.ResizeTo(400, 300))
	before, _ := reg.Find(b.ID)

	c.Begin(b.ID, Handle{Kind: Resize, Edges: Bottom | Right}, Point{500, 400})
	bus.DispatchMove(Point{-500, -600})
	bus.DispatchUp(Point{-500, -600})

	got, _ := reg.Find(b.ID)
	if got.Geometry.Width != minSize.Width || got.Geometry.Height != minSize.Height {
		t.Errorf("expected %dx%d, got %dx%d", minSize.Width, minSize.Height, got.Geometry.Width, got.Geometry.Height)
	}
	if got.Geometry.X != before.Geometry.X || got.Geometry.Y != before.Geometry.Y {
		t.Errorf("origin moved from (%d,%d) to (%d,%d)", before.Geometry.X, before.Geometry.Y, got.Geometry.X, got.Geometry.Y)
	}
}

func TestSession_DerivesFromAnchorNotPreviousFrame(t *testing.T) {
	reg := newRegistry(t)
	bus := NewBus()
	c := NewController(bus, reg, minSize, nil)
	a, _ := reg.Create(catalog.Chart)

	c.Begin(a.ID, Handle{Kind: Resize, Edges: Left}, Point{50, 60})
	// Overshoot past the floor and come back: the result must match a single
	// move to the final point.
	bus.DispatchMove(Point{2000, 60})
	bus.DispatchMove(Point{40, 60})
	bus.DispatchUp(Point{40, 60})

	got, _ := reg.Find(a.ID)
	want := ResizeBy(a.Geometry, Left, -10, 0, minSize)
	if got.Geometry != want {
		t.Errorf("got %+v, want %+v", got.Geometry, want)
	}
}

func TestSession_WindowClosedMidDrag(t *testing.T) {
	reg := newRegistry(t)
	bus := NewBus()
	c := NewController(bus, reg, minSize, nil)
	a, _ := reg.Create(catalog.Chart)
	reg.Create(catalog.Ticket)

	c.Begin(a.ID, Handle{Kind: Move}, Point{0, 0})
	reg.Close(a.ID)
	size := reg.Layout().Len()

	bus.DispatchMove(Point{10, 10})
	if _, ok := reg.Find(a.ID); ok {
		t.Fatal("closed window resurrected")
	}
	if reg.Layout().Len() != size {
		t.Error("registry size changed")
	}
	if bus.Len() != 0 {
		t.Error("session should release its listener once the window is gone")
	}
	if _, ok := c.Active(); ok {
		t.Error("controller should be idle")
	}
}

func TestController_OneSessionAtATime(t *testing.T) {
	reg := newRegistry(t)
	bus := NewBus()
	c := NewController(bus, reg, minSize, nil)
	a, _ := reg.Create(catalog.Chart)
	b, _ := reg.Create(catalog.Ticket)

	if !c.Begin(a.ID, Handle{Kind: Move}, Point{}) {
		t.Fatal("first session should start")
	}
	if c.Begin(b.ID, Handle{Kind: Resize, Edges: Right}, Point{}) {
		t.Error("second session must be refused while one is active")
	}
	if bus.Len() != 1 {
		t.Errorf("expected one listener, got %d", bus.Len())
	}

	bus.DispatchCancel()
	if !c.Begin(b.ID, Handle{Kind: Resize, Edges: Right}, Point{}) {
		t.Error("session should start after cancel")
	}
	c.Cancel()
	if bus.Len() != 0 {
		t.Error("cancel leaked a listener")
	}
}

func TestController_MaximizedWindowFocusesWithoutSession(t *testing.T) {
	reg := newRegistry(t)
	bus := NewBus()
	c := NewController(bus, reg, minSize, nil)
	a, _ := reg.Create(catalog.Chart)
	reg.Create(catalog.Ticket)
	reg.ToggleMaximize(a.ID)

	if c.Begin(a.ID, Handle{Kind: Move}, Point{}) {
		t.Error("maximized windows must not be dragged")
	}
	if top, _ := reg.Layout().Top(); top.ID != a.ID {
		t.Error("press on a maximized window should still focus it")
	}
	if bus.Len() != 0 {
		t.Error("no listener expected")
	}
}

func TestController_UnknownWindow(t *testing.T) {
	reg := newRegistry(t)
	c := NewController(NewBus(), reg, minSize, nil)
	if c.Begin("missing", Handle{Kind: Move}, Point{}) {
		t.Error("expected refusal for unknown window")
	}
}
