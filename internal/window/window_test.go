package window

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/Gaurav-Gosain/termdesk/internal/catalog"
	"github.com/Gaurav-Gosain/termdesk/internal/store"
)

var testPolicy = Policy{
	CascadeBase:  50,
	CascadeStep:  20,
	CascadeSlots: 8,
	Min:          Size{Width: 200, Height: 150},
}

func entry(t *testing.T, kind catalog.Kind) catalog.Entry {
	t.Helper()
	e, ok := catalog.Lookup(kind)
	if !ok {
		t.Fatalf("catalog has no %s", kind)
	}
	return e
}

func newTestRegistry(t *testing.T) (*Registry, *store.Store) {
	t.Helper()
	s := store.New(store.NewMemoryBackend(), nil)
	t.Cleanup(func() { _ = s.Close() })
	return NewRegistry(s, testPolicy, nil), s
}

func TestCreate_DistinctIDsAndIncreasingZ(t *testing.T) {
	l := NewLayout(testPolicy)
	seen := make(map[string]bool)
	lastZ := 0

	for i := 0; i < 20; i++ {
		var rec Record
		l, rec = l.Create(entry(t, catalog.Entries()[i%len(catalog.Entries())].Kind))
		if seen[rec.ID] {
			t.Fatalf("duplicate id %s at create %d", rec.ID, i)
		}
		seen[rec.ID] = true
		if rec.Z <= lastZ {
			t.Fatalf("create %d: z %d does not exceed previous %d", i, rec.Z, lastZ)
		}
		lastZ = rec.Z

		// Close every other window so ids are checked across history, not
		// just current contents.
		if i%2 == 1 {
			l = l.Close(rec.ID)
		}
	}
}

func TestCreate_Cascade(t *testing.T) {
	l := NewLayout(testPolicy)
	for i := 0; i < 10; i++ {
		var rec Record
		l, rec = l.Create(entry(t, catalog.Notepad))
		want := 50 + (i%8)*20
		if rec.Geometry.X != want || rec.Geometry.Y != want {
			t.Errorf("window %d at (%d,%d), want (%d,%d)", i, rec.Geometry.X, rec.Geometry.Y, want, want)
		}
	}
}

func TestCreate_SizeFromCatalogClampedToMinimum(t *testing.T) {
	small := Policy{CascadeSlots: 1, Min: Size{Width: 10, Height: 5}}
	_, rec := NewLayout(small).Create(entry(t, catalog.Browser))
	if rec.Geometry.Width != 72 || rec.Geometry.Height != 20 {
		t.Errorf("expected catalog size 72x20, got %dx%d", rec.Geometry.Width, rec.Geometry.Height)
	}
	if rec.Title != "Web View" {
		t.Errorf("expected catalog title, got %q", rec.Title)
	}

	_, rec = NewLayout(testPolicy).Create(entry(t, catalog.Browser))
	if rec.Geometry.Width != 200 || rec.Geometry.Height != 150 {
		t.Errorf("expected clamped size 200x150, got %dx%d", rec.Geometry.Width, rec.Geometry.Height)
	}
}

func TestLayout_TransitionsDoNotMutateReceiver(t *testing.T) {
	l0 := NewLayout(testPolicy)
	l1, a := l0.Create(entry(t, catalog.Chart))
	l2 := l1.Update(a.ID, MoveTo(1, 2))

	if l0.Len() != 0 {
		t.Error("create mutated its receiver")
	}
	if got, _ := l1.Find(a.ID); got.Geometry.X != 50 {
		t.Error("update mutated its receiver")
	}
	if got, _ := l2.Find(a.ID); got.Geometry.X != 1 || got.Geometry.Y != 2 {
		t.Errorf("unexpected geometry %+v", got.Geometry)
	}
}

func TestFocus_Idempotent(t *testing.T) {
	l := NewLayout(testPolicy)
	l, a := l.Create(entry(t, catalog.Chart))
	l, _ = l.Create(entry(t, catalog.Ticket))

	l = l.Focus(a.ID)
	first, _ := l.Find(a.ID)
	rev := l.Revision()

	l = l.Focus(a.ID)
	second, _ := l.Find(a.ID)
	if first.Z != second.Z {
		t.Errorf("second focus changed z from %d to %d", first.Z, second.Z)
	}
	if l.Revision() != rev {
		t.Error("second focus should be a no-op")
	}
	if top, _ := l.Top(); top.ID != a.ID {
		t.Errorf("expected %s on top, got %s", a.ID, top.ID)
	}
}

func TestFocus_AssignsPastCounterAfterClose(t *testing.T) {
	l := NewLayout(testPolicy)
	l, a := l.Create(entry(t, catalog.Chart))
	l, b := l.Create(entry(t, catalog.Ticket))
	l, c := l.Create(entry(t, catalog.Ledger))
	l = l.Close(c.ID)

	l = l.Focus(a.ID)
	got, _ := l.Find(a.ID)
	if got.Z <= c.Z {
		t.Errorf("focus reused z %d, counter was at %d", got.Z, c.Z)
	}
	bRec, _ := l.Find(b.ID)
	if got.Z <= bRec.Z {
		t.Errorf("focused window z %d not above %d", got.Z, bRec.Z)
	}
}

func TestToggleMaximize_RoundTrip(t *testing.T) {
	l := NewLayout(testPolicy)
	l, a := l.Create(entry(t, catalog.Chart))
	l = l.Update(a.ID, SetAll(Geometry{X: 13, Y: 7, Width: 321, Height: 222}))
	before, _ := l.Find(a.ID)

	l = l.ToggleMaximize(a.ID)
	mid, _ := l.Find(a.ID)
	if !mid.Maximized {
		t.Fatal("expected maximized")
	}
	desktop := Geometry{Width: 120, Height: 39}
	if Effective(mid, desktop) != desktop {
		t.Error("maximized window should fill the desktop")
	}

	l = l.ToggleMaximize(a.ID)
	after, _ := l.Find(a.ID)
	if after.Maximized || after.Geometry != before.Geometry {
		t.Errorf("round trip changed geometry: %+v -> %+v", before.Geometry, after.Geometry)
	}
}

func TestUpdate_ClampsToMinimum(t *testing.T) {
	l := NewLayout(testPolicy)
	l, a := l.Create(entry(t, catalog.Chart))
	l = l.Update(a.ID, ResizeTo(10, 10))
	got, _ := l.Find(a.ID)
	if got.Geometry.Width != 200 || got.Geometry.Height != 150 {
		t.Errorf("expected clamp to 200x150, got %dx%d", got.Geometry.Width, got.Geometry.Height)
	}
}

func TestUpdate_AfterCloseIsNoop(t *testing.T) {
	r, _ := newTestRegistry(t)
	a, _ := r.Create(catalog.Chart)
	r.Create(catalog.Ticket)

	r.Close(a.ID)
	size := r.Layout().Len()
	r.Update(a.ID, MoveTo(99, 99))

	if r.Layout().Len() != size {
		t.Errorf("registry size changed from %d to %d", size, r.Layout().Len())
	}
	if _, ok := r.Find(a.ID); ok {
		t.Error("closed window was resurrected by update")
	}
}

func TestRegistry_InvalidIDsAreNoops(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.Create(catalog.Chart)

	events := 0
	unsub := r.Subscribe(func(Event) { events++ })
	defer unsub()

	r.Focus("missing")
	r.Update("missing", MoveTo(1, 1))
	r.Close("missing")
	r.ToggleMinimize("missing")
	r.ToggleMaximize("missing")

	if events != 0 {
		t.Errorf("expected no events for unknown ids, got %d", events)
	}
	if _, ok := r.Create("spreadsheet"); ok {
		t.Error("expected unknown kind to be refused")
	}
}

func TestRegistry_SubscribeAndUnsubscribe(t *testing.T) {
	r, _ := newTestRegistry(t)

	var ops []Op
	unsub := r.Subscribe(func(e Event) { ops = append(ops, e.Op) })

	a, _ := r.Create(catalog.Chart)
	r.ToggleMinimize(a.ID)
	r.ToggleMaximize(a.ID)
	unsub()
	r.Close(a.ID)

	want := []Op{OpCreate, OpMinimize, OpMaximize}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("got events %v, want %v", ops, want)
	}
}

func TestRegistry_PersistedRoundTrip(t *testing.T) {
	backend := store.NewMemoryBackend()
	s := store.New(backend, nil)
	r := NewRegistry(s, testPolicy, nil)

	a, _ := r.Create(catalog.Chart)
	b, _ := r.Create(catalog.Ticket)
	r.Create(catalog.Notepad)
	r.Focus(a.ID)
	r.ToggleMinimize(b.ID)
	r.ToggleMaximize(a.ID)
	r.Update(a.ID, MoveTo(3, 4))
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2 := store.New(backend, nil)
	defer s2.Close()
	reloaded := NewRegistry(s2, testPolicy, nil)

	if !reflect.DeepEqual(reloaded.Layout().Records(), r.Layout().Records()) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", reloaded.Layout().Records(), r.Layout().Records())
	}
	if reloaded.Layout().TopZ() != r.Layout().TopZ() {
		t.Errorf("z counter not restored: %d vs %d", reloaded.Layout().TopZ(), r.Layout().TopZ())
	}
}

func TestRegistry_SubscribersCalledInOrder(t *testing.T) {
	r, _ := newTestRegistry(t)

	var calls []string
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		r.Subscribe(func(Event) { calls = append(calls, name) })
	}
	r.Create(catalog.Chart)
	r.Create(catalog.Ticket)

	want := []string{"a", "b", "c", "d", "e", "a", "b", "c", "d", "e"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestRegistry_ZCounterSurvivesRestart(t *testing.T) {
	backend := store.NewMemoryBackend()
	s := store.New(backend, nil)
	r := NewRegistry(s, testPolicy, nil)

	r.Create(catalog.Chart)
	top, _ := r.Create(catalog.Ticket)
	r.Close(top.ID)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2 := store.New(backend, nil)
	defer s2.Close()
	reloaded := NewRegistry(s2, testPolicy, nil)
	if got := reloaded.Layout().TopZ(); got != top.Z {
		t.Errorf("restored z counter = %d, want %d", got, top.Z)
	}
	next, _ := reloaded.Create(catalog.Notepad)
	if next.Z <= top.Z {
		t.Errorf("new window z = %d, reuses closed window z %d", next.Z, top.Z)
	}
}

func TestNewLayout_Reconciles(t *testing.T) {
	records := []Record{
		{ID: "a", Kind: catalog.Chart, Geometry: Geometry{Width: 300, Height: 200}, Z: 4},
		{ID: "a", Kind: catalog.Ticket, Z: 9},
		{ID: "b", Kind: "spreadsheet", Z: 12},
		{ID: "", Kind: catalog.Notepad, Z: 13},
		{ID: "c", Kind: catalog.Notepad, Geometry: Geometry{Width: 1, Height: 1}, Z: 7},
	}
	l := NewLayout(testPolicy, records...)

	if l.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", l.Len())
	}
	if l.TopZ() != 7 {
		t.Errorf("expected counter 7, got %d", l.TopZ())
	}
	c, _ := l.Find("c")
	if c.Geometry.Width != 200 || c.Geometry.Height != 150 {
		t.Errorf("expected clamped size, got %+v", c.Geometry)
	}
}

func TestRecord_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Record{ID: "x", Kind: catalog.News})
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"id", "appKind", "title", "geometry", "zOrder", "minimized", "maximized"} {
		if _, ok := fields[k]; !ok {
			t.Errorf("missing field %q in %s", k, data)
		}
	}
}

func TestScenarioA_LaunchTwo(t *testing.T) {
	r, _ := newTestRegistry(t)
	chart, _ := r.Create(catalog.Chart)
	ticket, _ := r.Create(catalog.Ticket)

	if r.Layout().Len() != 2 {
		t.Fatalf("expected 2 records, got %d", r.Layout().Len())
	}
	if chart.Title != "Price Chart" || ticket.Title != "Order Ticket" {
		t.Errorf("unexpected titles %q, %q", chart.Title, ticket.Title)
	}
	if ticket.Z <= chart.Z {
		t.Errorf("second window z %d should exceed %d", ticket.Z, chart.Z)
	}
	if chart.Geometry.X != 50 || chart.Geometry.Y != 50 {
		t.Errorf("first window at (%d,%d)", chart.Geometry.X, chart.Geometry.Y)
	}
	if ticket.Geometry.X != 70 || ticket.Geometry.Y != 70 {
		t.Errorf("second window at (%d,%d)", ticket.Geometry.X, ticket.Geometry.Y)
	}
}

func TestScenarioC_MinimizeHidesButKeepsInTaskbar(t *testing.T) {
	r, _ := newTestRegistry(t)
	a, _ := r.Create(catalog.Chart)
	b, _ := r.Create(catalog.Ticket)
	r.ToggleMinimize(a.ID)

	visible := r.Layout().Visible()
	if len(visible) != 1 || visible[0].ID != b.ID {
		t.Errorf("expected only %s visible, got %+v", b.ID, visible)
	}

	var found bool
	for _, rec := range r.Layout().Records() {
		if rec.ID == a.ID {
			found = true
			if !rec.Minimized {
				t.Error("expected minimized flag set")
			}
		}
	}
	if !found {
		t.Error("minimized window missing from taskbar list")
	}
}

func TestMinimizedTakesPriorityOverMaximized(t *testing.T) {
	l := NewLayout(testPolicy)
	l, a := l.Create(entry(t, catalog.Chart))
	l = l.ToggleMaximize(a.ID).ToggleMinimize(a.ID)
	if len(l.Visible()) != 0 {
		t.Error("minimized+maximized window should be hidden")
	}
	if _, ok := l.HitTest(0, 0, Geometry{Width: 100, Height: 100}); ok {
		t.Error("hidden window should not be hit")
	}
}

func TestHitTest_Topmost(t *testing.T) {
	l := NewLayout(Policy{CascadeSlots: 1, Min: Size{Width: 10, Height: 5}})
	l, a := l.Create(entry(t, catalog.Chart))
	l, b := l.Create(entry(t, catalog.Ticket))

	desktop := Geometry{Width: 200, Height: 60}
	if got, _ := l.HitTest(1, 1, desktop); got.ID != b.ID {
		t.Errorf("expected %s on top, got %s", b.ID, got.ID)
	}
	l = l.Focus(a.ID)
	if got, _ := l.HitTest(1, 1, desktop); got.ID != a.ID {
		t.Errorf("expected %s on top after focus, got %s", a.ID, got.ID)
	}
	if _, ok := l.HitTest(150, 50, desktop); ok {
		t.Error("expected miss outside every window")
	}
}

func TestRegistry_SetPolicyClampsExisting(t *testing.T) {
	r, _ := newTestRegistry(t)
	a, _ := r.Create(catalog.Chart)

	bigger := testPolicy
	bigger.Min = Size{Width: 300, Height: 160}
	r.SetPolicy(bigger)

	got, _ := r.Find(a.ID)
	if got.Geometry.Width != 300 || got.Geometry.Height != 160 {
		t.Errorf("expected 300x160, got %dx%d", got.Geometry.Width, got.Geometry.Height)
	}
	if got.Z != a.Z {
		t.Error("policy change should not restack windows")
	}
}

func TestRegistry_Reset(t *testing.T) {
	r, _ := newTestRegistry(t)
	for range 3 {
		r.Create(catalog.News)
	}
	top := r.Layout().TopZ()
	r.Reset()
	if r.Layout().Len() != 0 {
		t.Errorf("expected empty layout, got %d", r.Layout().Len())
	}
	rec, _ := r.Create(catalog.News)
	if rec.Z <= top {
		t.Errorf("z %d reused after reset (counter was %d)", rec.Z, top)
	}
}

func BenchmarkLayoutFocus(b *testing.B) {
	l := NewLayout(testPolicy)
	var ids []string
	for i := 0; i < 32; i++ {
		var rec Record
		l, rec = l.Create(catalog.Entries()[i%8])
		ids = append(ids, rec.ID)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l = l.Focus(ids[i%len(ids)])
	}
}
