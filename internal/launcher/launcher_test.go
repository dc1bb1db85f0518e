package launcher

import (
	"testing"

	"github.com/Gaurav-Gosain/termdesk/internal/catalog"
	"github.com/Gaurav-Gosain/termdesk/internal/store"
	"github.com/Gaurav-Gosain/termdesk/internal/window"
)

type fakeCreator struct {
	created []catalog.Kind
}

func (f *fakeCreator) Create(kind catalog.Kind) (window.Record, bool) {
	f.created = append(f.created, kind)
	return window.Record{ID: string(kind), Kind: kind}, true
}

func TestLauncher_FilterPerKeystroke(t *testing.T) {
	l := New(&fakeCreator{})
	l.Open()

	if got := len(l.Matches()); got != len(catalog.Entries()) {
		t.Errorf("empty query should match all, got %d", got)
	}
	l.Type("n")
	l.Type("e")
	l.Type("w")
	m := l.Matches()
	if len(m) != 1 || m[0].Kind != catalog.News {
		t.Errorf("expected News for %q, got %+v", l.Query(), m)
	}
	l.Backspace()
	l.Backspace()
	l.Backspace()
	l.Backspace()
	if l.Query() != "" {
		t.Errorf("expected empty query, got %q", l.Query())
	}
}

func TestLauncher_LaunchClearsAndCloses(t *testing.T) {
	fc := &fakeCreator{}
	l := New(fc)
	l.Open()
	l.Type("chart")

	rec, ok := l.LaunchSelected()
	if !ok || rec.Kind != catalog.Chart {
		t.Fatalf("expected chart launch, got %+v %v", rec, ok)
	}
	if l.IsOpen() || l.Query() != "" {
		t.Error("launch must clear the query and close the list")
	}
	if len(fc.created) != 1 {
		t.Errorf("expected one create, got %d", len(fc.created))
	}
}

func TestLauncher_NoMatchesStaysOpen(t *testing.T) {
	fc := &fakeCreator{}
	l := New(fc)
	l.Open()
	l.Type("zzz")
	if _, ok := l.LaunchSelected(); ok {
		t.Error("nothing should launch")
	}
	if !l.IsOpen() || len(fc.created) != 0 {
		t.Error("palette should stay open without creating")
	}
}

func TestLauncher_SelectionWraps(t *testing.T) {
	l := New(&fakeCreator{})
	l.Open()
	n := len(l.Matches())

	l.MoveSelection(-1)
	if l.Selected() != n-1 {
		t.Errorf("expected wrap to %d, got %d", n-1, l.Selected())
	}
	l.MoveSelection(1)
	if l.Selected() != 0 {
		t.Errorf("expected wrap to 0, got %d", l.Selected())
	}
	l.MoveSelection(2)
	l.Type("x")
	if l.Selected() != 0 {
		t.Error("typing should reset the selection")
	}
}

func TestLauncher_WithRegistry(t *testing.T) {
	s := store.New(store.NewMemoryBackend(), nil)
	defer s.Close()
	reg := window.NewRegistry(s, window.Policy{CascadeBase: 50, CascadeStep: 20, CascadeSlots: 8}, nil)

	l := New(reg)
	l.Open()
	l.SetQuery("price")
	l.LaunchSelected()
	l.Open()
	l.SetQuery("ORDER")
	l.LaunchSelected()

	recs := reg.Layout().Records()
	if len(recs) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(recs))
	}
	if recs[0].Title != "Price Chart" || recs[1].Title != "Order Ticket" {
		t.Errorf("unexpected titles %q, %q", recs[0].Title, recs[1].Title)
	}
	if recs[1].Z <= recs[0].Z {
		t.Error("second launch should be on top")
	}
}
