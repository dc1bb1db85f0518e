// Package window holds the desktop's window records and the transitions
// that mutate them.
//
// Layout is an immutable value: every transition returns a new Layout and
// leaves the receiver untouched. Registry wraps a Layout as the single
// owned state container, persists it and notifies observers.
package window

import (
	"cmp"
	"slices"

	"github.com/Gaurav-Gosain/termdesk/internal/catalog"
	"github.com/google/uuid"
)

// Record is one open window.
type Record struct {
	ID        string       `json:"id"`
	Kind      catalog.Kind `json:"appKind"`
	Title     string       `json:"title"`
	Geometry  Geometry     `json:"geometry"`
	Z         int          `json:"zOrder"`
	Minimized bool         `json:"minimized"`
	Maximized bool         `json:"maximized"`
}

// Policy controls placement of new windows and the resize floor.
type Policy struct {
	CascadeBase  int
	CascadeStep  int
	CascadeSlots int
	Min          Size
}

// newID is swapped in tests that need predictable ids.
var newID = uuid.NewString

// Layout is the ordered collection of window records plus the z counter.
type Layout struct {
	records []Record
	topZ    int
	rev     int
	policy  Policy
}

// NewLayout builds a layout from persisted records. Records with an empty
// or duplicate id or an unknown app kind are dropped, sizes are raised to
// the policy minimum, and the z counter resumes from the highest z seen.
func NewLayout(p Policy, records ...Record) Layout {
	if p.CascadeSlots < 1 {
		p.CascadeSlots = 1
	}

	l := Layout{policy: p}
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if r.ID == "" || seen[r.ID] {
			continue
		}
		if _, ok := catalog.Lookup(r.Kind); !ok {
			continue
		}
		seen[r.ID] = true
		r.Geometry = r.Geometry.Clamp(p.Min)
		l.topZ = max(l.topZ, r.Z)
		l.records = append(l.records, r)
	}
	return l
}

// Policy returns the placement policy.
func (l Layout) Policy() Policy { return l.policy }

// Len returns the number of records.
func (l Layout) Len() int { return len(l.records) }

// Revision increases with every transition that changed something.
func (l Layout) Revision() int { return l.rev }

// TopZ returns the z counter: the highest z ever assigned in this layout.
func (l Layout) TopZ() int { return l.topZ }

// Records returns a copy of the records in registry order.
func (l Layout) Records() []Record {
	return slices.Clone(l.records)
}

// Find returns the record with id.
func (l Layout) Find(id string) (Record, bool) {
	if i := l.index(id); i >= 0 {
		return l.records[i], true
	}
	return Record{}, false
}

func (l Layout) index(id string) int {
	return slices.IndexFunc(l.records, func(r Record) bool { return r.ID == id })
}

// Top returns the record with the highest z.
func (l Layout) Top() (Record, bool) {
	if len(l.records) == 0 {
		return Record{}, false
	}
	return slices.MaxFunc(l.records, func(a, b Record) int { return cmp.Compare(a.Z, b.Z) }), true
}

// Visible returns the non-minimized records in ascending z order.
func (l Layout) Visible() []Record {
	out := make([]Record, 0, len(l.records))
	for _, r := range l.records {
		if !r.Minimized {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b Record) int { return cmp.Compare(a.Z, b.Z) })
	return out
}

// with returns a copy of l with records replaced and the revision bumped.
func (l Layout) with(records []Record) Layout {
	l.records = records
	l.rev++
	return l
}

// Create appends a window for entry. The position cascades from the number
// of windows currently open so repeated launches stagger.
func (l Layout) Create(entry catalog.Entry) (Layout, Record) {
	offset := l.policy.CascadeBase + (len(l.records)%l.policy.CascadeSlots)*l.policy.CascadeStep

	l.topZ++
	rec := Record{
		ID:    newID(),
		Kind:  entry.Kind,
		Title: entry.Name,
		Geometry: Geometry{
			X:      offset,
			Y:      offset,
			Width:  entry.Width,
			Height: entry.Height,
		}.Clamp(l.policy.Min),
		Z: l.topZ,
	}

	records := make([]Record, len(l.records), len(l.records)+1)
	copy(records, l.records)
	return l.with(append(records, rec)), rec
}

// Focus raises id above every other window. It is a no-op when id is
// missing or already on top.
func (l Layout) Focus(id string) Layout {
	i := l.index(id)
	if i < 0 {
		return l
	}
	if top, _ := l.Top(); top.ID == id {
		return l
	}

	l.topZ++
	records := l.Records()
	records[i].Z = l.topZ
	return l.with(records)
}

// Update merges patch into id's geometry. Sizes never drop below the policy
// minimum. Unknown ids are ignored.
func (l Layout) Update(id string, patch Patch) Layout {
	i := l.index(id)
	if i < 0 || patch.Empty() {
		return l
	}

	next := patch.Apply(l.records[i].Geometry).Clamp(l.policy.Min)
	if next == l.records[i].Geometry {
		return l
	}

	records := l.Records()
	records[i].Geometry = next
	return l.with(records)
}

// Close removes id permanently. Unknown ids are ignored.
func (l Layout) Close(id string) Layout {
	i := l.index(id)
	if i < 0 {
		return l
	}
	return l.with(slices.Delete(l.Records(), i, i+1))
}

// ToggleMinimize flips id's minimized flag.
func (l Layout) ToggleMinimize(id string) Layout {
	i := l.index(id)
	if i < 0 {
		return l
	}
	records := l.Records()
	records[i].Minimized = !records[i].Minimized
	return l.with(records)
}

// ToggleMaximize flips id's maximized flag. The stored geometry is kept so
// restoring returns to the previous rectangle.
func (l Layout) ToggleMaximize(id string) Layout {
	i := l.index(id)
	if i < 0 {
		return l
	}
	records := l.Records()
	records[i].Maximized = !records[i].Maximized
	return l.with(records)
}

// Effective returns the rectangle a record is drawn in. Maximized windows
// fill desktop; everything else uses its stored geometry.
func Effective(r Record, desktop Geometry) Geometry {
	if r.Maximized {
		return desktop
	}
	return r.Geometry
}

// HitTest returns the topmost visible record drawn under (x, y).
func (l Layout) HitTest(x, y int, desktop Geometry) (Record, bool) {
	visible := l.Visible()
	for i := len(visible) - 1; i >= 0; i-- {
		if Effective(visible[i], desktop).Contains(x, y) {
			return visible[i], true
		}
	}
	return Record{}, false
}
