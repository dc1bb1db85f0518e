package window

import (
	"io"
	"slices"

	"charm.land/log/v2"
	"github.com/Gaurav-Gosain/termdesk/internal/catalog"
	"github.com/Gaurav-Gosain/termdesk/internal/store"
)

// Store keys the registry persists under. The z counter is kept apart from
// the records so z values of closed windows are never handed out again.
const (
	LayoutKey = "layout"
	TopZKey   = "layout-z"
)

// Op names the transition that produced a change event.
type Op int

const (
	OpCreate Op = iota
	OpFocus
	OpUpdate
	OpClose
	OpMinimize
	OpMaximize
	OpReset
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpFocus:
		return "focus"
	case OpUpdate:
		return "update"
	case OpClose:
		return "close"
	case OpMinimize:
		return "minimize"
	case OpMaximize:
		return "maximize"
	case OpReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after every effective change.
type Event struct {
	Op     Op
	ID     string
	Layout Layout
}

// Registry is the owned container for the desktop's layout. It is driven
// from the UI event loop and is not safe for concurrent use.
type Registry struct {
	layout    Layout
	persisted *store.Value[[]Record]
	topZ      *store.Value[int]
	logger    *log.Logger

	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(Event)
}

// NewRegistry loads the persisted layout from s and reconciles it against
// the catalog. A nil logger discards output.
func NewRegistry(s *store.Store, policy Policy, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.With("component", "registry")

	persisted := store.Open(s, LayoutKey, []Record{})
	topZ := store.Open(s, TopZKey, 0)
	raw := persisted.Get()
	layout := NewLayout(policy, raw...)
	if layout.Len() != len(raw) {
		logger.Warn("dropped invalid persisted windows", "loaded", len(raw), "kept", layout.Len())
		persisted.Set(layout.Records())
	}
	layout.topZ = max(layout.topZ, topZ.Get())

	return &Registry{
		layout:    layout,
		persisted: persisted,
		topZ:      topZ,
		logger:    logger,
	}
}

// Layout returns the current layout value.
func (r *Registry) Layout() Layout { return r.layout }

// Find returns the record with id.
func (r *Registry) Find(id string) (Record, bool) { return r.layout.Find(id) }

// Subscribe registers fn for change events and returns a func that removes
// it. Subscribers are called in the order they subscribed.
func (r *Registry) Subscribe(fn func(Event)) (unsubscribe func()) {
	id := r.nextSub
	r.nextSub++
	r.subs = append(r.subs, subscriber{id: id, fn: fn})
	return func() {
		r.subs = slices.DeleteFunc(r.subs, func(s subscriber) bool { return s.id == id })
	}
}

// commit installs next if it differs from the current layout, persists it and
// notifies subscribers.
func (r *Registry) commit(op Op, id string, next Layout) {
	if next.Revision() == r.layout.Revision() {
		return
	}
	r.layout = next
	r.persisted.Set(next.Records())
	if next.TopZ() != r.topZ.Get() {
		r.topZ.Set(next.TopZ())
	}
	r.logger.Debug("layout changed", "op", op, "id", id, "windows", next.Len())

	ev := Event{Op: op, ID: id, Layout: next}
	for _, sub := range slices.Clone(r.subs) {
		sub.fn(ev)
	}
}

// Create opens a window for kind. It reports false for kinds not in the
// catalog.
func (r *Registry) Create(kind catalog.Kind) (Record, bool) {
	entry, ok := catalog.Lookup(kind)
	if !ok {
		r.logger.Warn("create for unknown app kind", "kind", kind)
		return Record{}, false
	}
	next, rec := r.layout.Create(entry)
	r.commit(OpCreate, rec.ID, next)
	return rec, true
}

func (r *Registry) Focus(id string) {
	r.commit(OpFocus, id, r.layout.Focus(id))
}

func (r *Registry) Update(id string, patch Patch) {
	r.commit(OpUpdate, id, r.layout.Update(id, patch))
}

func (r *Registry) Close(id string) {
	r.commit(OpClose, id, r.layout.Close(id))
}

func (r *Registry) ToggleMinimize(id string) {
	r.commit(OpMinimize, id, r.layout.ToggleMinimize(id))
}

func (r *Registry) ToggleMaximize(id string) {
	r.commit(OpMaximize, id, r.layout.ToggleMaximize(id))
}

// SetPolicy swaps the placement policy. Existing windows are raised to the
// new minimum size.
func (r *Registry) SetPolicy(p Policy) {
	next := NewLayout(p, r.layout.records...)
	next.topZ = max(next.topZ, r.layout.topZ)
	next.rev = r.layout.rev + 1
	r.commit(OpUpdate, "", next)
}

// Reset closes every window.
func (r *Registry) Reset() {
	if r.layout.Len() == 0 {
		return
	}
	next := NewLayout(r.layout.Policy())
	next.topZ = r.layout.topZ
	next.rev = r.layout.rev + 1
	r.commit(OpReset, "", next)
}
