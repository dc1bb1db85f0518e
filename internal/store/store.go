package store

import (
	"encoding/json"
	"errors"
	"io"
	"sync"

	"charm.land/log/v2"
)

// Store owns a backend and the background writer that drains pending writes.
type Store struct {
	backend Backend
	logger  *log.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	pending  map[string][]byte
	inflight map[string][]byte // batch the writer is saving right now
	writing  bool
	closed   bool
	done     chan struct{}

	// One Value per key, so every handle on a key shares its memory.
	openMu sync.Mutex
	values map[string]any
}

// New starts a store over backend. A nil logger discards output.
func New(backend Backend, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Store{
		backend: backend,
		logger:  logger.With("component", "store"),
		pending: make(map[string][]byte),
		done:    make(chan struct{}),
		values:  make(map[string]any),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// load reads key synchronously. Writes still queued or being saved win over
// the backend. ErrNotFound is passed through so callers can tell a fresh key
// from a broken one.
func (s *Store) load(key string) ([]byte, error) {
	s.mu.Lock()
	data, ok := s.pending[key]
	if !ok {
		data, ok = s.inflight[key]
	}
	s.mu.Unlock()
	if ok {
		return data, nil
	}
	return s.backend.Load(key)
}

// enqueue schedules data to be written for key, replacing any pending write.
func (s *Store) enqueue(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Warn("write after close dropped", "key", key)
		return
	}
	s.pending[key] = data
	s.cond.Broadcast()
}

func (s *Store) run() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for len(s.pending) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.pending) == 0 && s.closed {
			s.mu.Unlock()
			return
		}
		batch := s.pending
		s.pending = make(map[string][]byte)
		s.inflight = batch
		s.writing = true
		s.mu.Unlock()

		for key, data := range batch {
			if err := s.backend.Save(key, data); err != nil {
				s.logger.Error("persist failed", "key", key, "err", err)
			}
		}

		s.mu.Lock()
		s.inflight = nil
		s.writing = false
		s.cond.Broadcast()
		s.mu.Unlock()
	}
}

// Flush blocks until every write scheduled so far has been attempted.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.pending) > 0 || s.writing {
		s.cond.Wait()
	}
}

// Close flushes pending writes and stops the writer. It is safe to call
// more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return nil
	}
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
	<-s.done
	return nil
}

// Value is a typed, persisted value bound to one key.
type Value[T any] struct {
	store *Store
	key   string

	mu  sync.RWMutex
	val T
}

// Open returns the Value bound to key. The first Open of a key reads it
// synchronously and holds either the decoded data or fallback when the key is
// missing or unreadable; later Opens of the same key and type return that
// same Value.
func Open[T any](s *Store, key string, fallback T) *Value[T] {
	s.openMu.Lock()
	defer s.openMu.Unlock()
	if cached, ok := s.values[key]; ok {
		if v, ok := cached.(*Value[T]); ok {
			return v
		}
		s.logger.Warn("key reopened as a different type", "key", key)
		return openValue(s, key, fallback)
	}
	v := openValue(s, key, fallback)
	s.values[key] = v
	return v
}

func openValue[T any](s *Store, key string, fallback T) *Value[T] {
	v := &Value[T]{store: s, key: key, val: fallback}

	data, err := s.load(key)
	switch {
	case errors.Is(err, ErrNotFound):
		return v
	case err != nil:
		s.logger.Error("load failed, using defaults", "key", key, "err", err)
		return v
	}

	var decoded T
	if err := json.Unmarshal(data, &decoded); err != nil {
		s.logger.Error("decode failed, using defaults", "key", key, "err", err)
		return v
	}
	v.val = decoded
	return v
}

// Key returns the storage key.
func (v *Value[T]) Key() string { return v.key }

// Get returns the in-memory value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.val
}

// Set replaces the in-memory value and schedules a write-back. The value is
// encoded before Set returns, so later mutation of shared backing arrays by
// the caller cannot leak into the persisted copy.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	v.val = val
	v.mu.Unlock()

	data, err := json.Marshal(val)
	if err != nil {
		v.store.logger.Error("encode failed", "key", v.key, "err", err)
		return
	}
	v.store.enqueue(v.key, data)
}
