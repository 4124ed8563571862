// Package store keeps one mutable session per guest identity. It is
// the only place sessions are created, and it guarantees that a single
// guest's messages are processed strictly one at a time.
package store

import (
	"sync"
	"time"

	"github.com/ermekov/club-table-reservation/internal/model"
)

// entry pairs a session with its own lock. The store map itself is
// guarded separately so looking up one guest never blocks another.
type entry struct {
	mu      sync.Mutex
	session *model.Session
}

// Store holds all live sessions keyed by guest id. Sessions are
// created lazily on first contact and occupy negligible memory, so
// they are only removed by PurgeIdle.
type Store struct {
	mu      sync.Mutex
	entries map[int64]*entry
	now     func() time.Time
}

// New returns an empty session store.
func New() *Store {
	return &Store{entries: make(map[int64]*entry), now: time.Now}
}

// WithSession runs fn with the guest's session while holding that
// guest's lock. Two messages from the same guest are therefore never
// handled concurrently; messages from different guests do not contend.
// The session is created on first use in the language-selection state.
func (s *Store) WithSession(guestID int64, fn func(*model.Session) error) error {
	s.mu.Lock()
	e, ok := s.entries[guestID]
	if !ok {
		e = &entry{session: &model.Session{
			GuestID: guestID,
			State:   model.StateLanguage,
		}}
		s.entries[guestID] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.LastActivity = s.now().UTC()
	return fn(e.session)
}

// Snapshot returns a copy of a guest's session, or false when the
// guest has never interacted. Intended for tests and diagnostics.
func (s *Store) Snapshot(guestID int64) (model.Session, bool) {
	s.mu.Lock()
	e, ok := s.entries[guestID]
	s.mu.Unlock()
	if !ok {
		return model.Session{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.session, true
}

// Len reports how many sessions are currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// PurgeIdle removes sessions whose last activity is older than maxIdle
// and returns how many were dropped. A purged guest simply starts from
// language selection on their next message.
func (s *Store) PurgeIdle(maxIdle time.Duration) int {
	cutoff := s.now().UTC().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for id, e := range s.entries {
		e.mu.Lock()
		idle := e.session.LastActivity.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(s.entries, id)
			purged++
		}
	}
	return purged
}
