package handlers

import "sync"

// sessionLocks serializes all mutating operations for one session (state
// transitions, transcript appends, workflow opens/resolves, joins/leaves).
// Reads do not take the lock. Mongo conditional updates remain the backstop
// for multi-instance deployments; this lock keeps a single instance's writers
// from interleaving.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var sessLocks = &sessionLocks{locks: make(map[string]*sync.Mutex)}

// Lock acquires the mutex for the given session, creating it on first use.
// Session lock entries are never removed: sessions are archived, not deleted,
// and the per-session footprint is one mutex.
func (s *sessionLocks) Lock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l
}
