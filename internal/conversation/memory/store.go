// Package memory keeps per-session conversation state for the lifetime of
// the process: history, the lead being assembled and the funnel stage.
package memory

import (
	"sync"
	"time"

	"workmarket_sdr/internal/conversation/domain"
)

// Store owns every session. The map lock is held only to find or create a
// session; each session has its own lock, so different ids never wait on
// each other's work.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// Session is the state of one conversation. Every field, lastSeen included,
// is guarded by mu. Its methods assume the caller holds the session lock,
// which Store.WithSession guarantees; outside of WithSession use the Store
// accessors instead.
type Session struct {
	mu       sync.Mutex
	id       string
	history  []domain.Turn
	lead     domain.Lead
	stage    domain.Stage
	lastSeen time.Time
}

// SessionSnapshot is a detached copy of a session.
type SessionSnapshot struct {
	ID       string        `json:"sessionId"`
	Stage    domain.Stage  `json:"stage"`
	Lead     domain.Lead   `json:"lead"`
	History  []domain.Turn `json:"history"`
	LastSeen time.Time     `json:"lastSeen"`
}

// New creates an empty store.
func New() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// SetClock replaces the time source. Tests only.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) session(id string) (*Session, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess, ok := s.sessions[id]
	if !ok {
		// Not yet shared, so lastSeen can be set without its lock.
		sess = &Session{id: id, lastSeen: now}
		s.sessions[id] = sess
	}
	return sess, now
}

// WithSession runs fn with exclusive access to the session, creating it on
// first reference. Calls for the same id are serialized.
func (s *Store) WithSession(id string, fn func(sess *Session)) {
	sess, now := s.session(id)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastSeen = now
	fn(sess)
}

// History returns a copy of the session history in conversation order.
func (s *Store) History(id string) []domain.Turn {
	var out []domain.Turn
	s.WithSession(id, func(sess *Session) { out = sess.History() })
	return out
}

// AppendUser records a user turn.
func (s *Store) AppendUser(id, text string) {
	s.WithSession(id, func(sess *Session) { sess.AppendUser(text) })
}

// AppendAssistant records an assistant turn.
func (s *Store) AppendAssistant(id, text string) {
	s.WithSession(id, func(sess *Session) { sess.AppendAssistant(text) })
}

// LastN returns at most n of the most recent turns, oldest first.
func (s *Store) LastN(id string, n int) []domain.Turn {
	var out []domain.Turn
	s.WithSession(id, func(sess *Session) { out = sess.LastN(n) })
	return out
}

// Trim drops the oldest turns so that at most max remain.
func (s *Store) Trim(id string, max int) {
	s.WithSession(id, func(sess *Session) { sess.Trim(max) })
}

// Lead returns a copy of the session lead. An empty lead is created on first access.
func (s *Store) Lead(id string) domain.Lead {
	var out domain.Lead
	s.WithSession(id, func(sess *Session) { out = sess.Lead() })
	return out
}

// UpdateLead mutates the session lead in place under the session lock.
func (s *Store) UpdateLead(id string, fn func(lead *domain.Lead)) {
	s.WithSession(id, func(sess *Session) { sess.UpdateLead(fn) })
}

// SetStage pins the session stage.
func (s *Store) SetStage(id string, stage domain.Stage) {
	s.WithSession(id, func(sess *Session) { sess.SetStage(stage) })
}

// Stage returns the pinned stage or DIAGNOSTICO when none was set.
func (s *Store) Stage(id string) domain.Stage {
	var out domain.Stage
	s.WithSession(id, func(sess *Session) { out = sess.Stage() })
	return out
}

// Clear drops history, lead and stage for id. A turn already in flight for
// id finishes on the detached state and is not visible afterwards.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Snapshot returns a copy of the session without creating it.
func (s *Store) Snapshot(id string) (SessionSnapshot, bool) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return SessionSnapshot{}, false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return SessionSnapshot{
		ID:       sess.id,
		Stage:    sess.Stage(),
		Lead:     sess.Lead(),
		History:  sess.History(),
		LastSeen: sess.lastSeen,
	}, true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict removes sessions whose last access is before cutoff and returns how
// many were removed. Sessions busy in WithSession are skipped.
func (s *Store) Evict(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		idle := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Now returns the store clock.
func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now()
}

// ID returns the session identifier.
func (sess *Session) ID() string { return sess.id }

func (sess *Session) History() []domain.Turn {
	out := make([]domain.Turn, len(sess.history))
	copy(out, sess.history)
	return out
}

func (sess *Session) Len() int { return len(sess.history) }

func (sess *Session) AppendUser(text string) {
	sess.history = append(sess.history, domain.Turn{Role: domain.RoleUser, Content: text})
}

func (sess *Session) AppendAssistant(text string) {
	sess.history = append(sess.history, domain.Turn{Role: domain.RoleAssistant, Content: text})
}

func (sess *Session) LastN(n int) []domain.Turn {
	if n <= 0 {
		return []domain.Turn{}
	}
	start := max(len(sess.history)-n, 0)
	out := make([]domain.Turn, len(sess.history)-start)
	copy(out, sess.history[start:])
	return out
}

func (sess *Session) Trim(limit int) {
	if limit < 0 {
		limit = 0
	}
	if len(sess.history) <= limit {
		return
	}
	kept := make([]domain.Turn, limit)
	copy(kept, sess.history[len(sess.history)-limit:])
	sess.history = kept
}

func (sess *Session) Lead() domain.Lead { return sess.lead }

func (sess *Session) UpdateLead(fn func(lead *domain.Lead)) {
	fn(&sess.lead)
}

func (sess *Session) SetStage(stage domain.Stage) { sess.stage = stage }

func (sess *Session) Stage() domain.Stage {
	if sess.stage == "" {
		return domain.DefaultStage
	}
	return sess.stage
}
