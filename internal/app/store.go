package app

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/Duet/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionRecord struct {
	members        []domain.ConnID
	createdAt      time.Time
	lastActivityAt time.Time
}

func (r *sessionRecord) snapshot(code domain.Code) domain.Session {
	return domain.Session{
		Code:           code,
		Members:        slices.Clone(r.members),
		CreatedAt:      r.createdAt,
		LastActivityAt: r.lastActivityAt,
	}
}

// SessionStore is the authoritative code -> session table.
// Every method is atomic; callers only ever see copies.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.Code]*sessionRecord
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[domain.Code]*sessionRecord)}
}

// Create inserts a new session owned by owner, failing with ErrCodeTaken
// when the code is live.
func (s *SessionStore) Create(code domain.Code, owner domain.ConnID, now time.Time) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[code]; ok {
		return domain.Session{}, domain.ErrCodeTaken
	}
	rec := &sessionRecord{
		members:        []domain.ConnID{owner},
		createdAt:      now,
		lastActivityAt: now,
	}
	s.sessions[code] = rec
	metricSessionsActive.Inc()
	log.Debug().Str("module", "app.store").Str("code", string(code)).Str("conn", string(owner)).Msg("session created")
	return rec.snapshot(code), nil
}

func (s *SessionStore) Get(code domain.Code) (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[code]
	if !ok {
		return domain.Session{}, false
	}
	return rec.snapshot(code), true
}

// AddMember appends id to the session, records the join as activity at now
// and returns the resulting state. Rejected joins leave the session untouched.
func (s *SessionStore) AddMember(code domain.Code, id domain.ConnID, now time.Time) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[code]
	if !ok {
		return domain.Session{}, fmt.Errorf("add %s to %s: %w", id, code, domain.ErrNotFound)
	}
	if slices.Contains(rec.members, id) {
		return domain.Session{}, fmt.Errorf("add %s to %s: %w", id, code, domain.ErrAlreadyMember)
	}
	if len(rec.members) >= domain.MaxMembers {
		return domain.Session{}, fmt.Errorf("add %s to %s: %w", id, code, domain.ErrFull)
	}
	rec.members = append(rec.members, id)
	if now.After(rec.lastActivityAt) {
		rec.lastActivityAt = now
	}
	return rec.snapshot(code), nil
}

// RemoveMember drops id from the session and returns the members left.
// A session left empty is deleted before the lock is released.
func (s *SessionStore) RemoveMember(code domain.Code, id domain.ConnID) ([]domain.ConnID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[code]
	if !ok || !slices.Contains(rec.members, id) {
		return nil, fmt.Errorf("remove %s from %s: %w", id, code, domain.ErrNotFound)
	}
	rec.members = slices.DeleteFunc(rec.members, func(m domain.ConnID) bool { return m == id })
	if len(rec.members) == 0 {
		delete(s.sessions, code)
		metricSessionsActive.Dec()
		log.Debug().Str("module", "app.store").Str("code", string(code)).Msg("session deleted")
		return nil, nil
	}
	return slices.Clone(rec.members), nil
}

// Touch records activity. lastActivityAt never moves backwards.
func (s *SessionStore) Touch(code domain.Code, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[code]
	if !ok {
		return false
	}
	if now.After(rec.lastActivityAt) {
		rec.lastActivityAt = now
	}
	return true
}

// Delete drops a session regardless of its members.
func (s *SessionStore) Delete(code domain.Code) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[code]; !ok {
		return false
	}
	delete(s.sessions, code)
	metricSessionsActive.Dec()
	return true
}

// DeleteIdle removes every session idle for longer than timeout and returns
// what was removed. Each session is returned by exactly one call.
func (s *SessionStore) DeleteIdle(now time.Time, timeout time.Duration) []domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Session
	for code, rec := range s.sessions {
		sess := rec.snapshot(code)
		if sess.IdleFor(now) <= timeout {
			continue
		}
		out = append(out, sess)
		delete(s.sessions, code)
		metricSessionsActive.Dec()
	}
	return out
}

func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
