package app

import (
	"context"
	"sync"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/rs/zerolog/log"
)

// connEntry is the lifecycle state of one connection:
// Unbound -> Owner(code) | Member(code) -> Unbound.
type connEntry struct {
	Signal core.SignalConnection
	Client string
	Role   domain.Role
	Code   domain.Code
	Cancel context.CancelFunc
}

// Registry maps live connections to their transport and session binding.
// A connection is bound to at most one session.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnID]*connEntry)}
}

func (r *Registry) BindSignal(id domain.ConnID, client string, sig core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connEntry{Signal: sig, Client: client, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("client", client).Msg("bound signal")
}

// Unbind forgets the connection and returns its last state.
// Only the first call for an id reports ok.
func (r *Registry) Unbind(id domain.ConnID) (connEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return connEntry{}, false
	}
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbind signal")
	return *e, true
}

func (r *Registry) Signal(id domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.Signal, true
	}
	return nil, false
}

// StateOf reports the role and session of a live connection.
func (r *Registry) StateOf(id domain.ConnID) (domain.Role, domain.Code, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok {
		return domain.Unbound, "", false
	}
	return e.Role, e.Code, true
}

// Attach moves an Unbound connection into a session.
func (r *Registry) Attach(id domain.ConnID, role domain.Role, code domain.Code) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok || e.Role.Bound() {
		return false
	}
	e.Role = role
	e.Code = code
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("code", string(code)).Stringer("role", role).Msg("attached to session")
	return true
}

// Detach returns the connection to Unbound and reports what it was bound to.
func (r *Registry) Detach(id domain.ConnID) (domain.Role, domain.Code, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok || !e.Role.Bound() {
		return domain.Unbound, "", false
	}
	role, code := e.Role, e.Code
	e.Role, e.Code = domain.Unbound, ""
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("code", string(code)).Msg("detached from session")
	return role, code, true
}

// DetachFrom is Detach guarded by the expected session code.
func (r *Registry) DetachFrom(id domain.ConnID, code domain.Code) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok || !e.Role.Bound() || e.Code != code {
		return false
	}
	e.Role, e.Code = domain.Unbound, ""
	return true
}

// Cancel closes the connection's transport; its read loop then runs the
// disconnect path.
func (r *Registry) Cancel(id domain.ConnID) bool {
	r.mu.RLock()
	e, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	if e.Signal != nil {
		e.Signal.Close()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("canceled connection")
	return true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
