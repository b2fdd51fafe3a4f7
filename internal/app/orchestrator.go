package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
)

const DefaultCodeAttempts = 10

// Orchestrator drives the connection lifecycle against the session store
// and fans content out to the other member of a session.
type Orchestrator struct {
	Registry     *Registry
	Store        *SessionStore
	Codes        CodeGenerator
	Content      ContentPolicy
	Policy       Policy
	CodeAttempts int
	Clock        func() time.Time
}

func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		Registry:     NewRegistry(),
		Store:        NewSessionStore(),
		Codes:        NewRandomCodes(),
		Content:      DefaultContentPolicy(),
		Policy:       SimplePolicy{Action: KickMember},
		CodeAttempts: DefaultCodeAttempts,
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Clock != nil {
		return o.Clock()
	}
	return time.Now()
}

// Connect registers a new Unbound connection.
func (o *Orchestrator) Connect(id domain.ConnID, client string, sig core.SignalConnection, cancel context.CancelFunc) {
	o.Registry.BindSignal(id, client, sig, cancel)
}

func (o *Orchestrator) ActiveSessions() int { return o.Store.Count() }

func (o *Orchestrator) CreateSession(id domain.ConnID) {
	role, _, ok := o.Registry.StateOf(id)
	if !ok {
		return
	}
	if role.Bound() {
		o.sessionError(id, domain.ErrAlreadyMember)
		return
	}

	sess, err := o.createUnique(id)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.orch").Str("conn", string(id)).Msg("create session failed")
		metricCreateErrors.WithLabelValues(domain.Reason(err)).Inc()
		o.sessionError(id, err)
		return
	}
	if !o.Registry.Attach(id, domain.Owner, sess.Code) {
		// The connection went away while the session was being created.
		_, _ = o.Store.RemoveMember(sess.Code, id)
		return
	}
	metricSessionsCreated.Inc()
	log.Info().Str("module", "app.orch").Str("conn", string(id)).Str("code", string(sess.Code)).Msg("session created")
	o.sendJSON(id, core.SessionCreated{Type: core.EvSessionCreated, Code: sess.Code})
}

func (o *Orchestrator) createUnique(owner domain.ConnID) (domain.Session, error) {
	attempts := o.CodeAttempts
	if attempts <= 0 {
		attempts = DefaultCodeAttempts
	}
	for range attempts {
		code, err := o.Codes.Generate()
		if err != nil {
			return domain.Session{}, err
		}
		sess, err := o.Store.Create(code, owner, o.now())
		if errors.Is(err, domain.ErrCodeTaken) {
			continue
		}
		return sess, err
	}
	return domain.Session{}, fmt.Errorf("after %d attempts: %w", attempts, domain.ErrCodeSpaceExhausted)
}

func (o *Orchestrator) JoinSession(id domain.ConnID, rawCode string) {
	role, _, ok := o.Registry.StateOf(id)
	if !ok {
		return
	}
	if role.Bound() {
		o.joinError(id, domain.ErrAlreadyMember)
		return
	}
	code, err := domain.ParseCode(rawCode)
	if err != nil {
		o.joinError(id, err)
		return
	}

	sess, err := o.Store.AddMember(code, id, o.now())
	if err != nil {
		o.joinError(id, err)
		return
	}
	if !o.Registry.Attach(id, domain.Member, code) {
		o.teardown(id, code)
		return
	}
	// The sweeper may have removed the session before id was attached.
	if cur, ok := o.Store.Get(code); !ok || !cur.HasMember(id) {
		if o.Registry.DetachFrom(id, code) {
			o.joinError(id, fmt.Errorf("join %s: %w", code, domain.ErrNotFound))
		}
		return
	}
	log.Info().Str("module", "app.orch").Str("conn", string(id)).Str("code", string(code)).Int("members", sess.MemberCount()).Msg("joined session")

	o.sendJSON(id, core.JoinSuccess{Type: core.EvJoinSuccess, Code: code, MemberCount: sess.MemberCount()})
	joined := core.UserJoined{Type: core.EvUserJoined, MemberCount: sess.MemberCount(), JoinerID: id}
	for _, m := range sess.Members {
		o.sendJSON(m, joined)
	}
}

// LeaveSession returns a bound connection to Unbound. Leaving while Unbound
// is a no-op.
func (o *Orchestrator) LeaveSession(id domain.ConnID) {
	_, code, ok := o.Registry.Detach(id)
	if !ok {
		return
	}
	log.Info().Str("module", "app.orch").Str("conn", string(id)).Str("code", string(code)).Msg("left session")
	o.teardown(id, code)
}

// OnDisconnect forgets the connection. Only the first call for an id has any
// effect.
func (o *Orchestrator) OnDisconnect(id domain.ConnID) {
	e, ok := o.Registry.Unbind(id)
	if !ok || !e.Role.Bound() {
		return
	}
	log.Info().Str("module", "app.orch").Str("conn", string(id)).Str("code", string(e.Code)).Msg("disconnected from session")
	o.teardown(id, e.Code)
}

func (o *Orchestrator) teardown(id domain.ConnID, code domain.Code) {
	remaining, err := o.Store.RemoveMember(code, id)
	if err != nil {
		// Already expired or removed.
		return
	}
	if len(remaining) == 0 {
		log.Info().Str("module", "app.orch").Str("code", string(code)).Msg("session deleted")
		return
	}
	left := core.Signal{Type: core.EvUserLeft}
	for _, m := range remaining {
		o.sendJSON(m, left)
	}
}

// ExpireIdle removes sessions idle longer than timeout and tells each of
// their members exactly once.
func (o *Orchestrator) ExpireIdle(timeout time.Duration) int {
	expired := o.Store.DeleteIdle(o.now(), timeout)
	ev := core.Signal{Type: core.EvSessionExpired}
	for _, sess := range expired {
		metricSessionsExpired.Inc()
		log.Info().Str("module", "app.orch").Str("code", string(sess.Code)).Int("members", sess.MemberCount()).Msg("session expired")
		for _, m := range sess.Members {
			// A member that already left is not told.
			if o.Registry.DetachFrom(m, sess.Code) {
				o.sendJSON(m, ev)
			}
		}
	}
	return len(expired)
}

func (o *Orchestrator) sessionError(id domain.ConnID, err error) {
	o.sendJSON(id, core.ErrorEvent{Type: core.EvSessionError, Reason: domain.Reason(err)})
}

func (o *Orchestrator) joinError(id domain.ConnID, err error) {
	metricJoinErrors.WithLabelValues(domain.Reason(err)).Inc()
	log.Info().Err(err).Str("module", "app.orch").Str("conn", string(id)).Msg("join rejected")
	o.sendJSON(id, core.ErrorEvent{Type: core.EvJoinError, Reason: domain.Reason(err)})
}

// RejectCreate and RejectJoin report errors raised before the engine is
// consulted, such as rate limiting in the transport.
func (o *Orchestrator) RejectCreate(id domain.ConnID, err error) { o.sessionError(id, err) }

func (o *Orchestrator) RejectJoin(id domain.ConnID, err error) { o.joinError(id, err) }

// Pong answers a transport keepalive.
func (o *Orchestrator) Pong(id domain.ConnID) {
	o.sendJSON(id, core.Signal{Type: core.EvPong})
}

// sendJSON queues v for id without blocking. It reports whether the frame
// was queued.
func (o *Orchestrator) sendJSON(id domain.ConnID, v any) bool {
	sig, ok := o.Registry.Signal(id)
	if !ok {
		return false
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orch").Msg("sendJSON marshal")
		return false
	}
	err = sig.TrySend(b)
	if err == nil {
		return true
	}
	if !errors.Is(err, core.ErrBackpressure) {
		return false
	}
	metricBackpressure.Inc()
	if o.Policy == nil {
		return false
	}
	switch o.Policy.OnBackPressure(id) {
	case KickMember:
		log.Warn().Str("module", "app.orch").Str("conn", string(id)).Msg("slow connection, kicking")
		o.Registry.Cancel(id)
	case DropFrame, NoAction:
		log.Debug().Str("module", "app.orch").Str("conn", string(id)).Msg("slow connection, frame dropped")
	}
	return false
}
