package app

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
)

// Relay forwards a content event from sender to the other member of its
// session. Content from an Unbound connection, or sent before the partner
// has joined, is dropped without notice.
func (o *Orchestrator) Relay(sender domain.ConnID, kind core.ContentKind, payload any) {
	role, code, ok := o.Registry.StateOf(sender)
	if !ok || !role.Bound() {
		return
	}

	now := o.now()
	out, err := o.Content.Outbound(sender, kind, payload, now.UnixMilli())
	if err != nil {
		if errors.Is(err, errDrop) {
			log.Debug().Str("module", "app.relay").Str("conn", string(sender)).Str("kind", string(kind)).Msg("dropped malformed content")
			return
		}
		metricRejected.WithLabelValues(string(kind)).Inc()
		log.Info().Err(err).Str("module", "app.relay").Str("conn", string(sender)).Str("kind", string(kind)).Msg("content rejected")
		o.sessionError(sender, err)
		return
	}

	sess, ok := o.Store.Get(code)
	if !ok || !sess.HasMember(sender) || !sess.Full() {
		return
	}

	delivered := 0
	for _, peer := range lo.Without(sess.Members, sender) {
		if o.sendJSON(peer, out) {
			delivered++
		}
	}
	if delivered == 0 {
		return
	}
	metricRelayed.WithLabelValues(string(kind)).Inc()
	if kind.Touches() {
		o.Store.Touch(code, now)
	}
}
