package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Duet/internal/domain"
)

func (ctl *SignalWSController) createSession(id domain.ConnID, client string) {
	if !ctl.creates.Allow(client) {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Str("client", client).Msg("create-session rate limited")
		ctl.Orch.RejectCreate(id, domain.ErrRateLimited)
		return
	}
	ctl.Orch.CreateSession(id)
}

func (ctl *SignalWSController) joinSession(id domain.ConnID, client string, data []byte) {
	type Payload struct {
		Code string `json:"code"`
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("bad join payload")
		ctl.Orch.RejectJoin(id, domain.ErrInvalidCode)
		return
	}
	if !ctl.joins.Allow(client) {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Str("client", client).Msg("join-session rate limited")
		ctl.Orch.RejectJoin(id, domain.ErrRateLimited)
		return
	}
	ctl.Orch.JoinSession(id, p.Code)
}
