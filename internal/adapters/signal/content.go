package signal

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
)

// relay decodes a content event and hands it to the orchestrator. Payloads
// that do not decode are dropped.
func (ctl *SignalWSController) relay(id domain.ConnID, typ string, data []byte) {
	kind, payload, err := decodeContent(typ, data)
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("conn", string(id)).Str("type", typ).Msg("bad content payload")
		return
	}
	ctl.Orch.Relay(id, kind, payload)
}

func decodeContent(typ string, data []byte) (core.ContentKind, any, error) {
	switch typ {
	case "send-message":
		var p core.TextPayload
		err := json.Unmarshal(data, &p)
		return core.KindText, p, err
	case "send-media":
		var p core.MediaPayload
		err := json.Unmarshal(data, &p)
		return core.KindMedia, p, err
	case "typing":
		var p struct {
			IsTyping *bool `json:"isTyping"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return core.KindTyping, nil, err
		}
		if p.IsTyping == nil {
			return core.KindTyping, nil, fmt.Errorf("isTyping missing")
		}
		return core.KindTyping, core.TypingPayload{IsTyping: *p.IsTyping}, nil
	case "call-user":
		var p core.CallOfferPayload
		err := json.Unmarshal(data, &p)
		return core.KindCallOffer, p, err
	case "answer-call":
		var p core.CallAnswerPayload
		err := json.Unmarshal(data, &p)
		return core.KindCallAnswer, p, err
	case "ice-candidate":
		var p core.ICECandidatePayload
		err := json.Unmarshal(data, &p)
		return core.KindICECandidate, p, err
	case "end-call":
		return core.KindCallEnd, nil, nil
	case "reject-call":
		return core.KindCallReject, nil, nil
	}
	return "", nil, fmt.Errorf("unknown content type %q", typ)
}
