package app

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
)

var DefaultAllowedMediaTypes = []string{
	"image/jpeg", "image/png", "image/gif", "image/webp",
	"audio/mpeg", "audio/wav", "audio/ogg",
}

// errDrop marks content that is discarded without telling the sender.
var errDrop = errors.New("drop")

var validate = validator.New(validator.WithRequiredStructEnabled())

// ContentPolicy bounds what a member may relay. Zero MaxFileSize or an empty
// AllowedMediaTypes disables that check.
type ContentPolicy struct {
	MaxMessageLen     int
	MaxFileNameLen    int
	MaxFileSize       int64
	AllowedMediaTypes []string
}

func DefaultContentPolicy() ContentPolicy {
	return ContentPolicy{
		MaxMessageLen:     5000,
		MaxFileNameLen:    255,
		MaxFileSize:       5_000_000,
		AllowedMediaTypes: DefaultAllowedMediaTypes,
	}
}

type mediaFields struct {
	MediaType string `validate:"required"`
	FileName  string `validate:"required"`
	FileSize  int64  `validate:"gte=0"`
}

// Outbound turns an inbound payload into the event the peer receives.
// It returns errDrop for payloads that are silently discarded and a
// domain error for payloads the sender should hear about.
func (p ContentPolicy) Outbound(sender domain.ConnID, kind core.ContentKind, payload any, ts int64) (any, error) {
	switch kind {
	case core.KindText:
		pl, ok := payload.(core.TextPayload)
		if !ok || pl.Text == "" {
			return nil, errDrop
		}
		if p.MaxMessageLen > 0 && utf16Len(pl.Text) > p.MaxMessageLen {
			return nil, domain.ErrMessageTooLong
		}
		return core.ReceiveMessage{Type: core.EvReceiveMessage, Text: pl.Text, Sender: sender, Timestamp: ts}, nil

	case core.KindMedia:
		pl, ok := payload.(core.MediaPayload)
		if !ok {
			return nil, errDrop
		}
		if err := p.checkMedia(pl); err != nil {
			return nil, err
		}
		name := pl.FileName
		if p.MaxFileNameLen > 0 {
			name = lo.Substring(name, 0, uint(p.MaxFileNameLen))
		}
		return core.ReceiveMedia{
			Type:      core.EvReceiveMedia,
			Data:      pl.Data,
			MediaType: pl.MediaType,
			FileName:  name,
			FileSize:  pl.FileSize,
			Sender:    sender,
			Timestamp: ts,
		}, nil

	case core.KindTyping:
		pl, ok := payload.(core.TypingPayload)
		if !ok {
			return nil, errDrop
		}
		return core.UserTyping{Type: core.EvUserTyping, IsTyping: pl.IsTyping}, nil

	case core.KindCallOffer:
		pl, ok := payload.(core.CallOfferPayload)
		if !ok {
			return nil, errDrop
		}
		return core.IncomingCall{Type: core.EvIncomingCall, Offer: pl.Offer, CallType: pl.CallType, From: sender}, nil

	case core.KindCallAnswer:
		pl, ok := payload.(core.CallAnswerPayload)
		if !ok {
			return nil, errDrop
		}
		return core.CallAnswered{Type: core.EvCallAnswered, Answer: pl.Answer}, nil

	case core.KindICECandidate:
		pl, ok := payload.(core.ICECandidatePayload)
		if !ok {
			return nil, errDrop
		}
		return core.ICECandidate{Type: core.EvICECandidate, Candidate: pl.Candidate}, nil

	case core.KindCallEnd:
		return core.Signal{Type: core.EvCallEnded}, nil

	case core.KindCallReject:
		return core.Signal{Type: core.EvCallRejected}, nil
	}
	return nil, errDrop
}

func (p ContentPolicy) checkMedia(pl core.MediaPayload) error {
	data := bytes.TrimSpace(pl.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("%w: missing data", domain.ErrMediaRejected)
	}
	if err := validate.Struct(mediaFields{MediaType: pl.MediaType, FileName: pl.FileName, FileSize: pl.FileSize}); err != nil {
		return fmt.Errorf("%w: missing file details", domain.ErrMediaRejected)
	}
	if p.MaxFileSize > 0 {
		if err := validate.Var(pl.FileSize, fmt.Sprintf("lte=%d", p.MaxFileSize)); err != nil {
			return fmt.Errorf("%w: file too large", domain.ErrMediaRejected)
		}
	}
	if len(p.AllowedMediaTypes) > 0 {
		if err := validate.Var(pl.MediaType, "oneof="+strings.Join(p.AllowedMediaTypes, " ")); err != nil {
			return fmt.Errorf("%w: unsupported media type", domain.ErrMediaRejected)
		}
	}
	return nil
}

// utf16Len counts UTF-16 code units, the unit browsers measure text in.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
