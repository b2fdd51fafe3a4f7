package core

import (
	"encoding/json"

	"github.com/dkeye/Duet/internal/domain"
)

// Outbound event names.
const (
	EvSessionCreated = "session-created"
	EvSessionError   = "session-error"
	EvJoinSuccess    = "join-success"
	EvJoinError      = "join-error"
	EvUserJoined     = "user-joined"
	EvUserLeft       = "user-left"
	EvSessionExpired = "session-expired"
	EvReceiveMessage = "receive-message"
	EvReceiveMedia   = "receive-media"
	EvUserTyping     = "user-typing"
	EvIncomingCall   = "incoming-call"
	EvCallAnswered   = "call-answered"
	EvICECandidate   = "ice-candidate"
	EvCallEnded      = "call-ended"
	EvCallRejected   = "call-rejected"
	EvPong           = "pong"
)

// Signal is an outbound event with no payload.
type Signal struct {
	Type string `json:"type"`
}

type SessionCreated struct {
	Type string      `json:"type"`
	Code domain.Code `json:"code"`
}

// ErrorEvent is sent as session-error or join-error.
type ErrorEvent struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type JoinSuccess struct {
	Type        string      `json:"type"`
	Code        domain.Code `json:"code"`
	MemberCount int         `json:"memberCount"`
}

type UserJoined struct {
	Type        string        `json:"type"`
	MemberCount int           `json:"memberCount"`
	JoinerID    domain.ConnID `json:"joinerId"`
}

type ReceiveMessage struct {
	Type      string        `json:"type"`
	Text      string        `json:"text"`
	Sender    domain.ConnID `json:"sender"`
	Timestamp int64         `json:"timestamp"`
}

type ReceiveMedia struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	MediaType string          `json:"mediaType"`
	FileName  string          `json:"fileName"`
	FileSize  int64           `json:"fileSize"`
	Sender    domain.ConnID   `json:"sender"`
	Timestamp int64           `json:"timestamp"`
}

type UserTyping struct {
	Type     string `json:"type"`
	IsTyping bool   `json:"isTyping"`
}

type IncomingCall struct {
	Type     string          `json:"type"`
	Offer    json.RawMessage `json:"offer"`
	CallType string          `json:"callType"`
	From     domain.ConnID   `json:"from"`
}

type CallAnswered struct {
	Type   string          `json:"type"`
	Answer json.RawMessage `json:"answer"`
}

type ICECandidate struct {
	Type      string          `json:"type"`
	Candidate json.RawMessage `json:"candidate"`
}

// Inbound content payloads, as decoded by the transport.

type TextPayload struct {
	Text string `json:"text"`
}

type MediaPayload struct {
	Data      json.RawMessage `json:"data"`
	MediaType string          `json:"mediaType"`
	FileName  string          `json:"fileName"`
	FileSize  int64           `json:"fileSize"`
}

type TypingPayload struct {
	IsTyping bool `json:"isTyping"`
}

type CallOfferPayload struct {
	Offer    json.RawMessage `json:"offer"`
	CallType string          `json:"callType"`
}

type CallAnswerPayload struct {
	Answer json.RawMessage `json:"answer"`
}

type ICECandidatePayload struct {
	Candidate json.RawMessage `json:"candidate"`
}
