package core

// ContentKind tags an application event relayed between session members.
type ContentKind string

const (
	KindText         ContentKind = "text-message"
	KindMedia        ContentKind = "media"
	KindTyping       ContentKind = "typing"
	KindCallOffer    ContentKind = "call-offer"
	KindCallAnswer   ContentKind = "call-answer"
	KindICECandidate ContentKind = "ice-candidate"
	KindCallEnd      ContentKind = "call-end"
	KindCallReject   ContentKind = "call-reject"
)

// Touches reports whether delivering this kind counts as session activity.
func (k ContentKind) Touches() bool {
	switch k {
	case KindText, KindMedia, KindCallOffer:
		return true
	}
	return false
}
