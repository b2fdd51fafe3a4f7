// Package domain contains entities without transport or locking, just meta-data
package domain

import (
	"github.com/google/uuid"
)

// ConnID identifies one transport connection for its whole network lifetime.
type ConnID string

// NewConnID is a tiny helper to avoid ad-hoc id generation in adapters.
func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}

func (id ConnID) String() string { return string(id) }
