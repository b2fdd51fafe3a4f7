package core

import "errors"

//go:generate mockgen -destination=mocks/mock_signal.go -package=mocks github.com/dkeye/Duet/internal/core SignalConnection

// Frame is a raw serialized event.
type Frame []byte

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

// SignalConnection abstracts the messaging transport of one client.
// Owned by the adapter; the adapter must Close() it.
// TrySend never blocks: frames are queued in order and written by a single
// writer, or rejected with ErrBackpressure / ErrClosed.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
