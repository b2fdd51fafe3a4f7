package app

import (
	"fmt"
	"strings"

	"github.com/dkeye/Duet/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

func (a BackpressureAction) String() string {
	switch a {
	case KickMember:
		return "kick"
	case DropFrame:
		return "drop"
	default:
		return "none"
	}
}

func ParseBackpressureAction(s string) (BackpressureAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kick", "":
		return KickMember, nil
	case "drop":
		return DropFrame, nil
	case "none":
		return NoAction, nil
	}
	return NoAction, fmt.Errorf("unknown backpressure action %q", s)
}

// Policy decides what happens to a connection whose send buffer is full.
type Policy interface {
	OnBackPressure(slow domain.ConnID) BackpressureAction
}

type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(domain.ConnID) BackpressureAction {
	return p.Action
}
