package domain

import (
	"slices"
	"time"
)

// MaxMembers is the session capacity.
const MaxMembers = 2

// Session is a point-in-time copy of a store record.
// Members are kept in join order.
type Session struct {
	Code           Code
	Members        []ConnID
	CreatedAt      time.Time
	LastActivityAt time.Time
}

func (s Session) MemberCount() int { return len(s.Members) }

func (s Session) Full() bool { return len(s.Members) >= MaxMembers }

func (s Session) HasMember(id ConnID) bool { return slices.Contains(s.Members, id) }

// IdleFor reports how long the session has gone without qualifying activity.
func (s Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastActivityAt)
}
