package domain

// Role is a connection's participation in a session.
// No transport or lifecycle logic here.
type Role int

const (
	Unbound Role = iota
	Owner
	Member
)

func (r Role) String() string {
	switch r {
	case Owner:
		return "owner"
	case Member:
		return "member"
	default:
		return "unbound"
	}
}

// Bound reports whether the role places the connection inside a session.
func (r Role) Bound() bool { return r == Owner || r == Member }
