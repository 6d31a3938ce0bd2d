// Package session models the staff session as an explicit state value. The
// state only changes through Verify, Login, Logout and Expire events.
package session

type State int

const (
	Unknown State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

type Event int

const (
	VerifyOK Event = iota
	VerifyFailed
	Login
	Logout
	Expire
)

// Next is the transition function. A successful verify never revives a session
// that was logged out or expired; only Login does.
func Next(s State, e Event) State {
	switch e {
	case Login:
		return Authenticated
	case VerifyOK:
		if s == Unauthenticated {
			return Unauthenticated
		}
		return Authenticated
	case VerifyFailed, Logout, Expire:
		return Unauthenticated
	}
	return s
}
