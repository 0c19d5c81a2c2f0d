package session

import "slices"

type State int

const (
	StateInitializing State = iota
	StateUnauthenticated
	StateValidating
	StateAuthenticated
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateValidating:
		return "validating"
	case StateAuthenticated:
		return "authenticated"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// transitions lists the states reachable from each state.
// Login and Logout may interrupt an in-flight validation or run before Start.
var transitions = map[State][]State{
	StateInitializing:    {StateUnauthenticated, StateValidating, StateAuthenticated},
	StateValidating:      {StateAuthenticated, StateInvalid, StateUnauthenticated},
	StateInvalid:         {StateUnauthenticated},
	StateAuthenticated:   {StateAuthenticated, StateUnauthenticated},
	StateUnauthenticated: {StateAuthenticated, StateUnauthenticated},
}

func (s State) canTransitionTo(to State) bool {
	return slices.Contains(transitions[s], to)
}
