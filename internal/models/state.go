package models

import "shareit/internal/apperrors"

// State selects a subset of bookings relative to the current time or by status.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StateFuture   State = "FUTURE"
	StatePast     State = "PAST"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

// ParseState matches the token exactly. An empty token means ALL.
func ParseState(raw string) (State, error) {
	switch s := State(raw); s {
	case "":
		return StateAll, nil
	case StateAll, StateCurrent, StateFuture, StatePast, StateWaiting, StateRejected:
		return s, nil
	default:
		return "", apperrors.UnsupportedState()
	}
}
