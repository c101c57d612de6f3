package models

import "errors"

// BookingState selects the temporal slice of a booking listing.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

// ErrUnknownState carries the exact message clients match on, so the
// rejected state value itself never leaks into it.
var ErrUnknownState = errors.New("Unknown state: UNSUPPORTED_STATUS")

// ParseBookingState validates a raw state string. An empty string means ALL.
func ParseBookingState(raw string) (BookingState, error) {
	if raw == "" {
		return StateAll, nil
	}
	switch s := BookingState(raw); s {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return s, nil
	default:
		return "", ErrUnknownState
	}
}

// Role determines which party of a booking a listing query matches against.
type Role int

const (
	RoleBooker Role = iota
	RoleOwner
)

func (r Role) String() string {
	if r == RoleOwner {
		return "owner"
	}
	return "booker"
}
