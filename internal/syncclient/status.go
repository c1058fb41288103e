package syncclient

import (
	"fmt"
	"time"
)

// State is the connectivity state of the client.
type State int

const (
	// Unauthenticated means no sync token is configured. It is the initial state.
	Unauthenticated State = iota
	// Checking means an operation is in flight.
	Checking
	// Online means the remote authority accepted the token.
	Online
	// Offline means the remote authority could not be reached or answered unexpectedly.
	Offline
	// Unauthorized means the remote authority rejected the token.
	Unauthorized
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Checking:
		return "checking"
	case Online:
		return "online"
	case Offline:
		return "offline"
	case Unauthorized:
		return "unauthorized"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status is a snapshot of the client's transient sync state.
type Status struct {
	State State

	// HasSynced is false until the server reports a first upload.
	HasSynced       bool
	LastSyncVersion int64
	LastSyncAt      time.Time

	// CheckedAt is when the last network operation completed.
	CheckedAt time.Time

	// Err describes why the last operation ended Offline or Unauthenticated, if known.
	Err error
}

// Reachable reports whether the remote authority answered the last request.
func (s Status) Reachable() bool {
	return s.State == Online || s.State == Unauthorized
}

// Authorized reports whether the token was accepted.
func (s Status) Authorized() bool {
	return s.State == Online
}
