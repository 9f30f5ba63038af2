package shop

import (
	"errors"
	"fmt"
)

// ErrStopped is returned by TakeNext once Stop has been called.
// The barber treats it as a normal end of its loop.
var ErrStopped = errors.New("shop: stopped")

// ErrTicketUsed is returned when SignalServed is called twice on one ticket.
var ErrTicketUsed = errors.New("shop: ticket already served")

// InitError reports a synchronization primitive that could not be set up.
//
// Startup must abort when this is returned; nothing has been shared yet.
type InitError struct {
	Resource string // which primitive failed
	Err      error
}

// Error implements the error interface.
func (e *InitError) Error() string {
	return fmt.Sprintf("shop: init %s: %v", e.Resource, e.Err)
}

// Unwrap returns the underlying cause.
func (e *InitError) Unwrap() error { return e.Err }

// PrimitiveError reports a lock, wait or signal that failed at runtime.
//
// The failing worker has already released every lock it held. Other
// workers are unaffected; the failing client's visit is lost.
//
// Fields:
//   - Op: protocol operation ("try_admit", "await_served", ...)
//   - ClientID: client involved, 0 for the barber
//   - Err: cause, usually a context error
type PrimitiveError struct {
	Op       string
	ClientID int
	Err      error
}

// Error implements the error interface.
func (e *PrimitiveError) Error() string {
	if e.ClientID == 0 {
		return fmt.Sprintf("shop: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("shop: %s (client %d): %v", e.Op, e.ClientID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PrimitiveError) Unwrap() error { return e.Err }
