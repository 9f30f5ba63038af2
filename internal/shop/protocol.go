package shop

import (
	"context"
	"fmt"
)

// Protocol is the hand-off contract between clients and the barber.
//
// Client side, in order: TryAdmit, then on Admitted SignalAdmitted and
// AwaitServed. Barber side, in a loop: TakeNext, SignalServed.
//
// Blocking calls return a *PrimitiveError when ctx ends first. No method
// returns while still holding the protocol's lock.
type Protocol interface {
	// TryAdmit atomically queues the client or counts a rejection.
	// The ticket is nil unless the result is Admitted.
	TryAdmit(ctx context.Context, clientID int) (Admission, *Ticket, error)

	// SignalAdmitted wakes the barber if it is suspended in TakeNext.
	SignalAdmitted(ctx context.Context, t *Ticket) error

	// AwaitServed suspends until SignalServed is called on t.
	AwaitServed(ctx context.Context, t *Ticket) error

	// TakeNext suspends while the room is empty, then dequeues the
	// earliest ticket. It returns ErrStopped once Stop has been called.
	TakeNext(ctx context.Context) (*Ticket, error)

	// SignalServed wakes the client holding t, and only that client.
	SignalServed(ctx context.Context, t *Ticket) error

	// Stop sets the stop flag and wakes TakeNext once. Idempotent.
	Stop()

	// Snapshot returns a consistent copy of the shop state.
	Snapshot() Snapshot
}

// Backend names accepted by New.
const (
	BackendMonitor   = "monitor"
	BackendSemaphore = "semaphore"
)

// New creates a Protocol for a room with capacity seats using the named
// backend. An empty name selects the monitor.
func New(backend string, capacity int, obs Observer) (Protocol, error) {
	switch backend {
	case "", BackendMonitor:
		return NewMonitor(capacity, obs)
	case BackendSemaphore:
		return NewSemaphore(capacity, obs)
	default:
		return nil, &InitError{Resource: "protocol", Err: fmt.Errorf("unknown backend %q", backend)}
	}
}
