// Package worker implements the client and barber state machines.
//
// Client:
//
//	Arriving ──TryAdmit──► Rejected ──► Done
//	    │
//	    └──admitted──► Waiting ──AwaitServed──► Served ──haircut──► Done
//
// Barber:
//
//	Sleeping ──TakeNext──► Dequeuing ──SignalServed──► Servicing ──haircut──┐
//	    ▲                                                                    │
//	    └────────────────────────────────────────────────────────────────────┘
//	Sleeping ──ErrStopped──► Stopped
//
// Neither worker holds the shop lock across a state; all shared access goes
// through shop.Protocol, and the haircut itself runs outside the lock.
package worker

import (
	"context"
	"time"

	"github.com/kolkov/barbershop/internal/shop"
)

// Reporter receives the worker-side trace events.
type Reporter interface {
	// Serving reports the barber starting on client id.
	Serving(id int)

	// Seated reports client id in the chair with the state at that moment.
	Seated(id int, snap shop.Snapshot)
}

// pause sleeps for d or until ctx ends.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
