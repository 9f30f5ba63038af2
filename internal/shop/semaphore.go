package shop

import (
	"context"
	"errors"

	"golang.org/x/sync/semaphore"
)

// Semaphore implements Protocol with weighted semaphores.
//
// Primitives:
//   - access: binary semaphore guarding State (the mutual exclusion)
//   - admitted: counting semaphore, one permit per queued client plus one
//     for the stop wake-up; drained to zero at construction
//   - Ticket.token: one permit per ticket, drained at issue and released
//     by SignalServed, so the served signal is scoped to one client
//
// Invariant: permits available on admitted ≤ queue length (+1 after Stop).
// A client enqueues before it releases a permit, and the barber takes a
// permit before it dequeues, so a taken permit always has a queued ticket
// behind it.
//
// Thread Safety: All methods are safe for concurrent use.
type Semaphore struct {
	access   *semaphore.Weighted
	admitted *semaphore.Weighted
	state    *State
}

// NewSemaphore creates a semaphore-backed shop with capacity seats.
func NewSemaphore(capacity int, obs Observer) (*Semaphore, error) {
	st, err := NewState(capacity, obs)
	if err != nil {
		return nil, err
	}

	// x/sync semaphores start full; drain so the counter starts at zero.
	size := int64(capacity) + 1
	admitted := semaphore.NewWeighted(size)
	if !admitted.TryAcquire(size) {
		return nil, &InitError{Resource: "admitted semaphore", Err: errors.New("cannot drain initial permits")}
	}

	return &Semaphore{
		access:   semaphore.NewWeighted(1),
		admitted: admitted,
		state:    st,
	}, nil
}

// TryAdmit implements Protocol.
func (s *Semaphore) TryAdmit(ctx context.Context, clientID int) (Admission, *Ticket, error) {
	t := &Ticket{id: clientID, token: semaphore.NewWeighted(1)}
	if !t.token.TryAcquire(1) {
		return Rejected, nil, &PrimitiveError{Op: "try_admit", ClientID: clientID, Err: errors.New("cannot drain ticket token")}
	}

	if err := s.lock(ctx, "try_admit", clientID); err != nil {
		return Rejected, nil, err
	}
	defer s.unlock()

	if s.state.admit(t) == Rejected {
		return Rejected, nil, nil
	}
	return Admitted, t, nil
}

// SignalAdmitted implements Protocol.
func (s *Semaphore) SignalAdmitted(_ context.Context, _ *Ticket) error {
	s.admitted.Release(1)
	return nil
}

// AwaitServed implements Protocol.
func (s *Semaphore) AwaitServed(ctx context.Context, t *Ticket) error {
	if err := t.token.Acquire(ctx, 1); err != nil {
		return &PrimitiveError{Op: "await_served", ClientID: t.id, Err: err}
	}

	// The hand-off is complete; record it even if ctx ends now.
	s.lockUncancelled()
	defer s.unlock()
	s.state.obs.Resumed(t.id)
	return nil
}

// TakeNext implements Protocol.
//
// The barber first tries for a permit without blocking. Only when that
// fails on an empty room does it announce sleep, under the same lock, and
// suspend. A queued client that has not signalled yet is waited for
// without a sleep announcement, matching the monitor, which never
// suspends on a non-empty room.
func (s *Semaphore) TakeNext(ctx context.Context) (*Ticket, error) {
	if err := s.lock(ctx, "take_next", 0); err != nil {
		return nil, err
	}
	if s.state.isStopped() {
		s.unlock()
		return nil, ErrStopped
	}

	if !s.admitted.TryAcquire(1) {
		if s.state.empty() {
			s.state.sleep()
		}
		s.unlock()

		if err := s.admitted.Acquire(ctx, 1); err != nil {
			return nil, &PrimitiveError{Op: "take_next", Err: err}
		}
		if err := s.lock(ctx, "take_next", 0); err != nil {
			// Hand the permit back so the queued client is not forgotten.
			s.admitted.Release(1)
			return nil, err
		}
	}
	defer s.unlock()

	if s.state.isStopped() {
		return nil, ErrStopped
	}
	s.state.wake()
	return s.state.next(), nil
}

// SignalServed implements Protocol.
func (s *Semaphore) SignalServed(ctx context.Context, t *Ticket) error {
	if err := s.lock(ctx, "signal_served", t.id); err != nil {
		return err
	}
	defer s.unlock()

	if t.served {
		return &PrimitiveError{Op: "signal_served", ClientID: t.id, Err: ErrTicketUsed}
	}
	t.served = true
	s.state.obs.Served(t.id)
	t.token.Release(1)
	return nil
}

// Stop implements Protocol.
func (s *Semaphore) Stop() {
	s.lockUncancelled()
	defer s.unlock()

	if s.state.stop() {
		s.admitted.Release(1)
	}
}

// Snapshot implements Protocol.
func (s *Semaphore) Snapshot() Snapshot {
	s.lockUncancelled()
	defer s.unlock()
	return s.state.snapshot()
}

func (s *Semaphore) lock(ctx context.Context, op string, clientID int) error {
	if err := s.access.Acquire(ctx, 1); err != nil {
		return &PrimitiveError{Op: op, ClientID: clientID, Err: err}
	}
	return nil
}

// lockUncancelled acquires access for short bookkeeping sections that must
// run regardless of the caller's context.
func (s *Semaphore) lockUncancelled() {
	// Acquire only fails when its context ends; Background never does.
	_ = s.access.Acquire(context.Background(), 1)
}

func (s *Semaphore) unlock() { s.access.Release(1) }
