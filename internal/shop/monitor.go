package shop

import (
	"context"
	"sync"
)

// Monitor implements Protocol with one mutex and condition variables.
//
// Signals:
//   - admitted: one sync.Cond the barber waits on while the room is empty
//   - served: one sync.Cond per ticket, so a hand-off wakes only its client
//
// Every wait sits in a predicate loop, so spurious or batched wakeups are
// re-validated before the waiter proceeds. Context cancellation is turned
// into a broadcast with context.AfterFunc; the woken waiter sees ctx.Err()
// and returns with the lock released.
//
// Thread Safety: All methods are safe for concurrent use.
type Monitor struct {
	mu       sync.Mutex
	admitted *sync.Cond
	state    *State
}

// NewMonitor creates a monitor-backed shop with capacity seats.
func NewMonitor(capacity int, obs Observer) (*Monitor, error) {
	st, err := NewState(capacity, obs)
	if err != nil {
		return nil, err
	}
	m := &Monitor{state: st}
	m.admitted = sync.NewCond(&m.mu)
	return m, nil
}

// TryAdmit implements Protocol.
func (m *Monitor) TryAdmit(ctx context.Context, clientID int) (Admission, *Ticket, error) {
	if err := ctx.Err(); err != nil {
		return Rejected, nil, &PrimitiveError{Op: "try_admit", ClientID: clientID, Err: err}
	}
	t := &Ticket{id: clientID, ready: sync.NewCond(&m.mu)}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.admit(t) == Rejected {
		return Rejected, nil, nil
	}
	return Admitted, t, nil
}

// SignalAdmitted implements Protocol.
func (m *Monitor) SignalAdmitted(_ context.Context, _ *Ticket) error {
	m.mu.Lock()
	m.admitted.Signal()
	m.mu.Unlock()
	return nil
}

// AwaitServed implements Protocol.
func (m *Monitor) AwaitServed(ctx context.Context, t *Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !t.served {
		stop := context.AfterFunc(ctx, m.broadcast(t.ready))
		defer stop()

		for !t.served {
			if err := ctx.Err(); err != nil {
				return &PrimitiveError{Op: "await_served", ClientID: t.id, Err: err}
			}
			t.ready.Wait()
		}
	}

	m.state.obs.Resumed(t.id)
	return nil
}

// TakeNext implements Protocol.
func (m *Monitor) TakeNext(ctx context.Context) (*Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.empty() && !m.state.isStopped() {
		stop := context.AfterFunc(ctx, m.broadcast(m.admitted))
		defer stop()

		for m.state.empty() && !m.state.isStopped() {
			if err := ctx.Err(); err != nil {
				return nil, &PrimitiveError{Op: "take_next", Err: err}
			}
			m.state.sleep()
			m.admitted.Wait()
		}
	}

	if m.state.isStopped() {
		return nil, ErrStopped
	}
	m.state.wake()
	return m.state.next(), nil
}

// SignalServed implements Protocol.
func (m *Monitor) SignalServed(_ context.Context, t *Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.served {
		return &PrimitiveError{Op: "signal_served", ClientID: t.id, Err: ErrTicketUsed}
	}
	t.served = true
	m.state.obs.Served(t.id)
	t.ready.Signal()
	return nil
}

// Stop implements Protocol.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.stop() {
		m.admitted.Broadcast()
	}
}

// Snapshot implements Protocol.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.snapshot()
}

// broadcast returns a func that wakes every waiter on c under the lock.
func (m *Monitor) broadcast(c *sync.Cond) func() {
	return func() {
		m.mu.Lock()
		c.Broadcast()
		m.mu.Unlock()
	}
}
