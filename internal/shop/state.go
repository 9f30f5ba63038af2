package shop

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/kolkov/barbershop/internal/waitroom"
)

// Admission is the outcome of TryAdmit.
type Admission int

const (
	// Rejected means the waiting room was full; no ticket was issued.
	Rejected Admission = iota
	// Admitted means the client holds a queued ticket.
	Admitted
)

// String returns the string representation of an Admission.
func (a Admission) String() string {
	switch a {
	case Rejected:
		return "rejected"
	case Admitted:
		return "admitted"
	default:
		return "unknown"
	}
}

// Ticket is the per-client completion token.
//
// The queue holds tickets, not bare ids, so the barber's SignalServed
// targets the wait of the client it just dequeued and nobody else's.
// Backend fields are set by the backend that issued the ticket.
type Ticket struct {
	id int

	// served is guarded by the issuing backend's lock.
	served bool

	// Monitor backend: bound to the monitor mutex.
	ready *sync.Cond

	// Semaphore backend: one permit, drained at issue, released by
	// SignalServed.
	token *semaphore.Weighted
}

// ClientID returns the id of the client holding the ticket.
func (t *Ticket) ClientID() int { return t.id }

// Snapshot is a consistent copy of the shop state.
type Snapshot struct {
	Capacity    int
	Waiting     []int // queued client ids, earliest first
	Rejections  int
	BarberAwake bool
}

// State is the single source of truth shared by clients and the barber.
//
// Thread Safety: NOT safe on its own. Every method must be called inside
// the owning backend's critical section, except stopped which is atomic.
type State struct {
	capacity   int
	queue      *waitroom.Queue[*Ticket]
	rejections int

	// barberAwake is observability only.
	barberAwake bool
	// asleep records that BarberSleeping was announced and BarberWakes
	// has not followed yet.
	asleep bool

	stopped atomic.Bool

	obs Observer
}

// NewState creates the shop state for a waiting room with capacity seats.
//
// A nil observer is replaced with NopObserver.
func NewState(capacity int, obs Observer) (*State, error) {
	q, err := waitroom.New[*Ticket](capacity)
	if err != nil {
		return nil, &InitError{Resource: "waiting room", Err: err}
	}
	if obs == nil {
		obs = NopObserver{}
	}
	return &State{capacity: capacity, queue: q, obs: obs}, nil
}

// admit is the atomic check-and-insert.
func (s *State) admit(t *Ticket) Admission {
	if s.queue.Len() >= s.capacity {
		s.rejections++
		s.obs.Rejected(t.id, s.rejections)
		return Rejected
	}
	if err := s.queue.Enqueue(t); err != nil {
		// Len was checked above under the same lock.
		panic(fmt.Sprintf("shop: broken invariant: %v", err))
	}
	s.obs.Admitted(t.id, s.queue.Len())
	return Admitted
}

// next dequeues the earliest ticket. The caller has established Len() > 0.
func (s *State) next() *Ticket {
	t, err := s.queue.Dequeue()
	if err != nil {
		panic(fmt.Sprintf("shop: broken invariant: %v", err))
	}
	s.obs.Dequeued(t.id, s.queue.Len())
	return t
}

func (s *State) empty() bool { return s.queue.Len() == 0 }

// sleep records the barber suspending on an empty room.
func (s *State) sleep() {
	s.barberAwake = false
	if !s.asleep {
		s.asleep = true
		s.obs.BarberSleeping()
	}
}

// wake records the barber leaving the suspension point with work.
func (s *State) wake() {
	s.barberAwake = true
	if s.asleep {
		s.asleep = false
		s.obs.BarberWakes()
	}
}

// stop sets the cooperative stop flag. It reports whether this call set it.
func (s *State) stop() bool { return s.stopped.CompareAndSwap(false, true) }

func (s *State) isStopped() bool { return s.stopped.Load() }

func (s *State) snapshot() Snapshot {
	ts := s.queue.Items()
	ids := make([]int, len(ts))
	for i, t := range ts {
		ids[i] = t.id
	}
	return Snapshot{
		Capacity:    s.capacity,
		Waiting:     ids,
		Rejections:  s.rejections,
		BarberAwake: s.barberAwake,
	}
}
