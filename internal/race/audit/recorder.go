package audit

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/kolkov/barbershop/internal/race/epoch"
	"github.com/kolkov/barbershop/internal/race/syncshadow"
	"github.com/kolkov/barbershop/internal/race/vectorclock"
)

// barberWorker is the worker id of the barber; clients use their own ids.
const barberWorker = 0

// Violation kinds.
const (
	KindCapacity     = "capacity"
	KindAdmission    = "admission"
	KindMonotonicity = "monotonicity"
	KindFIFO         = "fifo"
	KindIdentity     = "identity"
	KindHandoff      = "handoff"
	KindSleep        = "sleep"
	KindConservation = "conservation"
)

// Violation is one broken protocol property.
type Violation struct {
	Kind   string
	Client int         // client involved, 0 when not client specific
	Epoch  epoch.Epoch // event that exposed it; zero for end-of-run checks
	Detail string
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return fmt.Sprintf("audit: %s: %s", v.Kind, v.Detail)
}

// Summary counts what the recorder saw.
type Summary struct {
	Events     int
	Admitted   int
	Served     int // clients that resumed after their hand-off
	Rejections int
	Sleeps     int
	Violations int
}

// Recorder implements shop.Observer and accumulates violations.
//
// Thread Safety: All methods are safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	capacity int

	clocks map[int]*vectorclock.VectorClock
	shadow *syncshadow.SyncShadow

	queue      []int // modelled waiting room, earliest first
	admittedAt map[int]epoch.Epoch
	dequeued   int // last dequeued client awaiting its served signal
	servedAt   map[int]epoch.Epoch
	resumed    map[int]bool
	rejections int

	summary    Summary
	violations []*Violation
}

// NewRecorder creates a recorder for a room with capacity seats.
func NewRecorder(capacity int) *Recorder {
	return &Recorder{
		capacity:   capacity,
		clocks:     make(map[int]*vectorclock.VectorClock),
		shadow:     syncshadow.NewSyncShadow(),
		admittedAt: make(map[int]epoch.Epoch),
		servedAt:   make(map[int]epoch.Epoch),
		resumed:    make(map[int]bool),
	}
}

// Admitted implements shop.Observer.
func (r *Recorder) Admitted(id, waiting int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, e := r.step(id)
	r.summary.Admitted++
	r.queue = append(r.queue, id)
	r.admittedAt[id] = e

	if waiting > r.capacity {
		r.violate(KindCapacity, id, e, "%d waiting with %d seats", waiting, r.capacity)
	}
	if waiting != len(r.queue) {
		r.violate(KindCapacity, id, e, "shop reports %d waiting, replay has %d", waiting, len(r.queue))
	}
}

// Rejected implements shop.Observer.
func (r *Recorder) Rejected(id, rejections int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, e := r.step(id)
	r.summary.Rejections++

	if len(r.queue) < r.capacity {
		r.violate(KindAdmission, id, e, "rejected with %d/%d seats taken", len(r.queue), r.capacity)
	}
	if rejections != r.rejections+1 {
		r.violate(KindMonotonicity, id, e, "rejections went from %d to %d", r.rejections, rejections)
	}
	r.rejections = max(r.rejections, rejections)
}

// Dequeued implements shop.Observer.
func (r *Recorder) Dequeued(id, waiting int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	vc, e := r.step(barberWorker)

	if r.dequeued != 0 {
		r.violate(KindIdentity, r.dequeued, e, "client %d dequeued but never served", r.dequeued)
	}
	r.dequeued = id

	i := slices.Index(r.queue, id)
	switch {
	case i < 0:
		r.violate(KindIdentity, id, e, "dequeued client %d was never admitted", id)
	case i > 0:
		// Only an admission the barber could see counts as overtaken.
		if head := r.queue[0]; r.admittedAt[head].HappensBefore(vc) {
			r.violate(KindFIFO, id, e, "dequeued client %d ahead of client %d admitted at %s",
				id, head, r.admittedAt[head])
		}
	}
	if i >= 0 {
		r.queue = slices.Delete(r.queue, i, i+1)
	}

	if waiting != len(r.queue) {
		r.violate(KindCapacity, id, e, "shop reports %d waiting, replay has %d", waiting, len(r.queue))
	}
}

// Served implements shop.Observer.
func (r *Recorder) Served(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	vc, e := r.step(barberWorker)

	if id != r.dequeued {
		r.violate(KindIdentity, id, e, "served client %d, last dequeued was %d", id, r.dequeued)
	}
	r.dequeued = 0

	ticket := r.shadow.GetOrCreate(syncshadow.TicketPoint(id))
	if n := ticket.Releases(); n > 0 {
		r.violate(KindIdentity, id, e, "client %d handed off %d times (first at %s)", id, n+1, r.servedAt[id])
	} else {
		r.servedAt[id] = e
	}
	ticket.Release(vc)
}

// Resumed implements shop.Observer.
func (r *Recorder) Resumed(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	vc := r.clock(id)
	ticket := r.shadow.Lookup(syncshadow.TicketPoint(id))
	handedOff := ticket != nil && ticket.Acquire(vc)

	_, e := r.step(id)

	if !handedOff {
		r.violate(KindHandoff, id, e, "client %d resumed without a served signal", id)
	} else if !ticket.ReleaseClock().HappensBefore(vc) {
		r.violate(KindHandoff, id, e, "served at %s does not happen before resume at %s", r.servedAt[id], e)
	}

	if r.resumed[id] {
		r.violate(KindHandoff, id, e, "client %d resumed twice", id)
	}
	r.resumed[id] = true
	r.summary.Served = len(r.resumed)
}

// BarberSleeping implements shop.Observer.
func (r *Recorder) BarberSleeping() {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, e := r.step(barberWorker)
	r.summary.Sleeps++
	if len(r.queue) > 0 {
		r.violate(KindSleep, 0, e, "barber sleeps with %d waiting", len(r.queue))
	}
}

// BarberWakes implements shop.Observer.
func (r *Recorder) BarberWakes() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.step(barberWorker)
}

// Verify runs the end-of-run checks for attempted clients and returns every
// violation seen, joined, or nil.
func (r *Recorder) Verify(attempted int) error {
	vs := r.Violations(attempted)
	if len(vs) == 0 {
		return nil
	}
	errs := make([]error, len(vs))
	for i, v := range vs {
		errs[i] = v
	}
	return errors.Join(errs...)
}

// Violations returns the event violations plus the end-of-run checks for
// attempted clients. It does not change the recorder.
func (r *Recorder) Violations(attempted int) []*Violation {
	r.mu.Lock()
	defer r.mu.Unlock()

	vs := slices.Clone(r.violations)
	end := func(kind string, client int, format string, args ...any) {
		vs = append(vs, &Violation{Kind: kind, Client: client, Detail: fmt.Sprintf(format, args...)})
	}

	served := len(r.resumed)
	if served+r.rejections != attempted {
		end(KindConservation, 0, "%d served + %d rejected != %d attempted", served, r.rejections, attempted)
	}
	if len(r.queue) > 0 {
		end(KindConservation, 0, "clients %v still waiting", r.queue)
	}

	ids := make([]int, 0, len(r.servedAt))
	for id := range r.servedAt {
		if !r.resumed[id] {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	for _, id := range ids {
		end(KindHandoff, id, "client %d served but never resumed", id)
	}
	return vs
}

// Summary returns the counters so far.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.summary
	s.Violations = len(r.violations)
	return s
}

// step takes one worker step inside the shop critical section:
// acquire the shop point, advance the worker's clock, release.
//
// Caller must hold r.mu.
func (r *Recorder) step(worker int) (*vectorclock.VectorClock, epoch.Epoch) {
	vc := r.clock(worker)
	shopPoint := r.shadow.GetOrCreate(syncshadow.ShopPoint)

	shopPoint.Acquire(vc)
	vc.Increment(worker)
	e := epoch.Of(worker, vc)
	shopPoint.Release(vc)

	r.summary.Events++
	return vc, e
}

// clock returns worker's vector clock, creating it on first use.
//
// Caller must hold r.mu.
func (r *Recorder) clock(worker int) *vectorclock.VectorClock {
	vc, ok := r.clocks[worker]
	if !ok {
		vc = vectorclock.New()
		r.clocks[worker] = vc
	}
	return vc
}

// Caller must hold r.mu.
func (r *Recorder) violate(kind string, client int, e epoch.Epoch, format string, args ...any) {
	r.violations = append(r.violations, &Violation{
		Kind:   kind,
		Client: client,
		Epoch:  e,
		Detail: fmt.Sprintf(format, args...),
	})
}
