// Package epoch implements logical timestamps for single protocol events.
//
// An Epoch is one worker's clock entry at the moment of an event, written
// "clock@worker". Checking whether an event happened before a later point
// only needs that one entry: e happened before vc iff e.Clock ≤ vc[e.Worker].
package epoch

import (
	"strconv"

	"github.com/kolkov/barbershop/internal/race/vectorclock"
)

// Epoch is a (worker, clock) pair.
type Epoch struct {
	Worker int
	Clock  uint32
}

// Of returns worker's current epoch in vc.
func Of(worker int, vc *vectorclock.VectorClock) Epoch {
	return Epoch{Worker: worker, Clock: vc.Get(worker)}
}

// HappensBefore reports whether e is covered by vc.
//
// The zero clock is never covered, so an event that was not recorded
// cannot appear to precede anything.
func (e Epoch) HappensBefore(vc *vectorclock.VectorClock) bool {
	return e.Clock != 0 && e.Clock <= vc.Get(e.Worker)
}

// String returns "clock@worker", e.g. "42@5".
func (e Epoch) String() string {
	return strconv.FormatUint(uint64(e.Clock), 10) + "@" + strconv.Itoa(e.Worker)
}
