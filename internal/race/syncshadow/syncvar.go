package syncshadow

import (
	"github.com/kolkov/barbershop/internal/race/vectorclock"
)

// SyncVar is the shadow state of one sync point.
//
// Thread Safety: NOT thread-safe on its own. The audit recorder serialises
// all access under its own mutex.
type SyncVar struct {
	// releaseClock is the join of every release so far; nil until the
	// first release.
	releaseClock *vectorclock.VectorClock

	// releases counts Release calls. For a ticket point it must end at
	// exactly one.
	releases int
}

// Release merges clock into the release clock.
//
// The clock is copied, so later changes by the releasing worker do not
// leak into the sync point.
func (sv *SyncVar) Release(clock *vectorclock.VectorClock) {
	if sv.releaseClock == nil {
		sv.releaseClock = clock.Clone()
	} else {
		sv.releaseClock.Join(clock)
	}
	sv.releases++
}

// Acquire joins the release clock into clock. It reports whether any
// release had happened.
func (sv *SyncVar) Acquire(clock *vectorclock.VectorClock) bool {
	if sv.releaseClock == nil {
		return false
	}
	clock.Join(sv.releaseClock)
	return true
}

// ReleaseClock returns the current release clock, or nil.
func (sv *SyncVar) ReleaseClock() *vectorclock.VectorClock {
	return sv.releaseClock
}

// Releases returns how many times the point was released.
func (sv *SyncVar) Releases() int {
	return sv.releases
}
