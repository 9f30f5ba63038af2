// Package vectorclock implements vector clocks for happens-before tracking
// between the barber and the clients of one simulated run.
//
// A VectorClock maps each worker (barber = 0, client i = i) to a logical
// time. Worker ids are dense and small, so the clock is a slice that grows
// on demand instead of a fixed-size array.
//
// Operations:
//
//	Join(a, b)          a[i] := max(a[i], b[i])   (acquire)
//	LessOrEqual(a, b)   ∀i: a[i] ≤ b[i]           (a happened before b)
//	Increment(a, t)     a[t]++                    (local step of worker t)
package vectorclock

import (
	"strconv"
	"strings"
)

// VectorClock is a logical clock indexed by worker id.
//
// The zero value is a valid clock with every entry at 0.
type VectorClock struct {
	c []uint32
}

// New creates a zero clock.
func New() *VectorClock {
	return &VectorClock{}
}

// Clone returns an independent copy.
func (vc *VectorClock) Clone() *VectorClock {
	return &VectorClock{c: append([]uint32(nil), vc.c...)}
}

// Join merges other into vc element-wise (vc := vc ⊔ other).
func (vc *VectorClock) Join(other *VectorClock) {
	if other == nil {
		return
	}
	vc.grow(len(other.c))
	for i, v := range other.c {
		if v > vc.c[i] {
			vc.c[i] = v
		}
	}
}

// LessOrEqual reports whether every entry of vc is ≤ the same entry of other.
func (vc *VectorClock) LessOrEqual(other *VectorClock) bool {
	for i, v := range vc.c {
		if v > other.Get(i) {
			return false
		}
	}
	return true
}

// HappensBefore reports whether vc happened before (or equals) other.
// A nil vc never happened.
func (vc *VectorClock) HappensBefore(other *VectorClock) bool {
	return vc != nil && vc.LessOrEqual(other)
}

// Increment advances worker tid's entry by one.
func (vc *VectorClock) Increment(tid int) {
	vc.grow(tid + 1)
	vc.c[tid]++
}

// Get returns worker tid's entry; entries never set are 0.
func (vc *VectorClock) Get(tid int) uint32 {
	if tid < 0 || tid >= len(vc.c) {
		return 0
	}
	return vc.c[tid]
}

// String renders the non-zero entries, e.g. "{0:3, 4:1}".
func (vc *VectorClock) String() string {
	var parts []string
	for i, v := range vc.c {
		if v != 0 {
			parts = append(parts, strconv.Itoa(i)+":"+strconv.FormatUint(uint64(v), 10))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (vc *VectorClock) grow(n int) {
	if n > len(vc.c) {
		vc.c = append(vc.c, make([]uint32, n-len(vc.c))...)
	}
}
