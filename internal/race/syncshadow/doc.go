// Package syncshadow tracks release clocks of the synchronization points in
// the shop protocol.
//
// Key Concepts:
//
// Sync Points:
//   - "shop": the protocol's critical section (mutex or access semaphore)
//   - "ticket:<id>": the served hand-off of one client
//
// Each sync point has a SyncVar holding the vector clock of its last
// release. Acquiring it joins that clock into the acquiring worker's clock,
// which establishes happens-before:
//
//	Release(p):  Lp := Lp ⊔ Ct      (sync point remembers releaser's time)
//	             Ct[t]++
//
//	Acquire(p):  Ct := Ct ⊔ Lp      (worker inherits everything before it)
//
// Example:
//
//	// barber
//	TakeNext()            // acquire shop, dequeue 3, release shop
//	SignalServed(t3)      // release ticket:3
//
//	// client 3
//	AwaitServed(t3)       // acquire ticket:3: barber's dequeue now happens-before
package syncshadow
