// Package audit checks a run of the shop protocol for ordering and
// accounting violations.
//
// A Recorder is attached to the shop as a shop.Observer. Because observer
// callbacks run inside the protocol's critical section, the recorder sees
// events in the shop's own total order. It keeps:
//
//   - one vector clock per worker (barber = 0, client i = i)
//   - shadow sync points for the shop lock and each client's hand-off
//   - a model of the waiting room, replayed from the events
//
// From these it detects:
//
//	capacity      reported or modelled queue length above capacity
//	admission     a client rejected while a seat was free
//	monotonicity  rejection counter not advancing by exactly one
//	fifo          a client dequeued ahead of an earlier admission
//	identity      served id differs from the id just dequeued
//	handoff       resumed without, or not after, its served signal
//	sleep         barber suspends while clients are waiting
//	conservation  served + rejected differs from clients attempted
//
// Example:
//
//	rec := audit.NewRecorder(seats)
//	p, _ := shop.New(shop.BackendMonitor, seats, rec)
//	// ... run clients and barber ...
//	if err := rec.Verify(clients); err != nil {
//		rec.Report(os.Stderr, clients)
//	}
package audit
