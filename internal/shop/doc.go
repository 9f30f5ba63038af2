// Package shop implements the waiting-room state and the hand-off protocol
// between clients and the barber.
//
// Key Concepts:
//
// State:
//   - One State per run, created by the orchestrator and shared by reference
//   - capacity, FIFO queue of tickets, rejection counter, barber flag
//   - Mutated only inside the protocol's critical section
//
// Ticket:
//   - Returned by TryAdmit on admission, queued in arrival order
//   - Single-use completion token: SignalServed on a ticket wakes only the
//     client holding that ticket
//
// Protocol:
//
//	client                              barber
//	------                              ------
//	TryAdmit(id)     → ticket           TakeNext()  (suspends while empty)
//	SignalAdmitted(ticket) ───────────→ wakes
//	                                    ← dequeued ticket
//	AwaitServed(ticket) ←────────────── SignalServed(ticket)
//	haircut                             haircut
//
// Backends:
//   - Monitor: sync.Mutex + sync.Cond (canonical)
//   - Semaphore: golang.org/x/sync/semaphore weighted semaphores
//
// Both satisfy the same invariants: len(queue) ≤ capacity, rejections never
// decrease, admission is one atomic check-and-insert, and a served signal
// reaches exactly the dequeued client.
package shop
