package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kolkov/barbershop/internal/shop"
)

// BarberState is a state of the barber state machine.
type BarberState int

const (
	BarberSleeping BarberState = iota
	BarberDequeuing
	BarberServicing
	BarberStopped
)

// String returns the string representation of a BarberState.
func (s BarberState) String() string {
	switch s {
	case BarberSleeping:
		return "sleeping"
	case BarberDequeuing:
		return "dequeuing"
	case BarberServicing:
		return "servicing"
	case BarberStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Barber is the single server.
type Barber struct {
	Protocol shop.Protocol
	Reporter Reporter

	// Haircut is how long one service takes.
	Haircut time.Duration

	state  BarberState
	served int
}

// Run serves clients until the protocol is stopped.
//
// It returns the number of completed services. shop.ErrStopped ends the
// loop normally; any other failure ends it with that error.
func (b *Barber) Run(ctx context.Context) (int, error) {
	var next *shop.Ticket
	b.state = BarberSleeping

	for {
		switch b.state {
		case BarberSleeping:
			t, err := b.Protocol.TakeNext(ctx)
			if errors.Is(err, shop.ErrStopped) {
				b.state = BarberStopped
				continue
			}
			if err != nil {
				return b.served, err
			}
			next = t
			b.state = BarberDequeuing

		case BarberDequeuing:
			if err := b.Protocol.SignalServed(ctx, next); err != nil {
				return b.served, err
			}
			b.Reporter.Serving(next.ClientID())
			b.state = BarberServicing

		case BarberServicing:
			if err := pause(ctx, b.Haircut); err != nil {
				return b.served, fmt.Errorf("barber servicing client %d: %w", next.ClientID(), err)
			}
			b.served++
			next = nil
			b.state = BarberSleeping

		case BarberStopped:
			return b.served, nil

		default:
			return b.served, fmt.Errorf("barber: unexpected state %v", b.state)
		}
	}
}

// State returns the state the barber stopped in. Only meaningful after Run
// has returned.
func (b *Barber) State() BarberState { return b.state }
