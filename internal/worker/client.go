package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/kolkov/barbershop/internal/shop"
)

// ClientState is a state of the client state machine.
type ClientState int

const (
	ClientArriving ClientState = iota
	ClientWaiting
	ClientServed
	ClientRejected
	ClientDone
)

// String returns the string representation of a ClientState.
func (s ClientState) String() string {
	switch s {
	case ClientArriving:
		return "arriving"
	case ClientWaiting:
		return "waiting"
	case ClientServed:
		return "served"
	case ClientRejected:
		return "rejected"
	case ClientDone:
		return "done"
	default:
		return "unknown"
	}
}

// Outcome is how a client's visit ended.
type Outcome int

const (
	// OutcomeLost means the visit failed before it was decided.
	OutcomeLost Outcome = iota
	// OutcomeRejected means the waiting room was full.
	OutcomeRejected
	// OutcomeServed means the client got its haircut.
	OutcomeServed
)

// String returns the string representation of an Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeLost:
		return "lost"
	case OutcomeRejected:
		return "rejected"
	case OutcomeServed:
		return "served"
	default:
		return "unknown"
	}
}

// Client is one simulated customer.
type Client struct {
	ID       int
	Protocol shop.Protocol
	Reporter Reporter

	// Arrival is the delay before the client enters the shop.
	Arrival time.Duration
	// Haircut is how long the client sits in the chair.
	Haircut time.Duration

	state ClientState
}

// Run walks the client through one visit.
//
// A failure while arriving or waiting returns OutcomeLost with the error.
// Once the hand-off completed the outcome is OutcomeServed, even if the
// haircut itself is cut short by ctx; that error is returned alongside.
func (c *Client) Run(ctx context.Context) (Outcome, error) {
	var ticket *shop.Ticket
	c.state = ClientArriving

	for {
		switch c.state {
		case ClientArriving:
			if err := pause(ctx, c.Arrival); err != nil {
				return OutcomeLost, fmt.Errorf("client %d arriving: %w", c.ID, err)
			}
			adm, t, err := c.Protocol.TryAdmit(ctx, c.ID)
			if err != nil {
				return OutcomeLost, err
			}
			if adm == shop.Rejected {
				c.state = ClientRejected
				continue
			}
			ticket = t
			c.state = ClientWaiting

		case ClientWaiting:
			if err := c.Protocol.SignalAdmitted(ctx, ticket); err != nil {
				return OutcomeLost, err
			}
			if err := c.Protocol.AwaitServed(ctx, ticket); err != nil {
				return OutcomeLost, err
			}
			c.state = ClientServed

		case ClientServed:
			c.Reporter.Seated(c.ID, c.Protocol.Snapshot())
			c.state = ClientDone
			if err := pause(ctx, c.Haircut); err != nil {
				return OutcomeServed, fmt.Errorf("client %d haircut: %w", c.ID, err)
			}
			return OutcomeServed, nil

		case ClientRejected:
			c.state = ClientDone
			return OutcomeRejected, nil

		default:
			return OutcomeLost, fmt.Errorf("client %d: unexpected state %v", c.ID, c.state)
		}
	}
}

// State returns the state the client stopped in. Only meaningful after Run
// has returned.
func (c *Client) State() ClientState { return c.state }
