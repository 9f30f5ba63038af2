// Package sim runs one simulated day at the barbershop.
//
// Run creates the shop, starts the barber, starts one goroutine per client,
// joins the clients, stops the barber cooperatively and joins it:
//
//	barber ─────────────────────────────── Stop() ──► joined
//	client 1 ──arrive──admit──wait──cut──► joined ─┐
//	client 2 ──arrive──rejected──────────► joined ─┤
//	...                                            └──► Stop()
//
// The barber is never killed; it leaves its loop when TakeNext reports
// shop.ErrStopped after the final wake-up.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kolkov/barbershop/internal/race/audit"
	"github.com/kolkov/barbershop/internal/shop"
	"github.com/kolkov/barbershop/internal/trace"
	"github.com/kolkov/barbershop/internal/worker"
)

// DefaultHaircut is the service time when Config.Haircut is zero.
const DefaultHaircut = 3 * time.Second

// Config describes one run.
type Config struct {
	Clients int // ≥ 1
	Seats   int // ≥ 0

	// Backend selects the protocol backend; empty means shop.BackendMonitor.
	Backend string

	// Info enables arrival, rejection, sleep/wake and waiting-list lines.
	Info bool

	// Audit attaches a race audit recorder to the shop.
	Audit bool

	// Haircut is the service time. Zero means DefaultHaircut; use a
	// negative value for no delay at all.
	Haircut time.Duration

	// MaxArrival bounds the random arrival delay. Zero means three
	// haircuts; a negative value means everyone arrives at once.
	MaxArrival time.Duration

	// Arrival, when set, replaces the random arrival delay.
	Arrival func(id int) time.Duration

	// Out receives trace lines, ErrOut failures. Nil discards.
	Out    io.Writer
	ErrOut io.Writer
}

// Result summarises a run.
type Result struct {
	Served   int // clients that got a haircut
	Rejected int // clients turned away
	Lost     int // clients whose visit failed

	// BarberServed is the barber's own count of completed services.
	BarberServed int

	// BarberState is the state the barber loop ended in.
	BarberState worker.BarberState

	// Unfinished maps each failed client to the state it was left in.
	Unfinished map[int]worker.ClientState

	// Final is the shop state after the barber stopped.
	Final shop.Snapshot

	// Audit is the recorder attached when Config.Audit is set.
	Audit *audit.Recorder
}

// Validate checks the client and seat counts.
func (c Config) Validate() error {
	if c.Clients < 1 {
		return fmt.Errorf("number of clients must be at least 1, got %d", c.Clients)
	}
	if c.Seats < 0 {
		return fmt.Errorf("number of seats must not be negative, got %d", c.Seats)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Backend == "" {
		c.Backend = shop.BackendMonitor
	}
	switch {
	case c.Haircut == 0:
		c.Haircut = DefaultHaircut
	case c.Haircut < 0:
		c.Haircut = 0
	}
	switch {
	case c.MaxArrival == 0:
		c.MaxArrival = 3 * c.Haircut
	case c.MaxArrival < 0:
		c.MaxArrival = 0
	}
	if c.Arrival == nil {
		limit := c.MaxArrival
		c.Arrival = func(int) time.Duration {
			if limit <= 0 {
				return 0
			}
			return rand.N(limit)
		}
	}
	if c.Out == nil {
		c.Out = io.Discard
	}
	if c.ErrOut == nil {
		c.ErrOut = io.Discard
	}
	return c
}

// Run executes one simulation.
//
// A returned error with a zero Result means the shop could not be set up.
// Otherwise the Result is complete and the error, if any, joins the first
// client failure and the barber failure; every failure has also been
// written to ErrOut.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	cfg = cfg.withDefaults()

	tracer := trace.New(cfg.Out, cfg.ErrOut, cfg.Info)
	observers := shop.Observers{tracer}

	var rec *audit.Recorder
	if cfg.Audit {
		rec = audit.NewRecorder(cfg.Seats)
		observers = append(observers, rec)
	}

	p, err := shop.New(cfg.Backend, cfg.Seats, observers)
	if err != nil {
		return Result{}, err
	}

	barber := &worker.Barber{Protocol: p, Reporter: tracer, Haircut: cfg.Haircut}
	var barberServed int
	var barberGroup errgroup.Group
	barberGroup.Go(func() error {
		n, err := barber.Run(ctx)
		barberServed = n
		if err != nil {
			tracer.Failed(fmt.Sprintf("barber (%s)", barber.State()), err)
			return fmt.Errorf("barber: %w", err)
		}
		return nil
	})

	var served, rejected, lost atomic.Int64
	var unfinishedMu sync.Mutex
	unfinished := make(map[int]worker.ClientState)
	var clients errgroup.Group
	for id := 1; id <= cfg.Clients; id++ {
		clients.Go(func() error {
			c := &worker.Client{
				ID:       id,
				Protocol: p,
				Reporter: tracer,
				Arrival:  cfg.Arrival(id),
				Haircut:  cfg.Haircut,
			}
			outcome, err := c.Run(ctx)
			switch outcome {
			case worker.OutcomeServed:
				served.Add(1)
			case worker.OutcomeRejected:
				rejected.Add(1)
			default:
				lost.Add(1)
			}
			if err != nil {
				unfinishedMu.Lock()
				unfinished[id] = c.State()
				unfinishedMu.Unlock()
				tracer.Failed(fmt.Sprintf("client %d (%s)", id, c.State()), err)
				return err
			}
			return nil
		})
	}

	clientErr := clients.Wait()
	p.Stop()
	barberErr := barberGroup.Wait()

	res := Result{
		Served:       int(served.Load()),
		Rejected:     int(rejected.Load()),
		Lost:         int(lost.Load()),
		BarberServed: barberServed,
		BarberState:  barber.State(),
		Unfinished:   unfinished,
		Final:        p.Snapshot(),
		Audit:        rec,
	}
	return res, errors.Join(clientErr, barberErr)
}
