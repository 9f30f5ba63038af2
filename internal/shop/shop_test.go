package shop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// backend pairs a name with a constructor so every test runs on both.
type backend struct {
	name string
	new  func(capacity int, obs Observer) (Protocol, error)
}

func backends() []backend {
	return []backend{
		{BackendMonitor, func(c int, o Observer) (Protocol, error) { return NewMonitor(c, o) }},
		{BackendSemaphore, func(c int, o Observer) (Protocol, error) { return NewSemaphore(c, o) }},
	}
}

// eventLog records observer events as strings.
type eventLog struct {
	mu     sync.Mutex
	events []string
	maxLen int
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *eventLog) Admitted(id, waiting int) {
	l.mu.Lock()
	l.maxLen = max(l.maxLen, waiting)
	l.mu.Unlock()
	l.add("admitted %d", id)
}
func (l *eventLog) Rejected(id, _ int) { l.add("rejected %d", id) }
func (l *eventLog) Dequeued(id, _ int) { l.add("dequeued %d", id) }
func (l *eventLog) Served(id int)      { l.add("served %d", id) }
func (l *eventLog) Resumed(id int)     { l.add("resumed %d", id) }
func (l *eventLog) BarberSleeping()    { l.add("sleeping") }
func (l *eventLog) BarberWakes()       { l.add("wakes") }

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *eventLog) contains(event string) bool {
	for _, e := range l.snapshot() {
		if e == event {
			return true
		}
	}
	return false
}

// admit runs the client-side admission sequence and fails on rejection.
func admit(t *testing.T, p Protocol, id int) *Ticket {
	t.Helper()
	ctx := context.Background()
	adm, ticket, err := p.TryAdmit(ctx, id)
	if err != nil {
		t.Fatalf("TryAdmit(%d) error: %v", id, err)
	}
	if adm != Admitted {
		t.Fatalf("TryAdmit(%d) = %v, want admitted", id, adm)
	}
	if err := p.SignalAdmitted(ctx, ticket); err != nil {
		t.Fatalf("SignalAdmitted(%d) error: %v", id, err)
	}
	return ticket
}

// TestNew_UnknownBackend verifies an unknown backend name is an init error.
func TestNew_UnknownBackend(t *testing.T) {
	_, err := New("spinlock", 1, nil)
	var initErr *InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("New(spinlock) error = %v, want *InitError", err)
	}
}

// TestNew_NegativeCapacity verifies both backends refuse negative capacity.
func TestNew_NegativeCapacity(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			_, err := b.new(-1, nil)
			var initErr *InitError
			if !errors.As(err, &initErr) {
				t.Fatalf("error = %v, want *InitError", err)
			}
		})
	}
}

// TestTryAdmit_Capacity verifies admissions stop at capacity and count rejections.
func TestTryAdmit_Capacity(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			p, err := b.new(2, nil)
			if err != nil {
				t.Fatalf("new error: %v", err)
			}
			ctx := context.Background()

			want := []Admission{Admitted, Admitted, Rejected, Rejected}
			for i, w := range want {
				adm, ticket, err := p.TryAdmit(ctx, i+1)
				if err != nil {
					t.Fatalf("TryAdmit(%d) error: %v", i+1, err)
				}
				if adm != w {
					t.Errorf("TryAdmit(%d) = %v, want %v", i+1, adm, w)
				}
				if (adm == Admitted) != (ticket != nil) {
					t.Errorf("TryAdmit(%d) ticket = %v for %v", i+1, ticket, adm)
				}
			}

			snap := p.Snapshot()
			if snap.Rejections != 2 {
				t.Errorf("Rejections = %d, want 2", snap.Rejections)
			}
			if len(snap.Waiting) != 2 || snap.Waiting[0] != 1 || snap.Waiting[1] != 2 {
				t.Errorf("Waiting = %v, want [1 2]", snap.Waiting)
			}
			if snap.Capacity != 2 {
				t.Errorf("Capacity = %d, want 2", snap.Capacity)
			}
		})
	}
}

// TestTryAdmit_ZeroSeats verifies a zero-seat room rejects everybody.
func TestTryAdmit_ZeroSeats(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			p, _ := b.new(0, nil)
			for id := 1; id <= 5; id++ {
				adm, _, err := p.TryAdmit(context.Background(), id)
				if err != nil || adm != Rejected {
					t.Errorf("TryAdmit(%d) = %v, %v; want rejected", id, adm, err)
				}
			}
			if r := p.Snapshot().Rejections; r != 5 {
				t.Errorf("Rejections = %d, want 5", r)
			}
		})
	}
}

// TestTakeNext_FIFO verifies the barber dequeues in admission order.
func TestTakeNext_FIFO(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			p, _ := b.new(4, nil)
			for id := 1; id <= 4; id++ {
				admit(t, p, id)
			}

			for want := 1; want <= 4; want++ {
				ticket, err := p.TakeNext(context.Background())
				if err != nil {
					t.Fatalf("TakeNext() error: %v", err)
				}
				if ticket.ClientID() != want {
					t.Errorf("TakeNext() = client %d, want %d", ticket.ClientID(), want)
				}
			}
		})
	}
}

// TestTakeNext_BlocksUntilAdmitted verifies the barber suspends on an empty room.
func TestTakeNext_BlocksUntilAdmitted(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			log := &eventLog{}
			p, _ := b.new(1, log)

			got := make(chan *Ticket, 1)
			go func() {
				ticket, err := p.TakeNext(context.Background())
				if err != nil {
					t.Errorf("TakeNext() error: %v", err)
				}
				got <- ticket
			}()

			select {
			case <-got:
				t.Fatal("TakeNext returned on an empty room")
			case <-time.After(30 * time.Millisecond):
			}

			admit(t, p, 7)

			select {
			case ticket := <-got:
				if ticket == nil || ticket.ClientID() != 7 {
					t.Fatalf("TakeNext() = %v, want client 7", ticket)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("TakeNext did not wake after admission")
			}

			if !log.contains("sleeping") || !log.contains("wakes") {
				t.Errorf("events = %v, want sleeping and wakes", log.snapshot())
			}
			if !p.Snapshot().BarberAwake {
				t.Error("BarberAwake = false after TakeNext returned")
			}
		})
	}
}

// TestTakeNext_NoSleepWithWaitingClient verifies the barber only announces
// sleep on an empty room, both for a signalled client and for one that has
// queued but not signalled yet.
func TestTakeNext_NoSleepWithWaitingClient(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			log := &eventLog{}
			p, _ := b.new(2, log)
			ctx := context.Background()

			admit(t, p, 1)
			if ticket, err := p.TakeNext(ctx); err != nil || ticket.ClientID() != 1 {
				t.Fatalf("TakeNext() = %v, %v; want client 1", ticket, err)
			}

			adm, queued, err := p.TryAdmit(ctx, 2)
			if err != nil || adm != Admitted {
				t.Fatalf("TryAdmit(2) = %v, %v", adm, err)
			}

			got := make(chan *Ticket, 1)
			go func() {
				ticket, err := p.TakeNext(ctx)
				if err != nil {
					t.Errorf("TakeNext() error: %v", err)
				}
				got <- ticket
			}()

			time.Sleep(20 * time.Millisecond)
			if err := p.SignalAdmitted(ctx, queued); err != nil {
				t.Fatalf("SignalAdmitted(2) error: %v", err)
			}

			select {
			case ticket := <-got:
				if ticket == nil || ticket.ClientID() != 2 {
					t.Fatalf("TakeNext() = %v, want client 2", ticket)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("TakeNext did not return after the signal")
			}

			if log.contains("sleeping") || log.contains("wakes") {
				t.Errorf("events = %v, want no sleep with clients waiting", log.snapshot())
			}
		})
	}
}

// TestHandoff_Identity verifies SignalServed wakes only the dequeued client.
func TestHandoff_Identity(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			p, _ := b.new(2, nil)
			t1 := admit(t, p, 1)
			t2 := admit(t, p, 2)

			done := make(chan int, 2)
			for _, ticket := range []*Ticket{t1, t2} {
				go func() {
					if err := p.AwaitServed(context.Background(), ticket); err != nil {
						t.Errorf("AwaitServed(%d) error: %v", ticket.ClientID(), err)
					}
					done <- ticket.ClientID()
				}()
			}

			next, err := p.TakeNext(context.Background())
			if err != nil {
				t.Fatalf("TakeNext() error: %v", err)
			}
			if err := p.SignalServed(context.Background(), next); err != nil {
				t.Fatalf("SignalServed() error: %v", err)
			}

			select {
			case id := <-done:
				if id != next.ClientID() {
					t.Fatalf("client %d resumed, want %d", id, next.ClientID())
				}
			case <-time.After(2 * time.Second):
				t.Fatal("no client resumed")
			}

			select {
			case id := <-done:
				t.Fatalf("client %d resumed without its own hand-off", id)
			case <-time.After(30 * time.Millisecond):
			}

			next, _ = p.TakeNext(context.Background())
			_ = p.SignalServed(context.Background(), next)
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("second client never resumed")
			}
		})
	}
}

// TestSignalServed_BeforeAwait verifies a hand-off delivered early is not lost.
func TestSignalServed_BeforeAwait(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			p, _ := b.new(1, nil)
			ticket := admit(t, p, 1)

			next, _ := p.TakeNext(context.Background())
			if err := p.SignalServed(context.Background(), next); err != nil {
				t.Fatalf("SignalServed() error: %v", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := p.AwaitServed(ctx, ticket); err != nil {
				t.Fatalf("AwaitServed() error: %v", err)
			}
		})
	}
}

// TestSignalServed_Twice verifies a ticket cannot be served twice.
func TestSignalServed_Twice(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			p, _ := b.new(1, nil)
			admit(t, p, 1)
			next, _ := p.TakeNext(context.Background())

			_ = p.SignalServed(context.Background(), next)
			err := p.SignalServed(context.Background(), next)
			if !errors.Is(err, ErrTicketUsed) {
				t.Errorf("second SignalServed() = %v, want ErrTicketUsed", err)
			}
		})
	}
}

// TestStop_WakesBarber verifies Stop releases a suspended TakeNext.
func TestStop_WakesBarber(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			p, _ := b.new(3, nil)

			errc := make(chan error, 1)
			go func() {
				_, err := p.TakeNext(context.Background())
				errc <- err
			}()

			time.Sleep(20 * time.Millisecond)
			p.Stop()
			p.Stop()

			select {
			case err := <-errc:
				if !errors.Is(err, ErrStopped) {
					t.Fatalf("TakeNext() = %v, want ErrStopped", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("TakeNext did not observe Stop")
			}

			if _, err := p.TakeNext(context.Background()); !errors.Is(err, ErrStopped) {
				t.Errorf("TakeNext() after Stop = %v, want ErrStopped", err)
			}
		})
	}
}

// TestAwaitServed_ContextCancel verifies a cancelled wait fails and releases the lock.
func TestAwaitServed_ContextCancel(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			p, _ := b.new(1, nil)
			ticket := admit(t, p, 1)

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()

			err := p.AwaitServed(ctx, ticket)
			var primErr *PrimitiveError
			if !errors.As(err, &primErr) {
				t.Fatalf("AwaitServed() = %v, want *PrimitiveError", err)
			}
			if primErr.Op != "await_served" || primErr.ClientID != 1 {
				t.Errorf("PrimitiveError = %+v", primErr)
			}
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("AwaitServed() = %v, want wrapped DeadlineExceeded", err)
			}

			// Deadlocks here if the lock leaked.
			if got := len(p.Snapshot().Waiting); got != 1 {
				t.Errorf("Waiting = %d, want 1", got)
			}
		})
	}
}

// TestTakeNext_ContextCancel verifies a cancelled barber wait fails cleanly.
func TestTakeNext_ContextCancel(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			p, _ := b.new(1, nil)

			ctx, cancel := context.WithCancel(context.Background())
			errc := make(chan error, 1)
			go func() {
				_, err := p.TakeNext(ctx)
				errc <- err
			}()

			time.Sleep(20 * time.Millisecond)
			cancel()

			select {
			case err := <-errc:
				if !errors.Is(err, context.Canceled) {
					t.Fatalf("TakeNext() = %v, want wrapped Canceled", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("TakeNext ignored cancellation")
			}

			// The room is still usable after the failed wait.
			ticket := admit(t, p, 3)
			next, err := p.TakeNext(context.Background())
			if err != nil || next != ticket {
				t.Errorf("TakeNext() = %v, %v; want client 3", next, err)
			}
		})
	}
}

// TestTryAdmit_ConcurrentCapacityBound verifies racing admissions never overfill.
func TestTryAdmit_ConcurrentCapacityBound(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			const capacity, clients = 3, 64
			log := &eventLog{}
			p, _ := b.new(capacity, log)

			start := make(chan struct{})
			results := make(chan Admission, clients)
			var wg sync.WaitGroup
			for id := 1; id <= clients; id++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					adm, _, err := p.TryAdmit(context.Background(), id)
					if err != nil {
						t.Errorf("TryAdmit(%d) error: %v", id, err)
					}
					results <- adm
				}()
			}
			close(start)
			wg.Wait()
			close(results)

			admitted := 0
			for adm := range results {
				if adm == Admitted {
					admitted++
				}
			}
			if admitted != capacity {
				t.Errorf("admitted = %d, want %d", admitted, capacity)
			}
			if r := p.Snapshot().Rejections; r != clients-capacity {
				t.Errorf("Rejections = %d, want %d", r, clients-capacity)
			}
			if log.maxLen > capacity {
				t.Errorf("observed queue length %d > capacity %d", log.maxLen, capacity)
			}
		})
	}
}

// TestProtocol_FullRound verifies the event order of one complete visit.
func TestProtocol_FullRound(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			log := &eventLog{}
			p, _ := b.new(1, log)
			ticket := admit(t, p, 9)

			next, _ := p.TakeNext(context.Background())
			_ = p.SignalServed(context.Background(), next)
			if err := p.AwaitServed(context.Background(), ticket); err != nil {
				t.Fatalf("AwaitServed() error: %v", err)
			}

			want := []string{"admitted 9", "dequeued 9", "served 9", "resumed 9"}
			got := log.snapshot()
			if len(got) != len(want) {
				t.Fatalf("events = %v, want %v", got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("event[%d] = %q, want %q", i, got[i], want[i])
				}
			}
		})
	}
}

// TestObservers_FanOut verifies every observer receives every event.
func TestObservers_FanOut(t *testing.T) {
	a, b := &eventLog{}, &eventLog{}
	obs := Observers{a, NopObserver{}, b}

	obs.Admitted(1, 1)
	obs.Rejected(2, 1)
	obs.Dequeued(1, 0)
	obs.Served(1)
	obs.Resumed(1)
	obs.BarberSleeping()
	obs.BarberWakes()

	for _, l := range []*eventLog{a, b} {
		if n := len(l.snapshot()); n != 7 {
			t.Errorf("observer got %d events, want 7", n)
		}
	}
}

// TestAdmission_String verifies Admission names.
func TestAdmission_String(t *testing.T) {
	tests := []struct {
		a    Admission
		want string
	}{
		{Rejected, "rejected"},
		{Admitted, "admitted"},
		{Admission(7), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.a.String(); got != tt.want {
			t.Errorf("Admission(%d).String() = %q, want %q", tt.a, got, tt.want)
		}
	}
}

// TestPrimitiveError_Message verifies the barber form omits the client id.
func TestPrimitiveError_Message(t *testing.T) {
	e := &PrimitiveError{Op: "take_next", Err: context.Canceled}
	if got := e.Error(); got != "shop: take_next: context canceled" {
		t.Errorf("Error() = %q", got)
	}
	e = &PrimitiveError{Op: "await_served", ClientID: 4, Err: context.Canceled}
	if got := e.Error(); got != "shop: await_served (client 4): context canceled" {
		t.Errorf("Error() = %q", got)
	}
}
