// Package trace prints the run's event lines.
//
// Line formats are fixed, since existing expectations match on them:
//
//	Client <id> enters the waiting room.                        (info)
//	Client <id> leaves, no room in the waiting room.            (info)
//	Barber is sleeping.                                         (info)
//	Barber wakes up.                                            (info)
//	Barber is serving client <id>
//	Rejections so far: <n> Waiting room: <size>/<capacity> [Seat: <id>]
//	Waiting clients: <id> <id> ...  |  Waiting room is empty.  (info)
//
// Without info mode only the serving and summary lines are printed.
package trace

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/kolkov/barbershop/internal/shop"
)

// Tracer writes trace lines. It implements shop.Observer for the events
// that happen inside the protocol, and worker.Reporter for the rest.
//
// Thread Safety: All methods are safe for concurrent use; each line is
// written whole.
type Tracer struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	info   bool
}

// New creates a tracer writing events to out and failures to errOut.
func New(out, errOut io.Writer, info bool) *Tracer {
	return &Tracer{out: out, errOut: errOut, info: info}
}

// Admitted implements shop.Observer.
func (t *Tracer) Admitted(id, _ int) {
	t.infof("Client %d enters the waiting room.\n", id)
}

// Rejected implements shop.Observer.
func (t *Tracer) Rejected(id, _ int) {
	t.infof("Client %d leaves, no room in the waiting room.\n", id)
}

// Dequeued implements shop.Observer.
func (t *Tracer) Dequeued(int, int) {}

// Served implements shop.Observer.
func (t *Tracer) Served(int) {}

// Resumed implements shop.Observer.
func (t *Tracer) Resumed(int) {}

// BarberSleeping implements shop.Observer.
func (t *Tracer) BarberSleeping() {
	t.infof("Barber is sleeping.\n")
}

// BarberWakes implements shop.Observer.
func (t *Tracer) BarberWakes() {
	t.infof("Barber wakes up.\n")
}

// Serving reports the barber starting on client id.
func (t *Tracer) Serving(id int) {
	t.printf(t.out, "Barber is serving client %d\n", id)
}

// Seated reports client id in the chair with the shop state at that moment.
func (t *Tracer) Seated(id int, snap shop.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, _ = fmt.Fprintf(t.out, "Rejections so far: %d Waiting room: %d/%d [Seat: %d]\n",
		snap.Rejections, len(snap.Waiting), snap.Capacity, id)
	if t.info {
		_, _ = io.WriteString(t.out, FormatWaiting(snap.Waiting))
	}
}

// Failed reports a worker that ended with err.
func (t *Tracer) Failed(worker string, err error) {
	t.printf(t.errOut, "%s: %v\n", worker, err)
}

// FormatWaiting renders the waiting list line, earliest first.
func FormatWaiting(ids []int) string {
	if len(ids) == 0 {
		return "Waiting room is empty.\n"
	}
	var buf strings.Builder
	buf.WriteString("Waiting clients:")
	for _, id := range ids {
		buf.WriteByte(' ')
		buf.WriteString(strconv.Itoa(id))
	}
	buf.WriteByte('\n')
	return buf.String()
}

func (t *Tracer) infof(format string, args ...any) {
	if t.info {
		t.printf(t.out, format, args...)
	}
}

func (t *Tracer) printf(w io.Writer, format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintf(w, format, args...)
}
