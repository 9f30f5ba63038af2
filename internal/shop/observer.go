package shop

// Observer receives protocol events.
//
// Every method is called while the protocol's critical section is held, so
// observers see events in the same total order as the shop itself.
// Implementations must not call back into the Protocol.
type Observer interface {
	// Admitted reports client id joined the queue; waiting is the new length.
	Admitted(id, waiting int)

	// Rejected reports client id was turned away; rejections is the new total.
	Rejected(id, rejections int)

	// Dequeued reports the barber took client id; waiting is the new length.
	Dequeued(id, waiting int)

	// Served reports the barber signalled client id's ticket.
	Served(id int)

	// Resumed reports client id returned from AwaitServed.
	Resumed(id int)

	// BarberSleeping reports the barber is about to suspend on an empty room.
	BarberSleeping()

	// BarberWakes reports the barber resumed after sleeping.
	BarberWakes()
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) Admitted(int, int) {}
func (NopObserver) Rejected(int, int) {}
func (NopObserver) Dequeued(int, int) {}
func (NopObserver) Served(int)        {}
func (NopObserver) Resumed(int)       {}
func (NopObserver) BarberSleeping()   {}
func (NopObserver) BarberWakes()      {}

// Observers fans every event out to each element, in order.
type Observers []Observer

func (os Observers) Admitted(id, waiting int) {
	for _, o := range os {
		o.Admitted(id, waiting)
	}
}

func (os Observers) Rejected(id, rejections int) {
	for _, o := range os {
		o.Rejected(id, rejections)
	}
}

func (os Observers) Dequeued(id, waiting int) {
	for _, o := range os {
		o.Dequeued(id, waiting)
	}
}

func (os Observers) Served(id int) {
	for _, o := range os {
		o.Served(id)
	}
}

func (os Observers) Resumed(id int) {
	for _, o := range os {
		o.Resumed(id)
	}
}

func (os Observers) BarberSleeping() {
	for _, o := range os {
		o.BarberSleeping()
	}
}

func (os Observers) BarberWakes() {
	for _, o := range os {
		o.BarberWakes()
	}
}
