package sim

// HookPosQueuePush marks when a flight is pushed into a queue.
var HookPosQueuePush = &HookPos{Name: "Queue Push"}

// HookPosQueuePop marks when a flight is popped from a queue.
var HookPosQueuePop = &HookPos{Name: "Queue Pop"}

// A FlightQueue is a FIFO queue of flights waiting to depart.
type FlightQueue struct {
	HookableBase

	name     string
	elements []Flight
}

// NewFlightQueue creates an empty queue.
func NewFlightQueue(name string) *FlightQueue {
	return &FlightQueue{name: name}
}

// Name returns the name of the queue.
func (q *FlightQueue) Name() string {
	return q.name
}

// Push appends a flight at the back of the queue.
func (q *FlightQueue) Push(f Flight) {
	q.elements = append(q.elements, f)

	if q.NumHooks() > 0 {
		q.InvokeHook(HookCtx{
			Domain: q,
			Pos:    HookPosQueuePush,
			Item:   f,
		})
	}
}

// Pop removes the flight at the front of the queue. The second return value
// is false if the queue is empty.
func (q *FlightQueue) Pop() (Flight, bool) {
	if len(q.elements) == 0 {
		return Flight{}, false
	}

	f := q.elements[0]
	q.elements[0] = Flight{}
	q.elements = q.elements[1:]

	if q.NumHooks() > 0 {
		q.InvokeHook(HookCtx{
			Domain: q,
			Pos:    HookPosQueuePop,
			Item:   f,
		})
	}

	return f, true
}

// Peek returns the flight at the front of the queue without removing it.
func (q *FlightQueue) Peek() (Flight, bool) {
	if len(q.elements) == 0 {
		return Flight{}, false
	}

	return q.elements[0], true
}

// Len returns the number of flights waiting.
func (q *FlightQueue) Len() int {
	return len(q.elements)
}

// Flights returns a copy of the waiting flights, front first.
func (q *FlightQueue) Flights() []Flight {
	out := make([]Flight, len(q.elements))
	copy(out, q.elements)

	return out
}

// Clear removes all the flights in the queue.
func (q *FlightQueue) Clear() {
	q.elements = nil
}
