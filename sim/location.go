package sim

// LocationInfo describes a location as supplied by the data collaborator.
type LocationInfo struct {
	Code string
	Name string
	X, Y int
}

// A Location is the per-run state of an airport: the flights waiting to
// depart and the spacing state of the last departure.
//
// A Location is owned by exactly one Scheduler and is only mutated while the
// scheduler holds its lock.
type Location struct {
	LocationInfo

	queue              *FlightQueue
	spacing            int
	sinceLastDeparture int
	lastDepartureTime  TimeOfDay
}

// NewLocation creates the run state of a location. The spacing threshold is
// the minimum number of simulated minutes between two departures. A new
// location is immediately ready for a departure.
func NewLocation(info LocationInfo, spacing int) *Location {
	if spacing < 0 {
		panic("spacing threshold cannot be negative")
	}

	return &Location{
		LocationInfo:       info,
		queue:              NewFlightQueue(info.Code + ".Queue"),
		spacing:            spacing,
		sinceLastDeparture: spacing,
	}
}

// Queue returns the queue of flights waiting at the location.
func (l *Location) Queue() *FlightQueue {
	return l.queue
}

// SinceLastDeparture returns the simulated minutes since the last departure.
func (l *Location) SinceLastDeparture() int {
	return l.sinceLastDeparture
}

// LastDepartureTime returns the scheduled start of the last departure.
func (l *Location) LastDepartureTime() TimeOfDay {
	return l.lastDepartureTime
}

// Age lets the given number of simulated minutes pass.
func (l *Location) Age(minutes int) {
	l.sinceLastDeparture += minutes
}

// CanDispatchImmediately tells if a newly due flight may depart without
// queueing. It may not overtake flights that are already waiting.
func (l *Location) CanDispatchImmediately() bool {
	return l.sinceLastDeparture >= l.spacing && l.queue.Len() == 0
}

// CanDispatchFromQueue tells if the flight at the front of the queue may
// depart.
func (l *Location) CanDispatchFromQueue() bool {
	return l.sinceLastDeparture >= l.spacing
}

// RecordDeparture marks the flight as the last departure from the location.
func (l *Location) RecordDeparture(f Flight) {
	l.lastDepartureTime = f.Start
	l.sinceLastDeparture = 0
}

// Retime returns a copy of the flight that starts after the last departure
// and after every flight already waiting, one spacing interval apart.
func (l *Location) Retime(f Flight) Flight {
	delay := l.lastDepartureTime.Add((l.queue.Len() + 1) * l.spacing)
	return f.Retimed(delay)
}

// LocationStatus is a snapshot of a location's run state.
type LocationStatus struct {
	Code               string    `json:"code"`
	Name               string    `json:"name"`
	X                  int       `json:"x"`
	Y                  int       `json:"y"`
	QueueLength        int       `json:"queue_length"`
	Queued             []Flight  `json:"queued"`
	SinceLastDeparture int       `json:"since_last_departure"`
	LastDepartureTime  TimeOfDay `json:"last_departure_time"`
}

func (l *Location) status() LocationStatus {
	return LocationStatus{
		Code:               l.Code,
		Name:               l.Name,
		X:                  l.X,
		Y:                  l.Y,
		QueueLength:        l.queue.Len(),
		Queued:             l.queue.Flights(),
		SinceLastDeparture: l.sinceLastDeparture,
		LastDepartureTime:  l.lastDepartureTime,
	}
}
