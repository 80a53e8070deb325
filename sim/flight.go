package sim

import "fmt"

// A Flight is a timed departure from an origin to a destination.
//
// Flights are immutable values. Re-timing a flight creates a new value with a
// new identity; the original is never modified.
type Flight struct {
	ID          string    `json:"id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Start       TimeOfDay `json:"start"`
	Duration    int       `json:"duration"`
}

// NewFlight creates a flight with a fresh ID. The duration must be positive;
// this is not checked here.
func NewFlight(
	origin, destination string,
	hour, minute, duration int,
) Flight {
	return Flight{
		ID:          GetIDGenerator().Generate(),
		Origin:      origin,
		Destination: destination,
		Start:       MakeTimeOfDay(hour, minute),
		Duration:    duration,
	}
}

// Hour returns the scheduled start hour.
func (f Flight) Hour() int {
	return f.Start.Hour()
}

// Minute returns the scheduled start minute.
func (f Flight) Minute() int {
	return f.Start.Minute()
}

// End returns the time at which the flight lands.
func (f Flight) End() TimeOfDay {
	return f.Start.Add(f.Duration)
}

// IsActiveAt tells if now falls within [Start, End], both ends included.
func (f Flight) IsActiveAt(now TimeOfDay) bool {
	return now >= f.Start && now <= f.End()
}

// Progress returns the fraction of the flight that has been completed at the
// given time, clamped to [0, 1].
func (f Flight) Progress(now TimeOfDay) float64 {
	if f.Duration <= 0 || now <= f.Start {
		return 0
	}

	if now >= f.End() {
		return 1
	}

	return float64(now-f.Start) / float64(f.Duration)
}

// Retimed returns a copy of the flight that starts at the given time. The copy
// has a new ID.
func (f Flight) Retimed(start TimeOfDay) Flight {
	f.ID = GetIDGenerator().Generate()
	f.Start = start

	return f
}

func (f Flight) String() string {
	return fmt.Sprintf("Flight %s: %s --> %s | Start: %s | Duration: %d",
		f.ID, f.Origin, f.Destination, f.Start, f.Duration)
}
