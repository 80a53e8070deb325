package sim

import "fmt"

// ModelKind tells what a Model describes.
type ModelKind int

// The kinds of models that can be visible.
const (
	KindLocation ModelKind = iota
	KindFlight
)

func (k ModelKind) String() string {
	switch k {
	case KindLocation:
		return "location"
	case KindFlight:
		return "flight"
	default:
		return fmt.Sprintf("ModelKind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k ModelKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// A Model is a renderer-neutral description of something that is visible.
// Locations carry their code and coordinates; flights carry their route and
// the interpolated position at the time the model was taken.
type Model struct {
	Kind        ModelKind `json:"kind"`
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Origin      string    `json:"origin,omitempty"`
	Destination string    `json:"destination,omitempty"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Progress    float64   `json:"progress"`
	Start       TimeOfDay `json:"start"`
	Duration    int       `json:"duration"`
}

// A DisplaySink consumes the changes of the visible set.
//
// The methods are called from the scheduler goroutine, without the scheduler
// lock held, so a sink may read the scheduler from within them.
type DisplaySink interface {
	// ModelAdded is called when a model becomes visible.
	ModelAdded(m Model)

	// ModelRemoved is called when a model stops being visible.
	ModelRemoved(m Model)

	// Repaint is called once at the end of every dispatch pass.
	Repaint(now TimeOfDay)
}

// NopDisplay is a DisplaySink that ignores everything.
type NopDisplay struct{}

// ModelAdded does nothing.
func (NopDisplay) ModelAdded(Model) {}

// ModelRemoved does nothing.
func (NopDisplay) ModelRemoved(Model) {}

// Repaint does nothing.
func (NopDisplay) Repaint(TimeOfDay) {}

func locationModel(l *Location) Model {
	return Model{
		Kind: KindLocation,
		ID:   l.Code,
		Name: l.Name,
		X:    float64(l.X),
		Y:    float64(l.Y),
	}
}

func flightModel(f Flight, origin, destination *Location, now TimeOfDay) Model {
	progress := f.Progress(now)

	return Model{
		Kind:        KindFlight,
		ID:          f.ID,
		Origin:      f.Origin,
		Destination: f.Destination,
		X:           interpolate(origin.X, destination.X, progress),
		Y:           interpolate(origin.Y, destination.Y, progress),
		Progress:    progress,
		Start:       f.Start,
		Duration:    f.Duration,
	}
}

func interpolate(from, to int, progress float64) float64 {
	return float64(from) + float64(to-from)*progress
}
