package datarecording

import "github.com/sarchlab/flightsim/sim"

// Tables written by a DepartureRecorder.
const (
	DepartureTable = "departures"
	QueueTable     = "queued"
	LandingTable   = "landings"
)

// DepartureEntry is a flight that departed. Times are simulated minutes
// since midnight.
type DepartureEntry struct {
	FlightID    string
	Origin      string
	Destination string
	Start       int
	Duration    int
	DepartedAt  int
	FromQueue   bool
}

// QueueEntry is a flight that had to wait for its origin and was re-timed.
type QueueEntry struct {
	FlightID    string
	OriginalID  string
	Origin      string
	Destination string
	Scheduled   int
	Retimed     int
	QueuedAt    int
	Position    int
}

// LandingEntry is a flight that landed.
type LandingEntry struct {
	FlightID    string
	Origin      string
	Destination string
	Start       int
	LandedAt    int
}

// A DepartureRecorder is a scheduler hook that records every dispatch
// decision.
type DepartureRecorder struct {
	recorder DataRecorder
}

// NewDepartureRecorder creates the tables in the recorder and returns a hook
// that fills them.
func NewDepartureRecorder(recorder DataRecorder) *DepartureRecorder {
	recorder.CreateTable(DepartureTable, DepartureEntry{})
	recorder.CreateTable(QueueTable, QueueEntry{})
	recorder.CreateTable(LandingTable, LandingEntry{})

	return &DepartureRecorder{recorder: recorder}
}

// Func records the decision.
func (r *DepartureRecorder) Func(ctx sim.HookCtx) {
	f, ok := ctx.Item.(sim.Flight)
	if !ok {
		return
	}

	switch ctx.Pos {
	case sim.HookPosDispatch:
		detail := ctx.Detail.(sim.DispatchDetail)
		r.recorder.InsertData(DepartureTable, DepartureEntry{
			FlightID:    f.ID,
			Origin:      f.Origin,
			Destination: f.Destination,
			Start:       f.Start.Minutes(),
			Duration:    f.Duration,
			DepartedAt:  detail.Now.Minutes(),
			FromQueue:   detail.FromQueue,
		})
	case sim.HookPosQueue:
		detail := ctx.Detail.(sim.QueueDetail)
		r.recorder.InsertData(QueueTable, QueueEntry{
			FlightID:    f.ID,
			OriginalID:  detail.Original.ID,
			Origin:      f.Origin,
			Destination: f.Destination,
			Scheduled:   detail.Original.Start.Minutes(),
			Retimed:     f.Start.Minutes(),
			QueuedAt:    detail.Now.Minutes(),
			Position:    detail.Position,
		})
	case sim.HookPosExpire:
		detail := ctx.Detail.(sim.ExpireDetail)
		r.recorder.InsertData(LandingTable, LandingEntry{
			FlightID:    f.ID,
			Origin:      f.Origin,
			Destination: f.Destination,
			Start:       f.Start.Minutes(),
			LandedAt:    detail.Now.Minutes(),
		})
	}
}
