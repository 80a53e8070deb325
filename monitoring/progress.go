package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/flightsim/sim"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	if amount > b.InProgress {
		amount = b.InProgress
	}

	b.InProgress -= amount
	b.Finished += amount
}

type progressBarStatus struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

func (b *ProgressBar) status() progressBarStatus {
	b.Lock()
	defer b.Unlock()

	return progressBarStatus{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		InProgress: b.InProgress,
	}
}

// A FlightProgress is a scheduler hook that counts flights in the air as in
// progress and landed flights as finished.
type FlightProgress struct {
	bar *ProgressBar
}

// NewFlightProgress creates a hook that updates the given bar.
func NewFlightProgress(bar *ProgressBar) *FlightProgress {
	return &FlightProgress{bar: bar}
}

// Bar returns the bar that the hook updates.
func (p *FlightProgress) Bar() *ProgressBar {
	return p.bar
}

// Func updates the bar.
func (p *FlightProgress) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosDispatch:
		p.bar.IncrementInProgress(1)
	case sim.HookPosExpire:
		p.bar.MoveInProgressToFinished(1)
	}
}
