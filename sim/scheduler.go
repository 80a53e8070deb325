package sim

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// HookPosDispatch marks when a flight departs. The hook item is the flight
// and the detail is a DispatchDetail.
var HookPosDispatch = &HookPos{Name: "Dispatch"}

// HookPosQueue marks when a due flight is re-timed and queued at its origin.
// The hook item is the re-timed flight and the detail is a QueueDetail.
var HookPosQueue = &HookPos{Name: "Queue"}

// HookPosExpire marks when a flight lands and stops being visible. The hook
// item is the flight and the detail is an ExpireDetail.
var HookPosExpire = &HookPos{Name: "Expire"}

// DispatchDetail describes a departure.
type DispatchDetail struct {
	Now       TimeOfDay
	FromQueue bool
}

// QueueDetail describes a flight that had to wait for its origin.
type QueueDetail struct {
	Now      TimeOfDay
	Original Flight
	Position int
}

// ExpireDetail describes a flight that left the visible set.
type ExpireDetail struct {
	Now TimeOfDay
}

type visibleEntry struct {
	location *Location
	flight   Flight
}

func (e visibleEntry) isFlight() bool {
	return e.location == nil
}

// passDelta collects the net changes of the visible set during one pass.
type passDelta struct {
	added   []Flight
	removed []Flight
}

func (d *passDelta) expire(f Flight) {
	for i, a := range d.added {
		if a.ID == f.ID {
			d.added = append(d.added[:i], d.added[i+1:]...)
			return
		}
	}

	d.removed = append(d.removed, f)
}

// A Scheduler runs one simulation: it owns the flights that have not departed
// yet, the run state of every location, and the visible set. It performs one
// dispatch pass every time its clock ticks.
//
// A Scheduler is single-use. Once finished, a new one has to be built.
type Scheduler struct {
	HookableBase

	clock          *Clock
	display        DisplaySink
	logger         *slog.Logger
	minutesPerTick int

	lock          sync.Mutex
	locations     []*Location
	locationIndex map[string]*Location
	pending       []Flight
	visible       []visibleEntry

	wakeUp     chan struct{}
	cancel     context.CancelFunc
	done       chan struct{}
	finishOnce sync.Once
	active     atomic.Bool
}

// Wake requests a dispatch pass. Requests made while one is already pending
// are merged. A merged pass ages every location by a single tick, so under
// load the time since the last departure lags behind the clock and spacing
// gets stricter.
func (s *Scheduler) Wake() {
	select {
	case s.wakeUp <- struct{}{}:
	default:
	}
}

// Clock returns the clock that drives the scheduler.
func (s *Scheduler) Clock() *Clock {
	return s.clock
}

// Now returns the current simulated time.
func (s *Scheduler) Now() TimeOfDay {
	return s.clock.Now()
}

// IsActive tells if the dispatch loop is still running.
func (s *Scheduler) IsActive() bool {
	return s.active.Load()
}

// Pending returns the number of flights that have not been due yet.
func (s *Scheduler) Pending() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.pending)
}

// Visible returns the models that are currently visible, locations first,
// then flights in the order they departed. Flight positions are interpolated
// at the current clock time.
func (s *Scheduler) Visible() []Model {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.clock.Now()
	models := make([]Model, 0, len(s.visible))

	for _, e := range s.visible {
		if e.isFlight() {
			models = append(models, s.flightModel(e.flight, now))
			continue
		}

		models = append(models, locationModel(e.location))
	}

	return models
}

// Locations returns the run state of every location.
func (s *Scheduler) Locations() []LocationStatus {
	s.lock.Lock()
	defer s.lock.Unlock()

	statuses := make([]LocationStatus, 0, len(s.locations))
	for _, l := range s.locations {
		statuses = append(statuses, l.status())
	}

	return statuses
}

// Location returns the run state of the location with the given code.
func (s *Scheduler) Location(code string) (LocationStatus, bool) {
	l, ok := s.locationIndex[code]
	if !ok {
		return LocationStatus{}, false
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	return l.status(), true
}

// Finish stops the clock and the dispatch loop and waits until both have
// exited. A pass that is in progress completes first. After Finish returns,
// the display is not notified anymore.
func (s *Scheduler) Finish() {
	s.finishOnce.Do(func() {
		s.clock.Stop()
		s.cancel()
		<-s.done
		s.active.Store(false)

		s.logger.Info("scheduler finished",
			slog.String("sim_time", s.clock.String()),
			slog.Int("pending", s.Pending()))
	})
}

func (s *Scheduler) start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.active.Store(true)

	s.clock.Start()

	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	for {
		s.dispatchPass()

		select {
		case <-ctx.Done():
			return
		case <-s.wakeUp:
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func (s *Scheduler) dispatchPass() {
	delta := &passDelta{}

	s.lock.Lock()
	now := s.clock.Now()
	s.ageLocations()
	s.drainQueues(now, delta)
	s.processDueFlights(now, delta)
	s.expireFlights(now, delta)
	s.lock.Unlock()

	s.logger.Debug("dispatch pass",
		slog.String("sim_time", now.String()),
		slog.Int("departed", len(delta.added)),
		slog.Int("landed", len(delta.removed)))

	s.notifyDisplay(now, delta)
}

func (s *Scheduler) ageLocations() {
	for _, l := range s.locations {
		l.Age(s.minutesPerTick)
	}
}

// drainQueues lets at most one waiting flight depart from every location.
func (s *Scheduler) drainQueues(now TimeOfDay, delta *passDelta) {
	for _, l := range s.locations {
		if l.Queue().Len() == 0 || !l.CanDispatchFromQueue() {
			continue
		}

		f, _ := l.Queue().Pop()
		s.dispatch(l, f, now, true, delta)
	}
}

// processDueFlights handles the pending flights whose window is active, in
// the order of the original flight list.
func (s *Scheduler) processDueFlights(now TimeOfDay, delta *passDelta) {
	remaining := s.pending[:0]

	for _, f := range s.pending {
		if !f.IsActiveAt(now) {
			remaining = append(remaining, f)
			continue
		}

		origin := s.locationIndex[f.Origin]
		if origin.CanDispatchImmediately() {
			s.dispatch(origin, f, now, false, delta)
			continue
		}

		s.enqueue(origin, f, now)
	}

	for i := len(remaining); i < len(s.pending); i++ {
		s.pending[i] = Flight{}
	}

	s.pending = remaining
}

func (s *Scheduler) dispatch(
	l *Location,
	f Flight,
	now TimeOfDay,
	fromQueue bool,
	delta *passDelta,
) {
	l.RecordDeparture(f)
	s.visible = append(s.visible, visibleEntry{flight: f})
	delta.added = append(delta.added, f)

	if s.NumHooks() > 0 {
		s.InvokeHook(HookCtx{
			Domain: s,
			Pos:    HookPosDispatch,
			Item:   f,
			Detail: DispatchDetail{Now: now, FromQueue: fromQueue},
		})
	}
}

func (s *Scheduler) enqueue(l *Location, f Flight, now TimeOfDay) {
	retimed := l.Retime(f)
	l.Queue().Push(retimed)

	if s.NumHooks() > 0 {
		s.InvokeHook(HookCtx{
			Domain: s,
			Pos:    HookPosQueue,
			Item:   retimed,
			Detail: QueueDetail{
				Now:      now,
				Original: f,
				Position: l.Queue().Len(),
			},
		})
	}
}

func (s *Scheduler) expireFlights(now TimeOfDay, delta *passDelta) {
	kept := s.visible[:0]

	for _, e := range s.visible {
		if !e.isFlight() || e.flight.IsActiveAt(now) {
			kept = append(kept, e)
			continue
		}

		delta.expire(e.flight)

		if s.NumHooks() > 0 {
			s.InvokeHook(HookCtx{
				Domain: s,
				Pos:    HookPosExpire,
				Item:   e.flight,
				Detail: ExpireDetail{Now: now},
			})
		}
	}

	for i := len(kept); i < len(s.visible); i++ {
		s.visible[i] = visibleEntry{}
	}

	s.visible = kept
}

func (s *Scheduler) notifyDisplay(now TimeOfDay, delta *passDelta) {
	for _, f := range delta.added {
		s.display.ModelAdded(s.flightModel(f, now))
	}

	for _, f := range delta.removed {
		s.display.ModelRemoved(s.flightModel(f, now))
	}

	s.display.Repaint(now)
}

func (s *Scheduler) flightModel(f Flight, now TimeOfDay) Model {
	return flightModel(
		f,
		s.locationIndex[f.Origin],
		s.locationIndex[f.Destination],
		now,
	)
}
