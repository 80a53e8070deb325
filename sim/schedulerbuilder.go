package sim

import (
	"fmt"
	"log/slog"
	"time"
)

// Reference values of the simulation cadence.
const (
	DefaultTickInterval     = 200 * time.Millisecond
	DefaultMinutesPerTick   = 2
	DefaultSpacingThreshold = 10
)

// SchedulerBuilder can build schedulers.
type SchedulerBuilder struct {
	tickInterval   time.Duration
	minutesPerTick int
	spacing        int
	display        DisplaySink
	initialPause   bool
	logger         *slog.Logger
	hooks          []Hook
}

// MakeSchedulerBuilder creates a builder with the reference cadence.
func MakeSchedulerBuilder() SchedulerBuilder {
	return SchedulerBuilder{
		tickInterval:   DefaultTickInterval,
		minutesPerTick: DefaultMinutesPerTick,
		spacing:        DefaultSpacingThreshold,
	}
}

// WithTickInterval sets the real time between two clock ticks.
func (b SchedulerBuilder) WithTickInterval(d time.Duration) SchedulerBuilder {
	b.tickInterval = d
	return b
}

// WithMinutesPerTick sets the simulated minutes added by each tick.
func (b SchedulerBuilder) WithMinutesPerTick(n int) SchedulerBuilder {
	b.minutesPerTick = n
	return b
}

// WithSpacingThreshold sets the minimum simulated minutes between two
// departures from the same location.
func (b SchedulerBuilder) WithSpacingThreshold(n int) SchedulerBuilder {
	b.spacing = n
	return b
}

// WithDisplay sets the sink that is notified of visible set changes.
func (b SchedulerBuilder) WithDisplay(d DisplaySink) SchedulerBuilder {
	b.display = d
	return b
}

// WithInitialPause makes the scheduler start with its clock paused.
func (b SchedulerBuilder) WithInitialPause(paused bool) SchedulerBuilder {
	b.initialPause = paused
	return b
}

// WithLogger sets the logger of the scheduler.
func (b SchedulerBuilder) WithLogger(l *slog.Logger) SchedulerBuilder {
	b.logger = l
	return b
}

// WithHook registers a hook on the scheduler being built.
func (b SchedulerBuilder) WithHook(h Hook) SchedulerBuilder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], h)
	return b
}

func (b SchedulerBuilder) parametersMustBeValid() {
	if b.tickInterval <= 0 {
		panic("tick interval must be positive")
	}

	if b.minutesPerTick <= 0 {
		panic("minutes per tick must be positive")
	}

	if b.spacing < 0 {
		panic("spacing threshold cannot be negative")
	}
}

// Build creates a scheduler for the given locations and flights and starts
// it. The flight list is copied; the caller keeps ownership of its slice.
// Every flight must refer to locations in the list.
func (b SchedulerBuilder) Build(
	locations []LocationInfo,
	flights []Flight,
) *Scheduler {
	s := b.build(locations, flights)

	if !b.initialPause {
		s.clock.Go()
	}

	s.start()

	s.logger.Info("scheduler started",
		slog.Int("locations", len(locations)),
		slog.Int("flights", len(flights)),
		slog.Bool("paused", b.initialPause))

	return s
}

func (b SchedulerBuilder) build(
	locations []LocationInfo,
	flights []Flight,
) *Scheduler {
	b.parametersMustBeValid()

	s := &Scheduler{
		clock:          NewClock(b.tickInterval, b.minutesPerTick),
		display:        b.display,
		logger:         b.logger,
		minutesPerTick: b.minutesPerTick,
		locationIndex:  make(map[string]*Location, len(locations)),
		wakeUp:         make(chan struct{}, 1),
		done:           make(chan struct{}),
	}

	if s.display == nil {
		s.display = NopDisplay{}
	}

	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	for _, info := range locations {
		if _, found := s.locationIndex[info.Code]; found {
			panic(fmt.Sprintf("location %s is listed twice", info.Code))
		}

		l := NewLocation(info, b.spacing)
		s.locations = append(s.locations, l)
		s.locationIndex[info.Code] = l
		s.visible = append(s.visible, visibleEntry{location: l})
	}

	for _, f := range flights {
		s.locationMustExist(f.Origin, f)
		s.locationMustExist(f.Destination, f)
	}

	s.pending = make([]Flight, len(flights))
	copy(s.pending, flights)

	for _, h := range b.hooks {
		s.AcceptHook(h)
	}

	s.clock.AddDependent(s)

	return s
}

func (s *Scheduler) locationMustExist(code string, f Flight) {
	if _, found := s.locationIndex[code]; !found {
		panic(fmt.Sprintf("flight %s refers to unknown location %s",
			f.ID, code))
	}
}
