package sim

import (
	"context"
	"sync"
	"time"
)

// HookPosClockTick marks when the clock has advanced. The hook item is the
// new TimeOfDay.
var HookPosClockTick = &HookPos{Name: "Clock Tick"}

// A Waker is a dependent of a Clock that is woken after every tick.
//
// Wake is called while the clock holds its lock. It must not block and must
// not call back into the clock.
type Waker interface {
	Wake()
}

// A Clock advances a simulated time of day on a fixed real-time cadence and
// wakes its dependents after every advance. Time only moves while the clock
// is running; a paused clock keeps its goroutine but blocks it.
type Clock struct {
	HookableBase

	interval time.Duration
	step     int

	lock       sync.Mutex
	now        TimeOfDay
	running    bool
	resume     chan struct{}
	dependents []Waker

	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewClock creates a paused clock that advances minutesPerTick simulated
// minutes every interval of real time.
func NewClock(interval time.Duration, minutesPerTick int) *Clock {
	if interval <= 0 {
		panic("clock interval must be positive")
	}

	if minutesPerTick <= 0 {
		panic("minutes per tick must be positive")
	}

	return &Clock{
		interval: interval,
		step:     minutesPerTick,
		resume:   make(chan struct{}),
	}
}

// Interval returns the real time between two ticks.
func (c *Clock) Interval() time.Duration {
	return c.interval
}

// MinutesPerTick returns the simulated minutes added by one tick.
func (c *Clock) MinutesPerTick() int {
	return c.step
}

// AddDependent registers a dependent to be woken after every tick.
func (c *Clock) AddDependent(w Waker) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.dependents = append(c.dependents, w)
}

// Start launches the cadence loop. A clock can only be started once.
func (c *Clock) Start() {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.started {
		panic("clock already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.started = true
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.run(ctx, c.done)
}

// Stop terminates the cadence loop, whether it is sleeping or waiting to be
// told to run, and waits for it to exit.
func (c *Clock) Stop() {
	c.lock.Lock()
	cancel, done := c.cancel, c.done
	c.lock.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

// Go lets simulated time move.
func (c *Clock) Go() {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.running {
		return
	}

	c.running = true
	close(c.resume)
}

// Pause freezes simulated time. A tick whose sleep is in progress is dropped.
func (c *Clock) Pause() {
	c.lock.Lock()
	defer c.lock.Unlock()

	if !c.running {
		return
	}

	c.running = false
	c.resume = make(chan struct{})
}

// IsRunning tells if simulated time is moving.
func (c *Clock) IsRunning() bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.running
}

// Reset sets the simulated time back to midnight.
func (c *Clock) Reset() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.now = 0
}

// Now returns the current simulated time.
func (c *Clock) Now() TimeOfDay {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.now
}

// Hour returns the current simulated hour.
func (c *Clock) Hour() int {
	return c.Now().Hour()
}

// Minute returns the current simulated minute.
func (c *Clock) Minute() int {
	return c.Now().Minute()
}

// IsIntervalActive tells if the current time falls within the interval that
// starts at the given hour and minute and lasts duration minutes. Both ends
// of the interval are included.
func (c *Clock) IsIntervalActive(startHour, startMinute, duration int) bool {
	start := MakeTimeOfDay(startHour, startMinute)
	now := c.Now()

	return now >= start && now <= start.Add(duration)
}

func (c *Clock) String() string {
	return c.Now().String()
}

func (c *Clock) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		if !c.waitUntilRunning(ctx) {
			return
		}

		timer := time.NewTimer(c.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		c.tick()
	}
}

func (c *Clock) waitUntilRunning(ctx context.Context) bool {
	c.lock.Lock()
	resume := c.resume
	c.lock.Unlock()

	select {
	case <-ctx.Done():
		return false
	case <-resume:
		return true
	}
}

// tick wakes the dependents and advances the time in one critical section,
// so a woken dependent that reads Now always sees the advanced time.
func (c *Clock) tick() {
	c.lock.Lock()
	if !c.running {
		c.lock.Unlock()
		return
	}

	for _, d := range c.dependents {
		d.Wake()
	}

	c.now = c.now.Add(c.step)
	now := c.now
	c.lock.Unlock()

	if c.NumHooks() > 0 {
		c.InvokeHook(HookCtx{
			Domain: c,
			Pos:    HookPosClockTick,
			Item:   now,
		})
	}
}
