package simulation

import (
	"context"
	"sync"
	"time"
)

// An IdleWatchdog shuts the program down after a period without user
// activity. Shortly before, it reminds the user.
//
// Idle time only accumulates while the watchdog is not paused. Pausing is
// meant for periods where the user is busy outside the program's view, for
// example while a dialog is open.
type IdleWatchdog struct {
	kill       time.Duration
	reminder   time.Duration
	resolution time.Duration
	onRemind   func(remaining time.Duration)
	onKill     func()

	lock    sync.Mutex
	idle    time.Duration
	paused  bool
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewIdleWatchdog creates a watchdog that fires after kill of inactivity and
// reminds the user when reminder of inactivity has passed.
func NewIdleWatchdog(kill, reminder time.Duration) *IdleWatchdog {
	if kill <= 0 {
		panic("kill time must be positive")
	}

	if reminder >= kill {
		panic("reminder must come before the kill time")
	}

	return &IdleWatchdog{
		kill:       kill,
		reminder:   reminder,
		resolution: time.Second,
	}
}

// WithResolution sets how often the idle time is checked.
func (w *IdleWatchdog) WithResolution(d time.Duration) *IdleWatchdog {
	if d <= 0 {
		panic("resolution must be positive")
	}

	w.resolution = d

	return w
}

// OnRemind sets the function that is called when the reminder time is
// reached, and at every check after it, with the time left before the kill.
func (w *IdleWatchdog) OnRemind(f func(remaining time.Duration)) *IdleWatchdog {
	w.onRemind = f
	return w
}

// OnKill sets the function that is called when the kill time is reached. It
// is called once, after the watchdog has stopped.
func (w *IdleWatchdog) OnKill(f func()) *IdleWatchdog {
	w.onKill = f
	return w
}

// Start begins counting idle time.
func (w *IdleWatchdog) Start() {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.started {
		panic("idle watchdog already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	w.started = true

	go w.run(ctx, w.done)
}

// Stop stops the watchdog and waits for it to exit. It can be called from
// the callbacks.
func (w *IdleWatchdog) Stop() {
	w.lock.Lock()
	cancel := w.cancel
	done := w.done
	w.lock.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

// UserAction resets the idle time.
func (w *IdleWatchdog) UserAction() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.idle = 0
}

// Pause suspends counting.
func (w *IdleWatchdog) Pause() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.paused = true
}

// Unpause resumes counting.
func (w *IdleWatchdog) Unpause() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.paused = false
}

// Idle returns the idle time counted so far.
func (w *IdleWatchdog) Idle() time.Duration {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.idle
}

func (w *IdleWatchdog) run(ctx context.Context, done chan struct{}) {
	killed := w.watch(ctx)

	close(done)

	if killed && w.onKill != nil {
		w.onKill()
	}
}

func (w *IdleWatchdog) watch(ctx context.Context) bool {
	ticker := time.NewTicker(w.resolution)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}

		idle, counting := w.advance()
		if !counting {
			continue
		}

		if idle >= w.kill {
			return true
		}

		if idle >= w.reminder && w.onRemind != nil {
			w.onRemind(w.kill - idle)
		}
	}
}

func (w *IdleWatchdog) advance() (time.Duration, bool) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.paused {
		return w.idle, false
	}

	w.idle += w.resolution

	return w.idle, true
}
