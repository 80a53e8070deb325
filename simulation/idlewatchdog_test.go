package simulation

import (
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type watchdogEvents struct {
	sync.Mutex
	reminders []time.Duration
	killed    bool
}

func (e *watchdogEvents) remind(remaining time.Duration) {
	e.Lock()
	defer e.Unlock()

	e.reminders = append(e.reminders, remaining)
}

func (e *watchdogEvents) kill() {
	e.Lock()
	defer e.Unlock()

	e.killed = true
}

func (e *watchdogEvents) isKilled() bool {
	e.Lock()
	defer e.Unlock()

	return e.killed
}

func (e *watchdogEvents) numReminders() int {
	e.Lock()
	defer e.Unlock()

	return len(e.reminders)
}

var _ = Describe("IdleWatchdog", func() {
	var (
		events   *watchdogEvents
		watchdog *IdleWatchdog
	)

	BeforeEach(func() {
		events = &watchdogEvents{}
		watchdog = NewIdleWatchdog(60*time.Millisecond, 30*time.Millisecond).
			WithResolution(5 * time.Millisecond).
			OnRemind(events.remind).
			OnKill(events.kill)
	})

	AfterEach(func() {
		watchdog.Stop()
	})

	It("should remind before killing", func() {
		watchdog.Start()

		Eventually(events.isKilled).Should(BeTrue())

		events.Lock()
		defer events.Unlock()

		Expect(events.reminders).NotTo(BeEmpty())
		Expect(events.reminders[0]).To(Equal(30 * time.Millisecond))
		for _, remaining := range events.reminders {
			Expect(remaining).To(BeNumerically(">", 0))
			Expect(remaining).To(BeNumerically("<=", 30*time.Millisecond))
		}
	})

	It("should postpone the kill on user actions", func() {
		watchdog.Start()

		stop := make(chan struct{})
		go func() {
			ticker := time.NewTicker(5 * time.Millisecond)
			defer ticker.Stop()

			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					watchdog.UserAction()
				}
			}
		}()

		Consistently(events.isKilled, 150*time.Millisecond).Should(BeFalse())
		Expect(events.numReminders()).To(BeZero())

		close(stop)
		Eventually(events.isKilled).Should(BeTrue())
	})

	It("should not count while paused", func() {
		watchdog.Pause()
		watchdog.Start()

		Consistently(events.isKilled, 100*time.Millisecond).Should(BeFalse())
		Expect(watchdog.Idle()).To(BeZero())

		watchdog.Unpause()
		Eventually(events.isKilled).Should(BeTrue())
	})

	It("should allow stopping from the kill callback", func() {
		done := make(chan struct{})
		watchdog.OnKill(func() {
			watchdog.Stop()
			close(done)
		})

		watchdog.Start()

		Eventually(done).Should(BeClosed())
	})

	It("should stop without firing", func() {
		watchdog.Start()
		watchdog.Stop()

		Consistently(events.isKilled, 100*time.Millisecond).Should(BeFalse())
	})

	It("should allow stopping before starting", func() {
		Expect(watchdog.Stop).NotTo(Panic())
	})

	It("should refuse a reminder after the kill", func() {
		Expect(func() { NewIdleWatchdog(time.Second, 2*time.Second) }).
			To(Panic())
		Expect(func() { NewIdleWatchdog(0, 0) }).To(Panic())
	})

	It("should not start twice", func() {
		watchdog.Start()

		Expect(watchdog.Start).To(Panic())
	})
})
