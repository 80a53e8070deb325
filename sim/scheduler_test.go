package sim

import (
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

type recordingDisplay struct {
	lock     sync.Mutex
	added    []Model
	removed  []Model
	repaints []TimeOfDay
	calls    atomic.Int64
}

func (d *recordingDisplay) ModelAdded(m Model) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.calls.Add(1)
	d.added = append(d.added, m)
}

func (d *recordingDisplay) ModelRemoved(m Model) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.calls.Add(1)
	d.removed = append(d.removed, m)
}

func (d *recordingDisplay) Repaint(now TimeOfDay) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.calls.Add(1)
	d.repaints = append(d.repaints, now)
}

func (d *recordingDisplay) addedIDs() []string {
	d.lock.Lock()
	defer d.lock.Unlock()

	return modelIDs(d.added)
}

func (d *recordingDisplay) removedIDs() []string {
	d.lock.Lock()
	defer d.lock.Unlock()

	return modelIDs(d.removed)
}

func modelIDs(models []Model) []string {
	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}

	return ids
}

func visibleFlightIDs(s *Scheduler) []string {
	ids := []string{}
	for _, m := range s.Visible() {
		if m.Kind == KindFlight {
			ids = append(ids, m.ID)
		}
	}

	return ids
}

type dispatchRecord struct {
	flight Flight
	detail DispatchDetail
}

type decisionHook struct {
	dispatched []dispatchRecord
	queued     []QueueDetail
	expired    []Flight
}

func (h *decisionHook) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosDispatch:
		h.dispatched = append(h.dispatched, dispatchRecord{
			flight: ctx.Item.(Flight),
			detail: ctx.Detail.(DispatchDetail),
		})
	case HookPosQueue:
		h.queued = append(h.queued, ctx.Detail.(QueueDetail))
	case HookPosExpire:
		h.expired = append(h.expired, ctx.Item.(Flight))
	}
}

var _ = Describe("Scheduler", func() {
	var (
		locations []LocationInfo
		display   *recordingDisplay
		hook      *decisionHook
		builder   SchedulerBuilder
	)

	passAt := func(s *Scheduler, t TimeOfDay) {
		s.clock.now = t
		s.dispatchPass()
	}

	runFromTo := func(s *Scheduler, from, to TimeOfDay) {
		for t := from; t <= to; t += 2 {
			passAt(s, t)
		}
	}

	BeforeEach(func() {
		locations = []LocationInfo{
			{Code: "AAA", Name: "Alpha", X: 0, Y: 0},
			{Code: "BBB", Name: "Bravo", X: 10, Y: 20},
			{Code: "CCC", Name: "Charlie", X: -10, Y: 0},
		}
		display = &recordingDisplay{}
		hook = &decisionHook{}
		builder = MakeSchedulerBuilder().
			WithDisplay(display).
			WithHook(hook)
	})

	Context("dispatch pass", func() {
		It("should queue the second of two simultaneous departures", func() {
			f1 := NewFlight("AAA", "BBB", 9, 0, 30)
			f2 := NewFlight("AAA", "CCC", 9, 0, 30)
			s := builder.build(locations, []Flight{f1, f2})

			passAt(s, MakeTimeOfDay(9, 0))

			Expect(visibleFlightIDs(s)).To(Equal([]string{f1.ID}))
			Expect(s.Pending()).To(Equal(0))

			aaa, _ := s.Location("AAA")
			Expect(aaa.QueueLength).To(Equal(1))
			queued := aaa.Queued[0]
			Expect(queued.ID).NotTo(Equal(f2.ID))
			Expect(queued.Start).To(Equal(MakeTimeOfDay(9, 10)))
			Expect(queued.Origin).To(Equal("AAA"))
			Expect(queued.Destination).To(Equal("CCC"))
			Expect(queued.Duration).To(Equal(30))
			Expect(aaa.LastDepartureTime).To(Equal(MakeTimeOfDay(9, 0)))

			runFromTo(s, MakeTimeOfDay(9, 2), MakeTimeOfDay(9, 8))
			aaa, _ = s.Location("AAA")
			Expect(aaa.QueueLength).To(Equal(1))

			passAt(s, MakeTimeOfDay(9, 10))
			aaa, _ = s.Location("AAA")
			Expect(aaa.QueueLength).To(Equal(0))
			Expect(aaa.SinceLastDeparture).To(Equal(0))
			Expect(aaa.LastDepartureTime).To(Equal(MakeTimeOfDay(9, 10)))
			Expect(visibleFlightIDs(s)).To(Equal([]string{f1.ID, queued.ID}))
			Expect(display.addedIDs()).To(Equal([]string{f1.ID, queued.ID}))
		})

		It("should dispatch queued flights in order, one per eligible tick", func() {
			flights := []Flight{
				NewFlight("AAA", "BBB", 9, 0, 60),
				NewFlight("AAA", "BBB", 9, 0, 60),
				NewFlight("AAA", "CCC", 9, 0, 60),
				NewFlight("AAA", "BBB", 9, 0, 60),
			}
			s := builder.build(locations, flights)

			runFromTo(s, MakeTimeOfDay(9, 0), MakeTimeOfDay(9, 40))

			Expect(hook.queued).To(HaveLen(3))
			Expect(hook.queued[0].Position).To(Equal(1))
			Expect(hook.queued[1].Position).To(Equal(2))
			Expect(hook.queued[2].Position).To(Equal(3))
			Expect(hook.queued[0].Original).To(Equal(flights[1]))
			Expect(hook.queued[2].Original).To(Equal(flights[3]))

			Expect(hook.dispatched).To(HaveLen(4))
			times := []TimeOfDay{}
			starts := []TimeOfDay{}
			destinations := []string{}
			for _, d := range hook.dispatched {
				times = append(times, d.detail.Now)
				starts = append(starts, d.flight.Start)
				destinations = append(destinations, d.flight.Destination)
			}

			Expect(times).To(Equal([]TimeOfDay{
				MakeTimeOfDay(9, 0),
				MakeTimeOfDay(9, 10),
				MakeTimeOfDay(9, 20),
				MakeTimeOfDay(9, 30),
			}))
			Expect(starts).To(Equal(times))
			Expect(destinations).To(Equal([]string{"BBB", "BBB", "CCC", "BBB"}))
			Expect(hook.dispatched[0].detail.FromQueue).To(BeFalse())
			Expect(hook.dispatched[1].detail.FromQueue).To(BeTrue())
		})

		It("should keep a late flight behind the queue", func() {
			flights := []Flight{
				NewFlight("AAA", "BBB", 9, 0, 60),
				NewFlight("AAA", "BBB", 9, 0, 60),
				NewFlight("AAA", "CCC", 9, 4, 60),
			}
			s := builder.build(locations, flights)

			runFromTo(s, MakeTimeOfDay(9, 0), MakeTimeOfDay(9, 4))

			aaa, _ := s.Location("AAA")
			Expect(aaa.QueueLength).To(Equal(2))
			Expect(aaa.Queued[0].Start).To(Equal(MakeTimeOfDay(9, 10)))
			Expect(aaa.Queued[1].Start).To(Equal(MakeTimeOfDay(9, 20)))
			Expect(aaa.Queued[1].Destination).To(Equal("CCC"))
		})

		It("should let different origins depart in the same tick", func() {
			f1 := NewFlight("AAA", "BBB", 9, 0, 30)
			f2 := NewFlight("BBB", "CCC", 9, 0, 30)
			s := builder.build(locations, []Flight{f1, f2})

			passAt(s, MakeTimeOfDay(9, 0))

			Expect(visibleFlightIDs(s)).To(Equal([]string{f1.ID, f2.ID}))
		})

		It("should remove a flight once its window has elapsed", func() {
			f := NewFlight("AAA", "BBB", 8, 0, 20)
			s := builder.build(locations, []Flight{f})

			runFromTo(s, MakeTimeOfDay(8, 0), MakeTimeOfDay(8, 20))
			Expect(visibleFlightIDs(s)).To(Equal([]string{f.ID}))
			Expect(display.removedIDs()).To(BeEmpty())

			passAt(s, MakeTimeOfDay(8, 22))
			Expect(visibleFlightIDs(s)).To(BeEmpty())
			Expect(display.removedIDs()).To(Equal([]string{f.ID}))
			Expect(hook.expired).To(Equal([]Flight{f}))
		})

		It("should pick up a flight whose start falls between ticks", func() {
			f := NewFlight("AAA", "BBB", 8, 1, 20)
			s := builder.build(locations, []Flight{f})

			passAt(s, MakeTimeOfDay(8, 0))
			Expect(visibleFlightIDs(s)).To(BeEmpty())

			passAt(s, MakeTimeOfDay(8, 2))
			Expect(visibleFlightIDs(s)).To(Equal([]string{f.ID}))
		})

		It("should only report net changes to the display", func() {
			s := builder.build(locations, nil)
			stale := NewFlight("AAA", "BBB", 1, 0, 1)
			s.locationIndex["AAA"].Queue().Push(stale)

			passAt(s, MakeTimeOfDay(5, 0))

			Expect(hook.dispatched).To(HaveLen(1))
			Expect(hook.expired).To(HaveLen(1))
			Expect(display.addedIDs()).To(BeEmpty())
			Expect(display.removedIDs()).To(BeEmpty())
			Expect(display.repaints).To(Equal([]TimeOfDay{MakeTimeOfDay(5, 0)}))
		})

		It("should reset the spacing only when a flight departs", func() {
			flights := []Flight{
				NewFlight("AAA", "BBB", 0, 4, 20),
				NewFlight("AAA", "CCC", 0, 4, 20),
				NewFlight("BBB", "AAA", 0, 6, 20),
				NewFlight("CCC", "AAA", 0, 30, 5),
				NewFlight("AAA", "BBB", 0, 31, 5),
			}
			s := builder.build(locations, flights)

			for t := TimeOfDay(0); t <= MakeTimeOfDay(1, 0); t += 2 {
				before := len(hook.dispatched)
				passAt(s, t)

				departed := map[string]bool{}
				for _, d := range hook.dispatched[before:] {
					departed[d.flight.Origin] = true
				}

				for _, l := range s.Locations() {
					Expect(l.SinceLastDeparture).To(BeNumerically(">=", 0))
					if l.SinceLastDeparture == 0 {
						Expect(departed[l.Code]).To(BeTrue())
					}
					if departed[l.Code] {
						Expect(l.SinceLastDeparture).To(Equal(0))
					}
				}
			}

			Expect(hook.dispatched).To(HaveLen(5))
		})

		It("should interpolate flight positions", func() {
			f := NewFlight("AAA", "BBB", 8, 0, 20)
			s := builder.build(locations, []Flight{f})

			passAt(s, MakeTimeOfDay(8, 0))
			s.clock.now = MakeTimeOfDay(8, 10)

			models := s.Visible()
			Expect(models).To(HaveLen(4))
			Expect(models[0].Kind).To(Equal(KindLocation))
			Expect(models[0].ID).To(Equal("AAA"))
			Expect(models[1].X).To(Equal(10.0))
			Expect(models[1].Y).To(Equal(20.0))

			flight := models[3]
			Expect(flight.Kind).To(Equal(KindFlight))
			Expect(flight.Origin).To(Equal("AAA"))
			Expect(flight.Destination).To(Equal("BBB"))
			Expect(flight.Progress).To(Equal(0.5))
			Expect(flight.X).To(Equal(5.0))
			Expect(flight.Y).To(Equal(10.0))
		})

		It("should work on a copy of the flight list", func() {
			f := NewFlight("AAA", "BBB", 8, 0, 20)
			flights := []Flight{f}
			s := builder.build(locations, flights)

			flights[0] = NewFlight("BBB", "CCC", 1, 0, 5)
			passAt(s, MakeTimeOfDay(8, 0))

			Expect(visibleFlightIDs(s)).To(Equal([]string{f.ID}))
			Expect(flights[0].ID).NotTo(Equal(f.ID))
		})

		It("should refuse flights to unknown locations", func() {
			Expect(func() {
				builder.build(locations, []Flight{
					NewFlight("AAA", "ZZZ", 8, 0, 20),
				})
			}).To(Panic())
		})

		It("should refuse duplicated locations", func() {
			Expect(func() {
				builder.build(append(locations, locations[0]), nil)
			}).To(Panic())
		})
	})

	Context("with a mocked display", func() {
		var mockCtrl *gomock.Controller

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should notify additions before repainting", func() {
			sink := NewMockDisplaySink(mockCtrl)
			f := NewFlight("AAA", "BBB", 8, 0, 20)
			s := MakeSchedulerBuilder().
				WithDisplay(sink).
				build(locations, []Flight{f})

			added := sink.EXPECT().
				ModelAdded(gomock.Any()).
				Do(func(m Model) {
					Expect(m.ID).To(Equal(f.ID))
					Expect(m.Kind).To(Equal(KindFlight))
				})
			sink.EXPECT().Repaint(MakeTimeOfDay(8, 0)).After(added)

			passAt(s, MakeTimeOfDay(8, 0))
		})
	})

	Context("lifecycle", func() {
		var s *Scheduler

		AfterEach(func() {
			if s != nil {
				s.Finish()
			}
		})

		It("should run passes as the clock ticks", func() {
			f := NewFlight("AAA", "BBB", 0, 4, 60)
			s = builder.
				WithTickInterval(time.Millisecond).
				Build(locations, []Flight{f})

			Expect(s.IsActive()).To(BeTrue())
			Eventually(display.addedIDs, 5*time.Second).
				Should(Equal([]string{f.ID}))
			Eventually(display.removedIDs, 5*time.Second).
				Should(Equal([]string{f.ID}))
		})

		It("should run a first pass while paused", func() {
			s = builder.
				WithTickInterval(time.Millisecond).
				WithInitialPause(true).
				Build(locations, nil)

			Eventually(display.calls.Load).Should(BeNumerically(">=", 1))
			Consistently(s.Now, 20*time.Millisecond).Should(Equal(TimeOfDay(0)))
			Expect(s.Clock().IsRunning()).To(BeFalse())
		})

		It("should finish while suspended", func() {
			s = builder.
				WithTickInterval(time.Hour).
				Build(locations, nil)

			Eventually(display.calls.Load).Should(BeNumerically(">=", 1))

			done := make(chan struct{})
			go func() {
				s.Finish()
				close(done)
			}()

			Eventually(done).Should(BeClosed())
			Expect(s.IsActive()).To(BeFalse())
		})

		It("should not notify the display after finishing", func() {
			s = builder.
				WithTickInterval(time.Millisecond).
				Build(locations, nil)

			Eventually(display.calls.Load).Should(BeNumerically(">=", 5))
			s.Finish()

			calls := display.calls.Load()
			Consistently(display.calls.Load, 30*time.Millisecond).
				Should(Equal(calls))
		})

		It("should allow finishing twice", func() {
			s = builder.
				WithTickInterval(time.Millisecond).
				Build(locations, nil)

			s.Finish()

			Expect(func() { s.Finish() }).NotTo(Panic())
		})
	})
})

var _ = Describe("Scheduler wake-ups", func() {
	It("should merge pending wake-ups into one pass aged by one tick", func() {
		s := MakeSchedulerBuilder().build(
			[]LocationInfo{{Code: "AAA"}}, nil)

		s.Wake()
		s.Wake()
		s.Wake()

		Expect(s.wakeUp).To(HaveLen(1))

		<-s.wakeUp
		s.clock.now = 3 * TimeOfDay(DefaultMinutesPerTick)
		s.dispatchPass()

		Expect(s.wakeUp).To(BeEmpty())
		Expect(s.locations[0].SinceLastDeparture()).
			To(Equal(DefaultSpacingThreshold + DefaultMinutesPerTick))
	})
})
