package terminal

import (
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/flightsim/sim"
)

type fakeSource struct {
	sync.Mutex
	now     sim.TimeOfDay
	models  []sim.Model
	paused  bool
	visible int
}

func (s *fakeSource) Now() sim.TimeOfDay {
	s.Lock()
	defer s.Unlock()

	return s.now
}

func (s *fakeSource) Visible() []sim.Model {
	s.Lock()
	defer s.Unlock()

	s.visible++

	return append([]sim.Model(nil), s.models...)
}

func (s *fakeSource) IsPaused() bool {
	s.Lock()
	defer s.Unlock()

	return s.paused
}

// newTestScreen returns a 37x12 screen. The map covers the top 11 rows, so
// a coordinate pair (x, y) lands on column (x+90)/5 and row (90-y)/18.
func newTestScreen() tcell.SimulationScreen {
	screen := tcell.NewSimulationScreen("")
	Expect(screen.Init()).To(Succeed())
	screen.SetSize(37, 12)
	DeferCleanup(screen.Fini)

	return screen
}

func cellAt(screen tcell.SimulationScreen, x, y int) rune {
	cells, width, _ := screen.GetContents()
	cell := cells[y*width+x]

	if len(cell.Runes) == 0 {
		return ' '
	}

	return cell.Runes[0]
}

func rowAt(screen tcell.SimulationScreen, y int) string {
	_, width, _ := screen.GetContents()

	var b strings.Builder
	for x := 0; x < width; x++ {
		b.WriteRune(cellAt(screen, x, y))
	}

	return b.String()
}

func flightModel(id string, x, y float64) sim.Model {
	return sim.Model{
		Kind:        sim.KindFlight,
		ID:          id,
		Origin:      "AAA",
		Destination: "BBB",
		X:           x,
		Y:           y,
	}
}

var _ = Describe("project", func() {
	It("should map the corners of the coordinate range", func() {
		x, y := project(-90, 90, 37, 11)
		Expect(x).To(Equal(0))
		Expect(y).To(Equal(0))

		x, y = project(90, -90, 37, 11)
		Expect(x).To(Equal(36))
		Expect(y).To(Equal(10))
	})

	It("should put north at the top", func() {
		_, north := project(0, 45, 37, 11)
		_, south := project(0, -45, 37, 11)

		Expect(north).To(BeNumerically("<", south))
	})

	It("should clamp coordinates out of range", func() {
		x, y := project(200, -200, 37, 11)

		Expect(x).To(Equal(36))
		Expect(y).To(Equal(10))
	})
})

var _ = Describe("Renderer", func() {
	var (
		screen   tcell.SimulationScreen
		renderer *Renderer
	)

	BeforeEach(func() {
		screen = newTestScreen()
		renderer = NewRenderer(screen)
	})

	Context("without a source", func() {
		It("should draw the flights it was told about", func() {
			renderer.ModelAdded(flightModel("F1", 90, -90))
			renderer.Repaint(sim.MakeTimeOfDay(9, 5))

			Expect(cellAt(screen, 36, 10)).To(Equal('*'))
			Expect(renderer.NumFlights()).To(Equal(1))
			Expect(rowAt(screen, 11)).To(ContainSubstring("9h:05m"))
			Expect(rowAt(screen, 11)).To(ContainSubstring("flights: 1"))
		})

		It("should stop drawing landed flights", func() {
			f := flightModel("F1", 90, -90)
			renderer.ModelAdded(f)
			renderer.Repaint(sim.MakeTimeOfDay(9, 5))
			renderer.ModelRemoved(f)
			renderer.Repaint(sim.MakeTimeOfDay(9, 7))

			Expect(cellAt(screen, 36, 10)).NotTo(Equal('*'))
			Expect(renderer.NumFlights()).To(BeZero())
		})

		It("should ignore locations", func() {
			renderer.ModelAdded(sim.Model{Kind: sim.KindLocation, ID: "AAA"})

			Expect(renderer.NumFlights()).To(BeZero())
		})

		It("should show a notice until it is cleared", func() {
			renderer.SetNotice("bye in 5s")

			Expect(rowAt(screen, 11)).To(ContainSubstring("bye in 5s"))

			renderer.SetNotice("")

			Expect(rowAt(screen, 11)).NotTo(ContainSubstring("bye"))
		})

		It("should count frames", func() {
			renderer.Repaint(0)
			renderer.Redraw()

			Expect(renderer.Frames()).To(Equal(2))
		})
	})

	Context("with a source", func() {
		var source *fakeSource

		BeforeEach(func() {
			source = &fakeSource{
				now: sim.MakeTimeOfDay(1, 30),
				models: []sim.Model{
					{Kind: sim.KindLocation, ID: "BUD", X: 0, Y: 0},
					flightModel("F1", 0, 0),
					flightModel("F2", -90, 90),
				},
			}
			renderer.WithSource(source)
		})

		It("should draw locations over flights", func() {
			renderer.Repaint(source.Now())

			Expect(rowAt(screen, 5)[18:21]).To(Equal("BUD"))
			Expect(cellAt(screen, 0, 0)).To(Equal('*'))
			Expect(rowAt(screen, 11)).To(ContainSubstring("flights: 2"))
		})

		It("should read the visible set on every repaint", func() {
			renderer.Repaint(source.Now())
			renderer.Repaint(source.Now())

			Expect(source.visible).To(Equal(2))
		})

		It("should show when the simulation is paused", func() {
			source.paused = true
			renderer.Redraw()

			Expect(rowAt(screen, 11)).To(ContainSubstring("PAUSED"))
			Expect(rowAt(screen, 11)).To(ContainSubstring("1h:30m"))
		})

		It("should take the time from the source on redraw", func() {
			renderer.Repaint(0)
			renderer.Redraw()

			Expect(rowAt(screen, 11)).To(ContainSubstring("1h:30m"))
		})
	})
})
