// Package terminal draws a running simulation on a character screen and
// turns key presses into simulation controls.
package terminal

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/sarchlab/flightsim/sim"
)

// coordinateSpan is the width of the coordinate range [-90, 90].
const coordinateSpan = 180

var (
	styleBackground = tcell.StyleDefault.
			Background(tcell.ColorReset).
			Foreground(tcell.ColorReset)
	styleLocation = tcell.StyleDefault.Foreground(tcell.ColorTeal).Bold(true)
	styleFlight   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleStatus   = tcell.StyleDefault.Bold(true).Reverse(true)
	stylePaused   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

const keyHelp = "[space] pause/continue  [s] start  [r] reset  [q] quit"

// A Source provides the visible models and the time to draw. It is read from
// within Repaint.
type Source interface {
	Now() sim.TimeOfDay
	Visible() []sim.Model
	IsPaused() bool
}

// A Renderer is a sim.DisplaySink that draws on a tcell screen.
//
// Without a Source, the renderer only draws the flights it was told about,
// at the position they had when they departed.
type Renderer struct {
	lock    sync.Mutex
	screen  tcell.Screen
	source  Source
	now     sim.TimeOfDay
	flights map[string]sim.Model
	notice  string
	frames  int
}

// NewRenderer creates a renderer that draws on the given screen. The screen
// must be initialized.
func NewRenderer(screen tcell.Screen) *Renderer {
	screen.SetStyle(styleBackground)

	return &Renderer{
		screen:  screen,
		flights: make(map[string]sim.Model),
	}
}

// WithSource sets where the renderer reads the visible set from.
func (r *Renderer) WithSource(s Source) *Renderer {
	r.source = s
	return r
}

// ModelAdded remembers a departed flight.
func (r *Renderer) ModelAdded(m sim.Model) {
	if m.Kind != sim.KindFlight {
		return
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	r.flights[m.ID] = m
}

// ModelRemoved forgets a landed flight.
func (r *Renderer) ModelRemoved(m sim.Model) {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.flights, m.ID)
}

// Repaint redraws the screen at the given time.
func (r *Renderer) Repaint(now sim.TimeOfDay) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.now = now
	r.draw()
}

// Redraw draws the screen again, for example after a resize.
func (r *Renderer) Redraw() {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.source != nil {
		r.now = r.source.Now()
	}

	r.draw()
}

// SetNotice shows a message at the end of the status line until it is
// replaced. An empty message clears it.
func (r *Renderer) SetNotice(msg string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.notice == msg {
		return
	}

	r.notice = msg
	r.draw()
}

// NumFlights returns the number of flights in the air.
func (r *Renderer) NumFlights() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	return len(r.flights)
}

// Frames returns how many times the screen has been drawn.
func (r *Renderer) Frames() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.frames
}

func (r *Renderer) draw() {
	r.screen.Clear()

	width, height := r.screen.Size()
	if width <= 0 || height <= 0 {
		return
	}

	locations, flights := r.models()

	for _, m := range flights {
		x, y := project(m.X, m.Y, width, height-1)
		r.screen.SetContent(x, y, '*', nil, styleFlight)
	}

	// Locations are drawn last so that a flight on the ground does not hide
	// its code.
	for _, m := range locations {
		x, y := project(m.X, m.Y, width, height-1)
		drawText(r.screen, x, y, width-x, styleLocation, m.ID)
	}

	r.drawStatus(width, height-1, len(flights))
	r.screen.Show()
	r.frames++
}

func (r *Renderer) models() (locations, flights []sim.Model) {
	if r.source == nil {
		for _, m := range r.flights {
			flights = append(flights, m)
		}

		sort.Slice(flights, func(i, j int) bool {
			return flights[i].ID < flights[j].ID
		})

		return nil, flights
	}

	for _, m := range r.source.Visible() {
		if m.Kind == sim.KindLocation {
			locations = append(locations, m)
			continue
		}

		flights = append(flights, m)
	}

	return locations, flights
}

func (r *Renderer) drawStatus(width, y, numFlights int) {
	status := fmt.Sprintf(" %s  flights: %d ", r.now, numFlights)
	line := status + keyHelp

	for i := len(line); i < width; i++ {
		line += " "
	}

	drawText(r.screen, 0, y, width, styleStatus, line)

	if r.source != nil && r.source.IsPaused() {
		drawText(r.screen, len(status), y, width-len(status),
			stylePaused, "PAUSED ")
	}

	if r.notice != "" {
		x := max(width-len(r.notice)-1, 0)
		drawText(r.screen, x, y, width-x, stylePaused, r.notice)
	}
}

// project maps a coordinate pair in [-90, 90] onto a width x height area,
// north up.
func project(x, y float64, width, height int) (int, int) {
	col := int((x + 90) * float64(width-1) / coordinateSpan)
	row := int((90 - y) * float64(height-1) / coordinateSpan)

	return clamp(col, 0, width-1), clamp(row, 0, max(height-1, 0))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

// drawText puts a string on the screen, cut at maxWidth cells.
func drawText(s tcell.Screen, x, y, maxWidth int, style tcell.Style, text string) {
	i := 0
	for _, c := range text {
		if i >= maxWidth {
			return
		}

		s.SetContent(x+i, y, c, nil, style)
		i++
	}
}
