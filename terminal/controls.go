package terminal

import (
	"context"

	"github.com/gdamore/tcell/v2"
)

// Controls is what the keyboard can do to a simulation.
type Controls interface {
	Start()
	Pause()
	Continue()
	Reset()
	IsPaused() bool
	IsStarted() bool

	// UserAction is called on every key press.
	UserAction()
}

// Run handles the key presses on the screen until the user quits or the
// context is cancelled. Space toggles pause, s starts, r resets, q or Esc
// quits.
func (r *Renderer) Run(ctx context.Context, c Controls) error {
	stop := context.AfterFunc(ctx, func() {
		_ = r.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	r.Redraw()

	for {
		if ctx.Err() != nil {
			return nil
		}

		ev := r.screen.PollEvent()
		if ev == nil {
			return nil
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			r.screen.Sync()
			r.Redraw()
		case *tcell.EventKey:
			c.UserAction()

			if quit := handleKey(ev, c); quit {
				return nil
			}

			r.Redraw()
		}
	}
}

func handleKey(ev *tcell.EventKey, c Controls) (quit bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
	default:
		return false
	}

	switch ev.Rune() {
	case 'q', 'Q':
		return true
	case ' ':
		togglePause(c)
	case 's', 'S':
		c.Start()
	case 'r', 'R':
		c.Reset()
	}

	return false
}

func togglePause(c Controls) {
	switch {
	case !c.IsStarted():
		c.Start()
	case c.IsPaused():
		c.Continue()
	default:
		c.Pause()
	}
}
