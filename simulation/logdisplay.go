package simulation

import (
	"log/slog"

	"github.com/sarchlab/flightsim/logging"
	"github.com/sarchlab/flightsim/sim"
)

// LogDisplay is a display for runs without a screen. It logs departures and
// landings at info level and every repaint at debug level.
type LogDisplay struct {
	logger *logging.Logger
}

// NewLogDisplay creates a display that writes into the logger.
func NewLogDisplay(logger *logging.Logger) *LogDisplay {
	return &LogDisplay{logger: logger}
}

// ModelAdded logs a departure.
func (d *LogDisplay) ModelAdded(m sim.Model) {
	d.logger.Info("flight departed", modelAttrs(m)...)
}

// ModelRemoved logs a landing.
func (d *LogDisplay) ModelRemoved(m sim.Model) {
	d.logger.Info("flight landed", modelAttrs(m)...)
}

// Repaint logs the time.
func (d *LogDisplay) Repaint(now sim.TimeOfDay) {
	d.logger.Debug("repaint", slog.String("sim_time", now.String()))
}

func modelAttrs(m sim.Model) []any {
	return []any{
		slog.String("flight", m.ID),
		slog.String("origin", m.Origin),
		slog.String("destination", m.Destination),
		slog.String("start", m.Start.String()),
		slog.Int("duration", m.Duration),
	}
}
