package simulation

import (
	"log/slog"
	"strings"

	"github.com/rs/xid"
	"github.com/sarchlab/flightsim/config"
	"github.com/sarchlab/flightsim/dataset"
	"github.com/sarchlab/flightsim/datarecording"
	"github.com/sarchlab/flightsim/logging"
	"github.com/sarchlab/flightsim/monitoring"
	"github.com/sarchlab/flightsim/sim"
)

// Builder can be used to build a simulation.
type Builder struct {
	config      config.Config
	display     sim.DisplaySink
	logger      *logging.Logger
	monitorOn   bool
	monitorPort int
	recordOn    bool
	recordPath  string
	hooks       []sim.Hook
}

// MakeBuilder creates a new builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		config:    config.Default(),
		monitorOn: true,
	}
}

// WithConfig sets the cadence, the monitor port and the recording path from
// a configuration.
func (b Builder) WithConfig(c config.Config) Builder {
	b.config = c
	b.monitorPort = c.MonitorPort

	if c.RecordPath != "" {
		b.recordOn = true
		b.recordPath = c.RecordPath
	}

	return b
}

// WithDisplay sets the sink that is notified of what becomes visible.
func (b Builder) WithDisplay(d sim.DisplaySink) Builder {
	b.display = d
	return b
}

// WithLogger sets the logger of the simulation.
func (b Builder) WithLogger(l *logging.Logger) Builder {
	b.logger = l
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithRecording records the dispatch decisions into <path>.sqlite3. The
// extension is added if missing. With an empty path, a unique name is
// generated.
func (b Builder) WithRecording(path string) Builder {
	b.recordOn = true
	b.recordPath = path

	return b
}

// WithHook registers a hook on every scheduler of the simulation.
func (b Builder) WithHook(h sim.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], h)
	return b
}

func (b Builder) parametersMustBeValid() {
	if err := b.config.Validate(); err != nil {
		panic(err)
	}

	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}
}

// Build builds a simulation of the dataset. The dataset is copied. The
// simulation does not run until it is started.
func (b Builder) Build(ds *dataset.Dataset) *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:      xid.New().String(),
		config:  b.config,
		display: b.display,
		logger:  b.logger,
		dataset: dataset.New(),
	}

	s.dataset.Replace(ds)

	if s.display == nil {
		s.display = sim.NopDisplay{}
	}

	s.hooks = append(s.hooks, sim.NewDispatchLogger(
		s.logger.Slog().With("simulation", s.id), slog.LevelDebug))
	s.hooks = append(s.hooks, b.hooks...)

	if b.recordOn {
		outputPath := strings.TrimSuffix(b.recordPath, datarecording.Extension)
		if outputPath == "" {
			outputPath = "flightsim_run_" + s.id
		}

		s.dataRecorder = datarecording.NewDataRecorder(outputPath)
		s.hooks = append(s.hooks,
			datarecording.NewDepartureRecorder(s.dataRecorder))
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}

		s.monitor.RegisterSimulation(s)
		s.monitorURL = s.monitor.StartServer()
	}

	s.logger.Info("simulation built",
		"id", s.id,
		"monitor", s.monitorURL,
		"recording", b.recordOn)

	return s
}
