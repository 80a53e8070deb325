// Package simulation controls flight simulations: it builds schedulers from a
// dataset, starts, pauses and reloads them, and wires the recorder and the
// monitor around them.
package simulation

import (
	"sync"

	"github.com/sarchlab/flightsim/config"
	"github.com/sarchlab/flightsim/dataset"
	"github.com/sarchlab/flightsim/datarecording"
	"github.com/sarchlab/flightsim/logging"
	"github.com/sarchlab/flightsim/monitoring"
	"github.com/sarchlab/flightsim/sim"
)

// A Simulation owns the dataset and the scheduler of the current run.
//
// Control methods are serialized. Readers never wait for a control method, so
// a display may read the simulation from within its callbacks.
type Simulation struct {
	id      string
	config  config.Config
	display sim.DisplaySink
	logger  *logging.Logger
	hooks   []sim.Hook

	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	monitorURL   string

	controlLock sync.Mutex
	terminated  bool

	stateLock sync.Mutex
	dataset   *dataset.Dataset
	scheduler *sim.Scheduler
	progress  *monitoring.ProgressBar
	paused    bool
}

// ID returns the ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetDataRecorder returns the data recorder used in the simulation, or nil if
// the simulation is not recorded.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation, or nil.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address of the monitor, or an empty string.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// Start runs the simulation. The first call creates a scheduler from the
// dataset; later calls resume the clock.
func (s *Simulation) Start() {
	s.controlLock.Lock()
	defer s.controlLock.Unlock()

	if s.terminated {
		return
	}

	s.stateLock.Lock()
	s.paused = false
	scheduler := s.scheduler
	s.stateLock.Unlock()

	if scheduler != nil {
		scheduler.Clock().Go()
		return
	}

	s.startRun(false)
}

// StartPaused creates the scheduler of the first run with its clock
// stopped, so that the locations are shown but time does not pass until
// Continue or Start. It does nothing once the simulation has been started.
func (s *Simulation) StartPaused() {
	s.controlLock.Lock()
	defer s.controlLock.Unlock()

	if s.terminated || s.Scheduler() != nil {
		return
	}

	s.stateLock.Lock()
	s.paused = true
	s.stateLock.Unlock()

	s.startRun(true)
}

// Pause stops the clock. The simulation keeps its state.
func (s *Simulation) Pause() {
	s.controlLock.Lock()
	defer s.controlLock.Unlock()

	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	s.paused = true
	if s.scheduler != nil {
		s.scheduler.Clock().Pause()
	}
}

// Continue resumes a paused clock. It does not start a simulation that has
// not been started.
func (s *Simulation) Continue() {
	s.controlLock.Lock()
	defer s.controlLock.Unlock()

	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	s.paused = false
	if s.scheduler != nil {
		s.scheduler.Clock().Go()
	}
}

// Reset sets the clock back to midnight. Flights that have departed stay
// departed.
func (s *Simulation) Reset() {
	s.controlLock.Lock()
	defer s.controlLock.Unlock()

	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	if s.scheduler != nil {
		s.scheduler.Clock().Reset()
	}
}

// IsPaused tells if the simulation has been paused.
func (s *Simulation) IsPaused() bool {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	return s.paused
}

// IsStarted tells if a scheduler has been created.
func (s *Simulation) IsStarted() bool {
	return s.Scheduler() != nil
}

// Scheduler returns the scheduler of the current run, or nil.
func (s *Simulation) Scheduler() *sim.Scheduler {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	return s.scheduler
}

// Dataset returns a copy of the dataset the simulation runs on.
func (s *Simulation) Dataset() *dataset.Dataset {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	d := dataset.New()
	d.Replace(s.dataset)

	return d
}

// Load replaces the dataset. If the simulation has been started, the current
// run is finished and a new one starts from midnight, paused if the
// simulation was paused.
func (s *Simulation) Load(ds *dataset.Dataset) {
	s.controlLock.Lock()
	defer s.controlLock.Unlock()

	if s.terminated {
		return
	}

	replacement := dataset.New()
	replacement.Replace(ds)

	s.stateLock.Lock()
	s.dataset = replacement
	paused := s.paused
	s.stateLock.Unlock()

	if !s.finishRun() {
		return
	}

	s.startRun(paused)
}

// Now returns the simulated time, or midnight before the first start.
func (s *Simulation) Now() sim.TimeOfDay {
	if scheduler := s.Scheduler(); scheduler != nil {
		return scheduler.Now()
	}

	return 0
}

// Visible returns the visible models. Before the first start, only the
// locations are visible.
func (s *Simulation) Visible() []sim.Model {
	if scheduler := s.Scheduler(); scheduler != nil {
		return scheduler.Visible()
	}

	s.stateLock.Lock()
	locations := s.dataset.Locations()
	s.stateLock.Unlock()

	models := make([]sim.Model, 0, len(locations))
	for _, l := range locations {
		models = append(models, sim.Model{
			Kind: sim.KindLocation,
			ID:   l.Code,
			Name: l.Name,
			X:    float64(l.X),
			Y:    float64(l.Y),
		})
	}

	return models
}

// Locations returns the run state of the locations, or nil before the first
// start.
func (s *Simulation) Locations() []sim.LocationStatus {
	if scheduler := s.Scheduler(); scheduler != nil {
		return scheduler.Locations()
	}

	return nil
}

// Location returns the run state of a location.
func (s *Simulation) Location(code string) (sim.LocationStatus, bool) {
	if scheduler := s.Scheduler(); scheduler != nil {
		return scheduler.Location(dataset.NormalizeCode(code))
	}

	return sim.LocationStatus{}, false
}

// Terminate finishes the current run, flushes the recording and stops the
// monitor. The simulation cannot be restarted.
func (s *Simulation) Terminate() {
	s.controlLock.Lock()
	defer s.controlLock.Unlock()

	if s.terminated {
		return
	}

	s.terminated = true
	s.finishRun()

	if s.dataRecorder != nil {
		s.dataRecorder.Close()
	}

	if s.monitor != nil {
		s.monitor.StopServer()
	}

	s.logger.Info("simulation terminated", "id", s.id)
}

func (s *Simulation) startRun(paused bool) {
	s.stateLock.Lock()
	locations, flights := s.dataset.Seed()
	s.stateLock.Unlock()

	b := sim.MakeSchedulerBuilder().
		WithTickInterval(s.config.TickInterval).
		WithMinutesPerTick(s.config.MinutesPerTick).
		WithSpacingThreshold(s.config.Spacing).
		WithDisplay(s.display).
		WithInitialPause(paused).
		WithLogger(s.logger.Slog().With("simulation", s.id))

	for _, h := range s.hooks {
		b = b.WithHook(h)
	}

	var progress *monitoring.ProgressBar
	if s.monitor != nil {
		progress = s.monitor.CreateProgressBar("Flights", uint64(len(flights)))
		b = b.WithHook(monitoring.NewFlightProgress(progress))
	}

	scheduler := b.Build(locations, flights)

	s.stateLock.Lock()
	s.scheduler = scheduler
	s.progress = progress
	s.stateLock.Unlock()
}

// finishRun stops the current run and tells if there was one.
func (s *Simulation) finishRun() bool {
	s.stateLock.Lock()
	scheduler := s.scheduler
	progress := s.progress
	s.scheduler = nil
	s.progress = nil
	s.stateLock.Unlock()

	if scheduler == nil {
		return false
	}

	scheduler.Finish()

	if progress != nil {
		s.monitor.CompleteProgressBar(progress)
	}

	return true
}
