// Package monitoring exposes a running simulation over HTTP so that it can be
// observed and controlled from a browser.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/sarchlab/flightsim/monitoring/web"
	"github.com/sarchlab/flightsim/sim"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Controllable is a simulation that the monitor can observe and control.
type Controllable interface {
	Pause()
	Continue()
	Reset()
	IsPaused() bool
	Now() sim.TimeOfDay
	Visible() []sim.Model
	Locations() []sim.LocationStatus
	Location(code string) (sim.LocationStatus, bool)
}

// Monitor can turn a simulation into a server and allows external monitoring
// and controlling of the simulation.
type Monitor struct {
	simulation Controllable
	portNumber int
	server     *http.Server

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterSimulation registers the simulation to monitor.
func (m *Monitor) RegisterSimulation(s Controllable) {
	m.simulation = s
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        sim.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	fServer := http.FileServer(web.GetAssets())
	r.HandleFunc("/api/pause", m.pause).Methods(http.MethodPost)
	r.HandleFunc("/api/continue", m.continueSimulation).Methods(http.MethodPost)
	r.HandleFunc("/api/reset", m.reset).Methods(http.MethodPost)
	r.HandleFunc("/api/now", m.now).Methods(http.MethodGet)
	r.HandleFunc("/api/visible", m.visible).Methods(http.MethodGet)
	r.HandleFunc("/api/locations", m.listLocations).Methods(http.MethodGet)
	r.HandleFunc("/api/location/{code}", m.locationDetails).Methods(http.MethodGet)
	r.HandleFunc("/api/progress", m.listProgressBars).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)
	r.PathPrefix("/").Handler(fServer)

	return r
}

// StartServer starts the monitor as a web server and returns its URL. The
// server listens on the configured port, or on a random one.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	server := &http.Server{
		Handler:           m.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	m.server = server

	go func() {
		err := server.Serve(listener)
		if !errors.Is(err, http.ErrServerClosed) {
			dieOnErr(err)
		}
	}()

	return url
}

// StopServer shuts the web server down.
func (m *Monitor) StopServer() {
	if m.server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = m.server.Shutdown(ctx)
	m.server = nil
}

func (m *Monitor) simulationOr503(w http.ResponseWriter) Controllable {
	if m.simulation == nil {
		http.Error(w, "No simulation registered",
			http.StatusServiceUnavailable)
	}

	return m.simulation
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	s := m.simulationOr503(w)
	if s == nil {
		return
	}

	s.Pause()
	m.writeState(w, s)
}

func (m *Monitor) continueSimulation(w http.ResponseWriter, _ *http.Request) {
	s := m.simulationOr503(w)
	if s == nil {
		return
	}

	s.Continue()
	m.writeState(w, s)
}

func (m *Monitor) reset(w http.ResponseWriter, _ *http.Request) {
	s := m.simulationOr503(w)
	if s == nil {
		return
	}

	s.Reset()
	m.writeState(w, s)
}

type nowRsp struct {
	Now    int    `json:"now"`
	Time   string `json:"time"`
	Paused bool   `json:"paused"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	s := m.simulationOr503(w)
	if s == nil {
		return
	}

	m.writeState(w, s)
}

func (m *Monitor) writeState(w http.ResponseWriter, s Controllable) {
	now := s.Now()

	writeJSON(w, nowRsp{
		Now:    now.Minutes(),
		Time:   now.String(),
		Paused: s.IsPaused(),
	})
}

func (m *Monitor) visible(w http.ResponseWriter, _ *http.Request) {
	s := m.simulationOr503(w)
	if s == nil {
		return
	}

	writeJSON(w, s.Visible())
}

func (m *Monitor) listLocations(w http.ResponseWriter, _ *http.Request) {
	s := m.simulationOr503(w)
	if s == nil {
		return
	}

	writeJSON(w, s.Locations())
}

func (m *Monitor) locationDetails(w http.ResponseWriter, r *http.Request) {
	s := m.simulationOr503(w)
	if s == nil {
		return
	}

	code := mux.Vars(r)["code"]

	location, found := s.Location(code)
	if !found {
		http.Error(w, "Location not found", http.StatusNotFound)
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&location)
	serializer.SetMaxDepth(2)

	buf := bytes.NewBuffer(nil)
	if err := serializer.Serialize(buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressBarStatus, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.status())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()

	process, err := process.NewProcess(int32(pid))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := process.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memorySize, err := process.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(bytes)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
