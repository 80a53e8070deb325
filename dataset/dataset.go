// Package dataset stores the locations and flights that a simulation is
// seeded with, and loads and saves them as CSV.
package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sarchlab/flightsim/sim"
)

// Code length and coordinate range of a location.
const (
	CodeLength     = 3
	MinCoordinate  = -90
	MaxCoordinate  = 90
	minutesPerHour = 60
)

// Validation errors. Errors returned by this package wrap one of them.
var (
	ErrInvalidRow        = errors.New("invalid row")
	ErrDuplicateCode     = errors.New("duplicate location code")
	ErrUnknownLocation   = errors.New("unknown location")
	ErrInvalidCode       = errors.New("location codes must be three characters")
	ErrInvalidCoordinate = errors.New("coordinates must be integers between -90 and 90")
	ErrInvalidTime       = errors.New("invalid start time")
	ErrInvalidDuration   = errors.New("duration must be greater than 0")
)

// FlightEntry is a flight as entered by the user, before it is handed to a
// scheduler.
type FlightEntry struct {
	Origin      string
	Destination string
	Hour        int
	Minute      int
	Duration    int
}

// Dataset is an ordered collection of locations and the flights between
// them. The zero value is an empty dataset. A Dataset is not safe for
// concurrent mutation.
type Dataset struct {
	locations []sim.LocationInfo
	index     map[string]int
	flights   []FlightEntry
}

// New creates an empty dataset.
func New() *Dataset {
	return &Dataset{}
}

// NormalizeCode trims and upper-cases a location code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// AddLocation validates and appends a location. The code is normalized
// before it is stored.
func (d *Dataset) AddLocation(name, code string, x, y int) error {
	code = NormalizeCode(code)

	if len([]rune(code)) != CodeLength {
		return fmt.Errorf("location %q: %w", code, ErrInvalidCode)
	}

	if !validCoordinate(x) || !validCoordinate(y) {
		return fmt.Errorf("location %s at (%d, %d): %w",
			code, x, y, ErrInvalidCoordinate)
	}

	if _, found := d.index[code]; found {
		return fmt.Errorf("location %s: %w", code, ErrDuplicateCode)
	}

	if d.index == nil {
		d.index = make(map[string]int)
	}

	d.index[code] = len(d.locations)
	d.locations = append(d.locations, sim.LocationInfo{
		Code: code,
		Name: strings.TrimSpace(name),
		X:    x,
		Y:    y,
	})

	return nil
}

// AddFlight validates and appends a flight. Both locations must have been
// added before.
func (d *Dataset) AddFlight(origin, destination string, hour, minute, duration int) error {
	origin = NormalizeCode(origin)
	destination = NormalizeCode(destination)

	for _, code := range []string{origin, destination} {
		if _, found := d.index[code]; !found {
			return fmt.Errorf("location %q: %w", code, ErrUnknownLocation)
		}
	}

	if hour < 0 || minute < 0 || minute >= minutesPerHour {
		return fmt.Errorf("%d:%d: %w", hour, minute, ErrInvalidTime)
	}

	if duration <= 0 {
		return fmt.Errorf("%d minutes: %w", duration, ErrInvalidDuration)
	}

	d.flights = append(d.flights, FlightEntry{
		Origin:      origin,
		Destination: destination,
		Hour:        hour,
		Minute:      minute,
		Duration:    duration,
	})

	return nil
}

// FindByCode returns the location with the given code.
func (d *Dataset) FindByCode(code string) (sim.LocationInfo, bool) {
	i, found := d.index[NormalizeCode(code)]
	if !found {
		return sim.LocationInfo{}, false
	}

	return d.locations[i], true
}

// Locations returns a copy of the locations in the order they were added.
func (d *Dataset) Locations() []sim.LocationInfo {
	locations := make([]sim.LocationInfo, len(d.locations))
	copy(locations, d.locations)

	return locations
}

// Flights returns a copy of the flights in the order they were added.
func (d *Dataset) Flights() []FlightEntry {
	flights := make([]FlightEntry, len(d.flights))
	copy(flights, d.flights)

	return flights
}

// Len returns the number of locations and the number of flights.
func (d *Dataset) Len() (locations, flights int) {
	return len(d.locations), len(d.flights)
}

// Clear removes everything from the dataset.
func (d *Dataset) Clear() {
	d.locations = nil
	d.index = nil
	d.flights = nil
}

// Replace makes the dataset a copy of other.
func (d *Dataset) Replace(other *Dataset) {
	d.Clear()

	d.locations = other.Locations()
	d.flights = other.Flights()
	d.index = make(map[string]int, len(d.locations))

	for i, l := range d.locations {
		d.index[l.Code] = i
	}
}

// Seed returns what a scheduler is built from. Every call creates flights
// with new IDs.
func (d *Dataset) Seed() ([]sim.LocationInfo, []sim.Flight) {
	flights := make([]sim.Flight, 0, len(d.flights))
	for _, f := range d.flights {
		flights = append(flights, sim.NewFlight(
			f.Origin, f.Destination, f.Hour, f.Minute, f.Duration))
	}

	return d.Locations(), flights
}

func validCoordinate(c int) bool {
	return c >= MinCoordinate && c <= MaxCoordinate
}
