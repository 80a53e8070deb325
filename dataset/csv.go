package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Row kinds of the CSV format.
const (
	LocationRow = "Airport"
	FlightRow   = "Flight"
)

const (
	locationFields = 5
	flightFields   = 6
)

// Load reads a dataset from CSV. Rows are either
//
//	Airport,<name>,<code>,<x>,<y>
//	Flight,<origin>,<destination>,<hour>,<minute>,<duration>
//
// Flights can only refer to locations declared on earlier lines. The first
// invalid row stops the load; the returned error carries its line number.
func Load(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	d := New()

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRow, err)
		}

		line, _ := reader.FieldPos(0)

		if err := d.addRecord(record); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}

	return d, nil
}

// LoadFile reads a dataset from a CSV file.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}

func (d *Dataset) addRecord(record []string) error {
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	switch record[0] {
	case LocationRow:
		return d.addLocationRecord(record)
	case FlightRow:
		return d.addFlightRecord(record)
	default:
		return fmt.Errorf("row type %q is not %s or %s: %w",
			record[0], LocationRow, FlightRow, ErrInvalidRow)
	}
}

func (d *Dataset) addLocationRecord(record []string) error {
	if len(record) != locationFields {
		return fmt.Errorf("%s row must have %d fields: %w",
			LocationRow, locationFields, ErrInvalidRow)
	}

	x, errX := strconv.Atoi(record[3])
	y, errY := strconv.Atoi(record[4])

	if errX != nil || errY != nil {
		return fmt.Errorf("location %s: %w", record[2], ErrInvalidCoordinate)
	}

	return d.AddLocation(record[1], record[2], x, y)
}

func (d *Dataset) addFlightRecord(record []string) error {
	if len(record) != flightFields {
		return fmt.Errorf("%s row must have %d fields: %w",
			FlightRow, flightFields, ErrInvalidRow)
	}

	hour, errH := strconv.ParseUint(record[3], 10, 31)
	minute, errM := strconv.ParseUint(record[4], 10, 31)

	if errH != nil || errM != nil {
		return fmt.Errorf("%s:%s: %w", record[3], record[4], ErrInvalidTime)
	}

	duration, err := strconv.Atoi(record[5])
	if err != nil {
		return fmt.Errorf("%q: %w", record[5], ErrInvalidDuration)
	}

	return d.AddFlight(record[1], record[2],
		int(hour), int(minute), duration)
}

// Save writes the dataset as CSV, locations first, then flights.
func (d *Dataset) Save(w io.Writer) error {
	writer := csv.NewWriter(w)

	for _, l := range d.locations {
		err := writer.Write([]string{
			LocationRow,
			l.Name,
			l.Code,
			strconv.Itoa(l.X),
			strconv.Itoa(l.Y),
		})
		if err != nil {
			return err
		}
	}

	for _, f := range d.flights {
		err := writer.Write([]string{
			FlightRow,
			f.Origin,
			f.Destination,
			strconv.Itoa(f.Hour),
			strconv.Itoa(f.Minute),
			strconv.Itoa(f.Duration),
		})
		if err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}

// SaveFile writes the dataset into a CSV file, replacing its content.
func (d *Dataset) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := d.Save(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
