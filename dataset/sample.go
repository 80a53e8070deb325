package dataset

// Sample returns a small dataset that exercises queueing at a busy origin.
func Sample() *Dataset {
	d := New()

	locations := []struct {
		name, code string
		x, y       int
	}{
		{"Budapest", "BUD", 10, 20},
		{"Vienna", "VIE", -5, 25},
		{"Zagreb", "ZAG", -15, -10},
		{"Debrecen", "DEB", 60, 30},
		{"Belgrade", "BEG", 35, -50},
	}

	for _, l := range locations {
		if err := d.AddLocation(l.name, l.code, l.x, l.y); err != nil {
			panic(err)
		}
	}

	flights := []FlightEntry{
		{"BUD", "VIE", 0, 10, 40},
		{"BUD", "ZAG", 0, 10, 50},
		{"BUD", "DEB", 0, 12, 30},
		{"VIE", "BEG", 0, 20, 60},
		{"DEB", "BUD", 0, 30, 30},
		{"ZAG", "VIE", 0, 45, 35},
		{"BEG", "BUD", 1, 0, 45},
		{"VIE", "BUD", 1, 5, 40},
		{"BUD", "BEG", 1, 30, 50},
	}

	for _, f := range flights {
		err := d.AddFlight(f.Origin, f.Destination, f.Hour, f.Minute, f.Duration)
		if err != nil {
			panic(err)
		}
	}

	return d
}
