package sim

import "fmt"

// MinutesPerHour is the number of simulated minutes in a simulated hour.
const MinutesPerHour = 60

// MinutesPerDay is the number of simulated minutes in a simulated day.
const MinutesPerDay = 24 * MinutesPerHour

// TimeOfDay is a simulated time, counted in minutes since simulated midnight.
//
// The clock never wraps at the end of the day. A run that lasts past
// midnight keeps counting (24h:10m, 25h:00m, ...), so a flight whose window
// crosses midnight stays comparable with the clock.
type TimeOfDay int

// MakeTimeOfDay creates a TimeOfDay from an hour and a minute.
func MakeTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*MinutesPerHour + minute)
}

// Hour returns the hour part of the time.
func (t TimeOfDay) Hour() int {
	return int(t) / MinutesPerHour
}

// Minute returns the minute part of the time, in [0, 59].
func (t TimeOfDay) Minute() int {
	return int(t) % MinutesPerHour
}

// Add returns the time that is the given number of minutes later.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

// Minutes returns the number of minutes since simulated midnight.
func (t TimeOfDay) Minutes() int {
	return int(t)
}

// DayMinutes returns the time folded into a single day, in [0, 1440).
func (t TimeOfDay) DayMinutes() int {
	m := int(t) % MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}

	return m
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%dh:%02dm", t.Hour(), t.Minute())
}
