package clock

import (
	"fmt"
	"time"
)

// Clock abstracts "now" so the scheduler can be driven deterministically in
// tests. Production code uses System().
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// System returns a Clock backed by the wall clock, normalized to UTC
func System() Clock {
	return systemClock{}
}

// LocalTimeLayout is how users write due times in commands
const LocalTimeLayout = "2006-01-02 15:04"

// Location resolves an IANA timezone name, falling back to UTC when the name
// is empty or unknown. Display and scheduling paths use this so a zone name
// that disappeared from tzdata cannot take the scheduler down.
func Location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate rejects timezone names that do not resolve. Empty means UTC and is
// accepted; administrative commands validate with this before storing a zone.
func Validate(name string) error {
	if name == "" {
		return nil
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("unknown timezone %q", name)
	}
	return nil
}

// ParseLocalTime interprets value ("YYYY-MM-DD HH:MM", 24h) as wall-clock
// time in the given timezone and returns the UTC instant. Daylight-saving
// shifts are handled by the location itself.
func ParseLocalTime(value, timezone string) (time.Time, error) {
	if err := Validate(timezone); err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(LocalTimeLayout, value, Location(timezone))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, use YYYY-MM-DD HH:MM (24h)", value)
	}
	return t.UTC(), nil
}

// In converts an instant to the wall-clock time of the given timezone
func In(t time.Time, timezone string) time.Time {
	return t.In(Location(timezone))
}
