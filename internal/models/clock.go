package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Clock is a time of day with minute resolution, stored as minutes from
// midnight and serialized as "HH:MM".
type Clock int

// ParseClock parses "HH:MM" (24-hour) into a Clock.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Add shifts the clock by d, truncated to whole minutes. The result may
// exceed end of day; callers validate against the working window.
func (c Clock) Add(d time.Duration) Clock {
	return c + Clock(d/time.Minute)
}

// Sub returns the duration between two clock values.
func (c Clock) Sub(other Clock) time.Duration {
	return time.Duration(c-other) * time.Minute
}

// Valid reports whether the clock falls within a single day. Midnight as an
// end bound (24:00) is allowed.
func (c Clock) Valid() bool {
	return c >= 0 && c <= 24*60
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Date is a calendar day serialized as "YYYY-MM-DD". Comparisons are exact
// string matches; the system assumes a single locale.
type Date string

// ParseDate validates and normalizes a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(t.Format("2006-01-02")), nil
}

// DateOf converts a time.Time to its calendar date.
func DateOf(t time.Time) Date {
	return Date(t.Format("2006-01-02"))
}

func (d Date) String() string { return string(d) }
