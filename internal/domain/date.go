package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const dateLayout = "2006-01-02"

// DateOnly is a calendar day with no time-of-day or zone. Two instants
// belong to the same business day when DateOf yields equal values for the
// configured location.
type DateOnly struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t as observed in loc.
func DateOf(t time.Time, loc *time.Location) DateOnly {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return DateOnly{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (DateOnly, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return DateOnly{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t, nil), nil
}

func (d DateOnly) IsZero() bool { return d == DateOnly{} }

func (d DateOnly) Equal(o DateOnly) bool { return d == o }

func (d DateOnly) Before(o DateOnly) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Midnight returns the start of the day in loc.
func (d DateOnly) Midnight(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d DateOnly) AddDays(n int) DateOnly {
	return DateOf(d.Midnight(time.UTC).AddDate(0, 0, n), time.UTC)
}

func (d DateOnly) AddMonths(n int) DateOnly {
	return DateOf(d.Midnight(time.UTC).AddDate(0, n, 0), time.UTC)
}

func (d DateOnly) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Midnight(time.UTC).Format(dateLayout)
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = DateOnly{}
		return nil
	}
	// Legacy records sometimes carry a full ISO timestamp where a day is expected.
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Timestamp is an instant that tolerates the legacy encodings written by
// the browser app: full ISO strings and bare YYYY-MM-DD days (read as UTC
// midnight, matching how the browser parsed them).
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}
