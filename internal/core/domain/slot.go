package domain

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"

	secondsPerDay = 24 * 60 * 60
)

// Date is a calendar day without a time zone. Internally it is anchored to
// UTC midnight so two Dates compare equal iff they name the same day.
type Date struct {
	t time.Time
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	return Date{t: t}, nil
}

// DateOf returns the calendar day of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Time() time.Time    { return d.t }
func (d Date) IsZero() bool       { return d.t.IsZero() }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }
func (d Date) String() string     { return d.t.Format(DateLayout) }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// TimeOfDay is a local wall-clock time expressed as seconds since midnight.
// Comparisons are numeric, never lexical.
type TimeOfDay int

// ParseTimeOfDay accepts HH:MM or HH:MM:SS.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second()), nil
		}
	}
	return 0, fmt.Errorf("%w: time must be HH:MM or HH:MM:SS", ErrValidation)
}

// TimeOfDayOf extracts the wall-clock part of t.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

func (t TimeOfDay) Valid() bool { return t >= 0 && t < secondsPerDay }

func (t TimeOfDay) Duration() time.Duration { return time.Duration(t) * time.Second }

// String renders HH:MM, adding :SS only when seconds are set.
func (t TimeOfDay) String() string {
	h, m, s := int(t)/3600, int(t)%3600/60, int(t)%60
	if s != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// Slot is a half-open [Start, End) interval on a single calendar day.
// Slots never cross midnight.
type Slot struct {
	Date  Date
	Start TimeOfDay
	End   TimeOfDay
}

// Validate enforces Start < End on the combined (date, time) instants.
func (s Slot) Validate() error {
	if s.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if !s.Start.Valid() || !s.End.Valid() {
		return fmt.Errorf("%w: time out of range", ErrValidation)
	}
	if !s.StartAt().Before(s.EndAt()) {
		return ErrInvalidRange
	}
	return nil
}

func (s Slot) StartAt() time.Time { return s.Date.Time().Add(s.Start.Duration()) }
func (s Slot) EndAt() time.Time   { return s.Date.Time().Add(s.End.Duration()) }

// Overlaps applies the half-open rule: [s1,e1) and [s2,e2) intersect iff
// s1 < e2 && s2 < e1. Adjacent slots do not overlap.
func (s Slot) Overlaps(o Slot) bool {
	if !s.Date.Equal(o.Date) {
		return false
	}
	return s.Start < o.End && o.Start < s.End
}

func (s Slot) String() string {
	return fmt.Sprintf("%s %s-%s", s.Date, s.Start, s.End)
}
