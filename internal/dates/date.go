// Package dates holds the date-valued leaves of production records.
//
// A Date is either empty, a parsed time, or an unparsed string that came out
// of storage in a shape no known layout accepts. Unparsed values are kept
// verbatim so a bad cell in an old record never blocks editing or printing.
package dates

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	// DayLayout is the canonical persisted form of date-only fields.
	DayLayout = "2006-01-02"
	// InstantLayout is the canonical persisted form of time-of-day fields.
	InstantLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Zone is the local calendar date-only fields are read in. An instant sent
// for a date-only field keeps the day it names in this zone.
var Zone = time.FixedZone("IST", 5*3600+1800)

var dayLayouts = []string{
	DayLayout,
	"02-01-2006",
	"02.01.2006",
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999Z07",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05",
}

type state uint8

const (
	stateEmpty state = iota
	stateParsed
	stateUnparsed
)

type Date struct {
	t     time.Time
	raw   string
	state state
	day   bool
}

// Parse never fails. Unknown shapes come back as Unparsed(s).
func Parse(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{t: t, state: stateParsed, day: true}
		}
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{t: t, state: stateParsed}
		}
	}
	return Unparsed(s)
}

// Day builds a date-only value at UTC midnight.
func Day(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), state: stateParsed, day: true}
}

// At wraps an instant.
func At(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	return Date{t: t, state: stateParsed}
}

func Unparsed(raw string) Date {
	if raw == "" {
		return Date{}
	}
	return Date{raw: raw, state: stateUnparsed}
}

func (d Date) IsZero() bool { return d.state == stateEmpty }

func (d Date) IsUnparsed() bool { return d.state == stateUnparsed }

func (d Date) Time() (time.Time, bool) {
	return d.t, d.state == stateParsed
}

// Raw returns the original text of an unparsed value.
func (d Date) Raw() (string, bool) {
	return d.raw, d.state == stateUnparsed
}

// FormatDay renders the persisted date-only form.
func (d Date) FormatDay() string {
	switch d.state {
	case stateParsed:
		if !d.day {
			return d.t.In(Zone).Format(DayLayout)
		}
		return d.t.Format(DayLayout)
	case stateUnparsed:
		return d.raw
	}
	return ""
}

// FormatInstant renders the persisted instant form, always in UTC.
func (d Date) FormatInstant() string {
	switch d.state {
	case stateParsed:
		return d.t.UTC().Format(InstantLayout)
	case stateUnparsed:
		return d.raw
	}
	return ""
}

// Display formats a parsed value with layout and returns unparsed text as is.
func (d Date) Display(layout string) string {
	switch d.state {
	case stateParsed:
		return d.t.Format(layout)
	case stateUnparsed:
		return d.raw
	}
	return ""
}

func (d Date) String() string {
	if d.day {
		return d.FormatDay()
	}
	return d.FormatInstant()
}

func (d Date) Equal(o Date) bool {
	if d.state != o.state {
		return false
	}
	switch d.state {
	case stateParsed:
		return d.t.Equal(o.t)
	case stateUnparsed:
		return d.raw == o.raw
	}
	return true
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// numbers and other scalars are kept as text
		*d = Unparsed(strings.TrimSpace(string(b)))
		return nil
	}
	*d = Parse(s)
	return nil
}

// AsDay marks a parsed value as date-only so it renders in DayLayout.
func (d Date) AsDay() Date {
	if d.state == stateParsed && !d.day {
		t := d.t.In(Zone)
		d.t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		d.day = true
	}
	return d
}

// AsInstant marks a parsed value as an instant so it renders in InstantLayout.
func (d Date) AsInstant() Date {
	d.day = false
	return d
}

// DisplayIn is Display with instants shown in loc. Date-only values are
// calendar days and are not shifted.
func (d Date) DisplayIn(layout string, loc *time.Location) string {
	if d.state == stateParsed && !d.day && loc != nil {
		return d.t.In(loc).Format(layout)
	}
	return d.Display(layout)
}
