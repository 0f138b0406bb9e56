// Package calendar holds the date type exchanged with the library API.
package calendar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Layout is the wire and display format of a Date.
const Layout = "2006-01-02"

// layouts accepted when reading API payloads and form input.
var layouts = []string{
	Layout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339,
	time.RFC3339Nano,
}

// Date is a calendar day. The zero value is an unset date and encodes as null.
type Date struct {
	time.Time
}

// NewDate returns the date of t in UTC, without its clock part.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Parse reads a date in any of the accepted layouts.
func Parse(s string) (Date, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}

// MustParse is Parse for literals.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Today is the current UTC date.
func Today() Date {
	return NewDate(time.Now())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(Layout)
}

// Before compares two days.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
