package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage layout of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar day without time-of-day, serialised as yyyy-MM-dd.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses yyyy-MM-dd.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for literals; it panics on malformed input.
func MustParseDate(raw string) Date {
	d, err := ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string { return d.Format(DateLayout) }

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date { return DateOf(d.Time.AddDate(0, 0, n)) }

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool { return d.Time.After(other.Time) }

// Equal compares calendar days.
func (d Date) Equal(other Date) bool { return d.Time.Equal(other.Time) }

// IsoWeekday returns 1 for Monday through 7 for Sunday.
func (d Date) IsoWeekday() int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// IsWeekend reports Saturday and Sunday.
func (d Date) IsWeekend() bool { return d.IsoWeekday() >= 6 }

// WeekStart returns the Monday of d's week.
func (d Date) WeekStart() Date { return d.AddDays(1 - d.IsoWeekday()) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan accepts DATE columns decoded by lib/pq as time.Time or text.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	case nil:
		*d = Date{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

func (d *Date) scanString(raw string) error {
	if len(raw) > len(DateLayout) {
		raw = raw[:len(DateLayout)]
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as yyyy-MM-dd.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// ClockTime is a time of day in whole minutes since midnight, serialised as HH:mm.
type ClockTime int

// Clock builds a ClockTime from hours and minutes.
func Clock(hour, minute int) ClockTime { return ClockTime(hour*60 + minute) }

// ParseClock parses HH:mm or HH:mm:ss.
func ParseClock(raw string) (ClockTime, error) {
	raw = strings.TrimSpace(raw)
	var h, m, s int
	var err error
	switch strings.Count(raw, ":") {
	case 1:
		_, err = fmt.Sscanf(raw, "%d:%d", &h, &m)
	case 2:
		_, err = fmt.Sscanf(raw, "%d:%d:%d", &h, &m, &s)
	default:
		err = fmt.Errorf("expected HH:mm")
	}
	if err != nil || h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid time %q", raw)
	}
	return Clock(h, m), nil
}

// MustParseClock is ParseClock for literals.
func MustParseClock(raw string) ClockTime {
	c, err := ParseClock(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// Minutes returns the minutes since midnight.
func (c ClockTime) Minutes() int { return int(c) }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseClock(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Scan accepts TIME columns, which lib/pq returns as text.
func (c *ClockTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return c.scanString(string(v))
	case string:
		return c.scanString(v)
	case time.Time:
		*c = Clock(v.Hour(), v.Minute())
		return nil
	case int64:
		*c = ClockTime(v)
		return nil
	}
	return fmt.Errorf("cannot scan %T into ClockTime", src)
}

func (c *ClockTime) scanString(raw string) error {
	parsed, err := ParseClock(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value stores the time as HH:mm:00.
func (c ClockTime) Value() (driver.Value, error) {
	return c.String() + ":00", nil
}

// TimeWindow is a half-open [Start, End) interval within one day.
type TimeWindow struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// Valid reports End > Start.
func (w TimeWindow) Valid() bool { return w.End > w.Start }

// Overlaps reports whether the two windows share at least one minute.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start < other.End && other.Start < w.End
}

// Contains reports whether other fits entirely inside w.
func (w TimeWindow) Contains(other TimeWindow) bool {
	return w.Start <= other.Start && other.End <= w.End
}

func (w TimeWindow) String() string { return w.Start.String() + "-" + w.End.String() }
