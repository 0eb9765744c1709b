package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Clock is a time of day expressed in minutes since midnight
type Clock int

// At builds a Clock from hours and minutes
func At(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

var clockLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3 PM", "3PM"}

// ParseClock accepts 24-hour ("13:30") and 12-hour ("1:30 PM") forms
func ParseClock(s string) (Clock, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return At(t.Hour(), t.Minute()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day: %q", s)
}

// Hour returns the hour component
func (c Clock) Hour() int { return int(c) / 60 }

// Minute returns the minute component
func (c Clock) Minute() int { return int(c) % 60 }

// Sub returns the duration c - other
func (c Clock) Sub(other Clock) time.Duration {
	return time.Duration(c-other) * time.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Date is a calendar day. The zero value means the session is undated.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

var dateLayouts = []string{dateLayout, "2-1-2006", "2/1/2006"}

// NewDate returns the UTC calendar day y-m-d
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts ISO dates as well as d-m-yyyy and d/m/yyyy
func ParseDate(s string) (Date, error) {
	v := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date: %q", s)
}

// AddDays shifts the date by n calendar days
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time.AddDate(0, 0, n))
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var weekdayNames = map[string]time.Weekday{
	"sat": time.Saturday, "saturday": time.Saturday, "السبت": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday, "الأحد": time.Sunday, "الاحد": time.Sunday,
	"mon": time.Monday, "monday": time.Monday, "الإثنين": time.Monday, "الاثنين": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday, "الثلاثاء": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday, "الأربعاء": time.Wednesday, "الاربعاء": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday, "الخميس": time.Thursday,
	"fri": time.Friday, "friday": time.Friday, "الجمعة": time.Friday,
}

// ParseWeekday accepts English names or abbreviations and Arabic names
func ParseWeekday(s string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimSpace(strings.TrimPrefix(v, "يوم"))
	if d, ok := weekdayNames[v]; ok {
		return d, nil
	}
	return time.Sunday, fmt.Errorf("unknown day: %q", s)
}

// Weekdays is a set of days of the week
type Weekdays []time.Weekday

// ParseWeekdays splits a comma separated list of day names
func ParseWeekdays(s string) (Weekdays, error) {
	var days Weekdays
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '،' || r == ';' }) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, err := ParseWeekday(part)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, nil
}

// Contains reports whether d is in the set
func (w Weekdays) Contains(d time.Weekday) bool {
	for _, day := range w {
		if day == d {
			return true
		}
	}
	return false
}

func (w Weekdays) MarshalJSON() ([]byte, error) {
	names := make([]string, len(w))
	for i, d := range w {
		names[i] = d.String()
	}
	return json.Marshal(names)
}

// UnmarshalJSON accepts an array of names or weekday numbers, or one comma
// separated string.
func (w *Weekdays) UnmarshalJSON(data []byte) error {
	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		days, err := ParseWeekdays(joined)
		if err != nil {
			return err
		}
		*w = days
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	days := make(Weekdays, 0, len(raw))
	for _, item := range raw {
		var n int
		if err := json.Unmarshal(item, &n); err == nil {
			if n < 0 || n > 6 {
				return fmt.Errorf("weekday out of range: %d", n)
			}
			days = append(days, time.Weekday(n))
			continue
		}
		var name string
		if err := json.Unmarshal(item, &name); err != nil {
			return err
		}
		d, err := ParseWeekday(name)
		if err != nil {
			return err
		}
		days = append(days, d)
	}
	*w = days
	return nil
}
