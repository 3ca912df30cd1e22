// Package schedule implements month-granularity recurrence expansion for
// fixed expenses and fixed savings. A recurring definition carries a
// scheduled day of month (1-31) and an inclusive start/end month range;
// Expand turns that into one concrete calendar date per covered month,
// clamping the day to the month's actual length so a day-31 schedule never
// fails or rolls over on short months.
//
// All dates are calendar dates at midnight UTC. "Today" comparisons across
// the engine use the UTC calendar date so the set of rows considered past
// or future never depends on server locale.
package schedule

import (
	"fmt"
	"time"
)

// MonthFormat is the wire format for month-granularity values.
const MonthFormat = "2006-01"

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

// Month represents a calendar month with no day component.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a "YYYY-MM" string into a Month.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthFormat, s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q, want format %q: %w", s, MonthFormat, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MustParseMonth is like ParseMonth but panics on error. For tests and constants.
func MustParseMonth(s string) Month {
	m, err := ParseMonth(s)
	if err != nil {
		panic(err.Error())
	}
	return m
}

// MonthOf returns the Month containing the given time, evaluated in UTC.
func MonthOf(t time.Time) Month {
	u := t.UTC()
	return Month{Year: u.Year(), Month: u.Month()}
}

// String formats the month as "YYYY-MM".
func (m Month) String() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format(MonthFormat)
}

// Next returns the following month.
func (m Month) Next() Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// After reports whether m is after x.
func (m Month) After(x Month) bool {
	return m.Year > x.Year || (m.Year == x.Year && m.Month > x.Month)
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	// Day zero of the next month is the last day of this one.
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Date returns the calendar date at the given day of this month,
// clamping the day down to the month's last day when it is shorter.
// The day is never rolled into the next month.
func (m Month) Date(day int) time.Time {
	if max := m.Days(); day > max {
		day = max
	}
	if day < 1 {
		day = 1
	}
	return time.Date(m.Year, m.Month, day, 0, 0, 0, 0, time.UTC)
}

// Expand enumerates every month in the inclusive range [start, end] and
// returns one clamped date per month at the scheduled day. The result is
// empty when start is after end.
func Expand(start, end Month, scheduledDay int) []time.Time {
	var dates []time.Time
	for m := start; !m.After(end); m = m.Next() {
		dates = append(dates, m.Date(scheduledDay))
	}
	return dates
}

// Today returns the current UTC calendar date at midnight.
func Today() time.Time {
	return DateOf(time.Now())
}

// DateOf truncates a time to its UTC calendar date at midnight.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
