// Package calendar provides the civil-date arithmetic shared by the forecast,
// demand and restock components.
//
// Dates are plain year/month/day values with no zone or clock attached. All
// offsets and weekdays are derived from a days-since-epoch count, so results
// never depend on the host's time zone or daylight-saving rules.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the canonical textual form of a Date
const Layout = "2006-01-02"

// Date is a calendar day in the proleptic Gregorian calendar
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New creates a validated Date
func New(year int, month time.Month, day int) (Date, error) {
	if month < time.January || month > time.December {
		return Date{}, fmt.Errorf("month out of range: %d", month)
	}
	if day < 1 || day > DaysIn(year, month) {
		return Date{}, fmt.Errorf("day out of range for %04d-%02d: %d", year, month, day)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// MustNew is New for literals known to be valid. It panics otherwise.
func MustNew(year int, month time.Month, day int) Date {
	d, err := New(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime takes the calendar day of t in t's own location
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// timestampLayouts are the longer forms Parse accepts; the zoneless ones
// are read as UTC. Fractional seconds are accepted by time.Parse.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Parse reads YYYY-MM-DD, or an RFC 3339 timestamp whose date part is kept
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	if len(s) > len(Layout) {
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return FromTime(t), nil
			}
		}
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or an RFC 3339 timestamp", s)
	}
	if len(s) != len(Layout) || s[4] != '-' || s[7] != '-' {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	year, err1 := atoi(s[0:4])
	month, err2 := atoi(s[5:7])
	day, err3 := atoi(s[8:10])
	if err1 != nil || err2 != nil || err3 != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	d, err := New(year, time.Month(month), day)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

func atoi(s string) (int, error) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not a digit: %q", r)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

// IsLeap reports whether year is a Gregorian leap year
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in the given month
func DaysIn(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeap(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// DayNumber returns days since 1970-01-01 (negative before the epoch).
// Howard Hinnant's days_from_civil.
func (d Date) DayNumber() int64 {
	y := int64(d.Year)
	m := int64(d.Month)
	if m <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400
	mp := (m + 9) % 12
	doy := (153*mp+2)/5 + int64(d.Day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// FromDayNumber is the inverse of DayNumber (civil_from_days)
func FromDayNumber(z int64) Date {
	z += 719468
	era := floorDiv(z, 146097)
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	day := doy - (153*mp+2)/5 + 1
	month := mp + 3
	if month > 12 {
		month -= 12
	}
	if month <= 2 {
		y++
	}
	return Date{Year: int(y), Month: time.Month(month), Day: int(day)}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// AddDays returns the date n days later (earlier for negative n)
func (d Date) AddDays(n int) Date {
	return FromDayNumber(d.DayNumber() + int64(n))
}

// DaysSince returns d minus other in whole days
func (d Date) DaysSince(other Date) int {
	return int(d.DayNumber() - other.DayNumber())
}

// Weekday of the date. 1970-01-01 was a Thursday.
func (d Date) Weekday() time.Weekday {
	w := (d.DayNumber() + int64(time.Thursday)) % 7
	if w < 0 {
		w += 7
	}
	return time.Weekday(w)
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d.DayNumber() < other.DayNumber()
}

// After reports whether d is strictly later than other
func (d Date) After(other Date) bool {
	return d.DayNumber() > other.DayNumber()
}

// Equal reports whether both dates name the same day
func (d Date) Equal(other Date) bool {
	return d == other
}

// IsZero reports whether d is the zero Date
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC of the date
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
