package derive

import (
	"errors"
	"fmt"
	"time"
)

// ErrDependencyUnavailable is returned when the calendar data needed to resolve
// report dates cannot be loaded
var ErrDependencyUnavailable = errors.New("date dependency unavailable")

// DefaultTimezone keeps the noon cutoff at UTC-07:00 all year round
const DefaultTimezone = "America/Phoenix"

// Layouts used when rendering dates into the table and into search queries
const (
	DateLayout   = "2006-01-02"
	CutoffLayout = "2006-01-02T15:04:05-07:00"
)

// cutoffHour is the daily snapshot time (12pm)
const cutoffHour = 12

// Clock returns the current time
type Clock func() time.Time

// SystemClock reads the wall clock
func SystemClock() time.Time {
	return time.Now()
}

// Dates holds the calendar days a daily report refers to.
// All values are midnight in the report location.
type Dates struct {
	Today      time.Time
	Yesterday  time.Time
	LastFriday time.Time
}

// LoadLocation resolves an IANA zone name for report dates.
// An empty name falls back to DefaultTimezone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot load timezone %q (is the system tzdata package installed?): %v",
			ErrDependencyUnavailable, name, err)
	}
	return loc, nil
}

// ResolveDates computes today, yesterday and the most recent Friday (today
// included) as seen from loc
func ResolveDates(now time.Time, loc *time.Location) Dates {
	today := StartOfDay(now, loc)
	return Dates{
		Today:      today,
		Yesterday:  today.AddDate(0, 0, -1),
		LastFriday: LastWeekday(today, time.Friday),
	}
}

// StartOfDay truncates t to midnight of its calendar day in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// LastWeekday returns the most recent day on or before ref that falls on
// weekday. The offset from ref is always in [0,6] days.
func LastWeekday(ref time.Time, weekday time.Weekday) time.Time {
	offset := (int(ref.Weekday()) - int(weekday) + 7) % 7
	return ref.AddDate(0, 0, -offset)
}

// Noon returns the 12pm cutoff on the calendar day of t
func Noon(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, cutoffHour, 0, 0, 0, t.Location())
}

// FormatDate renders a date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatCutoff renders the noon cutoff of t with its UTC offset, the form the
// GitHub search syntax expects for merged:/updated: ranges
func FormatCutoff(t time.Time) string {
	return Noon(t).Format(CutoffLayout)
}

// CutoffRange renders a from..to range between the noon cutoffs of two days
func CutoffRange(from, to time.Time) string {
	return FormatCutoff(from) + ".." + FormatCutoff(to)
}
