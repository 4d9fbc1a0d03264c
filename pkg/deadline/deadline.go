package deadline

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goliatone/go-orderform/components/timezones"
)

const (
	DateLayout  = "2006-01-02"
	TimeLayout  = "15:04"
	LocalLayout = "2006-01-02T15:04"

	// DefaultLeadTime is the minimum distance between now and a deadline.
	DefaultLeadTime = time.Hour

	// NoTime is the MinTime of a day that has no selectable time left.
	NoTime = "24:00"

	displayLayout = "Mon, Jan 2, 2006 at 3:04 PM"
)

var (
	ErrIncomplete       = errors.New("deadline: date, time, and timezone are required")
	ErrInvalidDate      = errors.New("deadline: invalid date")
	ErrInvalidTime      = errors.New("deadline: invalid time")
	ErrUnknownTimezone  = errors.New("deadline: unknown timezone")
	ErrTooSoon          = errors.New("deadline: must be at least the minimum lead time from now")
	ErrBeforeMinimumDay = errors.New("deadline: date is before the earliest allowed day")
)

// TooSoonError is a deadline inside the lead time. It matches ErrTooSoon.
type TooSoonError struct {
	Lead time.Duration
}

func (e *TooSoonError) Error() string {
	return fmt.Sprintf("deadline: must be at least %s from now", FormatLead(e.Lead))
}

func (e *TooSoonError) Is(target error) bool { return target == ErrTooSoon }

// FormatLead renders a lead time as "1 hour", "90 minutes" style text.
func FormatLead(lead time.Duration) string {
	lead = lead.Truncate(time.Minute)
	switch {
	case lead <= 0:
		return "0 minutes"
	case lead%time.Hour == 0:
		return plural(int(lead/time.Hour), "hour")
	default:
		return plural(int(lead/time.Minute), "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Selection is the raw picker input.
type Selection struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
}

// Complete reports whether every part has been chosen.
func (s Selection) Complete() bool {
	return strings.TrimSpace(s.Date) != "" && strings.TrimSpace(s.Time) != "" && strings.TrimSpace(s.Timezone) != ""
}

// Compose returns "YYYY-MM-DDTHH:mm" once date and time are set, else "".
func (s Selection) Compose() string {
	date, clock := strings.TrimSpace(s.Date), strings.TrimSpace(s.Time)
	if date == "" || clock == "" {
		return ""
	}
	return date + "T" + clock
}

// Deadline is a resolved selection.
type Deadline struct {
	Local    string    `json:"deadline"`
	Timezone string    `json:"deadline_timezone"`
	UTC      time.Time `json:"-"`
}

// UTCString renders the instant as RFC 3339 in UTC.
func (d Deadline) UTCString() string {
	if d.UTC.IsZero() {
		return ""
	}
	return d.UTC.UTC().Format(time.RFC3339)
}

// Display renders the wall-clock deadline with its zone.
func (d Deadline) Display() string {
	loc, err := timezones.Load(d.Timezone)
	if err != nil || d.UTC.IsZero() {
		return d.Local
	}
	return fmt.Sprintf("%s (%s)", d.UTC.In(loc).Format(displayLayout), d.Timezone)
}

// Resolve validates sel against now and lead and returns the deadline.
func Resolve(sel Selection, now time.Time, lead time.Duration) (Deadline, error) {
	if !sel.Complete() {
		return Deadline{}, ErrIncomplete
	}
	date := strings.TrimSpace(sel.Date)
	clock := strings.TrimSpace(sel.Time)
	zone := strings.TrimSpace(sel.Timezone)

	if _, err := time.Parse(DateLayout, date); err != nil {
		return Deadline{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	if _, err := time.Parse(TimeLayout, clock); err != nil {
		return Deadline{}, fmt.Errorf("%w: %q", ErrInvalidTime, clock)
	}
	loc, err := timezones.Load(zone)
	if err != nil {
		return Deadline{}, fmt.Errorf("%w: %q", ErrUnknownTimezone, zone)
	}

	local := date + "T" + clock
	instant, err := time.ParseInLocation(LocalLayout, local, loc)
	if err != nil {
		return Deadline{}, fmt.Errorf("%w: %q", ErrInvalidDate, local)
	}
	if instant.Before(earliest(now, lead)) {
		return Deadline{}, &TooSoonError{Lead: lead}
	}
	return Deadline{Local: local, Timezone: zone, UTC: instant.UTC()}, nil
}

// MinDate returns the earliest selectable day in loc: the later of callerMin
// and the day now+lead falls on.
func MinDate(now time.Time, loc *time.Location, lead time.Duration, callerMin string) string {
	day := earliest(now, lead).In(location(loc)).Format(DateLayout)
	if callerMin = strings.TrimSpace(callerMin); callerMin > day {
		return callerMin
	}
	return day
}

// MinTime returns the earliest selectable time of day for date: now+lead on
// the earliest day, midnight on later days, and NoTime on days before the
// earliest one (today, once now+lead has crossed midnight).
func MinTime(date string, now time.Time, loc *time.Location, lead time.Duration) string {
	first := earliest(now, lead).In(location(loc))
	date = strings.TrimSpace(date)
	switch day := first.Format(DateLayout); {
	case date == day:
		return first.Format(TimeLayout)
	case date != "" && date < day:
		if _, err := time.Parse(DateLayout, date); err == nil {
			return NoTime
		}
	}
	return "00:00"
}

// Advisory describes the selected moment in localZone when it reads
// differently there. Any resolution failure yields "".
func Advisory(sel Selection, localZone string) string {
	composed := sel.Compose()
	if composed == "" || strings.TrimSpace(sel.Timezone) == localZone {
		return ""
	}
	selected, err := timezones.Load(sel.Timezone)
	if err != nil {
		return ""
	}
	local, err := timezones.Load(localZone)
	if err != nil {
		return ""
	}
	instant, err := time.ParseInLocation(LocalLayout, composed, selected)
	if err != nil {
		return ""
	}

	there := instant.Format(displayLayout)
	here := instant.In(local).Format(displayLayout)
	if here == there {
		return ""
	}
	return fmt.Sprintf("That is %s in your local time (%s)", here, localZone)
}

// HoursUntil rounds the distance to the deadline up to whole hours. Past
// deadlines yield 0.
func HoursUntil(d Deadline, now time.Time) int {
	hours := d.UTC.Sub(now).Hours()
	if hours <= 0 {
		return 0
	}
	return int(math.Ceil(hours))
}

func earliest(now time.Time, lead time.Duration) time.Time {
	return now.Add(lead).Truncate(time.Minute)
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
