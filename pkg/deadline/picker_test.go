package deadline

import (
	"errors"
	"testing"
	"time"
)

func TestPicker_DefaultsToLocalZone(t *testing.T) {
	p := NewPicker(WithClock(clock), WithLocalZone("Europe/Paris"))
	if got := p.Selection().Timezone; got != "Europe/Paris" {
		t.Fatalf("expected local zone preselected, got %q", got)
	}
	if p.LocalZone() != "Europe/Paris" || p.LeadTime() != DefaultLeadTime {
		t.Fatalf("unexpected picker defaults")
	}
}

func TestPicker_EmitsComposedValue(t *testing.T) {
	var emitted []string
	p := NewPicker(
		WithClock(clock),
		WithLocalZone("UTC"),
		WithOnChange(func(v string) { emitted = append(emitted, v) }),
	)

	if err := p.SetDate("2026-03-11"); err != nil {
		t.Fatalf("set date: %v", err)
	}
	if len(emitted) != 0 {
		t.Fatalf("date alone should not emit, got %v", emitted)
	}
	if err := p.SetTime("12:00"); err != nil {
		t.Fatalf("set time: %v", err)
	}
	if err := p.SetTimezone("Asia/Tokyo"); err != nil {
		t.Fatalf("set zone: %v", err)
	}
	if len(emitted) != 2 || emitted[0] != "2026-03-11T12:00" || emitted[1] != "2026-03-11T12:00" {
		t.Fatalf("unexpected emissions %v", emitted)
	}
	if p.Value() != "2026-03-11T12:00" {
		t.Fatalf("unexpected value %q", p.Value())
	}
}

func TestPicker_RejectsMalformedInput(t *testing.T) {
	p := NewPicker(WithClock(clock), WithLocalZone("UTC"))
	if err := p.SetDate("03/11/2026"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if err := p.SetTime("noon"); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime, got %v", err)
	}
	if err := p.SetTimezone("Local"); !errors.Is(err, ErrUnknownTimezone) {
		t.Fatalf("expected ErrUnknownTimezone, got %v", err)
	}
	if (p.Selection() != Selection{Timezone: "UTC"}) {
		t.Fatalf("failed setters should not change the selection: %+v", p.Selection())
	}
}

func TestPicker_TodayClosedNearMidnight(t *testing.T) {
	late := func() time.Time { return time.Date(2026, time.October, 16, 23, 30, 0, 0, time.UTC) }
	p := NewPicker(WithClock(late), WithLocalZone("UTC"))
	if got := p.MinDate(); got != "2026-10-17" {
		t.Fatalf("unexpected min date %q", got)
	}
	_ = p.SetDate("2026-10-16")
	if got := p.MinTime(); got != NoTime {
		t.Fatalf("expected no selectable time today, got %q", got)
	}
	_ = p.SetTime("23:59")
	if err := p.Validate(); !errors.Is(err, ErrTooSoon) {
		t.Fatalf("expected ErrTooSoon, got %v", err)
	}
	_ = p.SetDate("2026-10-17")
	if got := p.MinTime(); got != "00:30" {
		t.Fatalf("unexpected min time tomorrow %q", got)
	}
}

func TestPicker_TodayMinimumTime(t *testing.T) {
	p := NewPicker(WithClock(clock), WithLocalZone("UTC"))
	if got := p.MinDate(); got != "2026-03-10" {
		t.Fatalf("unexpected min date %q", got)
	}
	_ = p.SetDate("2026-03-10")
	if got := p.MinTime(); got != "15:20" {
		t.Fatalf("unexpected min time %q", got)
	}
	_ = p.SetTime("15:00")
	if err := p.Validate(); !errors.Is(err, ErrTooSoon) {
		t.Fatalf("expected ErrTooSoon, got %v", err)
	}
	_ = p.SetTime("18:20")
	hours, err := p.HoursUntil()
	if err != nil {
		t.Fatalf("hours: %v", err)
	}
	if hours != 4 {
		t.Fatalf("expected 4 hours, got %d", hours)
	}
}

func TestPicker_CallerMinimumDate(t *testing.T) {
	p := NewPicker(WithClock(clock), WithLocalZone("UTC"), WithMinDate("2026-03-20"))
	if got := p.MinDate(); got != "2026-03-20" {
		t.Fatalf("unexpected min date %q", got)
	}
	if err := p.Apply(Selection{Date: "2026-03-15", Time: "10:00", Timezone: "UTC"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := p.Resolve(); !errors.Is(err, ErrBeforeMinimumDay) {
		t.Fatalf("expected ErrBeforeMinimumDay, got %v", err)
	}
}

func TestPicker_Advisory(t *testing.T) {
	p := NewPicker(WithClock(clock), WithLocalZone("Europe/London"), WithLeadTime(2*time.Hour))
	if err := p.Apply(Selection{Date: "2026-03-11", Time: "12:00", Timezone: "America/New_York"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := p.Advisory(); got == "" {
		t.Fatalf("expected advisory for a foreign zone")
	}
}
