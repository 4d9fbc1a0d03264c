package deadline

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-orderform/components/timezones"
)

// ChangeFunc receives the composed "YYYY-MM-DDTHH:mm" value.
type ChangeFunc func(composed string)

// Option customises a Picker.
type Option func(*Picker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Picker) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLeadTime overrides the minimum lead time.
func WithLeadTime(lead time.Duration) Option {
	return func(p *Picker) {
		if lead >= 0 {
			p.lead = lead
		}
	}
}

// WithMinDate sets a caller-imposed earliest day ("YYYY-MM-DD").
func WithMinDate(date string) Option {
	return func(p *Picker) {
		p.minDate = strings.TrimSpace(date)
	}
}

// WithLocalZone overrides zone detection.
func WithLocalZone(zone string) Option {
	return func(p *Picker) {
		if timezones.Valid(zone) {
			p.local = zone
		}
	}
}

// WithOnChange registers the observer notified with each complete value.
func WithOnChange(fn ChangeFunc) Option {
	return func(p *Picker) {
		p.onChange = fn
	}
}

// Picker holds one deadline selection. The timezone defaults to the
// detected local zone.
type Picker struct {
	mu       sync.RWMutex
	now      func() time.Time
	lead     time.Duration
	minDate  string
	local    string
	sel      Selection
	onChange ChangeFunc
}

// NewPicker builds a picker.
func NewPicker(opts ...Option) *Picker {
	p := &Picker{now: time.Now, lead: DefaultLeadTime}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.local == "" {
		p.local = timezones.Detect()
	}
	p.sel.Timezone = p.local
	return p
}

// LocalZone returns the detected (or configured) local zone.
func (p *Picker) LocalZone() string { return p.local }

// LeadTime returns the configured minimum lead time.
func (p *Picker) LeadTime() time.Duration { return p.lead }

// Now returns the picker's current time.
func (p *Picker) Now() time.Time { return p.now() }

// Selection returns the current selection.
func (p *Picker) Selection() Selection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sel
}

// Value returns the composed value, or "" until date and time are chosen.
func (p *Picker) Value() string {
	return p.Selection().Compose()
}

// SetDate records the date. Empty clears it.
func (p *Picker) SetDate(date string) error {
	date = strings.TrimSpace(date)
	if date != "" {
		if _, err := time.Parse(DateLayout, date); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDate, date)
		}
	}
	p.update(func(sel *Selection) { sel.Date = date })
	return nil
}

// SetTime records the time of day. Empty clears it.
func (p *Picker) SetTime(clock string) error {
	clock = strings.TrimSpace(clock)
	if clock != "" {
		if _, err := time.Parse(TimeLayout, clock); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTime, clock)
		}
	}
	p.update(func(sel *Selection) { sel.Time = clock })
	return nil
}

// SetTimezone records the IANA zone.
func (p *Picker) SetTimezone(zone string) error {
	zone = strings.TrimSpace(zone)
	if !timezones.Valid(zone) {
		return fmt.Errorf("%w: %q", ErrUnknownTimezone, zone)
	}
	p.update(func(sel *Selection) { sel.Timezone = zone })
	return nil
}

// Apply replaces the whole selection, validating each part.
func (p *Picker) Apply(sel Selection) error {
	if err := p.SetTimezone(sel.Timezone); err != nil {
		return err
	}
	if err := p.SetDate(sel.Date); err != nil {
		return err
	}
	return p.SetTime(sel.Time)
}

// MinDate returns the earliest selectable day in the selected zone.
func (p *Picker) MinDate() string {
	return MinDate(p.now(), p.zone(), p.lead, p.minDate)
}

// MinTime returns the earliest selectable time for the selected date.
func (p *Picker) MinTime() string {
	return MinTime(p.Selection().Date, p.now(), p.zone(), p.lead)
}

// Advisory returns the local-time hint for the selection, or "".
func (p *Picker) Advisory() string {
	return Advisory(p.Selection(), p.local)
}

// Validate checks the selection without resolving it.
func (p *Picker) Validate() error {
	_, err := p.Resolve()
	return err
}

// Resolve validates the selection and returns the deadline.
func (p *Picker) Resolve() (Deadline, error) {
	sel := p.Selection()
	if p.minDate != "" && strings.TrimSpace(sel.Date) != "" && sel.Date < p.minDate {
		return Deadline{}, fmt.Errorf("%w: %s", ErrBeforeMinimumDay, p.minDate)
	}
	return Resolve(sel, p.now(), p.lead)
}

// HoursUntil returns whole hours between now and the resolved deadline.
func (p *Picker) HoursUntil() (int, error) {
	d, err := p.Resolve()
	if err != nil {
		return 0, err
	}
	return HoursUntil(d, p.now()), nil
}

func (p *Picker) zone() *time.Location {
	if loc, err := timezones.Load(p.Selection().Timezone); err == nil {
		return loc
	}
	if loc, err := timezones.Load(p.local); err == nil {
		return loc
	}
	return time.UTC
}

func (p *Picker) update(fn func(*Selection)) {
	p.mu.Lock()
	fn(&p.sel)
	composed := p.sel.Compose()
	observer := p.onChange
	p.mu.Unlock()

	if observer != nil && composed != "" {
		observer(composed)
	}
}
