package form

import (
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-orderform/pkg/schema"
)

var (
	// ErrUnknownTier reports a tier id missing from the configuration.
	ErrUnknownTier = errors.New("form: unknown pricing tier")
	// ErrUnknownPaymentMethod reports a payment id missing from the configuration.
	ErrUnknownPaymentMethod = errors.New("form: unknown payment method")
)

// ChangeFunc receives the complete next value map after every mutation.
type ChangeFunc func(Values)

// StateOption customises a State.
type StateOption func(*State)

// WithOnChange registers the change observer.
func WithOnChange(fn ChangeFunc) StateOption {
	return func(s *State) {
		s.onChange = fn
	}
}

// WithValues seeds the initial values.
func WithValues(values Values) StateOption {
	return func(s *State) {
		if values != nil {
			s.values = values.Clone()
		}
	}
}

// State tracks one in-progress order. It is safe for concurrent use.
type State struct {
	mu       sync.RWMutex
	config   schema.FormConfig
	values   Values
	tier     schema.ID
	payment  schema.ID
	notes    string
	onChange ChangeFunc
}

// NewState builds state for cfg with the default payment method preselected.
func NewState(cfg schema.FormConfig, opts ...StateOption) *State {
	s := &State{config: cfg, values: Values{}}
	if method, ok := cfg.DefaultPaymentMethod(); ok {
		s.payment = method.ID
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Config returns the configuration backing the state.
func (s *State) Config() schema.FormConfig {
	return s.config
}

// Values returns a copy of the current field values.
func (s *State) Values() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Clone()
}

// SetField coerces raw for the named scalar field.
func (s *State) SetField(name, raw string) error {
	return s.mutate(func(current Values) (Values, error) {
		return Set(s.config.Fields, current, name, raw)
	})
}

// ToggleOption flips a checkbox option.
func (s *State) ToggleOption(name, option string, checked bool) error {
	return s.mutate(func(current Values) (Values, error) {
		return Toggle(s.config.Fields, current, name, option, checked)
	})
}

// Replace swaps every value at once, e.g. after decoding a posted form.
func (s *State) Replace(values Values) {
	_ = s.mutate(func(Values) (Values, error) {
		return values.Clone(), nil
	})
}

// SelectTier records the pricing tier.
func (s *State) SelectTier(id schema.ID) error {
	if _, ok := s.config.Tier(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTier, id)
	}
	s.mu.Lock()
	s.tier = id
	s.mu.Unlock()
	return nil
}

// SelectPaymentMethod records the payment method.
func (s *State) SelectPaymentMethod(id schema.ID) error {
	if _, ok := s.config.PaymentMethod(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, id)
	}
	s.mu.Lock()
	s.payment = id
	s.mu.Unlock()
	return nil
}

// SetNotes records the free-form customer notes.
func (s *State) SetNotes(notes string) {
	s.mu.Lock()
	s.notes = notes
	s.mu.Unlock()
}

// Snapshot is a point-in-time copy of the state.
type Snapshot struct {
	Values          Values
	PricingTierID   schema.ID
	PaymentMethodID schema.ID
	CustomerNotes   string
}

// Snapshot copies the current selections.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Values:          s.values.Clone(),
		PricingTierID:   s.tier,
		PaymentMethodID: s.payment,
		CustomerNotes:   s.notes,
	}
}

// Missing lists required fields that are still empty.
func (s *State) Missing() []schema.Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return missingFields(s.config.Fields, s.values)
}

// Reset clears values and selections, restoring the default payment method.
func (s *State) Reset() {
	s.mu.Lock()
	s.tier = ""
	s.notes = ""
	s.payment = ""
	if method, ok := s.config.DefaultPaymentMethod(); ok {
		s.payment = method.ID
	}
	s.mu.Unlock()
	s.Replace(Values{})
}

func (s *State) mutate(fn func(Values) (Values, error)) error {
	s.mu.Lock()
	next, err := fn(s.values)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.values = next
	observer := s.onChange
	snapshot := next.Clone()
	s.mu.Unlock()

	if observer != nil {
		observer(snapshot)
	}
	return nil
}
