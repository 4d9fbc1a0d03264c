package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldKind enumerates the input kinds the order form understands.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindNumber   FieldKind = "number"
	KindTextarea FieldKind = "textarea"
	KindSelect   FieldKind = "select"
	KindRadio    FieldKind = "radio"
	KindCheckbox FieldKind = "checkbox"
)

var kinds = []FieldKind{KindText, KindNumber, KindTextarea, KindSelect, KindRadio, KindCheckbox}

// Kinds returns the closed set of supported field kinds in declaration order.
func Kinds() []FieldKind {
	return append([]FieldKind(nil), kinds...)
}

// ParseFieldKind normalises raw and returns the matching kind or
// ErrUnknownFieldKind.
func ParseFieldKind(raw string) (FieldKind, error) {
	candidate := FieldKind(strings.ToLower(strings.TrimSpace(raw)))
	for _, kind := range kinds {
		if kind == candidate {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFieldKind, raw)
}

// IsChoice reports whether values of this kind come from the option list.
func (k FieldKind) IsChoice() bool {
	return k == KindSelect || k == KindRadio || k == KindCheckbox
}

// IsMulti reports whether the kind stores a list of values.
func (k FieldKind) IsMulti() bool {
	return k == KindCheckbox
}

// ID is an identifier the API may send either as a JSON number or a string.
// It round-trips numeric identifiers as numbers.
type ID string

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

// UnmarshalJSON accepts numbers, strings, and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("schema: id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits integer-looking identifiers as JSON numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// FieldConfig carries the per-kind settings attached to a field. Keys the
// client does not interpret are preserved in Extra.
type FieldConfig struct {
	Placeholder string
	Min         *float64
	Max         *float64
	Rows        int
	Extra       map[string]any
}

// UnmarshalJSON decodes the opaque config object, tolerating string-encoded
// numbers.
func (c *FieldConfig) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("schema: decode field config: %w", err)
	}
	*c = FieldConfig{}
	for key, value := range raw {
		switch key {
		case "placeholder":
			c.Placeholder = strings.TrimSpace(fmt.Sprint(valueOrEmpty(value)))
		case "min":
			c.Min = floatPtr(value)
		case "max":
			c.Max = floatPtr(value)
		case "rows":
			if f := floatPtr(value); f != nil {
				c.Rows = int(*f)
			}
		default:
			if c.Extra == nil {
				c.Extra = make(map[string]any)
			}
			c.Extra[key] = value
		}
	}
	return nil
}

// MarshalJSON flattens the config back into a single object.
func (c FieldConfig) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+4)
	for key, value := range c.Extra {
		out[key] = value
	}
	if c.Placeholder != "" {
		out["placeholder"] = c.Placeholder
	}
	if c.Min != nil {
		out["min"] = *c.Min
	}
	if c.Max != nil {
		out["max"] = *c.Max
	}
	if c.Rows > 0 {
		out["rows"] = c.Rows
	}
	return json.Marshal(out)
}

// Option is a selectable value on a choice field. PriceMultiplier and
// PriceAddition are display hints; the API combines them authoritatively.
type Option struct {
	Value           string          `json:"value"`
	Text            string          `json:"text"`
	Description     string          `json:"description,omitempty"`
	PriceMultiplier decimal.Decimal `json:"price_multiplier"`
	PriceAddition   decimal.Decimal `json:"price_addition"`
}

// UnmarshalJSON applies the multiplier/addition defaults (1 and 0) when the
// API omits them.
func (o *Option) UnmarshalJSON(data []byte) error {
	type alias Option
	aux := struct {
		*alias
		Value           any              `json:"value"`
		PriceMultiplier *decimal.Decimal `json:"price_multiplier"`
		PriceAddition   *decimal.Decimal `json:"price_addition"`
	}{alias: (*alias)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	o.Value = strings.TrimSpace(fmt.Sprint(valueOrEmpty(aux.Value)))
	o.PriceMultiplier = decimal.NewFromInt(1)
	if aux.PriceMultiplier != nil {
		o.PriceMultiplier = *aux.PriceMultiplier
	}
	o.PriceAddition = decimal.Zero
	if aux.PriceAddition != nil {
		o.PriceAddition = *aux.PriceAddition
	}
	if strings.TrimSpace(o.Text) == "" {
		o.Text = o.Value
	}
	return nil
}

// Priced reports whether selecting the option changes the quote.
func (o Option) Priced() bool {
	return !o.PriceMultiplier.Equal(decimal.NewFromInt(1)) || !o.PriceAddition.IsZero()
}

// Field describes one dynamic input on the order form.
type Field struct {
	Name        string      `json:"name"`
	Label       string      `json:"label"`
	Type        FieldKind   `json:"type"`
	Description string      `json:"description,omitempty"`
	Required    bool        `json:"required"`
	Config      FieldConfig `json:"config"`
	Options     []Option    `json:"options,omitempty"`
}

// DisplayLabel falls back to the field name when the label is empty.
func (f Field) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return f.Name
}

// Option returns the option with the given value.
func (f Field) Option(value string) (Option, bool) {
	for _, option := range f.Options {
		if option.Value == value {
			return option, true
		}
	}
	return Option{}, false
}

// IsChoice reports whether the field draws values from Options.
func (f Field) IsChoice() bool { return f.Type.IsChoice() }

// IsMulti reports whether the field stores a list of values.
func (f Field) IsMulti() bool { return f.Type.IsMulti() }

// PricingTier is the academic level/service tier an order is priced under.
type PricingTier struct {
	ID               ID              `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	BasePricePerPage decimal.Decimal `json:"base_price_per_page"`
	MinimumPrice     decimal.Decimal `json:"minimum_price"`
}

// DeadlinePricing is a turnaround bracket and its urgency multiplier.
type DeadlinePricing struct {
	ID         ID              `json:"id"`
	Name       string          `json:"name"`
	Hours      int             `json:"hours"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// PaymentMethod is a payment option offered at checkout.
type PaymentMethod struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"is_default,omitempty"`
}

// FormConfig is the full get-form-configuration payload.
type FormConfig struct {
	Fields          []Field           `json:"fields"`
	PricingTiers    []PricingTier     `json:"pricing_tiers"`
	DeadlinePricing []DeadlinePricing `json:"deadline_pricing"`
	PaymentMethods  []PaymentMethod   `json:"payment_methods"`
}

// UnmarshalJSON accepts the field list under either "fields" or
// "form_fields".
func (c *FormConfig) UnmarshalJSON(data []byte) error {
	type alias FormConfig
	aux := struct {
		*alias
		FormFields []Field `json:"form_fields"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(c.Fields) == 0 && len(aux.FormFields) > 0 {
		c.Fields = aux.FormFields
	}
	return nil
}

// Field looks up a field by name.
func (c FormConfig) Field(name string) (Field, bool) {
	for _, field := range c.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Tier looks up a pricing tier by id.
func (c FormConfig) Tier(id ID) (PricingTier, bool) {
	for _, tier := range c.PricingTiers {
		if tier.ID == id {
			return tier, true
		}
	}
	return PricingTier{}, false
}

// PaymentMethod looks up a payment method by id.
func (c FormConfig) PaymentMethod(id ID) (PaymentMethod, bool) {
	for _, method := range c.PaymentMethods {
		if method.ID == id {
			return method, true
		}
	}
	return PaymentMethod{}, false
}

// DefaultPaymentMethod returns the method flagged as default, or the first
// one listed.
func (c FormConfig) DefaultPaymentMethod() (PaymentMethod, bool) {
	for _, method := range c.PaymentMethods {
		if method.IsDefault {
			return method, true
		}
	}
	if len(c.PaymentMethods) > 0 {
		return c.PaymentMethods[0], true
	}
	return PaymentMethod{}, false
}

// RequiredFields returns the required fields in schema order.
func (c FormConfig) RequiredFields() []Field {
	var out []Field
	for _, field := range c.Fields {
		if field.Required {
			out = append(out, field)
		}
	}
	return out
}

func valueOrEmpty(v any) any {
	if v == nil {
		return ""
	}
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return v
}

func floatPtr(v any) *float64 {
	switch typed := v.(type) {
	case float64:
		return &typed
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}
