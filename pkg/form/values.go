package form

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-orderform/pkg/schema"
)

var (
	// ErrUnknownField reports a value addressed to a field not in the schema.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrUnknownOption reports a choice value not present in the option list.
	ErrUnknownOption = errors.New("form: unknown option")
	// ErrKindMismatch reports a setter that does not apply to the field kind.
	ErrKindMismatch = errors.New("form: operation does not apply to field kind")
)

// Values maps field names to their current value. Numbers are stored as int,
// checkbox selections as []string, everything else as string.
type Values map[string]any

// Clone returns a copy safe to mutate. Slice values are copied too.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for key, value := range v {
		if list, ok := value.([]string); ok {
			value = append([]string(nil), list...)
		}
		out[key] = value
	}
	return out
}

// String returns the value rendered as a string, or "" when unset.
func (v Values) String(name string) string {
	switch typed := v[name].(type) {
	case nil:
		return ""
	case string:
		return typed
	case []string:
		return strings.Join(typed, ",")
	default:
		return fmt.Sprint(typed)
	}
}

// Strings returns the value as a list.
func (v Values) Strings(name string) []string {
	switch typed := v[name].(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), typed...)
	case string:
		if typed == "" {
			return nil
		}
		return []string{typed}
	default:
		return []string{fmt.Sprint(typed)}
	}
}

// Int returns the numeric value of name.
func (v Values) Int(name string) (int, bool) {
	n, ok := v[name].(int)
	return n, ok
}

// Has reports whether the value counts as filled in. Zero is a value.
func (v Values) Has(name string) bool {
	switch typed := v[name].(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(typed) != ""
	case []string:
		return len(typed) > 0
	default:
		return true
	}
}

// Coerce converts raw input for a scalar field into its stored form. Number
// fields parse the leading integer and fall back to 0; choice fields must
// match an option value.
func Coerce(field schema.Field, raw string) (any, error) {
	switch field.Type {
	case schema.KindText, schema.KindTextarea:
		return raw, nil
	case schema.KindNumber:
		return parseLeadingInt(raw), nil
	case schema.KindSelect, schema.KindRadio:
		if raw == "" {
			return "", nil
		}
		if _, ok := field.Option(raw); !ok {
			return nil, fmt.Errorf("%w: field %q value %q", ErrUnknownOption, field.Name, raw)
		}
		return raw, nil
	case schema.KindCheckbox:
		return nil, fmt.Errorf("%w: %q is a checkbox group", ErrKindMismatch, field.Name)
	default:
		return nil, fmt.Errorf("%w: %q", schema.ErrUnknownFieldKind, field.Type)
	}
}

// Set returns a copy of values with name set to the coerced raw input.
func Set(fields []schema.Field, values Values, name, raw string) (Values, error) {
	field, ok := lookup(fields, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	coerced, err := Coerce(field, raw)
	if err != nil {
		return nil, err
	}
	next := values.Clone()
	next[name] = coerced
	return next, nil
}

// Toggle returns a copy of values with option added to or removed from the
// checkbox selection. Selections keep option declaration order.
func Toggle(fields []schema.Field, values Values, name, option string, checked bool) (Values, error) {
	field, ok := lookup(fields, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if !field.IsMulti() {
		return nil, fmt.Errorf("%w: %q is %s", ErrKindMismatch, name, field.Type)
	}
	if _, ok := field.Option(option); !ok {
		return nil, fmt.Errorf("%w: field %q value %q", ErrUnknownOption, name, option)
	}

	selected := make(map[string]bool)
	for _, value := range values.Strings(name) {
		selected[value] = true
	}
	selected[option] = checked

	next := values.Clone()
	next[name] = ordered(field, selected)
	return next, nil
}

// FromURLValues decodes posted form values for the given schema. Unknown keys
// are ignored; checkbox groups read every submitted value.
func FromURLValues(fields []schema.Field, posted url.Values) (Values, error) {
	out := make(Values, len(fields))
	var errs []error
	for _, field := range fields {
		raws, present := posted[field.Name]
		if !present {
			continue
		}
		if field.IsMulti() {
			selected := make(map[string]bool, len(raws))
			for _, raw := range raws {
				if raw == "" {
					continue
				}
				if _, ok := field.Option(raw); !ok {
					errs = append(errs, fmt.Errorf("%w: field %q value %q", ErrUnknownOption, field.Name, raw))
					continue
				}
				selected[raw] = true
			}
			out[field.Name] = ordered(field, selected)
			continue
		}
		raw := ""
		if len(raws) > 0 {
			raw = raws[0]
		}
		if field.Type == schema.KindNumber && strings.TrimSpace(raw) == "" {
			continue
		}
		value, err := Coerce(field, raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[field.Name] = value
	}
	return out, errors.Join(errs...)
}

// MissingRequired returns the first required field, in schema order, that
// has no value.
func MissingRequired(fields []schema.Field, values Values) (schema.Field, bool) {
	for _, field := range fields {
		if field.Required && !values.Has(field.Name) {
			return field, true
		}
	}
	return schema.Field{}, false
}

func missingFields(fields []schema.Field, values Values) []schema.Field {
	var missing []schema.Field
	for _, field := range fields {
		if field.Required && !values.Has(field.Name) {
			missing = append(missing, field)
		}
	}
	return missing
}

// Keys returns the populated field names sorted alphabetically.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func lookup(fields []schema.Field, name string) (schema.Field, bool) {
	for _, field := range fields {
		if field.Name == name {
			return field, true
		}
	}
	return schema.Field{}, false
}

func ordered(field schema.Field, selected map[string]bool) []string {
	out := make([]string, 0, len(selected))
	for _, option := range field.Options {
		if selected[option.Value] {
			out = append(out, option.Value)
		}
	}
	return out
}

// parseLeadingInt parses an optional sign and the leading run of digits.
// No digits, or a run that overflows int, yields 0.
func parseLeadingInt(raw string) int {
	s := strings.TrimSpace(raw)
	end := 0
	if s != "" && (s[0] == '-' || s[0] == '+') {
		end = 1
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
