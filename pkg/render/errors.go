package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-orderform/pkg/schema"
)

// OrderInputs are the fixed, non-schema inputs on the order form. Error
// payloads may target them directly.
var OrderInputs = []string{"pricing_tier_id", "payment_method_id", "deadline", "deadline_timezone", "customer_notes", "files"}

// inputAliases maps create-order payload keys onto the form input that
// collects them.
var inputAliases = map[string]string{
	"pricing_tier":      "pricing_tier_id",
	"academic_level":    "pricing_tier_id",
	"payment_method":    "payment_method_id",
	"deadline_utc":      "deadline",
	"deadline_date":     "deadline",
	"deadline_time":     "deadline",
	"uploaded_files":    "files",
	"file":              "files",
	"idempotency_key":   "",
	"non_field_errors":  "",
	"non-field-errors":  "",
	"__all__":           "",
	"detail":            "",
	"form":              "",
	"customer_comments": "customer_notes",
}

// payloadWrappers prefix field keys in API error paths.
var payloadWrappers = map[string]bool{"body": true, "request": true, "payload": true, "data": true, "form_data": true}

// ErrorMapping splits an API error payload into field-level and form-level
// messages keyed by input name.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors appends extras to existing, trimming blanks and dropping
// duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	return uniqueMessages(append(append([]string(nil), existing...), extras...))
}

// MapErrorPayload assigns each server error to the input it concerns.
// Keys may be plain names, dotted or JSON-pointer paths, and may be wrapped
// in form_data; list indices are ignored. Keys that name no input become
// form-level messages so nothing the API said is dropped.
func MapErrorPayload(fields []schema.Field, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		return mapping
	}

	known := make(map[string]bool, len(fields)+len(OrderInputs))
	for _, field := range fields {
		known[field.Name] = true
	}
	for _, name := range OrderInputs {
		known[name] = true
	}

	for key, messages := range payload {
		messages = uniqueMessages(messages)
		if len(messages) == 0 {
			continue
		}
		if input := inputFor(key, known); input != "" {
			mapping.Fields[input] = append(mapping.Fields[input], messages...)
			continue
		}
		mapping.Form = append(mapping.Form, messages...)
	}

	for input, messages := range mapping.Fields {
		mapping.Fields[input] = uniqueMessages(messages)
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = uniqueMessages(mapping.Form)
	return mapping
}

func inputFor(key string, known map[string]bool) string {
	segments := errorPath(key)
	for len(segments) > 1 && payloadWrappers[strings.ToLower(segments[0])] {
		segments = segments[1:]
	}
	if len(segments) == 0 {
		return ""
	}
	name := segments[0]
	if alias, ok := inputAliases[strings.ToLower(name)]; ok {
		return alias
	}
	if known[name] {
		return name
	}
	return ""
}

// errorPath splits "$.form_data.extras[1]", "/form_data/topic" or
// "form_data.pages" into name segments, dropping list indices.
func errorPath(key string) []string {
	key = strings.NewReplacer("[", ".", "]", "").Replace(strings.TrimSpace(key))
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '.' || r == '/' || r == '#' || r == '$'
	})
	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, err := strconv.Atoi(part); err == nil {
			continue
		}
		out = append(out, strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~"))
	}
	return out
}

func uniqueMessages(messages []string) []string {
	var out []string
	seen := make(map[string]bool, len(messages))
	for _, message := range messages {
		message = strings.TrimSpace(message)
		if message == "" || seen[message] {
			continue
		}
		seen[message] = true
		out = append(out, message)
	}
	return out
}
