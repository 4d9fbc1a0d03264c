package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-orderform/pkg/render"
	"github.com/goliatone/go-orderform/pkg/testsupport"
)

func TestMapErrorPayload_OrderPaths(t *testing.T) {
	cfg := testsupport.FormConfig(t)

	payload := map[string][]string{
		"form_data.pages":         {"Ensure this value is less than or equal to 200."},
		"/form_data/topic":        {"This field is required."},
		"$.form_data.extras[1]":   {"Unknown option"},
		"pricing_tier_id":         {"Invalid pk \"9\" - object does not exist."},
		"body.deadline":           {"Deadline must be in the future"},
		"non_field_errors":        {"Order could not be created"},
		"form_data.unknown_field": {"Should fall back to form errors"},
		"":                        {"Unscoped form error", "  "},
		"payment_method_id":       {" "},
		"deadline_utc":            {"Deadline must be in the future"},
		"payment_method":          {"Select a valid choice."},
		"idempotency_key":         {"Duplicate request"},
	}

	mapped := render.MapErrorPayload(cfg.Fields, payload)

	wantFields := map[string][]string{
		"pages":             {"Ensure this value is less than or equal to 200."},
		"topic":             {"This field is required."},
		"extras":            {"Unknown option"},
		"pricing_tier_id":   {"Invalid pk \"9\" - object does not exist."},
		"deadline":          {"Deadline must be in the future"},
		"payment_method_id": {"Select a valid choice."},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Duplicate request", "Order could not be created", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMapErrorPayload_Empty(t *testing.T) {
	mapped := render.MapErrorPayload(nil, nil)
	if mapped.Fields == nil || len(mapped.Fields) != 0 {
		t.Fatalf("expected empty non-nil field map, got %#v", mapped.Fields)
	}
	if mapped.Form != nil {
		t.Fatalf("expected no form errors, got %v", mapped.Form)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
