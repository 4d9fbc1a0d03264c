package schema_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/goliatone/go-orderform/pkg/schema"
	"github.com/goliatone/go-orderform/pkg/testsupport"
)

func TestDecode_FixtureShape(t *testing.T) {
	cfg := testsupport.FormConfig(t)

	var names []string
	for _, field := range cfg.Fields {
		names = append(names, field.Name)
	}
	want := []string{"topic", "pages", "paper_type", "spacing", "extras", "instructions"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	pages, ok := cfg.Field("pages")
	if !ok {
		t.Fatalf("expected pages field")
	}
	if pages.Config.Min == nil || *pages.Config.Min != 1 {
		t.Fatalf("expected min 1, got %+v", pages.Config.Min)
	}
	if pages.Config.Max == nil || *pages.Config.Max != 200 {
		t.Fatalf("expected string max to decode as 200, got %+v", pages.Config.Max)
	}

	notes, _ := cfg.Field("instructions")
	if notes.Config.Rows != 6 {
		t.Fatalf("expected rows 6, got %d", notes.Config.Rows)
	}
	if notes.Config.Extra["autogrow"] != true {
		t.Fatalf("expected unknown config keys preserved, got %+v", notes.Config.Extra)
	}
}

func TestDecode_OptionPricingDefaults(t *testing.T) {
	cfg := testsupport.FormConfig(t)
	paperType, _ := cfg.Field("paper_type")

	essay, ok := paperType.Option("essay")
	if !ok {
		t.Fatalf("expected essay option")
	}
	if !essay.PriceMultiplier.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected default multiplier 1, got %s", essay.PriceMultiplier)
	}
	if !essay.PriceAddition.IsZero() {
		t.Fatalf("expected default addition 0, got %s", essay.PriceAddition)
	}
	if essay.Priced() {
		t.Fatalf("essay should not affect price")
	}

	research, _ := paperType.Option("research")
	if !research.PriceMultiplier.Equal(decimal.RequireFromString("1.2")) {
		t.Fatalf("expected string multiplier 1.2, got %s", research.PriceMultiplier)
	}

	extras, _ := cfg.Field("extras")
	outline, _ := extras.Option("outline")
	if !outline.PriceAddition.Equal(decimal.NewFromInt(5)) || !outline.Priced() {
		t.Fatalf("expected numeric addition 5, got %s", outline.PriceAddition)
	}
}

func TestDecode_AcceptsFieldsKey(t *testing.T) {
	raw := []byte(`{"fields":[{"name":"topic","label":"Topic","type":"TEXT"}]}`)
	cfg, err := schema.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cfg.Fields) != 1 || cfg.Fields[0].Type != schema.KindText {
		t.Fatalf("expected normalised text field, got %+v", cfg.Fields)
	}
}

func TestDecode_RejectsUnknownKind(t *testing.T) {
	raw := []byte(`{"fields":[{"name":"due","label":"Due","type":"date"}]}`)
	_, err := schema.Decode(raw)
	if !errors.Is(err, schema.ErrUnknownFieldKind) {
		t.Fatalf("expected ErrUnknownFieldKind, got %v", err)
	}
}

func TestValidate_Invariants(t *testing.T) {
	tests := []struct {
		name string
		cfg  schema.FormConfig
		want error
	}{
		{
			name: "duplicate field",
			cfg: schema.FormConfig{Fields: []schema.Field{
				{Name: "topic", Type: schema.KindText},
				{Name: "topic", Type: schema.KindTextarea},
			}},
			want: schema.ErrDuplicateFieldName,
		},
		{
			name: "choice without options",
			cfg:  schema.FormConfig{Fields: []schema.Field{{Name: "level", Type: schema.KindSelect}}},
			want: schema.ErrMissingOptions,
		},
		{
			name: "duplicate option",
			cfg: schema.FormConfig{Fields: []schema.Field{{
				Name: "level", Type: schema.KindRadio,
				Options: []schema.Option{{Value: "a"}, {Value: "a"}},
			}}},
			want: schema.ErrDuplicateOption,
		},
		{
			name: "duplicate tier",
			cfg:  schema.FormConfig{PricingTiers: []schema.PricingTier{{ID: "1"}, {ID: "1"}}},
			want: schema.ErrDuplicateTier,
		},
		{
			name: "missing name",
			cfg:  schema.FormConfig{Fields: []schema.Field{{Type: schema.KindText}}},
			want: schema.ErrMissingFieldName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := schema.Validate(tt.cfg); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestKinds_Exhaustive(t *testing.T) {
	for _, kind := range schema.Kinds() {
		parsed, err := schema.ParseFieldKind(string(kind))
		if err != nil {
			t.Fatalf("kind %q did not parse: %v", kind, err)
		}
		if parsed != kind {
			t.Fatalf("kind %q parsed as %q", kind, parsed)
		}
	}
	if got := len(schema.Kinds()); got != 6 {
		t.Fatalf("expected 6 kinds, got %d", got)
	}
	if !schema.KindCheckbox.IsMulti() || schema.KindSelect.IsMulti() {
		t.Fatalf("only checkbox should be multi-valued")
	}
	if schema.KindNumber.IsChoice() || !schema.KindRadio.IsChoice() {
		t.Fatalf("choice classification mismatch")
	}
}

func TestLookups(t *testing.T) {
	cfg := testsupport.FormConfig(t)

	tier, ok := cfg.Tier("2")
	if !ok || tier.Name != "Undergraduate" {
		t.Fatalf("expected numeric tier id to decode as \"2\", got %+v", tier)
	}
	if !tier.BasePricePerPage.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("unexpected base price %s", tier.BasePricePerPage)
	}

	method, ok := cfg.DefaultPaymentMethod()
	if !ok || method.ID != "paypal" {
		t.Fatalf("expected paypal default, got %+v", method)
	}
	if _, ok := cfg.PaymentMethod("7"); !ok {
		t.Fatalf("expected numeric payment method id lookup")
	}

	var required []string
	for _, field := range cfg.RequiredFields() {
		required = append(required, field.Name)
	}
	if diff := cmp.Diff([]string{"topic", "pages", "paper_type"}, required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultPaymentMethod_FallsBackToFirst(t *testing.T) {
	cfg := schema.FormConfig{PaymentMethods: []schema.PaymentMethod{{ID: "card"}, {ID: "paypal"}}}
	method, ok := cfg.DefaultPaymentMethod()
	if !ok || method.ID != "card" {
		t.Fatalf("expected first method, got %+v", method)
	}
	if _, ok := (schema.FormConfig{}).DefaultPaymentMethod(); ok {
		t.Fatalf("expected no default on empty config")
	}
}

func TestID_JSON(t *testing.T) {
	payload, err := json.Marshal(map[string]schema.ID{"numeric": "12", "text": "card", "empty": ""})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"empty":null,"numeric":12,"text":"card"}`
	if string(payload) != want {
		t.Fatalf("unexpected payload %s", payload)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "form.yaml")
	content := `fields:
  - name: level
    label: Level
    type: radio
    options:
      - value: basic
        text: Basic
      - value: premium
        text: Premium
        price_multiplier: 1.5
pricing_tiers:
  - id: 1
    name: Standard
    base_price_per_page: 12.5
    minimum_price: 25
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := schema.LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	level, _ := cfg.Field("level")
	premium, _ := level.Option("premium")
	if !premium.PriceMultiplier.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("unexpected multiplier %s", premium.PriceMultiplier)
	}
	if _, ok := cfg.Tier("1"); !ok {
		t.Fatalf("expected tier 1")
	}
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"config/form.json": {Data: testsupport.FormConfigJSON(t)},
	}
	cfg, err := schema.LoadFS(fsys, "config/form.json")
	if err != nil {
		t.Fatalf("load fs: %v", err)
	}
	if len(cfg.PaymentMethods) != 3 {
		t.Fatalf("expected 3 payment methods, got %d", len(cfg.PaymentMethods))
	}
}

func TestDecodeFrom(t *testing.T) {
	if _, err := schema.DecodeFrom(schema.FromFile("a.json"), nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}

	cfg, err := schema.DecodeFrom(schema.FromFS("form.yml"), []byte("fields:\n  - name: topic\n    type: text\n"))
	if err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if _, ok := cfg.Field("topic"); !ok {
		t.Fatalf("expected topic field")
	}

	_, err = schema.DecodeFrom(schema.FromAPI("http://x/orders/form-config.yaml"), []byte("fields: []"))
	if err == nil || !strings.Contains(err.Error(), "api http://x/orders/form-config.yaml") {
		t.Fatalf("api payloads decode as json and errors name the origin, got %v", err)
	}
}
