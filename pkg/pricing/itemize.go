package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/goliatone/go-orderform/pkg/form"
	"github.com/goliatone/go-orderform/pkg/schema"
)

var one = decimal.NewFromInt(1)

// OptionLabel names one selected option.
type OptionLabel struct {
	Field  string `json:"field"`
	Option string `json:"option"`
}

// Itemization is a display-ready view of a Breakdown.
type Itemization struct {
	Pages        int             `json:"pages"`
	PricePerPage decimal.Decimal `json:"price_per_page"`
	BasePrice    decimal.Decimal `json:"base_price"`

	DeadlineName       string          `json:"deadline_name,omitempty"`
	DeadlineMultiplier decimal.Decimal `json:"deadline_multiplier"`

	// OptionsMultiplier is total_multiplier divided by the deadline
	// multiplier. Ungrouped is set when that split is impossible and the
	// total multiplier is shown as one line.
	OptionsMultiplier decimal.Decimal `json:"options_multiplier"`
	Ungrouped         bool            `json:"ungrouped,omitempty"`
	TotalMultiplier   decimal.Decimal `json:"total_multiplier"`
	SelectedOptions   []OptionLabel   `json:"selected_options,omitempty"`

	Additions decimal.Decimal `json:"additions"`
	Total     decimal.Decimal `json:"total"`
}

// ShowDeadline reports whether a deadline badge applies.
func (i Itemization) ShowDeadline() bool {
	return i.DeadlineName != ""
}

// ShowOptions reports whether the options line differs from ×1.
func (i Itemization) ShowOptions() bool {
	if i.Ungrouped {
		return !i.TotalMultiplier.Equal(one)
	}
	return !i.OptionsMultiplier.Equal(one)
}

// ShowAdditions reports whether flat additions are non-zero. Negative
// additions are discounts and are shown too.
func (i Itemization) ShowAdditions() bool {
	return !i.Additions.IsZero()
}

// Preview splits b into display lines and labels the selected choice options
// of fields.
func Preview(b Breakdown, fields []schema.Field, values form.Values) Itemization {
	out := Itemization{
		Pages:           b.PricingBreakdown.Pages,
		PricePerPage:    b.PricingBreakdown.PricePerPage,
		BasePrice:       b.BasePrice,
		TotalMultiplier: b.TotalMultiplier,
		Additions:       b.TotalAddition,
		Total:           b.FinalPrice,
	}

	deadline := b.PricingBreakdown.DeadlineMultiplier
	if tier := b.PricingBreakdown.DeadlinePricing; tier != nil {
		out.DeadlineName = tier.Name
		if deadline.IsZero() {
			deadline = tier.Multiplier
		}
	}
	out.DeadlineMultiplier = deadline

	if deadline.IsZero() {
		out.Ungrouped = true
		out.OptionsMultiplier = b.TotalMultiplier
	} else {
		out.OptionsMultiplier = b.TotalMultiplier.DivRound(deadline, 4)
	}

	out.SelectedOptions = SelectedOptions(fields, values)
	return out
}

// SelectedOptions resolves each selected choice value to its option text in
// schema order. Unknown values are skipped.
func SelectedOptions(fields []schema.Field, values form.Values) []OptionLabel {
	var out []OptionLabel
	for _, field := range fields {
		if !field.IsChoice() {
			continue
		}
		for _, value := range values.Strings(field.Name) {
			option, ok := field.Option(value)
			if !ok {
				continue
			}
			out = append(out, OptionLabel{Field: field.DisplayLabel(), Option: option.Text})
		}
	}
	return out
}
