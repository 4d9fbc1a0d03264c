package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/goliatone/go-orderform/pkg/form"
	"github.com/goliatone/go-orderform/pkg/schema"
)

var (
	// ErrTierRequired reports a quote requested before a tier was chosen.
	ErrTierRequired = errors.New("pricing: pricing tier is required")
	// ErrStale reports a response superseded by a newer request.
	ErrStale = errors.New("pricing: quote superseded by a newer request")
)

// DeadlineTier is the deadline bracket the server matched.
type DeadlineTier struct {
	Name       string          `json:"name"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// Details is the nested pricing_breakdown object.
type Details struct {
	Pages              int             `json:"pages"`
	PricePerPage       decimal.Decimal `json:"price_per_page"`
	DeadlineMultiplier decimal.Decimal `json:"deadline_multiplier"`
	DeadlinePricing    *DeadlineTier   `json:"deadline_pricing,omitempty"`
}

// Breakdown is the calculate-price response.
type Breakdown struct {
	BasePrice        decimal.Decimal `json:"base_price"`
	TotalMultiplier  decimal.Decimal `json:"total_multiplier"`
	TotalAddition    decimal.Decimal `json:"total_addition"`
	FinalPrice       decimal.Decimal `json:"final_price"`
	PricingBreakdown Details         `json:"pricing_breakdown"`
}

// Request is the calculate-price payload.
type Request struct {
	FormData      form.Values `json:"form_data"`
	PricingTierID schema.ID   `json:"pricing_tier_id"`
	DeadlineHours int         `json:"deadline_hours,omitempty"`
}

// Validate rejects requests without a tier.
func (r Request) Validate() error {
	if r.PricingTierID.IsZero() {
		return ErrTierRequired
	}
	return nil
}
