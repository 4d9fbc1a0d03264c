package render

import (
	"github.com/goliatone/go-orderform/components/timezones"
	"github.com/goliatone/go-orderform/pkg/attachments"
	"github.com/goliatone/go-orderform/pkg/deadline"
	"github.com/goliatone/go-orderform/pkg/form"
	"github.com/goliatone/go-orderform/pkg/pricing"
	"github.com/goliatone/go-orderform/pkg/schema"
)

// Page bundles everything the order form shows.
type Page struct {
	Config          schema.FormConfig
	Values          form.Values
	PricingTierID   schema.ID
	PaymentMethodID schema.ID
	CustomerNotes   string

	Deadline DeadlineView

	Files  []attachments.File
	Limits attachments.Limits

	// Price holds formatted preview lines; nil hides the preview.
	Price []pricing.Line

	Submitting bool
}

// DeadlineView is the picker state prepared for display.
type DeadlineView struct {
	Selection deadline.Selection
	MinDate   string
	MinTime   string
	Advisory  string
	LocalZone string
	Zones     []timezones.Option
}

// NewPage seeds a page from a form state snapshot.
func NewPage(cfg schema.FormConfig, snap form.Snapshot) Page {
	return Page{
		Config:          cfg,
		Values:          snap.Values,
		PricingTierID:   snap.PricingTierID,
		PaymentMethodID: snap.PaymentMethodID,
		CustomerNotes:   snap.CustomerNotes,
		Limits:          attachments.DefaultLimits(),
	}
}

// DeadlineViewFor prepares the picker state for display.
func DeadlineViewFor(p *deadline.Picker, zones []string) DeadlineView {
	now := p.Now()
	options := make([]timezones.Option, 0, len(zones))
	for _, zone := range zones {
		options = append(options, timezones.OptionFor(zone, now))
	}
	return DeadlineView{
		Selection: p.Selection(),
		MinDate:   p.MinDate(),
		MinTime:   p.MinTime(),
		Advisory:  p.Advisory(),
		LocalZone: p.LocalZone(),
		Zones:     options,
	}
}
