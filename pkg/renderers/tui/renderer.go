package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goliatone/go-orderform/pkg/attachments"
	"github.com/goliatone/go-orderform/pkg/deadline"
	"github.com/goliatone/go-orderform/pkg/pricing"
	"github.com/goliatone/go-orderform/pkg/render"
	"github.com/goliatone/go-orderform/pkg/schema"
)

var one = decimal.NewFromInt(1)

// Renderer implements render.Renderer as an interactive terminal wizard.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	collector    *attachments.Collector
	money        pricing.Formatter

	now       func() time.Time
	lead      time.Duration
	localZone string
	zones     []string
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		money:        pricing.NewFormatter("en-US", "$"),
		now:          time.Now,
		lead:         deadline.DefaultLeadTime,
		theme:        Theme{ErrorPrefix: "✗ "},
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}

// Render runs the wizard seeded from page and serializes the answers.
// Field errors in opts are printed before prompting.
func (r *Renderer) Render(ctx context.Context, page render.Page, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, notice := range opts.Notices {
		r.info(ctx, notice.Level == render.LevelError, notice.Message)
	}
	for _, message := range opts.FormErrors {
		r.info(ctx, true, message)
	}
	for _, name := range sortedKeys(opts.Errors) {
		r.info(ctx, true, fmt.Sprintf("%s: %s", name, strings.Join(opts.Errors[name], " ")))
	}

	cfg := render.LocalizeConfig(page.Config, opts)
	answers, err := r.Collect(ctx, cfg, Answers{
		FormData:        page.Values,
		PricingTierID:   page.PricingTierID,
		PaymentMethodID: page.PaymentMethodID,
		Deadline:        page.Deadline.Selection,
		CustomerNotes:   page.CustomerNotes,
	})
	if err != nil {
		return nil, err
	}
	return r.serialize(cfg, answers, page.Price)
}

func (r *Renderer) serialize(cfg schema.FormConfig, answers Answers, price []pricing.Line) ([]byte, error) {
	if r.outputFormat == OutputFormatPrettyText {
		return []byte(Summary(cfg, answers, price)), nil
	}
	out, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tui: encode answers: %w", err)
	}
	return out, nil
}

// Summary renders answers as a review block, with price lines when given.
func Summary(cfg schema.FormConfig, answers Answers, price []pricing.Line) string {
	var b strings.Builder
	if tier, ok := cfg.Tier(answers.PricingTierID); ok {
		fmt.Fprintf(&b, "Academic level: %s\n", tier.Name)
	}
	for _, field := range cfg.Fields {
		if !answers.FormData.Has(field.Name) {
			continue
		}
		value := answers.FormData.String(field.Name)
		if field.IsChoice() {
			var texts []string
			for _, selected := range answers.FormData.Strings(field.Name) {
				if option, ok := field.Option(selected); ok {
					texts = append(texts, option.Text)
				}
			}
			value = strings.Join(texts, ", ")
		}
		fmt.Fprintf(&b, "%s: %s\n", field.DisplayLabel(), value)
	}
	if answers.Deadline.Complete() {
		fmt.Fprintf(&b, "Deadline: %s %s (%s)\n", answers.Deadline.Date, answers.Deadline.Time, answers.Deadline.Timezone)
	}
	if method, ok := cfg.PaymentMethod(answers.PaymentMethodID); ok {
		fmt.Fprintf(&b, "Payment method: %s\n", method.Name)
	}
	if answers.CustomerNotes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", answers.CustomerNotes)
	}
	for _, path := range answers.Files {
		fmt.Fprintf(&b, "File: %s\n", path)
	}
	if len(price) > 0 {
		b.WriteString("\n")
		for _, line := range price {
			label := line.Label
			if line.Detail != "" {
				label += " (" + line.Detail + ")"
			}
			fmt.Fprintf(&b, "%-40s %12s\n", label, line.Amount)
		}
	}
	return b.String()
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

var _ render.Renderer = (*Renderer)(nil)
