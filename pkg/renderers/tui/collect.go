package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-orderform/components/timezones"
	"github.com/goliatone/go-orderform/pkg/attachments"
	"github.com/goliatone/go-orderform/pkg/deadline"
	"github.com/goliatone/go-orderform/pkg/form"
	"github.com/goliatone/go-orderform/pkg/schema"
	"github.com/goliatone/go-orderform/pkg/submission"
)

// Answers is everything the wizard collects for one order.
type Answers struct {
	FormData        form.Values        `json:"form_data"`
	PricingTierID   schema.ID          `json:"pricing_tier_id"`
	PaymentMethodID schema.ID          `json:"payment_method_id"`
	Deadline        deadline.Selection `json:"deadline"`
	CustomerNotes   string             `json:"customer_notes,omitempty"`
	Files           []string           `json:"files,omitempty"`
}

// Snapshot converts the answers into form state.
func (a Answers) Snapshot() form.Snapshot {
	return form.Snapshot{
		Values:          a.FormData,
		PricingTierID:   a.PricingTierID,
		PaymentMethodID: a.PaymentMethodID,
		CustomerNotes:   a.CustomerNotes,
	}
}

// Collect walks the user through the order form. seed pre-fills defaults.
func (r *Renderer) Collect(ctx context.Context, cfg schema.FormConfig, seed Answers) (Answers, error) {
	if ctx == nil {
		return Answers{}, errors.New("tui: context is required")
	}
	if r.driver == nil {
		return Answers{}, errors.New("tui: prompt driver is nil")
	}

	state := form.NewState(cfg, form.WithValues(seed.FormData))
	if !seed.PaymentMethodID.IsZero() {
		_ = state.SelectPaymentMethod(seed.PaymentMethodID)
	}

	tier, err := r.promptTier(ctx, cfg, seed.PricingTierID)
	if err != nil {
		return Answers{}, err
	}
	if err := state.SelectTier(tier); err != nil {
		return Answers{}, err
	}

	for _, field := range cfg.Fields {
		if err := r.promptField(ctx, field, state); err != nil {
			return Answers{}, err
		}
	}

	sel, err := r.promptDeadline(ctx, seed.Deadline)
	if err != nil {
		return Answers{}, err
	}

	payment, err := r.promptPayment(ctx, cfg, state.Snapshot().PaymentMethodID)
	if err != nil {
		return Answers{}, err
	}
	if err := state.SelectPaymentMethod(payment); err != nil {
		return Answers{}, err
	}

	notes, err := r.driver.TextArea(ctx, TextAreaConfig{
		Message: "Notes for the writer",
		Default: seed.CustomerNotes,
	})
	if err != nil {
		return Answers{}, err
	}
	state.SetNotes(strings.TrimSpace(notes))

	files, err := r.promptFiles(ctx, seed.Files)
	if err != nil {
		return Answers{}, err
	}

	snap := state.Snapshot()
	return Answers{
		FormData:        snap.Values,
		PricingTierID:   snap.PricingTierID,
		PaymentMethodID: snap.PaymentMethodID,
		Deadline:        sel,
		CustomerNotes:   snap.CustomerNotes,
		Files:           files,
	}, nil
}

func (r *Renderer) promptTier(ctx context.Context, cfg schema.FormConfig, current schema.ID) (schema.ID, error) {
	if len(cfg.PricingTiers) == 0 {
		return "", fmt.Errorf("%w: academic level", ErrNoOptions)
	}
	options := make([]string, len(cfg.PricingTiers))
	defaultIdx := 0
	for i, tier := range cfg.PricingTiers {
		options[i] = fmt.Sprintf("%s (%s/page)", tier.Name, r.money.Money(tier.BasePricePerPage))
		if tier.ID == current {
			defaultIdx = i
		}
	}
	idx, err := r.selectIndex(ctx, SelectConfig{Message: "Academic level", Options: options, DefaultIndex: defaultIdx})
	if err != nil {
		return "", err
	}
	return cfg.PricingTiers[idx].ID, nil
}

func (r *Renderer) promptPayment(ctx context.Context, cfg schema.FormConfig, current schema.ID) (schema.ID, error) {
	if len(cfg.PaymentMethods) == 0 {
		return "", fmt.Errorf("%w: payment method", ErrNoOptions)
	}
	options := make([]string, len(cfg.PaymentMethods))
	defaultIdx := 0
	for i, method := range cfg.PaymentMethods {
		options[i] = method.Name
		if method.ID == current {
			defaultIdx = i
		}
	}
	idx, err := r.selectIndex(ctx, SelectConfig{Message: "Payment method", Options: options, DefaultIndex: defaultIdx})
	if err != nil {
		return "", err
	}
	return cfg.PaymentMethods[idx].ID, nil
}

func (r *Renderer) promptField(ctx context.Context, field schema.Field, state *form.State) error {
	values := state.Values()
	label := field.DisplayLabel()
	help := field.Description

	switch field.Type {
	case schema.KindText:
		response, err := r.driver.Input(ctx, InputConfig{
			Message:   label,
			Default:   values.String(field.Name),
			Help:      help,
			Validator: requiredValidator(field),
		})
		if err != nil {
			return err
		}
		return state.SetField(field.Name, strings.TrimSpace(response))

	case schema.KindNumber:
		response, err := r.driver.Input(ctx, InputConfig{
			Message:   label,
			Default:   values.String(field.Name),
			Help:      help,
			Validator: numberValidator(field),
		})
		if err != nil {
			return err
		}
		if strings.TrimSpace(response) == "" {
			return nil
		}
		return state.SetField(field.Name, strings.TrimSpace(response))

	case schema.KindTextarea:
		for {
			response, err := r.driver.TextArea(ctx, TextAreaConfig{
				Message: label,
				Default: values.String(field.Name),
				Help:    help,
			})
			if err != nil {
				return err
			}
			if field.Required && strings.TrimSpace(response) == "" {
				r.info(ctx, true, fmt.Sprintf("Please fill in %s", label))
				continue
			}
			return state.SetField(field.Name, response)
		}

	case schema.KindSelect, schema.KindRadio:
		options, offset := choiceOptions(field, r)
		defaultIdx := 0
		if current := values.String(field.Name); current != "" {
			for i, option := range field.Options {
				if option.Value == current {
					defaultIdx = i + offset
				}
			}
		}
		idx, err := r.selectIndex(ctx, SelectConfig{Message: label, Options: options, DefaultIndex: defaultIdx, Help: help})
		if err != nil {
			return err
		}
		if idx < offset {
			return state.SetField(field.Name, "")
		}
		return state.SetField(field.Name, field.Options[idx-offset].Value)

	case schema.KindCheckbox:
		options, _ := choiceOptions(field, r)
		options = options[len(options)-len(field.Options):]
		selected := make(map[string]bool)
		for _, value := range values.Strings(field.Name) {
			selected[value] = true
		}
		var defaults []int
		for i, option := range field.Options {
			if selected[option.Value] {
				defaults = append(defaults, i)
			}
		}
		for {
			indices, err := r.driver.MultiSelect(ctx, SelectConfig{Message: label, Options: options, Defaults: defaults, Help: help})
			if err != nil {
				return err
			}
			if field.Required && len(indices) == 0 {
				r.info(ctx, true, fmt.Sprintf("Please fill in %s", label))
				continue
			}
			chosen := make(map[int]bool, len(indices))
			for _, idx := range indices {
				chosen[idx] = true
			}
			for i, option := range field.Options {
				if err := state.ToggleOption(field.Name, option.Value, chosen[i]); err != nil {
					return err
				}
			}
			return nil
		}

	default:
		return fmt.Errorf("tui: %w: %q", schema.ErrUnknownFieldKind, field.Type)
	}
}

// choiceOptions labels options with their price hints. Optional single
// choices get a leading "(none)" entry; offset is its width.
func choiceOptions(field schema.Field, r *Renderer) ([]string, int) {
	offset := 0
	var options []string
	if !field.Required && !field.IsMulti() {
		options = append(options, "(none)")
		offset = 1
	}
	for _, option := range field.Options {
		text := option.Text
		var hints []string
		if !option.PriceMultiplier.Equal(one) {
			hints = append(hints, r.money.Multiplier(option.PriceMultiplier))
		}
		if !option.PriceAddition.IsZero() {
			hints = append(hints, "+"+r.money.Money(option.PriceAddition))
		}
		if len(hints) > 0 {
			text += " (" + strings.Join(hints, ", ") + ")"
		}
		options = append(options, text)
	}
	return options, offset
}

func (r *Renderer) promptDeadline(ctx context.Context, seed deadline.Selection) (deadline.Selection, error) {
	picker := deadline.NewPicker(
		deadline.WithClock(r.now),
		deadline.WithLeadTime(r.lead),
		deadline.WithLocalZone(r.localZone),
	)

	zones := r.zones
	if len(zones) == 0 {
		defaults, err := timezones.DefaultZones()
		if err != nil {
			return deadline.Selection{}, err
		}
		zones = defaults
	}
	zone := picker.LocalZone()
	if seed.Timezone != "" {
		zone = seed.Timezone
	}
	now := picker.Now()
	labels := make([]string, len(zones))
	defaultIdx := 0
	for i, candidate := range zones {
		labels[i] = timezones.Label(candidate, now)
		if candidate == zone {
			defaultIdx = i
		}
	}
	idx, err := r.selectIndex(ctx, SelectConfig{Message: "Deadline timezone", Options: labels, DefaultIndex: defaultIdx, PageSize: 12})
	if err != nil {
		return deadline.Selection{}, err
	}
	if err := picker.SetTimezone(zones[idx]); err != nil {
		return deadline.Selection{}, err
	}

	minDate := picker.MinDate()
	date, err := r.driver.Input(ctx, InputConfig{
		Message: "Deadline date (YYYY-MM-DD)",
		Default: firstNonEmpty(seed.Date, minDate),
		Help:    "Earliest: " + minDate,
		Validator: func(raw string) error {
			raw = strings.TrimSpace(raw)
			if _, err := time.Parse(deadline.DateLayout, raw); err != nil {
				return errors.New("Please choose a valid deadline")
			}
			if raw < minDate {
				return fmt.Errorf("The earliest available day is %s", minDate)
			}
			return nil
		},
	})
	if err != nil {
		return deadline.Selection{}, err
	}
	if err := picker.SetDate(date); err != nil {
		return deadline.Selection{}, err
	}

	for {
		clock, err := r.driver.Input(ctx, InputConfig{
			Message: "Deadline time (HH:MM, 24h)",
			Default: seed.Time,
			Help:    minTimeHelp(picker.MinTime()),
		})
		if err != nil {
			return deadline.Selection{}, err
		}
		if err := picker.SetTime(clock); err != nil {
			r.info(ctx, true, submission.Message(err))
			continue
		}
		if err := picker.Validate(); err != nil {
			r.info(ctx, true, submission.Message(err))
			continue
		}
		break
	}

	if advisory := picker.Advisory(); advisory != "" {
		r.info(ctx, false, advisory)
	}
	return picker.Selection(), nil
}

func (r *Renderer) promptFiles(ctx context.Context, seed []string) ([]string, error) {
	var paths []string
	if r.collector == nil {
		paths = append(paths, seed...)
	}
	for {
		if r.collector != nil && r.collector.Len() >= r.collector.Limits().MaxFiles {
			return paths, nil
		}
		raw, err := r.driver.Input(ctx, InputConfig{
			Message: "Attach a file (path, blank to finish)",
			Help:    "Tab completes paths. " + r.limitsHelp(),
			Suggest: suggestPaths,
		})
		if err != nil {
			return nil, err
		}
		path := strings.TrimSpace(raw)
		if path == "" {
			return paths, nil
		}

		if r.collector == nil {
			if _, err := os.Stat(path); err != nil {
				r.info(ctx, true, fmt.Sprintf("Cannot read %s", path))
				continue
			}
			paths = append(paths, path)
			continue
		}

		candidate, err := attachments.FromPath(path)
		if err != nil {
			r.info(ctx, true, fmt.Sprintf("Cannot read %s", path))
			continue
		}
		report, err := r.collector.Add(candidate)
		if err != nil {
			return nil, err
		}
		if !report.OK() {
			r.info(ctx, true, report.Message())
			continue
		}
		paths = append(paths, path)
	}
}

func (r *Renderer) selectIndex(ctx context.Context, cfg SelectConfig) (int, error) {
	if len(cfg.Options) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoOptions, cfg.Message)
	}
	for {
		idx, err := r.driver.Select(ctx, cfg)
		if err != nil {
			return 0, err
		}
		if idx >= 0 && idx < len(cfg.Options) {
			return idx, nil
		}
		r.info(ctx, true, fmt.Sprintf("Invalid %s selection", strings.ToLower(cfg.Message)))
	}
}

func (r *Renderer) info(ctx context.Context, isErr bool, msg string) {
	prefix := r.theme.InfoPrefix
	if isErr {
		prefix = r.theme.ErrorPrefix
	}
	_ = r.driver.Info(ctx, prefix+msg)
}

func requiredValidator(field schema.Field) func(string) error {
	if !field.Required {
		return nil
	}
	return func(raw string) error {
		if strings.TrimSpace(raw) == "" {
			return fmt.Errorf("Please fill in %s", field.DisplayLabel())
		}
		return nil
	}
}

func numberValidator(field schema.Field) func(string) error {
	return func(raw string) error {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			if field.Required {
				return fmt.Errorf("Please fill in %s", field.DisplayLabel())
			}
			return nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return errors.New("Please enter a whole number")
		}
		if min := field.Config.Min; min != nil && float64(n) < *min {
			return fmt.Errorf("Must be at least %s", strconv.FormatFloat(*min, 'f', -1, 64))
		}
		if max := field.Config.Max; max != nil && float64(n) > *max {
			return fmt.Errorf("Must be at most %s", strconv.FormatFloat(*max, 'f', -1, 64))
		}
		return nil
	}
}

func minTimeHelp(minTime string) string {
	switch minTime {
	case "":
		return ""
	case deadline.NoTime:
		return "No times left on this day; choose a later date."
	}
	return "Earliest on this day: " + minTime
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func (r *Renderer) limitsHelp() string {
	if r.collector == nil {
		return ""
	}
	limits := r.collector.Limits()
	return fmt.Sprintf("Up to %d files, %s each.", limits.MaxFiles, attachments.HumanSize(limits.MaxFileSize))
}
