package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/goliatone/go-orderform/pkg/form"
	"github.com/goliatone/go-orderform/pkg/pricing"
	"github.com/goliatone/go-orderform/pkg/render/template"
	"github.com/goliatone/go-orderform/pkg/render/template/pongo"
	"github.com/goliatone/go-orderform/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-orderform/pkg/schema"
)

var one = decimal.NewFromInt(1)

type componentRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	partials  map[string]string
	money     pricing.Formatter

	used map[string]struct{}
}

func newComponentRenderer(templates template.TemplateRenderer, registry *components.Registry, partials map[string]string, money pricing.Formatter) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		templates: templates,
		registry:  registry,
		partials:  partials,
		money:     money,
		used:      make(map[string]struct{}),
	}
}

func (r *componentRenderer) renderAll(fields []schema.Field, values form.Values, errs map[string][]string) (string, error) {
	var out strings.Builder
	for _, field := range fields {
		markup, err := r.render(field, values, errs[field.Name])
		if err != nil {
			return "", err
		}
		out.WriteString(markup)
	}
	return out.String(), nil
}

func (r *componentRenderer) render(field schema.Field, values form.Values, errs []string) (string, error) {
	descriptor, ok := r.registry.ForKind(field.Type)
	if !ok {
		return "", fmt.Errorf("no component bound to kind %q for field %q", field.Type, field.Name)
	}

	data := components.ComponentData{
		Template:      r.templates,
		ThemePartials: r.partials,
		ControlID:     controlID(field.Name),
		Invalid:       len(errs) > 0,
	}
	if field.IsChoice() {
		data.Selected = make(map[string]bool)
		for _, value := range values.Strings(field.Name) {
			data.Selected[value] = true
		}
		data.Hints = r.optionHints(field)
	} else if values.Has(field.Name) {
		data.Value = values.String(field.Name)
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, data); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", descriptor.Name, field.Name, err)
	}
	r.used[descriptor.Name] = struct{}{}

	return buildFieldMarkup(field, data.ControlID, control.String(), errs), nil
}

func (r *componentRenderer) optionHints(field schema.Field) map[string]string {
	hints := make(map[string]string, len(field.Options))
	for _, option := range field.Options {
		if !option.Priced() {
			continue
		}
		var parts []string
		if !option.PriceMultiplier.Equal(one) {
			parts = append(parts, r.money.Multiplier(option.PriceMultiplier))
		}
		if !option.PriceAddition.IsZero() {
			parts = append(parts, "+"+r.money.Money(option.PriceAddition))
		}
		hints[option.Value] = strings.Join(parts, " ")
	}
	return hints
}

func (r *componentRenderer) usedComponents() []string {
	names := make([]string, 0, len(r.used))
	for _, name := range r.registry.Names() {
		if _, ok := r.used[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

func (r *componentRenderer) stylesheets() []string {
	return r.registry.Stylesheets(r.usedComponents())
}

func buildFieldMarkup(field schema.Field, id, control string, errs []string) string {
	var b strings.Builder
	b.Grow(len(control) + 256)

	fmt.Fprintf(&b, `<div class="orderform-field orderform-field--%s" data-field="%s">`, field.Type, html.EscapeString(field.Name))
	b.WriteByte('\n')

	// Choice groups label themselves through aria-label.
	if field.Type == schema.KindRadio || field.Type == schema.KindCheckbox {
		fmt.Fprintf(&b, `<span class="orderform-label">%s`, html.EscapeString(field.DisplayLabel()))
	} else {
		fmt.Fprintf(&b, `<label class="orderform-label" for="%s">%s`, id, html.EscapeString(field.DisplayLabel()))
	}
	if field.Required {
		b.WriteString(`<span class="orderform-required" aria-hidden="true">*</span>`)
	}
	if field.Type == schema.KindRadio || field.Type == schema.KindCheckbox {
		b.WriteString("</span>\n")
	} else {
		b.WriteString("</label>\n")
	}

	b.WriteString(strings.TrimSpace(control))
	b.WriteByte('\n')

	if desc := pongo.Sanitize(field.Description); desc != "" {
		fmt.Fprintf(&b, `<p class="orderform-description">%s</p>`, desc)
		b.WriteByte('\n')
	}
	if len(errs) > 0 {
		fmt.Fprintf(&b, `<p class="orderform-field-error" id="%s-error">%s</p>`, id, html.EscapeString(strings.Join(errs, " ")))
		b.WriteByte('\n')
	}
	b.WriteString("</div>\n")
	return b.String()
}
