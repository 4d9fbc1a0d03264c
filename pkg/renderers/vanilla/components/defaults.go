package components

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-orderform/pkg/schema"
)

const templatePrefix = "templates/components/"

// NewDefaultRegistry returns a registry with one component per field kind.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(NameInput, Descriptor{
		Renderer: templateComponentRenderer("forms.input", templatePrefix+"input.tpl"),
	})
	registry.MustRegister(NameTextarea, Descriptor{
		Renderer: templateComponentRenderer("forms.textarea", templatePrefix+"textarea.tpl"),
	})
	registry.MustRegister(NameSelect, Descriptor{
		Renderer: templateComponentRenderer("forms.select", templatePrefix+"select.tpl"),
	})
	registry.MustRegister(NameChoices, Descriptor{
		Renderer: templateComponentRenderer("forms.choices", templatePrefix+"choices.tpl"),
	})

	bindings := map[schema.FieldKind]string{
		schema.KindText:     NameInput,
		schema.KindNumber:   NameInput,
		schema.KindTextarea: NameTextarea,
		schema.KindSelect:   NameSelect,
		schema.KindRadio:    NameChoices,
		schema.KindCheckbox: NameChoices,
	}
	for kind, name := range bindings {
		if err := registry.Bind(kind, name); err != nil {
			panic(err)
		}
	}
	return registry
}

func templateComponentRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, field schema.Field, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		resolved := templateName
		if candidate := strings.TrimSpace(data.ThemePartials[partialKey]); candidate != "" {
			resolved = candidate
		}

		rendered, err := data.Template.RenderTemplate(resolved, payload(field, data))
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", resolved, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

func payload(field schema.Field, data ComponentData) map[string]any {
	options := make([]map[string]any, 0, len(field.Options))
	for _, option := range field.Options {
		options = append(options, map[string]any{
			"value":       option.Value,
			"text":        option.Text,
			"description": option.Description,
			"checked":     data.Selected[option.Value],
			"hint":        data.Hints[option.Value],
		})
	}

	inputType := "text"
	switch field.Type {
	case schema.KindNumber:
		inputType = "number"
	case schema.KindRadio:
		inputType = "radio"
	case schema.KindCheckbox:
		inputType = "checkbox"
	}

	rows := field.Config.Rows
	if rows <= 0 {
		rows = 4
	}

	return map[string]any{
		"id":          data.ControlID,
		"name":        field.Name,
		"label":       field.DisplayLabel(),
		"type":        inputType,
		"required":    field.Required,
		"placeholder": field.Config.Placeholder,
		"min":         bound(field.Config.Min),
		"max":         bound(field.Config.Max),
		"rows":        rows,
		"value":       data.Value,
		"invalid":     data.Invalid,
		"error_id":    data.ControlID + "-error",
		"options":     options,
	}
}

func bound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
