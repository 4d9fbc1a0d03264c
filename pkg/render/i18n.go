package render

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/goliatone/go-orderform/pkg/schema"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// translator is configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves a message key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler picks the text shown when a key does not
// resolve. fallback is the untranslated source text.
type MissingTranslationHandler func(locale, key, fallback string, err error) string

func missingTranslationDefault(_, key, fallback string, _ error) string {
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

// Text translates key, falling back to fallback.
func Text(opts RenderOptions, key, fallback string) string {
	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	if opts.Translator == nil {
		return onMissing(opts.Locale, key, fallback, ErrMissingTranslator)
	}
	msg, err := opts.Translator.Translate(opts.Locale, key)
	if err != nil || strings.TrimSpace(msg) == "" {
		return onMissing(opts.Locale, key, fallback, err)
	}
	return msg
}

// LocalizeConfig returns a copy of cfg with labels, descriptions, option
// texts, tier names, and payment method names translated. Keys follow
// "fields.<name>.label", "fields.<name>.description",
// "fields.<name>.options.<value>", "tiers.<id>.name", and
// "payment_methods.<id>.name".
func LocalizeConfig(cfg schema.FormConfig, opts RenderOptions) schema.FormConfig {
	if opts.Translator == nil && opts.OnMissing == nil {
		return cfg
	}

	out := cfg
	out.Fields = make([]schema.Field, len(cfg.Fields))
	for i, field := range cfg.Fields {
		prefix := "fields." + field.Name
		field.Label = Text(opts, prefix+".label", field.Label)
		field.Description = Text(opts, prefix+".description", field.Description)
		field.Config.Placeholder = Text(opts, prefix+".placeholder", field.Config.Placeholder)
		if len(field.Options) > 0 {
			options := make([]schema.Option, len(field.Options))
			for j, option := range field.Options {
				option.Text = Text(opts, prefix+".options."+option.Value, option.Text)
				options[j] = option
			}
			field.Options = options
		}
		out.Fields[i] = field
	}

	out.PricingTiers = make([]schema.PricingTier, len(cfg.PricingTiers))
	for i, tier := range cfg.PricingTiers {
		tier.Name = Text(opts, "tiers."+tier.ID.String()+".name", tier.Name)
		out.PricingTiers[i] = tier
	}
	out.PaymentMethods = make([]schema.PaymentMethod, len(cfg.PaymentMethods))
	for i, method := range cfg.PaymentMethods {
		method.Name = Text(opts, "payment_methods."+method.ID.String()+".name", method.Name)
		out.PaymentMethods[i] = method
	}
	return out
}

// CatalogTranslator serves translations from an x/text message catalog.
type CatalogTranslator struct {
	builder *catalog.Builder
}

// NewCatalogTranslator builds a translator from locale -> key -> message.
func NewCatalogTranslator(messages map[string]map[string]string) (*CatalogTranslator, error) {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	for locale, entries := range messages {
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("render: parse locale %q: %w", locale, err)
		}
		for key, msg := range entries {
			if err := builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("render: catalog %s/%s: %w", locale, key, err)
			}
		}
	}
	return &CatalogTranslator{builder: builder}, nil
}

// Translate implements Translator. Keys absent from the catalog return an
// error so callers fall back to the source text.
func (c *CatalogTranslator) Translate(locale, key string, args ...any) (string, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	printer := message.NewPrinter(tag, message.Catalog(c.builder))
	msg := printer.Sprintf(key, args...)
	if msg == key {
		return "", fmt.Errorf("render: no translation for %q", key)
	}
	return msg, nil
}
