package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Decode parses a JSON form configuration and validates it.
func Decode(raw []byte) (FormConfig, error) {
	var cfg FormConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return FormConfig{}, fmt.Errorf("schema: decode form config: %w", err)
	}
	normalizeKinds(&cfg)
	if err := Validate(cfg); err != nil {
		return FormConfig{}, err
	}
	return cfg, nil
}

// DecodeFrom decodes raw with the codec origin implies. Errors name the
// origin.
func DecodeFrom(origin Origin, raw []byte) (FormConfig, error) {
	if len(raw) == 0 {
		return FormConfig{}, fmt.Errorf("schema: empty payload from %s", origin)
	}
	if origin.Format() == FormatYAML {
		converted, err := yamlToJSON(raw)
		if err != nil {
			return FormConfig{}, fmt.Errorf("schema: decode %s: %w", origin, err)
		}
		raw = converted
	}
	cfg, err := Decode(raw)
	if err != nil {
		return FormConfig{}, fmt.Errorf("%w (from %s)", err, origin)
	}
	return cfg, nil
}

// LoadFile reads and decodes a JSON or YAML configuration from disk.
func LoadFile(path string) (FormConfig, error) {
	origin := FromFile(path)
	raw, err := os.ReadFile(origin.Location)
	if err != nil {
		return FormConfig{}, fmt.Errorf("schema: read %s: %w", origin.Location, err)
	}
	return DecodeFrom(origin, raw)
}

// LoadFS reads and decodes a configuration stored in fsys.
func LoadFS(fsys fs.FS, name string) (FormConfig, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return FormConfig{}, fmt.Errorf("schema: read %s: %w", name, err)
	}
	return DecodeFrom(FromFS(name), raw)
}

// Validate enforces the structural invariants of a form configuration.
func Validate(cfg FormConfig) error {
	var errs []error
	seen := make(map[string]struct{}, len(cfg.Fields))
	for idx, field := range cfg.Fields {
		if field.Name == "" {
			errs = append(errs, fmt.Errorf("%w (index %d)", ErrMissingFieldName, idx))
			continue
		}
		if _, dup := seen[field.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateFieldName, field.Name))
		}
		seen[field.Name] = struct{}{}

		if _, err := ParseFieldKind(string(field.Type)); err != nil {
			errs = append(errs, fmt.Errorf("field %q: %w", field.Name, err))
			continue
		}
		if !field.IsChoice() {
			continue
		}
		if len(field.Options) == 0 {
			errs = append(errs, fmt.Errorf("%w: %q", ErrMissingOptions, field.Name))
			continue
		}
		values := make(map[string]struct{}, len(field.Options))
		for _, option := range field.Options {
			if _, dup := values[option.Value]; dup {
				errs = append(errs, fmt.Errorf("%w: field %q value %q", ErrDuplicateOption, field.Name, option.Value))
			}
			values[option.Value] = struct{}{}
		}
	}

	tiers := make(map[ID]struct{}, len(cfg.PricingTiers))
	for _, tier := range cfg.PricingTiers {
		if _, dup := tiers[tier.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateTier, tier.ID))
		}
		tiers[tier.ID] = struct{}{}
	}
	return errors.Join(errs...)
}

func normalizeKinds(cfg *FormConfig) {
	for idx := range cfg.Fields {
		if kind, err := ParseFieldKind(string(cfg.Fields[idx].Type)); err == nil {
			cfg.Fields[idx].Type = kind
		}
	}
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}
