package tui

import (
	"time"

	"github.com/goliatone/go-orderform/pkg/attachments"
	"github.com/goliatone/go-orderform/pkg/pricing"
)

// OutputFormat controls how collected answers are serialized by Render.
type OutputFormat string

const (
	// OutputFormatJSON emits the create-order shaped JSON payload.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatPrettyText emits a human-friendly summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures message prefixes the wizard applies when printing.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithCollector stages attachment paths into c as they are entered, so
// rejections are reported immediately.
func WithCollector(c *attachments.Collector) Option {
	return func(r *Renderer) {
		r.collector = c
	}
}

// WithClock overrides the deadline picker's clock.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLeadTime overrides the minimum deadline lead time.
func WithLeadTime(lead time.Duration) Option {
	return func(r *Renderer) {
		if lead > 0 {
			r.lead = lead
		}
	}
}

// WithLocalZone fixes the zone treated as the user's own.
func WithLocalZone(zone string) Option {
	return func(r *Renderer) {
		r.localZone = zone
	}
}

// WithZones limits the timezone prompt to zones.
func WithZones(zones []string) Option {
	return func(r *Renderer) {
		r.zones = zones
	}
}

// WithFormatter sets the money formatter used for tier and option hints.
func WithFormatter(f pricing.Formatter) Option {
	return func(r *Renderer) {
		r.money = f
	}
}
