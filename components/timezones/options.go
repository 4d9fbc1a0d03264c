package timezones

import "time"

// Path is where RegisterRoutes mounts the lookup handler, relative to the
// base path.
const Path = "/api/timezones"

// Options configures search and the lookup handler.
type Options struct {
	SearchParam  string
	LimitParam   string
	DefaultLimit int
	MaxLimit     int
	// Preferred leads empty searches; usually the detected local zone.
	Preferred string
	// Now is the instant offsets are computed for.
	Now   func() time.Time
	Zones []string
}

// OptionFn mutates Options.
type OptionFn func(*Options)

// NewOptions applies fns over the defaults and repairs invalid values.
func NewOptions(fns ...OptionFn) Options {
	opts := Options{
		SearchParam:  "q",
		LimitParam:   "limit",
		DefaultLimit: 50,
		MaxLimit:     200,
		Now:          time.Now,
	}
	for _, fn := range fns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 50
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = opts.DefaultLimit
	}
	if opts.SearchParam == "" {
		opts.SearchParam = "q"
	}
	if opts.LimitParam == "" {
		opts.LimitParam = "limit"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

// WithDefaultLimit sets the result count used when no limit is requested.
func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) { o.DefaultLimit = limit }
}

// WithMaxLimit caps the limit a caller may request.
func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) { o.MaxLimit = limit }
}

// WithPreferred pins zone to the top of empty searches.
func WithPreferred(zone string) OptionFn {
	return func(o *Options) { o.Preferred = zone }
}

// WithClock overrides the instant used for offsets.
func WithClock(now func() time.Time) OptionFn {
	return func(o *Options) { o.Now = now }
}

// WithZones replaces the embedded list.
func WithZones(zones []string) OptionFn {
	return func(o *Options) { o.Zones = append([]string(nil), zones...) }
}

func (o Options) limit(requested int) int {
	switch {
	case requested <= 0:
		return o.DefaultLimit
	case requested > o.MaxLimit:
		return o.MaxLimit
	default:
		return requested
	}
}

func (o Options) zones() ([]string, error) {
	if len(o.Zones) > 0 {
		return o.Zones, nil
	}
	return DefaultZones()
}
