// Package webapp hosts the order form over HTTP.
//
// Each visitor gets a server-side session holding their form values, staged
// attachments, price quote and submission state. Every button on the form
// posts the whole form, so each POST first folds the posted values into the
// session and then performs its action.
package webapp

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-orderform/components/timezones"
	"github.com/goliatone/go-orderform/internal/logging"
	"github.com/goliatone/go-orderform/pkg/attachments"
	"github.com/goliatone/go-orderform/pkg/deadline"
	"github.com/goliatone/go-orderform/pkg/pricing"
	"github.com/goliatone/go-orderform/pkg/render"
	"github.com/goliatone/go-orderform/pkg/render/template/pongo"
	"github.com/goliatone/go-orderform/pkg/schema"
	"github.com/goliatone/go-orderform/pkg/submission"
)

//go:embed templates/*.tpl
var templatesFS embed.FS

// OrderAPI is everything the web app needs from the order API.
// *client.Client satisfies it.
type OrderAPI interface {
	FormConfig(ctx context.Context) (schema.FormConfig, error)
	pricing.Calculator
	submission.OrderAPI
}

// Option customises an App.
type Option func(*App)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRenderers sets the renderer registry and the fallback renderer name.
func WithRenderers(registry *render.Registry, fallback string) Option {
	return func(a *App) {
		if registry != nil {
			a.renderers = registry
		}
		if fallback != "" {
			a.fallback = fallback
		}
	}
}

// WithFormatter sets the money formatter for the price preview.
func WithFormatter(f pricing.Formatter) Option {
	return func(a *App) {
		a.money = f
	}
}

// WithLimits sets the attachment limits for new sessions.
func WithLimits(limits attachments.Limits) Option {
	return func(a *App) {
		a.limits = limits
	}
}

// WithLeadTime sets the minimum deadline lead time.
func WithLeadTime(lead time.Duration) Option {
	return func(a *App) {
		if lead >= 0 {
			a.lead = lead
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// WithZones limits the deadline timezone list.
func WithZones(zones []string) Option {
	return func(a *App) {
		a.zones = zones
	}
}

// WithLocalZone sets the zone deadline advisories are expressed in.
func WithLocalZone(zone string) Option {
	return func(a *App) {
		if zone != "" {
			a.localZone = zone
		}
	}
}

// WithSessionTTL sets how long idle sessions are kept.
func WithSessionTTL(ttl time.Duration) Option {
	return func(a *App) {
		if ttl > 0 {
			a.sessionTTL = ttl
		}
	}
}

// WithRequestTimeout bounds each request.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(a *App) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

// WithTranslator localises rendered labels.
func WithTranslator(locale string, translator render.Translator) Option {
	return func(a *App) {
		a.locale = locale
		a.translator = translator
	}
}

// WithKeyGenerator overrides idempotency key generation for submissions.
func WithKeyGenerator(fn func() string) Option {
	return func(a *App) {
		a.newKey = fn
	}
}

// WithAssets serves files under /assets/.
func WithAssets(files fs.FS) Option {
	return func(a *App) {
		a.assets = files
	}
}

// App is the order form web frontend.
type App struct {
	api        OrderAPI
	logger     *zap.Logger
	renderers  *render.Registry
	fallback   string
	pages      *pongo.Engine
	money      pricing.Formatter
	limits     attachments.Limits
	previews   *attachments.MemoryPreviews
	sessions   *sessionStore
	lead       time.Duration
	now        func() time.Time
	zones      []string
	localZone  string
	sessionTTL time.Duration
	timeout    time.Duration
	locale     string
	translator render.Translator
	newKey     func() string
	assets     fs.FS
}

// New builds the app. A renderer registry holding the HTML renderer is
// required; see WithRenderers.
func New(api OrderAPI, opts ...Option) (*App, error) {
	if api == nil {
		return nil, errors.New("webapp: order api is required")
	}
	a := &App{
		api:        api,
		logger:     zap.NewNop(),
		fallback:   "vanilla",
		money:      pricing.NewFormatter("en-US", "$"),
		limits:     attachments.DefaultLimits(),
		lead:       deadline.DefaultLeadTime,
		now:        time.Now,
		localZone:  timezones.Detect(),
		sessionTTL: 2 * time.Hour,
		timeout:    30 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	if a.renderers == nil || !a.renderers.Has(a.fallback) {
		return nil, errors.New("webapp: renderer registry with a fallback renderer is required")
	}
	if len(a.zones) == 0 {
		zones, err := timezones.DefaultZones()
		if err != nil {
			return nil, err
		}
		a.zones = zones
	}

	pagesFS, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	pages, err := pongo.New(pongo.WithFS(pagesFS))
	if err != nil {
		return nil, err
	}
	a.pages = pages
	a.previews = attachments.NewMemoryPreviews(a.limits.MaxFileSize)
	a.sessions = newSessionStore(a.sessionTTL, a.now, a.newSession)
	return a, nil
}

// Routes returns the HTTP handler.
func (a *App) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(a.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(a.timeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/order", http.StatusFound)
	})
	r.Get("/order", a.showForm)
	r.Post("/order", a.submit)
	r.Post("/order/price", a.price)
	r.Post("/order/files", a.upload)
	r.Post("/order/files/{id}/delete", a.removeFile)
	r.Get("/order/previews/{handle}", a.preview)
	r.Get("/order-confirmation", a.confirmation)
	if a.assets != nil {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServerFS(a.assets)))
	}

	if _, err := timezones.RegisterRoutes(r, "", timezones.WithZones(a.zones), timezones.WithPreferred(a.localZone)); err != nil {
		a.logger.Error("mount timezones", zap.Error(err))
	}
	return r
}

// Close releases every session's staged files.
func (a *App) Close() error {
	a.sessions.closeAll()
	return nil
}
