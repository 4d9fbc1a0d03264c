package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-orderform/pkg/attachments"
	"github.com/goliatone/go-orderform/pkg/pricing"
	"github.com/goliatone/go-orderform/pkg/render"
	rendertemplate "github.com/goliatone/go-orderform/pkg/render/template"
	"github.com/goliatone/go-orderform/pkg/render/template/pongo"
	"github.com/goliatone/go-orderform/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-orderform/pkg/schema"
)

// Routes are the form's submit targets. RemoveFile must contain "{id}";
// Preview is a prefix the preview handle is appended to.
type Routes struct {
	Submit     string
	Price      string
	Upload     string
	RemoveFile string
	Preview    string
}

// DefaultRoutes match the web app's mount points.
func DefaultRoutes() Routes {
	return Routes{
		Submit:     "/order",
		Price:      "/order/price",
		Upload:     "/order/files",
		RemoveFile: "/order/files/{id}/delete",
		Preview:    "/order/previews/",
	}
}

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	components       *components.Registry
	theme            *theme.RendererConfig
	classes          ChromeClasses
	money            pricing.Formatter
	routes           Routes
	stylesheets      []string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponents replaces the default component registry.
func WithComponents(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.components = registry
		}
	}
}

// WithTheme applies theme tokens as CSS variables and theme partials as
// component template overrides.
func WithTheme(theme *theme.RendererConfig) Option {
	return func(cfg *config) {
		cfg.theme = theme
	}
}

// WithChromeClasses overrides the chrome CSS classes.
func WithChromeClasses(classes ChromeClasses) Option {
	return func(cfg *config) {
		cfg.classes = classes
	}
}

// WithFormatter sets the money formatter used for tier prices and option
// hints.
func WithFormatter(f pricing.Formatter) Option {
	return func(cfg *config) {
		cfg.money = f
	}
}

// WithRoutes overrides the form targets.
func WithRoutes(routes Routes) Option {
	return func(cfg *config) {
		cfg.routes = routes
	}
}

// WithStylesheets links extra stylesheets ahead of the form.
func WithStylesheets(hrefs ...string) Option {
	return func(cfg *config) {
		cfg.stylesheets = append(cfg.stylesheets, hrefs...)
	}
}

// Renderer produces the server-rendered HTML order form.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	cfg       config
}

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		money:      pricing.NewFormatter("en-US", "$"),
		routes:     DefaultRoutes(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.components == nil {
		cfg.components = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(pongo.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}
	return &Renderer{templates: renderer, cfg: cfg}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render implements render.Renderer.
func (r *Renderer) Render(ctx context.Context, page render.Page, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := render.LocalizeConfig(page.Config, opts)

	var partials map[string]string
	if r.cfg.theme != nil {
		partials = r.cfg.theme.Partials
	}
	fields := newComponentRenderer(r.templates, r.cfg.components, partials, r.cfg.money)
	fieldsHTML, err := fields.renderAll(cfg.Fields, page.Values, opts.Errors)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}

	data := map[string]any{
		"action":          firstNonEmpty(opts.Action, r.cfg.routes.Submit),
		"price_action":    r.cfg.routes.Price,
		"classes":         r.cfg.classes.resolve(),
		"css_vars":        r.cssVars(),
		"stylesheets":     r.stylesheets(fields),
		"hidden":          hiddenView(opts.Hidden),
		"notices":         noticesView(opts.Notices),
		"form_errors":     opts.FormErrors,
		"errors":          opts.Errors,
		"fields_html":     fieldsHTML,
		"tiers":           r.tiersView(cfg, page),
		"payment_methods": paymentView(cfg, page),
		"deadline":        deadlineView(page.Deadline),
		"files":           r.filesView(page.Files, page.Limits),
		"price":           page.Price,
		"customer_notes":  page.CustomerNotes,
		"submitting":      page.Submitting,
		"text":            textView(opts),
	}

	result, err := r.templates.RenderTemplate("templates/form.tpl", data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) cssVars() string {
	if r.cfg.theme == nil {
		return ""
	}
	return cssVarsStyle(r.cfg.theme.CSSVars)
}

// ThemeStylesheetKey is the theme asset key linked ahead of the form.
const ThemeStylesheetKey = "orderform.stylesheet"

func (r *Renderer) stylesheets(fields *componentRenderer) []string {
	out := append([]string(nil), r.cfg.stylesheets...)
	if r.cfg.theme != nil && r.cfg.theme.AssetURL != nil {
		if href := r.cfg.theme.AssetURL(ThemeStylesheetKey); href != "" {
			out = append(out, href)
		}
	}
	return append(out, fields.stylesheets()...)
}

func (r *Renderer) tiersView(cfg schema.FormConfig, page render.Page) []map[string]any {
	out := make([]map[string]any, 0, len(cfg.PricingTiers))
	for _, tier := range cfg.PricingTiers {
		out = append(out, map[string]any{
			"id":          tier.ID.String(),
			"name":        tier.Name,
			"description": tier.Description,
			"price":       r.cfg.money.Money(tier.BasePricePerPage) + "/page",
			"checked":     tier.ID == page.PricingTierID,
		})
	}
	return out
}

func paymentView(cfg schema.FormConfig, page render.Page) []map[string]any {
	out := make([]map[string]any, 0, len(cfg.PaymentMethods))
	for _, method := range cfg.PaymentMethods {
		out = append(out, map[string]any{
			"id":          method.ID.String(),
			"name":        method.Name,
			"description": method.Description,
			"checked":     method.ID == page.PaymentMethodID,
		})
	}
	return out
}

func deadlineView(view render.DeadlineView) map[string]any {
	zone := firstNonEmpty(view.Selection.Timezone, view.LocalZone)
	minTime := ""
	if view.Selection.Date == "" || view.Selection.Date == view.MinDate {
		minTime = view.MinTime
	}
	return map[string]any{
		"date":     view.Selection.Date,
		"time":     view.Selection.Time,
		"timezone": zone,
		"min_date": view.MinDate,
		"min_time": minTime,
		"advisory": view.Advisory,
		"zones":    view.Zones,
	}
}

func (r *Renderer) filesView(files []attachments.File, limits attachments.Limits) map[string]any {
	if limits.MaxFiles <= 0 {
		limits = attachments.DefaultLimits()
	}
	var total int64
	items := make([]map[string]any, 0, len(files))
	for _, file := range files {
		total += file.Size
		preview := ""
		if file.Preview != "" {
			preview = r.cfg.routes.Preview + file.Preview
		}
		items = append(items, map[string]any{
			"id":            file.ID,
			"name":          file.Name,
			"size":          file.Size,
			"preview":       preview,
			"remove_action": strings.ReplaceAll(r.cfg.routes.RemoveFile, "{id}", file.ID),
		})
	}
	return map[string]any{
		"items": items,
		"summary": fmt.Sprintf("%d of %d files, %s of %s used. Max %s per file.",
			len(files), limits.MaxFiles,
			attachments.HumanSize(total), attachments.HumanSize(limits.MaxTotalSize),
			attachments.HumanSize(limits.MaxFileSize)),
		"can_add":       len(files) < limits.MaxFiles,
		"accept":        limits.Accept(),
		"upload_action": r.cfg.routes.Upload,
	}
}

func hiddenView(hidden map[string]string) []map[string]string {
	fields := render.SortedHiddenFields(hidden)
	out := make([]map[string]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, map[string]string{"name": field.Name, "value": field.Value})
	}
	return out
}

func noticesView(notices []render.Notice) []map[string]any {
	out := make([]map[string]any, 0, len(notices))
	for _, notice := range notices {
		level := notice.Level
		if level == "" {
			level = render.LevelSuccess
		}
		out = append(out, map[string]any{"level": string(level), "lines": splitLines(notice.Message)})
	}
	return out
}

func textView(opts render.RenderOptions) map[string]string {
	defaults := map[string]string{
		"tier_legend":       "Academic level",
		"details_legend":    "Paper details",
		"deadline_legend":   "Deadline",
		"deadline_date":     "Date",
		"deadline_time":     "Time",
		"deadline_timezone": "Timezone",
		"files_legend":      "Attachments",
		"add_files":         "Add files",
		"remove":            "Remove",
		"price_heading":     "Price",
		"refresh_price":     "Update price",
		"payment_legend":    "Payment method",
		"notes_label":       "Notes for the writer",
		"submit":            "Create order",
		"submitting":        "Creating order...",
	}
	out := make(map[string]string, len(defaults))
	for key, fallback := range defaults {
		out[key] = render.Text(opts, "form."+key, fallback)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

var _ render.Renderer = (*Renderer)(nil)
