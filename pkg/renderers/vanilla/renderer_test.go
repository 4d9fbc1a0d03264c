package vanilla_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-orderform/components/timezones"
	"github.com/goliatone/go-orderform/pkg/attachments"
	"github.com/goliatone/go-orderform/pkg/deadline"
	"github.com/goliatone/go-orderform/pkg/form"
	"github.com/goliatone/go-orderform/pkg/pricing"
	"github.com/goliatone/go-orderform/pkg/render"
	"github.com/goliatone/go-orderform/pkg/renderers/vanilla"
	"github.com/goliatone/go-orderform/pkg/testsupport"
)

func newPage(t *testing.T) render.Page {
	t.Helper()
	cfg := testsupport.FormConfig(t)
	return render.Page{
		Config: cfg,
		Values: form.Values{
			"topic":      "History of <b>Rome</b>",
			"pages":      5,
			"paper_type": "research",
			"extras":     []string{"outline"},
		},
		PricingTierID:   "2",
		PaymentMethodID: "paypal",
		CustomerNotes:   "Use APA",
		Deadline: render.DeadlineView{
			Selection: deadline.Selection{Date: "2026-03-12", Time: "17:00", Timezone: "UTC"},
			MinDate:   "2026-03-10",
			MinTime:   "13:00",
			Advisory:  "That is Thu, Mar 12, 2026 at 6:00 PM in your local time (Europe/Madrid)",
			LocalZone: "Europe/Madrid",
			Zones: []timezones.Option{
				{Value: "Europe/Madrid", Label: "Europe/Madrid (UTC+01:00)"},
				{Value: "UTC", Label: "UTC (UTC+00:00)"},
			},
		},
		Files: []attachments.File{
			{ID: "f1", Name: "outline.pdf", Size: 2 << 20, ContentType: "application/pdf"},
			{ID: "f2", Name: "chart.png", Size: 512, ContentType: "image/png", Preview: "h2"},
		},
		Limits: attachments.DefaultLimits(),
		Price: []pricing.Line{
			{Label: "Base price", Detail: "5 pages × $15.00", Amount: "$75.00"},
			{Label: "Total", Amount: "$90.00", Total: true},
		},
	}
}

func renderPage(t *testing.T, r *vanilla.Renderer, page render.Page, opts render.RenderOptions) string {
	t.Helper()
	out, err := r.Render(context.Background(), page, opts)
	require.NoError(t, err)
	return string(out)
}

func TestRenderer_Metadata(t *testing.T) {
	r, err := vanilla.New()
	require.NoError(t, err)
	assert.Equal(t, "vanilla", r.Name())
	assert.Equal(t, "text/html; charset=utf-8", r.ContentType())
}

func TestRenderer_RendersFieldsWithValues(t *testing.T) {
	r, err := vanilla.New()
	require.NoError(t, err)

	html := renderPage(t, r, newPage(t), render.RenderOptions{})

	assert.Contains(t, html, `id="of-topic" name="topic" value="History of &lt;b&gt;Rome&lt;/b&gt;"`)
	assert.Contains(t, html, `type="number" id="of-pages" name="pages" value="5" min="1" max="200"`)
	assert.Contains(t, html, `<option value="research" selected>Research paper (×1.2)</option>`)
	assert.Contains(t, html, `value="outline" checked`)
	assert.Contains(t, html, `<span class="orderform-hint">+$5.00</span>`)
	assert.Contains(t, html, `<span class="orderform-required" aria-hidden="true">*</span>`)
	assert.Contains(t, html, `Roughly <strong>275 words</strong> per page.`)
	assert.Contains(t, html, `>Use APA</textarea>`)
}

func TestRenderer_FieldOrderFollowsSchema(t *testing.T) {
	r, err := vanilla.New()
	require.NoError(t, err)

	html := renderPage(t, r, newPage(t), render.RenderOptions{})

	order := []string{`data-field="topic"`, `data-field="pages"`, `data-field="paper_type"`, `data-field="spacing"`, `data-field="extras"`, `data-field="instructions"`}
	last := -1
	for _, marker := range order {
		idx := strings.Index(html, marker)
		require.GreaterOrEqual(t, idx, 0, "missing %s", marker)
		assert.Greater(t, idx, last, "%s out of order", marker)
		last = idx
	}
}

func TestRenderer_OrderSections(t *testing.T) {
	r, err := vanilla.New()
	require.NoError(t, err)

	html := renderPage(t, r, newPage(t), render.RenderOptions{
		Hidden: render.MergeHiddenFields(nil, render.CSRFToken("tok")),
	})

	assert.Contains(t, html, `<input type="hidden" name="csrf_token" value="tok">`)
	assert.Contains(t, html, `name="pricing_tier_id" value="2" checked required`)
	assert.Contains(t, html, `$15.00/page`)
	assert.Contains(t, html, `name="payment_method_id" value="paypal" checked required`)
	assert.Contains(t, html, `value="2026-03-12" min="2026-03-10" required`)
	assert.NotContains(t, html, `min="13:00"`, "min time applies only on the minimum day")
	assert.Contains(t, html, `<option value="UTC" selected>UTC (UTC+00:00)</option>`)
	assert.Contains(t, html, `in your local time (Europe/Madrid)`)
	assert.Contains(t, html, `formaction="/order/files/f1/delete"`)
	assert.Contains(t, html, `<img src="/order/previews/h2"`)
	assert.Contains(t, html, `2 of 5 files`)
	assert.Contains(t, html, `<dd>$90.00</dd>`)
	assert.Contains(t, html, `orderform-price-line--total`)
	assert.Contains(t, html, `>Create order</button>`)
}

func TestRenderer_MinTimeOnMinimumDay(t *testing.T) {
	r, err := vanilla.New()
	require.NoError(t, err)

	page := newPage(t)
	page.Deadline.Selection.Date = "2026-03-10"
	html := renderPage(t, r, page, render.RenderOptions{})

	assert.Contains(t, html, `min="13:00"`)
}

func TestRenderer_ErrorsAndNotices(t *testing.T) {
	r, err := vanilla.New()
	require.NoError(t, err)

	html := renderPage(t, r, newPage(t), render.RenderOptions{
		Errors: map[string][]string{
			"pages":    {"Ensure this value is less than or equal to 200."},
			"deadline": {"Please choose a deadline at least 1 hour from now"},
		},
		FormErrors: []string{"Failed to create order. Please try again."},
		Notices: []render.Notice{{
			Level:   render.LevelError,
			Message: "The following files could not be added:\n- big.zip: File size exceeds 10MB limit",
		}},
	})

	assert.Contains(t, html, `aria-invalid="true" aria-describedby="of-pages-error"`)
	assert.Contains(t, html, `id="of-pages-error">Ensure this value is less than or equal to 200.</p>`)
	assert.Contains(t, html, `id="of-deadline-error">Please choose a deadline at least 1 hour from now</p>`)
	assert.Contains(t, html, `<li>Failed to create order. Please try again.</li>`)
	assert.Contains(t, html, `orderform-notice--error" role="alert">The following files could not be added:<br>- big.zip: File size exceeds 10MB limit</div>`)
}

func TestRenderer_Submitting(t *testing.T) {
	r, err := vanilla.New()
	require.NoError(t, err)

	page := newPage(t)
	page.Submitting = true
	html := renderPage(t, r, page, render.RenderOptions{})

	assert.Contains(t, html, `disabled aria-busy="true">Creating order...</button>`)
}

func TestRenderer_HidesUploadWhenFull(t *testing.T) {
	r, err := vanilla.New()
	require.NoError(t, err)

	page := newPage(t)
	page.Limits.MaxFiles = 2
	html := renderPage(t, r, page, render.RenderOptions{})

	assert.NotContains(t, html, `type="file"`)
}

func TestRenderer_Translations(t *testing.T) {
	translator, err := render.NewCatalogTranslator(map[string]map[string]string{
		"es": {
			"fields.topic.label": "Tema",
			"form.submit":        "Crear pedido",
		},
	})
	require.NoError(t, err)

	r, err := vanilla.New()
	require.NoError(t, err)
	html := renderPage(t, r, newPage(t), render.RenderOptions{Locale: "es", Translator: translator})

	assert.Contains(t, html, `for="of-topic">Tema`)
	assert.Contains(t, html, `>Crear pedido</button>`)
	assert.Contains(t, html, `Paper details`)
}

func TestRenderer_ThemeOverrides(t *testing.T) {
	templates := fstest.MapFS{}
	for _, name := range []string{"templates/form.tpl", "templates/components/input.tpl", "templates/components/textarea.tpl", "templates/components/select.tpl", "templates/components/choices.tpl"} {
		data, err := vanilla.ReadTemplate(name)
		require.NoError(t, err)
		templates[name] = &fstest.MapFile{Data: data}
	}
	templates["themes/acme/select.tpl"] = &fstest.MapFile{Data: []byte(`<acme-select name="{{ name }}"></acme-select>`)}

	cfg := vanilla.ThemeConfig(&theme.Selection{
		Theme:   "acme",
		Variant: "dark",
		Manifest: &theme.Manifest{
			Name:      "acme",
			Version:   "1.0.0",
			Tokens:    map[string]string{"brand": "#123456"},
			Templates: map[string]string{"forms.select": "themes/acme/select.tpl"},
			Assets: theme.Assets{
				Prefix: "/assets/themes/acme",
				Files:  map[string]string{vanilla.ThemeStylesheetKey: "orderform.css"},
			},
			Variants: map[string]theme.Variant{
				"dark": {Tokens: map[string]string{"brand": "#654321"}},
			},
		},
	})

	r, err := vanilla.New(vanilla.WithTemplatesFS(templates), vanilla.WithTheme(cfg))
	require.NoError(t, err)
	html := renderPage(t, r, newPage(t), render.RenderOptions{})

	assert.Contains(t, html, `--brand: #654321;`)
	assert.Contains(t, html, `<link rel="stylesheet" href="/assets/themes/acme/orderform.css">`)
	assert.Contains(t, html, `<acme-select name="paper_type"></acme-select>`)
}

func TestRenderer_ChromeClasses(t *testing.T) {
	r, err := vanilla.New(vanilla.WithChromeClasses(vanilla.ChromeClasses{Form: "card of-ignored"}))
	require.NoError(t, err)

	html := renderPage(t, r, newPage(t), render.RenderOptions{})
	assert.Contains(t, html, `<form class="card" method="post" action="/order"`)
}

func TestAssetsFS_ContainsStylesheet(t *testing.T) {
	data, err := fsReadFile(vanilla.StylesheetName)
	require.NoError(t, err)
	assert.Contains(t, string(data), ".orderform-form")
}
