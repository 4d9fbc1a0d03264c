package webapp

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-orderform/pkg/attachments"
	"github.com/goliatone/go-orderform/pkg/client"
	"github.com/goliatone/go-orderform/pkg/pricing"
	"github.com/goliatone/go-orderform/pkg/render"
	"github.com/goliatone/go-orderform/pkg/renderers/vanilla"
	"github.com/goliatone/go-orderform/pkg/schema"
	"github.com/goliatone/go-orderform/pkg/testsupport"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)

type fakeAPI struct {
	cfg schema.FormConfig

	mu        sync.Mutex
	created   []client.CreateOrderRequest
	uploaded  [][]attachments.File
	quotes    []pricing.Request
	createErr error
}

func (f *fakeAPI) FormConfig(context.Context) (schema.FormConfig, error) {
	return f.cfg, nil
}

func (f *fakeAPI) CalculatePrice(_ context.Context, req pricing.Request) (pricing.Breakdown, error) {
	f.mu.Lock()
	f.quotes = append(f.quotes, req)
	f.mu.Unlock()
	return pricing.Breakdown{
		BasePrice:       decimal.RequireFromString("75.00"),
		TotalMultiplier: decimal.RequireFromString("1.20"),
		TotalAddition:   decimal.Zero,
		FinalPrice:      decimal.RequireFromString("90.00"),
		PricingBreakdown: pricing.Details{
			Pages:              5,
			PricePerPage:       decimal.RequireFromString("15.00"),
			DeadlineMultiplier: decimal.NewFromInt(1),
		},
	}, nil
}

func (f *fakeAPI) CreateOrder(_ context.Context, req client.CreateOrderRequest) (client.CreateOrderResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return client.CreateOrderResponse{}, f.createErr
	}
	f.created = append(f.created, req)
	return client.CreateOrderResponse{OrderID: "42", OrderNumber: "EET-0042"}, nil
}

func (f *fakeAPI) UploadFiles(_ context.Context, _ schema.ID, files []attachments.File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, files)
	return nil
}

type harness struct {
	t      *testing.T
	app    *App
	api    *fakeAPI
	server http.Handler
	cookie *http.Cookie
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := &fakeAPI{cfg: testsupport.FormConfig(t)}

	html, err := vanilla.New()
	require.NoError(t, err)
	registry := render.NewRegistry()
	registry.MustRegister(html)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	app, err := New(api,
		WithRenderers(registry, "vanilla"),
		WithClock(func() time.Time { return now }),
		WithZones([]string{"UTC", "America/New_York"}),
		WithLocalZone("UTC"),
		WithKeyGenerator(func() string { return "key-1" }),
		WithAssets(vanilla.AssetsFS()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	h := &harness{t: t, app: app, api: api, server: app.Routes()}
	h.get("/order")
	require.NotNil(t, h.cookie, "expected a session cookie")
	return h
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	h.t.Helper()
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rec := httptest.NewRecorder()
	h.server.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			h.cookie = c
		}
	}
	return rec
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (h *harness) session() *session {
	h.t.Helper()
	s, ok := h.app.sessions.get(h.cookie.Value)
	require.True(h.t, ok)
	return s
}

func (h *harness) postForm(path string, values url.Values, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return h.do(req)
}

type upload struct {
	name string
	data []byte
}

func (h *harness) postMultipart(path string, values url.Values, files ...upload) *httptest.ResponseRecorder {
	h.t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, list := range values {
		for _, value := range list {
			require.NoError(h.t, writer.WriteField(key, value))
		}
	}
	for _, file := range files {
		part, err := writer.CreateFormFile("files", file.name)
		require.NoError(h.t, err)
		_, err = part.Write(file.data)
		require.NoError(h.t, err)
	}
	require.NoError(h.t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return h.do(req)
}

func (h *harness) order() url.Values {
	return url.Values{
		render.CSRFFieldName: {h.session().csrf},
		"pricing_tier_id":    {"2"},
		"payment_method_id":  {"paypal"},
		"topic":              {"Climate change"},
		"pages":              {"5"},
		"paper_type":         {"essay"},
		"deadline_date":      {"2026-03-11"},
		"deadline_time":      {"12:00"},
		"deadline_timezone":  {"America/New_York"},
	}
}

func TestShowForm(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/order")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `name="csrf_token" value="`+h.session().csrf+`"`)
	assert.Contains(t, body, `name="pricing_tier_id"`)
	assert.Contains(t, body, `value="paypal" checked`)
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	rec := h.get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAssetsAreServed(t *testing.T) {
	h := newHarness(t)
	rec := h.get("/assets/" + vanilla.StylesheetName)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "--of-brand")
}

func TestTimezonesAPIIsMounted(t *testing.T) {
	h := newHarness(t)
	rec := h.get("/api/timezones?q=new_york")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "America/New_York")
}

func TestSubmit_RejectsMissingCSRF(t *testing.T) {
	h := newHarness(t)
	values := h.order()
	values.Del(render.CSRFFieldName)

	rec := h.postForm("/order", values, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, h.api.created)
}

func TestSubmit_EndToEnd(t *testing.T) {
	h := newHarness(t)

	rec := h.postMultipart("/order", h.order(), upload{name: "notes.txt", data: []byte("hello world")})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/order-confirmation?order_id=42", rec.Header().Get("Location"))

	require.Len(t, h.api.created, 1)
	created := h.api.created[0]
	assert.Equal(t, "Climate change", created.FormData["topic"])
	assert.Equal(t, 5, created.FormData["pages"])
	assert.Equal(t, schema.ID("2"), created.PricingTierID)
	assert.Equal(t, schema.ID("paypal"), created.PaymentMethodID)
	assert.Equal(t, "2026-03-11T12:00", created.Deadline)
	assert.Equal(t, "America/New_York", created.DeadlineTimezone)
	assert.Equal(t, "key-1", created.IdempotencyKey)

	require.Len(t, h.api.uploaded, 1)
	assert.Equal(t, "notes.txt", h.api.uploaded[0][0].Name)
	assert.Equal(t, 0, h.session().files.Len(), "staged files cleared after submit")

	confirmation := h.get(rec.Header().Get("Location"))
	require.Equal(t, http.StatusOK, confirmation.Code)
	assert.Contains(t, confirmation.Body.String(), `data-order-id="42"`)
	assert.Contains(t, confirmation.Body.String(), "Order created successfully!")
}

func TestSubmit_MissingRequiredField(t *testing.T) {
	h := newHarness(t)
	values := h.order()
	values.Del("topic")

	rec := h.postForm("/order", values, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please fill in Topic")
	assert.Empty(t, h.api.created)
}

func TestSubmit_MapsServerFieldErrors(t *testing.T) {
	h := newHarness(t)
	h.api.createErr = &client.APIError{
		Op:      "CreateOrder",
		Status:  http.StatusBadRequest,
		Message: "Invalid order data",
		Fields:  map[string][]string{"form_data.pages": {"Too many pages"}},
	}

	rec := h.postForm("/order", h.order(), "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Invalid order data")
	assert.Contains(t, body, "Too many pages")
}

func TestPrice_JSON(t *testing.T) {
	h := newHarness(t)

	rec := h.postForm("/order/price", h.order(), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload struct {
		Lines []pricing.Line `json:"lines"`
		Total string         `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "$90.00", payload.Total)
	require.NotEmpty(t, payload.Lines)
	assert.Equal(t, "Base price", payload.Lines[0].Label)

	require.Len(t, h.api.quotes, 1)
	assert.Equal(t, schema.ID("2"), h.api.quotes[0].PricingTierID)
	assert.Equal(t, 28, h.api.quotes[0].DeadlineHours)
}

func TestPrice_RequiresTier(t *testing.T) {
	h := newHarness(t)
	values := h.order()
	values.Del("pricing_tier_id")

	rec := h.postForm("/order/price", values, "application/json")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please select an academic level")
}

func TestQuoteFailure_Stale(t *testing.T) {
	status, _ := quoteFailure(pricing.ErrStale)
	assert.Equal(t, http.StatusConflict, status)
}

func TestUpload_StagesAndPreviewsImages(t *testing.T) {
	h := newHarness(t)

	rec := h.postMultipart("/order/files", h.order(), upload{name: "scan.png", data: pngBytes})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	files := h.session().files.Files()
	require.Len(t, files, 1)
	assert.Equal(t, "image/png", files[0].ContentType)
	require.NotEmpty(t, files[0].Preview)

	preview := h.get("/order/previews/" + files[0].Preview)
	assert.Equal(t, http.StatusOK, preview.Code)
	assert.Equal(t, "image/png", preview.Header().Get("Content-Type"))

	page := h.get("/order")
	assert.Contains(t, page.Body.String(), "scan.png")

	remove := h.postForm("/order/files/"+files[0].ID+"/delete", h.order(), "")
	require.Equal(t, http.StatusSeeOther, remove.Code)
	assert.Equal(t, 0, h.session().files.Len())
	assert.Equal(t, http.StatusNotFound, h.get("/order/previews/"+files[0].Preview).Code)
}

func TestUpload_ReportsRejections(t *testing.T) {
	h := newHarness(t)

	rec := h.postMultipart("/order/files", h.order(), upload{name: "tool.exe", data: []byte("MZ\x90\x00\x03\x00\x00\x00")})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 0, h.session().files.Len())

	page := h.get("/order")
	assert.Contains(t, page.Body.String(), "The following files could not be added:")
}

func TestConfirmation_RequiresOrderID(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusBadRequest, h.get("/order-confirmation").Code)
}

func TestSessionStore_ExpiresIdleSessions(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	var n int
	store := newSessionStore(time.Hour, func() time.Time { return now }, func() *session {
		n++
		return &session{id: string(rune('a' + n)), files: attachments.NewCollector()}
	})

	first := store.create()
	now = now.Add(30 * time.Minute)
	_, ok := store.get(first.id)
	assert.True(t, ok)

	now = now.Add(2 * time.Hour)
	_, ok = store.get(first.id)
	assert.False(t, ok)
	assert.Equal(t, 0, store.len())
}
