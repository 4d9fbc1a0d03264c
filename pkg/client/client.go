package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/goliatone/go-orderform/pkg/attachments"
	"github.com/goliatone/go-orderform/pkg/form"
	"github.com/goliatone/go-orderform/pkg/pricing"
	"github.com/goliatone/go-orderform/pkg/schema"
)

const (
	// DefaultTimeout bounds each API call.
	DefaultTimeout = 30 * time.Second

	tracerName = "github.com/goliatone/go-orderform/pkg/client"
	maxBody    = 1 << 20
)

// Endpoints are paths relative to the base URL. Trailing slashes matter to
// the API.
type Endpoints struct {
	FormConfig     string
	CalculatePrice string
	CreateOrder    string
	UploadFiles    string
}

// DefaultEndpoints returns the stock order API paths.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		FormConfig:     "orders/form-config/",
		CalculatePrice: "orders/calculate-price/",
		CreateOrder:    "orders/create/",
		UploadFiles:    "orders/upload-files/",
	}
}

// AuthProvider supplies the Authorization header for each call. An empty
// header sends the request anonymously.
type AuthProvider interface {
	AuthHeader(ctx context.Context) (string, error)
}

// AuthFunc adapts a function to AuthProvider.
type AuthFunc func(ctx context.Context) (string, error)

// AuthHeader implements AuthProvider.
func (fn AuthFunc) AuthHeader(ctx context.Context) (string, error) { return fn(ctx) }

// TokenAuth sends a fixed "<Scheme> <Token>" header.
type TokenAuth struct {
	Scheme string
	Token  string
}

// AuthHeader implements AuthProvider.
func (a TokenAuth) AuthHeader(context.Context) (string, error) {
	token := strings.TrimSpace(a.Token)
	if token == "" {
		return "", nil
	}
	scheme := strings.TrimSpace(a.Scheme)
	if scheme == "" {
		scheme = "Bearer"
	}
	return scheme + " " + token, nil
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

// WithAuth installs the auth provider.
func WithAuth(auth AuthProvider) Option {
	return func(c *Client) {
		c.auth = auth
	}
}

// WithEndpoints overrides endpoint paths.
func WithEndpoints(endpoints Endpoints) Option {
	return func(c *Client) {
		c.endpoints = endpoints
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(c *Client) {
		if provider != nil {
			c.tracer = provider.Tracer(tracerName)
		}
	}
}

// Client is an order API client.
type Client struct {
	baseURL   string
	http      *http.Client
	auth      AuthProvider
	endpoints Endpoints
	logger    *zap.Logger
	tracer    trace.Tracer
}

// New builds a client for baseURL (e.g. "https://api.example.com/api").
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("client: invalid base URL %q: %w", baseURL, err)
	}

	c := &Client{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: DefaultTimeout},
		endpoints: DefaultEndpoints(),
		logger:    zap.NewNop(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// FormConfig fetches and validates the form configuration.
func (c *Client) FormConfig(ctx context.Context) (cfg schema.FormConfig, err error) {
	ctx, span := c.start(ctx, "FormConfig")
	defer func() { finish(span, err) }()

	endpoint, err := c.url(c.endpoints.FormConfig)
	if err != nil {
		return schema.FormConfig{}, err
	}
	body, err := c.do(ctx, span, "form config", http.MethodGet, endpoint, nil, "", nil)
	if err != nil {
		return schema.FormConfig{}, err
	}
	return schema.DecodeFrom(schema.FromAPI(endpoint), body)
}

// CalculatePrice requests a quote. It satisfies pricing.Calculator.
func (c *Client) CalculatePrice(ctx context.Context, req pricing.Request) (b pricing.Breakdown, err error) {
	ctx, span := c.start(ctx, "CalculatePrice")
	defer func() { finish(span, err) }()

	if err := req.Validate(); err != nil {
		return pricing.Breakdown{}, err
	}
	span.SetAttributes(attribute.String("orderform.pricing_tier_id", req.PricingTierID.String()))

	endpoint, err := c.url(c.endpoints.CalculatePrice)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	body, err := c.doJSON(ctx, span, "calculate price", endpoint, req, nil)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	if err := json.Unmarshal(body, &b); err != nil {
		return pricing.Breakdown{}, fmt.Errorf("client: decode price: %w", err)
	}
	return b, nil
}

// CreateOrderRequest is the create-order payload.
type CreateOrderRequest struct {
	FormData         form.Values `json:"form_data"`
	PricingTierID    schema.ID   `json:"pricing_tier_id"`
	Deadline         string      `json:"deadline"`
	DeadlineTimezone string      `json:"deadline_timezone,omitempty"`
	DeadlineUTC      string      `json:"deadline_utc,omitempty"`
	PaymentMethodID  schema.ID   `json:"payment_method_id"`
	CustomerNotes    string      `json:"customer_notes"`

	IdempotencyKey string `json:"-"`
}

// CreateOrderResponse is the create-order result.
type CreateOrderResponse struct {
	OrderID     schema.ID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
}

// CreateOrder submits an order. The idempotency key, when set, is sent as
// the Idempotency-Key header.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (resp CreateOrderResponse, err error) {
	ctx, span := c.start(ctx, "CreateOrder")
	defer func() { finish(span, err) }()

	endpoint, err := c.url(c.endpoints.CreateOrder)
	if err != nil {
		return CreateOrderResponse{}, err
	}
	headers := http.Header{}
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		headers.Set("Idempotency-Key", key)
		span.SetAttributes(attribute.String("orderform.idempotency_key", key))
	}
	body, err := c.doJSON(ctx, span, "create order", endpoint, req, headers)
	if err != nil {
		return CreateOrderResponse{}, err
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return CreateOrderResponse{}, fmt.Errorf("client: decode order: %w", err)
	}
	if resp.OrderID.IsZero() {
		return CreateOrderResponse{}, fmt.Errorf("client: create order: response missing order_id")
	}
	c.logger.Info("order created",
		zap.String("order_id", resp.OrderID.String()),
		zap.String("order_number", resp.OrderNumber),
	)
	return resp, nil
}

// UploadFiles sends files as multipart parts file_0..file_n alongside the
// order id. Failures are returned as *UploadError.
func (c *Client) UploadFiles(ctx context.Context, orderID schema.ID, files []attachments.File) (err error) {
	ctx, span := c.start(ctx, "UploadFiles")
	defer func() { finish(span, err) }()

	if orderID.IsZero() {
		return ErrOrderIDRequired
	}
	if len(files) == 0 {
		return nil
	}
	span.SetAttributes(attribute.Int("orderform.file_count", len(files)))

	wrap := func(err error) error {
		return &UploadError{OrderID: orderID.String(), Err: err}
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("order_id", orderID.String()); err != nil {
		return wrap(err)
	}
	for idx, file := range files {
		if err := writePart(writer, fmt.Sprintf("file_%d", idx), file); err != nil {
			return wrap(err)
		}
	}
	if err := writer.Close(); err != nil {
		return wrap(err)
	}

	endpoint, err := c.url(c.endpoints.UploadFiles)
	if err != nil {
		return wrap(err)
	}
	body, err := c.do(ctx, span, "upload files", http.MethodPost, endpoint, &buf, writer.FormDataContentType(), nil)
	if err != nil {
		return wrap(err)
	}
	if failed := uploadFailures(body); len(failed) > 0 {
		c.logger.Warn("order api rejected files",
			zap.String("order_id", orderID.String()),
			zap.Strings("errors", failed),
		)
		return wrap(errors.New(strings.Join(failed, "; ")))
	}
	return nil
}

// uploadFailures returns the per-file messages of a 2xx upload response.
// A body that is empty or not JSON carries none.
func uploadFailures(body []byte) []string {
	var resp struct {
		Errors []string `json:"errors"`
	}
	if len(bytes.TrimSpace(body)) == 0 || json.Unmarshal(body, &resp) != nil {
		return nil
	}
	var out []string
	for _, msg := range resp.Errors {
		if trimmed := strings.TrimSpace(msg); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func writePart(writer *multipart.Writer, field string, file attachments.File) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, escapeQuotes(file.Name)))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	r, err := file.Open()
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()
	_, err = io.Copy(part, r)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func (c *Client) url(path string) (string, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return "", fmt.Errorf("client: build url for %q: %w", path, err)
	}
	return endpoint, nil
}

func (c *Client) doJSON(ctx context.Context, span trace.Span, op, endpoint string, payload any, headers http.Header) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("client: %s: encode: %w", op, err)
	}
	return c.do(ctx, span, op, http.MethodPost, endpoint, bytes.NewReader(body), "application/json", headers)
}

func (c *Client) do(ctx context.Context, span trace.Span, op, method, endpoint string, body io.Reader, contentType string, headers http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("client: %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if c.auth != nil {
		header, err := c.auth.AuthHeader(ctx)
		if err != nil {
			return nil, fmt.Errorf("client: %s: auth: %w", op, err)
		}
		if header != "" {
			req.Header.Set("Authorization", header)
		}
	}

	started := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s: %w", op, err)
	}
	defer func() { _ = res.Body.Close() }()

	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode))
	c.logger.Debug("order api call",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	payload, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("client: %s: read body: %w", op, err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(op, res.StatusCode, payload)
	}
	return payload, nil
}

func (c *Client) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "orderform.client."+op, trace.WithSpanKind(trace.SpanKindClient))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
