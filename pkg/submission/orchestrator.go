package submission

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/goliatone/go-orderform/pkg/attachments"
	"github.com/goliatone/go-orderform/pkg/client"
	"github.com/goliatone/go-orderform/pkg/deadline"
	"github.com/goliatone/go-orderform/pkg/form"
	"github.com/goliatone/go-orderform/pkg/schema"
)

// DefaultConfirmationPath is where successful submissions redirect.
const DefaultConfirmationPath = "/order-confirmation"

// OrderAPI is the slice of the order API the orchestrator needs.
// *client.Client satisfies it.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req client.CreateOrderRequest) (client.CreateOrderResponse, error)
	UploadFiles(ctx context.Context, orderID schema.ID, files []attachments.File) error
}

// Request is everything collected from the customer.
type Request struct {
	Fields          []schema.Field
	Values          form.Values
	PricingTierID   schema.ID
	PaymentMethodID schema.ID
	Deadline        deadline.Selection
	CustomerNotes   string
	Files           []attachments.File
}

// Result describes a submission attempt.
type Result struct {
	State          State
	OrderID        schema.ID
	OrderNumber    string
	RedirectURL    string
	Deadline       deadline.Deadline
	IdempotencyKey string
	// UploadErr is set when the order exists but its files did not upload.
	UploadErr error
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithNotifier sets where notices go.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the time source used for deadline checks.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLeadTime overrides the minimum deadline lead time.
func WithLeadTime(lead time.Duration) Option {
	return func(o *Orchestrator) {
		if lead >= 0 {
			o.lead = lead
		}
	}
}

// WithKeyGenerator overrides idempotency key generation.
func WithKeyGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newKey = fn
		}
	}
}

// WithConfirmationPath overrides the success redirect path.
func WithConfirmationPath(path string) Option {
	return func(o *Orchestrator) {
		if path != "" {
			o.confirmation = path
		}
	}
}

// Orchestrator submits orders one at a time.
type Orchestrator struct {
	api          OrderAPI
	notifier     Notifier
	logger       *zap.Logger
	now          func() time.Time
	lead         time.Duration
	newKey       func() string
	confirmation string

	mu    sync.Mutex
	state State
}

// New builds an orchestrator over api.
func New(api OrderAPI, opts ...Option) (*Orchestrator, error) {
	if api == nil {
		return nil, errors.New("submission: order api is required")
	}
	o := &Orchestrator{
		api:          api,
		notifier:     discard{},
		logger:       zap.NewNop(),
		now:          time.Now,
		lead:         deadline.DefaultLeadTime,
		newKey:       func() string { return ulid.Make().String() },
		confirmation: DefaultConfirmationPath,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o, nil
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Validate runs the client-side checks in order: tier, payment method,
// deadline presence, required fields, then deadline resolution.
func (o *Orchestrator) Validate(req Request) (deadline.Deadline, error) {
	if req.PricingTierID.IsZero() {
		return deadline.Deadline{}, &ValidationError{Err: ErrTierRequired}
	}
	if req.PaymentMethodID.IsZero() {
		return deadline.Deadline{}, &ValidationError{Err: ErrPaymentMethodRequired}
	}
	if !req.Deadline.Complete() {
		return deadline.Deadline{}, &ValidationError{Err: ErrDeadlineRequired}
	}
	if first, missing := form.MissingRequired(req.Fields, req.Values); missing {
		return deadline.Deadline{}, &ValidationError{Err: &MissingFieldError{Name: first.Name, Label: first.DisplayLabel()}}
	}
	resolved, err := deadline.Resolve(req.Deadline, o.now(), o.lead)
	if err != nil {
		return deadline.Deadline{}, &ValidationError{Err: err}
	}
	return resolved, nil
}

// Submit validates req, creates the order, and uploads its files. Calls made
// while another submission is running fail with ErrInProgress.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (Result, error) {
	o.mu.Lock()
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return Result{State: StateSubmitting}, ErrInProgress
	}
	previous := o.state
	o.mu.Unlock()

	resolved, err := o.Validate(req)
	if err != nil {
		o.notify(ctx, LevelError, Message(err))
		return Result{State: previous}, err
	}

	o.mu.Lock()
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return Result{State: StateSubmitting}, ErrInProgress
	}
	o.state = StateSubmitting
	o.mu.Unlock()

	key := o.newKey()
	result := Result{State: StateSubmitting, Deadline: resolved, IdempotencyKey: key}
	logger := o.logger.With(zap.String("idempotency_key", key))

	created, err := o.api.CreateOrder(ctx, client.CreateOrderRequest{
		FormData:         req.Values.Clone(),
		PricingTierID:    req.PricingTierID,
		Deadline:         resolved.Local,
		DeadlineTimezone: resolved.Timezone,
		DeadlineUTC:      resolved.UTCString(),
		PaymentMethodID:  req.PaymentMethodID,
		CustomerNotes:    req.CustomerNotes,
		IdempotencyKey:   key,
	})
	if err != nil {
		logger.Error("create order failed", zap.Error(err))
		o.finish(&result, StateFailed)
		o.notify(ctx, LevelError, Message(err))
		return result, err
	}

	result.OrderID = created.OrderID
	result.OrderNumber = created.OrderNumber
	result.RedirectURL = o.redirectURL(created.OrderID)
	logger = logger.With(zap.String("order_id", created.OrderID.String()))

	if len(req.Files) > 0 {
		if err := o.api.UploadFiles(ctx, created.OrderID, req.Files); err != nil {
			logger.Warn("order created but file upload failed", zap.Int("files", len(req.Files)), zap.Error(err))
			result.UploadErr = err
			o.finish(&result, StateSucceededPartial)
			o.notify(ctx, LevelWarning, MessagePartial)
			return result, nil
		}
	}

	logger.Info("order submitted", zap.Int("files", len(req.Files)))
	o.finish(&result, StateSucceededFull)
	o.notify(ctx, LevelSuccess, MessageSuccess)
	return result, nil
}

// Reset returns a finished orchestrator to idle.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateSubmitting {
		o.state = StateIdle
	}
}

func (o *Orchestrator) finish(result *Result, state State) {
	o.mu.Lock()
	o.state = state
	o.mu.Unlock()
	result.State = state
}

func (o *Orchestrator) notify(ctx context.Context, level Level, message string) {
	if message == "" {
		return
	}
	o.notifier.Notify(ctx, Notice{Level: level, Message: message})
}

func (o *Orchestrator) redirectURL(orderID schema.ID) string {
	query := url.Values{"order_id": {orderID.String()}}
	return o.confirmation + "?" + query.Encode()
}
