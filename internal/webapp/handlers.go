package webapp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-orderform/pkg/client"
	"github.com/goliatone/go-orderform/pkg/pricing"
	"github.com/goliatone/go-orderform/pkg/render"
	"github.com/goliatone/go-orderform/pkg/schema"
	"github.com/goliatone/go-orderform/pkg/submission"
)

func (a *App) showForm(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	cfg, ok := a.formConfig(w, r)
	if !ok {
		return
	}
	a.renderForm(w, r, http.StatusOK, s, cfg)
}

func (a *App) submit(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	cfg, ok := a.formConfig(w, r)
	if !ok {
		return
	}
	if !a.bindOrReject(w, r, s, cfg) {
		return
	}

	s.mu.Lock()
	req := submission.Request{
		Fields:          cfg.Fields,
		Values:          s.snap.Values,
		PricingTierID:   s.snap.PricingTierID,
		PaymentMethodID: s.snap.PaymentMethodID,
		Deadline:        a.picker(s.deadline).Selection(),
		CustomerNotes:   s.snap.CustomerNotes,
		Files:           s.files.Files(),
	}
	s.mu.Unlock()

	result, err := s.orders.Submit(r.Context(), req)
	if err != nil {
		a.recordSubmitError(s, cfg, err)
		a.renderForm(w, r, submitStatus(err), s, cfg)
		return
	}
	a.logger.Info("order submitted",
		zap.String("order_id", result.OrderID.String()),
		zap.String("state", result.State.String()),
	)
	a.reset(s)
	http.Redirect(w, r, result.RedirectURL, http.StatusSeeOther)
}

// recordSubmitError maps field-level failures onto the form. Notices were
// already delivered by the orchestrator.
func (a *App) recordSubmitError(s *session, cfg schema.FormConfig, err error) {
	var apiErr *client.APIError
	var missing *submission.MissingFieldError

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case errors.As(err, &apiErr) && len(apiErr.Fields) > 0:
		mapping := render.MapErrorPayload(cfg.Fields, apiErr.Fields)
		s.errors = mapping.Fields
		s.formErrors = mapping.Form
	case errors.As(err, &missing):
		s.errors = map[string][]string{missing.Name: {submission.Message(err)}}
	case errors.Is(err, submission.ErrTierRequired):
		s.errors = map[string][]string{inputTier: {submission.Message(err)}}
	case errors.Is(err, submission.ErrPaymentMethodRequired):
		s.errors = map[string][]string{inputPayment: {submission.Message(err)}}
	case errors.As(err, new(*submission.ValidationError)):
		s.errors = map[string][]string{"deadline": {submission.Message(err)}}
	}
}

func submitStatus(err error) int {
	switch {
	case errors.Is(err, submission.ErrInProgress):
		return http.StatusConflict
	case errors.As(err, new(*submission.ValidationError)):
		return http.StatusUnprocessableEntity
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

type priceResponse struct {
	Lines []pricing.Line      `json:"lines"`
	Total string              `json:"total"`
	Quote pricing.Itemization `json:"quote"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *App) price(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	cfg, ok := a.formConfig(w, r)
	if !ok {
		return
	}
	if !a.bindOrReject(w, r, s, cfg) {
		return
	}

	s.mu.Lock()
	req := pricing.Request{FormData: s.snap.Values, PricingTierID: s.snap.PricingTierID}
	sel := s.deadline
	s.mu.Unlock()
	if hours, err := a.picker(sel).HoursUntil(); err == nil {
		req.DeadlineHours = hours
	}

	breakdown, err := s.quoter.Quote(r.Context(), req)
	if err != nil {
		status, message := quoteFailure(err)
		if wantsJSON(r) {
			writeJSON(w, status, errorResponse{Error: message})
			return
		}
		if !errors.Is(err, pricing.ErrStale) {
			s.addNotice(render.LevelError, message)
		}
		http.Redirect(w, r, "/order", http.StatusSeeOther)
		return
	}

	quote := pricing.Preview(breakdown, cfg.Fields, req.FormData)
	lines := a.money.Lines(quote)
	s.mu.Lock()
	s.price = lines
	s.mu.Unlock()

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, priceResponse{Lines: lines, Total: a.money.Money(quote.Total), Quote: quote})
		return
	}
	http.Redirect(w, r, "/order", http.StatusSeeOther)
}

func quoteFailure(err error) (int, string) {
	switch {
	case errors.Is(err, pricing.ErrStale):
		return http.StatusConflict, "A newer price request superseded this one"
	case errors.Is(err, pricing.ErrTierRequired):
		return http.StatusUnprocessableEntity, submission.Message(submission.ErrTierRequired)
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return http.StatusBadGateway, apiErr.Message
	}
	return http.StatusBadGateway, "Could not calculate the price. Please try again."
}

func (a *App) upload(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	cfg, ok := a.formConfig(w, r)
	if !ok {
		return
	}
	if !a.bindOrReject(w, r, s, cfg) {
		return
	}
	http.Redirect(w, r, "/order", http.StatusSeeOther)
}

func (a *App) removeFile(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	cfg, ok := a.formConfig(w, r)
	if !ok {
		return
	}
	if !a.bindOrReject(w, r, s, cfg) {
		return
	}
	s.mu.Lock()
	files := s.files
	s.mu.Unlock()
	if err := files.Remove(chi.URLParam(r, "id")); err != nil {
		s.addNotice(render.LevelWarning, "That file was already removed")
	}
	http.Redirect(w, r, "/order", http.StatusSeeOther)
}

func (a *App) preview(w http.ResponseWriter, r *http.Request) {
	preview, ok := a.previews.Get(chi.URLParam(r, "handle"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", preview.ContentType)
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(preview.Data)
}

func (a *App) confirmation(w http.ResponseWriter, r *http.Request) {
	orderID := strings.TrimSpace(r.URL.Query().Get("order_id"))
	if orderID == "" {
		http.Error(w, "missing order_id", http.StatusBadRequest)
		return
	}
	s := a.session(w, r)
	notices, _, _ := s.flash()

	view := make([]map[string]string, 0, len(notices))
	for _, notice := range notices {
		view = append(view, map[string]string{"level": string(notice.Level), "message": notice.Message})
	}
	body, err := a.pages.RenderTemplate("confirmation.tpl", map[string]any{
		"order_id": orderID,
		"notices":  view,
		"order":    "/order",
	})
	if err != nil {
		a.logger.Error("render confirmation", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(body))
}

func (a *App) formConfig(w http.ResponseWriter, r *http.Request) (schema.FormConfig, bool) {
	cfg, err := a.api.FormConfig(r.Context())
	if err != nil {
		a.logger.Error("load form config", zap.Error(err))
		http.Error(w, "The order form is unavailable. Please try again later.", http.StatusBadGateway)
		return schema.FormConfig{}, false
	}
	return cfg, true
}

func (a *App) bindOrReject(w http.ResponseWriter, r *http.Request, s *session, cfg schema.FormConfig) bool {
	err := a.bind(w, r, s, cfg)
	switch {
	case err == nil:
		return true
	case errors.Is(err, errCSRF):
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
	default:
		a.logger.Warn("bind order form", zap.Error(err))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, "bad request", http.StatusBadRequest)
	}
	return false
}

func (a *App) renderForm(w http.ResponseWriter, r *http.Request, status int, s *session, cfg schema.FormConfig) {
	renderer, err := a.renderers.Negotiate(r.Header.Get("Accept"), a.fallback)
	if err != nil {
		a.logger.Error("select renderer", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	notices, fieldErrors, formErrors := s.flash()
	s.mu.Lock()
	page := render.NewPage(cfg, s.snap)
	sel := s.deadline
	page.Files = s.files.Files()
	page.Limits = s.files.Limits()
	page.Price = s.price
	s.mu.Unlock()

	if page.PaymentMethodID.IsZero() {
		if method, ok := cfg.DefaultPaymentMethod(); ok {
			page.PaymentMethodID = method.ID
		}
	}
	page.Deadline = render.DeadlineViewFor(a.picker(sel), a.zones)
	page.Submitting = s.orders.State() == submission.StateSubmitting

	body, err := renderer.Render(r.Context(), page, render.RenderOptions{
		Hidden:     render.MergeHiddenFields(nil, render.CSRFToken(s.csrf)),
		Errors:     fieldErrors,
		FormErrors: formErrors,
		Notices:    notices,
		Locale:     a.locale,
		Translator: a.translator,
	})
	if err != nil {
		a.logger.Error("render order form", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
