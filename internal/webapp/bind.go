package webapp

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-orderform/pkg/attachments"
	"github.com/goliatone/go-orderform/pkg/deadline"
	"github.com/goliatone/go-orderform/pkg/form"
	"github.com/goliatone/go-orderform/pkg/render"
	"github.com/goliatone/go-orderform/pkg/schema"
)

// Posted input names outside the dynamic fields.
const (
	inputTier     = "pricing_tier_id"
	inputPayment  = "payment_method_id"
	inputDate     = "deadline_date"
	inputTime     = "deadline_time"
	inputTimezone = "deadline_timezone"
	inputNotes    = "customer_notes"
	inputFiles    = "files"
)

const multipartMemory = 8 << 20

var errCSRF = errors.New("webapp: invalid CSRF token")

// bind parses the posted form, checks the CSRF token, and folds the values
// and any uploaded files into the session.
func (a *App) bind(w http.ResponseWriter, r *http.Request, s *session, cfg schema.FormConfig) error {
	r.Body = http.MaxBytesReader(w, r.Body, a.limits.MaxTotalSize+multipartMemory)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return fmt.Errorf("webapp: parse multipart form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return fmt.Errorf("webapp: parse form: %w", err)
	}

	token := r.PostForm.Get(render.CSRFFieldName)
	if token == "" {
		token = r.Header.Get("X-CSRF-Token")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.csrf)) != 1 {
		return errCSRF
	}

	values, err := form.FromURLValues(cfg.Fields, r.PostForm)
	if err != nil {
		a.logger.Debug("dropped posted values", zap.Error(err))
	}
	state := form.NewState(cfg, form.WithValues(values))
	if id := schema.ID(strings.TrimSpace(r.PostForm.Get(inputTier))); !id.IsZero() {
		_ = state.SelectTier(id)
	}
	if id := schema.ID(strings.TrimSpace(r.PostForm.Get(inputPayment))); !id.IsZero() {
		_ = state.SelectPaymentMethod(id)
	}
	state.SetNotes(strings.TrimSpace(r.PostForm.Get(inputNotes)))

	sel := deadline.Selection{
		Date:     strings.TrimSpace(r.PostForm.Get(inputDate)),
		Time:     strings.TrimSpace(r.PostForm.Get(inputTime)),
		Timezone: strings.TrimSpace(r.PostForm.Get(inputTimezone)),
	}

	s.mu.Lock()
	s.snap = state.Snapshot()
	s.deadline = sel
	files := s.files
	s.mu.Unlock()

	if r.MultipartForm == nil {
		return nil
	}
	var candidates []attachments.Candidate
	for _, header := range r.MultipartForm.File[inputFiles] {
		if header.Filename == "" {
			continue
		}
		candidate, err := attachments.FromFileHeader(header)
		if err != nil {
			s.addNotice(render.LevelError, fmt.Sprintf("Could not read %s", header.Filename))
			continue
		}
		candidates = append(candidates, candidate)
	}
	if len(candidates) == 0 {
		return nil
	}
	report, err := files.Add(candidates...)
	if err != nil {
		return err
	}
	if !report.OK() {
		s.addNotice(render.LevelWarning, report.Message())
	}
	return nil
}

// picker rebuilds the deadline picker for the session's selection. Invalid
// parts are left blank.
func (a *App) picker(sel deadline.Selection) *deadline.Picker {
	p := deadline.NewPicker(
		deadline.WithClock(a.now),
		deadline.WithLeadTime(a.lead),
		deadline.WithLocalZone(a.localZone),
	)
	if sel.Timezone != "" {
		_ = p.SetTimezone(sel.Timezone)
	}
	if sel.Date != "" {
		_ = p.SetDate(sel.Date)
	}
	if sel.Time != "" {
		_ = p.SetTime(sel.Time)
	}
	return p
}
