package webapp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-orderform/pkg/attachments"
	"github.com/goliatone/go-orderform/pkg/deadline"
	"github.com/goliatone/go-orderform/pkg/form"
	"github.com/goliatone/go-orderform/pkg/pricing"
	"github.com/goliatone/go-orderform/pkg/render"
	"github.com/goliatone/go-orderform/pkg/submission"
)

const sessionCookieName = "orderform_session"

// session is one visitor's in-progress order. Fields below mu are guarded
// by it; network calls run without holding it.
type session struct {
	id     string
	csrf   string
	quoter *pricing.Quoter
	orders *submission.Orchestrator

	mu         sync.Mutex
	snap       form.Snapshot
	deadline   deadline.Selection
	files      *attachments.Collector
	price      []pricing.Line
	notices    []render.Notice
	errors     map[string][]string
	formErrors []string
	seen       time.Time
}

func (s *session) notify(_ context.Context, notice submission.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, render.Notice{Level: render.Level(notice.Level), Message: notice.Message})
}

func (s *session) addNotice(level render.Level, message string) {
	if message == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, render.Notice{Level: level, Message: message})
}

// flash pops the pending notices and errors.
func (s *session) flash() ([]render.Notice, map[string][]string, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notices, errs, formErrs := s.notices, s.errors, s.formErrors
	s.notices, s.errors, s.formErrors = nil, nil, nil
	return notices, errs, formErrs
}

func (a *App) newSession() *session {
	s := &session{
		id:     uuid.NewString(),
		csrf:   newCSRFToken(),
		quoter: pricing.NewQuoter(a.api, pricing.WithQuoterLogger(a.logger)),
		files:  a.newCollector(),
	}
	orders, err := submission.New(a.api,
		submission.WithNotifier(submission.NotifierFunc(s.notify)),
		submission.WithLogger(a.logger.With(zap.String("session", s.id))),
		submission.WithClock(a.now),
		submission.WithLeadTime(a.lead),
		submission.WithKeyGenerator(a.newKey),
	)
	if err != nil {
		// api is checked in New, so this cannot fail.
		panic(err)
	}
	s.orders = orders
	return s
}

func (a *App) newCollector() *attachments.Collector {
	return attachments.NewCollector(
		attachments.WithLimits(a.limits),
		attachments.WithPreviews(a.previews),
		attachments.WithLogger(a.logger),
	)
}

// reset clears the order after a successful submission. Pending notices
// survive for the confirmation page.
func (a *App) reset(s *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.files.Close()
	s.files = a.newCollector()
	s.snap = form.Snapshot{}
	s.deadline = deadline.Selection{}
	s.price = nil
	s.quoter.Invalidate()
	s.orders.Reset()
}

// session loads the visitor's session, creating one and setting the cookie
// when missing or expired.
func (a *App) session(w http.ResponseWriter, r *http.Request) *session {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if s, ok := a.sessions.get(c.Value); ok {
			return s
		}
	}
	s := a.sessions.create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    s.id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
	build    func() *session
}

func newSessionStore(ttl time.Duration, now func() time.Time, build func() *session) *sessionStore {
	return &sessionStore{sessions: make(map[string]*session), ttl: ttl, now: now, build: build}
}

func (st *sessionStore) get(id string) (*session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sweepLocked()
	s, ok := st.sessions[id]
	if ok {
		s.mu.Lock()
		s.seen = st.now()
		s.mu.Unlock()
	}
	return s, ok
}

func (st *sessionStore) create() *session {
	s := st.build()
	s.seen = st.now()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sweepLocked()
	st.sessions[s.id] = s
	return s
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *sessionStore) sweepLocked() {
	cutoff := st.now().Add(-st.ttl)
	for id, s := range st.sessions {
		s.mu.Lock()
		expired := s.seen.Before(cutoff)
		if expired {
			_ = s.files.Close()
		}
		s.mu.Unlock()
		if expired {
			delete(st.sessions, id)
		}
	}
}

func (st *sessionStore) closeAll() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, s := range st.sessions {
		s.mu.Lock()
		_ = s.files.Close()
		s.mu.Unlock()
		delete(st.sessions, id)
	}
}

func newCSRFToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
