package timezones

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// Mux is satisfied by *http.ServeMux and chi.Router.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

type lookupResponse struct {
	Data      []Option `json:"data"`
	Preferred string   `json:"preferred,omitempty"`
}

// Handler serves GET lookups: ?q= filters through Search and ?limit= bounds
// the result. The response echoes the preferred zone so the picker can
// preselect it.
func Handler(fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		zones, err := opts.zones()
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		query := r.URL.Query()
		limit, _ := strconv.Atoi(query.Get(opts.LimitParam))
		body := lookupResponse{
			Data:      SearchOptions(zones, query.Get(opts.SearchParam), limit, opts),
			Preferred: opts.Preferred,
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		_ = json.NewEncoder(w).Encode(body)
	})
}

// RegisterRoutes mounts Handler at basePath + Path and returns the pattern.
func RegisterRoutes(mux Mux, basePath string, fns ...OptionFn) (string, error) {
	if mux == nil {
		return "", errors.New("timezones: mux is required")
	}
	base := strings.Trim(strings.TrimSpace(basePath), "/")
	pattern := Path
	if base != "" {
		pattern = "/" + base + Path
	}
	mux.Handle(pattern, Handler(fns...))
	return pattern, nil
}
