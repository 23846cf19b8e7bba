// Package health provides the HTTP diagnostics surface of the autocorrect
// service: liveness, readiness, and a usage-statistics endpoint.
//
//   - /healthz — liveness probe; always returns 200 OK.
//   - /readyz  — readiness probe; returns 200 only when all registered
//     [Checker] functions pass (typically a store ping).
//   - /statsz  — correction counters and current segmenter state.
//
// Responses are JSON objects with a top-level "status" field ("ok" or "fail").
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/keyboard"
	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/store"
)

// checkTimeout is the maximum time a single readiness check may take before
// the context is cancelled.
const checkTimeout = 5 * time.Second

// Checker is a named health check function. The Check function should return
// nil when the dependency is healthy and a non-nil error describing the
// failure otherwise.
type Checker struct {
	// Name is a short label for this check (e.g. "store"). It appears as a
	// key in the JSON response.
	Name string

	// Check probes the dependency. It must respect context cancellation.
	Check func(ctx context.Context) error
}

// StatsProvider reports aggregate correction counters. The cached store
// satisfies this.
type StatsProvider interface {
	Stats(ctx context.Context) (store.Stats, error)
}

// result is the JSON response body for health endpoints.
type result struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// statsResult is the JSON response body for /statsz.
type statsResult struct {
	Status              string `json:"status"`
	TotalCorrections    int    `json:"total_corrections"`
	PersonalCorrections int    `json:"personal_corrections"`
	IgnoredWords        int    `json:"ignored_words"`
	CorrectionsToday    int    `json:"corrections_today"`
	PendingLength       int    `json:"pending_length"`
	ContextSize         int    `json:"context_size"`
	Monitoring          bool   `json:"monitoring"`
	Paused              bool   `json:"paused"`
}

// Handler serves the diagnostics endpoints. It is safe for concurrent use;
// the checker list is fixed at construction time.
type Handler struct {
	checkers  []Checker
	stats     StatsProvider
	segmenter *keyboard.Segmenter
}

// New creates a [Handler] that evaluates the given checkers on each /readyz
// request. stats and segmenter may be nil; /statsz then reports zeros for
// the missing parts.
func New(stats StatsProvider, segmenter *keyboard.Segmenter, checkers ...Checker) *Handler {
	c := make([]Checker, len(checkers))
	copy(c, checkers)
	return &Handler{checkers: c, stats: stats, segmenter: segmenter}
}

// Healthz is a liveness probe that always returns 200 OK. A running process
// that can serve HTTP is considered alive.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, result{Status: "ok"})
}

// Readyz is a readiness probe that returns 200 only when every registered
// [Checker] passes. Each checker is given a context with a [checkTimeout]
// deadline derived from the request context.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.checkers))
	allOK := true

	for _, c := range h.checkers {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := c.Check(ctx)
		cancel()

		if err != nil {
			checks[c.Name] = "fail: " + err.Error()
			allOK = false
		} else {
			checks[c.Name] = "ok"
		}
	}

	res := result{
		Status: "ok",
		Checks: checks,
	}
	status := http.StatusOK
	if !allOK {
		res.Status = "fail"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, res)
}

// Statsz reports correction counters and the live segmenter state.
func (h *Handler) Statsz(w http.ResponseWriter, r *http.Request) {
	res := statsResult{Status: "ok"}

	if h.stats != nil {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		st, err := h.stats.Stats(ctx)
		cancel()
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, result{Status: "fail", Checks: map[string]string{"store": err.Error()}})
			return
		}
		res.TotalCorrections = st.TotalCorrections
		res.PersonalCorrections = st.PersonalCorrections
		res.IgnoredWords = st.IgnoredWords
		res.CorrectionsToday = st.CorrectionsToday
	}

	if h.segmenter != nil {
		st := h.segmenter.Stats()
		res.PendingLength = st.PendingLength
		res.ContextSize = st.ContextSize
		res.Monitoring = st.Monitoring
		res.Paused = st.Paused
	}

	writeJSON(w, http.StatusOK, res)
}

// Register adds the diagnostics routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	mux.HandleFunc("GET /statsz", h.Statsz)
}

// writeJSON encodes v as JSON and writes it with the given status code. On
// encoding failure it falls back to a plain-text 500 response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
