package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/eugenenazirov/tracecfg"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Snapshot supplies the configuration snapshot served by the inspection
// endpoints. In production it is tracecfg.Current, so the handler always
// reflects the most recently installed configuration.
type Snapshot func() (*tracecfg.Config, error)

// Handler serves the health and configuration inspection endpoints.
type Handler struct {
	snapshot    Snapshot
	environment string
	clock       func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithSnapshot overrides the configuration source, primarily for tests.
func WithSnapshot(snapshot Snapshot) HandlerOption {
	return func(h *Handler) {
		h.snapshot = snapshot
	}
}

// NewHandler constructs a Handler reporting the given environment name.
func NewHandler(environment string, opts ...HandlerOption) *Handler {
	h := &Handler{
		snapshot:    tracecfg.Current,
		environment: environment,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:      "ok",
		Environment: h.environment,
		Timestamp:   h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleConfig exposes the provenance trace of the current configuration:
// per field the final value, the source that set it and the file path for
// file-based sources.
func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	_ = r
	cfg, err := h.snapshot()
	if err != nil {
		if errors.Is(err, tracecfg.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "Not configured", "no configuration has been installed yet")
			return
		}
		writeInternalError(w, err)
		return
	}

	resp := configResponse{
		Fields:    cfg.Trace(),
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type healthResponse struct {
	Status      string    `json:"status"`
	Environment string    `json:"environment"`
	Timestamp   time.Time `json:"timestamp"`
}

type configResponse struct {
	Fields    map[string]tracecfg.TraceEntry `json:"fields"`
	Timestamp time.Time                      `json:"timestamp"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, title, details string) {
	writeJSON(w, status, errorResponse{Error: title, Details: details})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
