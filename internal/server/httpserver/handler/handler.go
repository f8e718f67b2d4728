package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yndnr/graceserve/internal/telemetry/logger"
)

// Config holds the handler dependencies.
type Config struct {
	// Env is the environment label reported by the root route.
	Env string

	// Message is the greeting reported by the root route.
	Message string

	// Draining reports whether shutdown has begun. Nil means never.
	Draining func() bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Handler serves the graceserve routes.
type Handler struct {
	env      string
	message  string
	draining func() bool
	now      func() time.Time
}

// New creates a Handler.
func New(cfg Config) *Handler {
	h := &Handler{
		env:      cfg.Env,
		message:  cfg.Message,
		draining: cfg.Draining,
		now:      cfg.Now,
	}
	if h.draining == nil {
		h.draining = func() bool { return false }
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// Health handles GET /healthz.
//
// Liveness does not change during shutdown; the process is still alive
// while it drains.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, r, http.StatusOK, StatusResponse{Status: StatusHealthy})
}

// Ready handles GET /readyz.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.draining() {
		w.Header().Set("Connection", "close")
		WriteJSON(w, r, http.StatusServiceUnavailable, StatusResponse{Status: StatusDraining})
		return
	}
	WriteJSON(w, r, http.StatusOK, StatusResponse{Status: StatusReady})
}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, r, http.StatusOK, RootResponse{
		Message:     h.message,
		Environment: h.env,
		Timestamp:   h.now().UTC().Format(time.RFC3339),
	})
}

// NotFound handles every unmatched path.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, http.StatusNotFound, "not found")
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L(r.Context()).Error("failed to encode response", "error", err)
	}
}

// WriteError writes an ErrorResponse with the given status.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSON(w, r, status, ErrorResponse{Error: message})
}
