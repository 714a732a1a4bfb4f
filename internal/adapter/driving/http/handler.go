// Package httphandler is the HTTP driving adapter serving the status API
// and the metrics endpoint.
package httphandler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ericfisherdev/commitwatch/internal/domain/model"
)

// Monitor is the narrow slice of the monitor service the HTTP surface needs.
type Monitor interface {
	CheckNow(ctx context.Context) error
	Status(ctx context.Context) ([]model.RepoStatus, error)
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	monitor Monitor
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(monitor Monitor, logger *slog.Logger) *Handler {
	return &Handler{
		monitor: monitor,
		logger:  logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware. metricsHandler may be nil when
// metrics exposure is not wanted (e.g. in tests).
func NewServeMux(h *Handler, metricsHandler http.Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/status", h.GetStatus)
	mux.HandleFunc("POST /api/v1/check", h.RunCheck)

	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health reports daemon liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newHealthResponse())
}

// GetStatus returns the per-repository tracking status.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.monitor.Status(r.Context())
	if err != nil {
		h.logger.Error("status read failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]RepoStatusResponse, 0, len(statuses))
	for _, s := range statuses {
		resp = append(resp, toRepoStatusResponse(s))
	}

	writeJSON(w, http.StatusOK, resp)
}

// RunCheck triggers a check cycle and reports its outcome as a whole.
func (h *Handler) RunCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.monitor.CheckNow(r.Context()); err != nil {
		h.logger.Error("manual check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "check failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CheckResponse{Status: "ok"})
}
