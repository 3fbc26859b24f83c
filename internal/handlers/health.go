package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"mga-chatbot/internal/contextutil"
)

// CheckFunc reports whether a dependency is reachable.
type CheckFunc func(ctx context.Context) error

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	checks             map[string]CheckFunc
	healthCheckTimeout time.Duration
	now                func() time.Time
}

// NewHealthHandler creates a new HealthHandler running the named checks.
func NewHealthHandler(checks map[string]CheckFunc) *HealthHandler {
	return &HealthHandler{
		checks:             checks,
		healthCheckTimeout: 5 * time.Second,
		now:                time.Now,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy" or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// Returns 200 OK if healthy, 503 Service Unavailable otherwise.
//
// swagger:route GET /api/health healthCheck
//
// # Health check endpoint
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: System is healthy
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
//	'503':
//	  description: A dependency is unavailable
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Create context with timeout for health checks
	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	var issues []string
	for _, name := range names {
		if err := h.checks[name](checkCtx); err != nil {
			logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
			checks[name] = "error"
			issues = append(issues, name+"_unavailable")
			continue
		}
		checks[name] = "ok"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(ctx, w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}
