package handlers

import (
	"net/http"

	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/index"
	"mga-chatbot/internal/service"
)

// RebuildHandler handles HTTP requests for rebuilding the team index.
type RebuildHandler struct {
	workspace service.WorkspaceService
}

// NewRebuildHandler creates a new RebuildHandler.
func NewRebuildHandler(workspace service.WorkspaceService) *RebuildHandler {
	return &RebuildHandler{workspace: workspace}
}

// RebuildResponse represents the response from the rebuild endpoint.
//
// swagger:model RebuildResponse
type RebuildResponse struct {
	Message string           `json:"message"`
	Stats   index.BuildStats `json:"stats"`
}

// ServeHTTP rebuilds the caller's index and returns its build statistics.
// The rebuild runs within the request.
//
// swagger:route POST /api/index/rebuild rebuildIndex
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Index rebuilt
//	  schema:
//	    "$ref": "#/definitions/RebuildResponse"
func (h *RebuildHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	logger.InfoContext(ctx, "index rebuild triggered via API")
	stats, err := h.workspace.Rebuild(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to rebuild index")
		return
	}

	writeJSON(ctx, w, http.StatusOK, RebuildResponse{
		Message: "Index rebuilt.",
		Stats:   stats,
	})
}
