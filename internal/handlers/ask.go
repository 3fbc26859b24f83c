package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/rag"
	"mga-chatbot/internal/service"
)

// AskHandler handles HTTP requests for RAG queries.
type AskHandler struct {
	chatService service.ChatService
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(chatService service.ChatService) *AskHandler {
	return &AskHandler{
		chatService: chatService,
	}
}

// AskRequest represents the HTTP request payload for RAG queries.
//
// swagger:model AskRequest
type AskRequest struct {
	Question string `json:"question"`
	K        int    `json:"k,omitempty"`
}

// AskResponse represents the HTTP response payload for RAG queries.
//
// swagger:model AskResponse
type AskResponse struct {
	// The answer built from the team's documents
	Answer string `json:"answer"`

	// Excerpts used for the answer, closest first
	References []ReferenceResponse `json:"references"`

	// Debug contains debug information when debug mode is enabled (via ?debug=true query parameter).
	Debug *DebugInfo `json:"debug,omitempty"`
}

// ReferenceResponse represents a reference in the HTTP response.
//
// swagger:model ReferenceResponse
type ReferenceResponse struct {
	// Excerpt number as shown in the context, starting at 1
	Rank int `json:"rank"`

	// Source file name
	File string `json:"file"`

	// Page (zero-based) for PDFs, 0 otherwise
	Segment int `json:"segment"`

	// Index of the chunk within its document
	ChunkIndex int `json:"chunk_index"`

	// Cosine distance to the question
	Distance float32 `json:"distance"`

	// Whether the answer cites this excerpt
	Cited bool `json:"cited"`
}

// DebugInfo contains debug information when debug mode is enabled.
//
// swagger:model DebugInfo
type DebugInfo struct {
	IndexVersion    string                `json:"index_version"`
	Provider        string                `json:"provider"`
	RetrievedChunks []DebugRetrievedChunk `json:"retrieved_chunks"`
	Context         string                `json:"context"`
}

// DebugRetrievedChunk represents a retrieved chunk with scoring information.
//
// swagger:model DebugRetrievedChunk
type DebugRetrievedChunk struct {
	// ChunkID is the chunk identifier.
	ChunkID string `json:"chunk_id"`
	// File is the source file name.
	File string `json:"file"`
	// ChunkIndex is the index of the chunk within its document.
	ChunkIndex int `json:"chunk_index"`
	// ScoreVector is the cosine similarity to the question.
	ScoreVector float64 `json:"score_vector"`
	// ScoreLexical is the keyword overlap score. It does not affect ranking.
	ScoreLexical float64 `json:"score_lexical,omitempty"`
	// Text is the full chunk text.
	Text string `json:"text"`
	// Rank is the rank of this chunk in the retrieval results (1-based).
	Rank int `json:"rank"`
}

// ServeHTTP handles HTTP requests for RAG queries.
//
// Ask a question about the documents uploaded by the caller's team.
//
// swagger:route POST /api/ask askQuestion
//
// # Ask a question using RAG
//
// Use the `debug=true` query parameter to include the retrieved chunks and the
// exact context given to the responder.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Successful response with answer and references
//	  schema:
//	    "$ref": "#/definitions/AskResponse"
//	'400':
//	  description: Bad request (empty question or k out of range)
//	'401':
//	  description: Not logged in
//	'409':
//	  description: The team has no documents yet
//	'502':
//	  description: The generative service failed
//	'500':
//	  description: Internal server error
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Parse debug query parameter
	debug := false
	if debugParam := r.URL.Query().Get("debug"); debugParam != "" {
		debug = strings.ToLower(debugParam) == "true" || debugParam == "1"
	}

	svcResp, err := h.chatService.Ask(ctx, service.AskRequest{
		Question: req.Question,
		K:        req.K,
		Debug:    debug,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to process question")
		return
	}

	writeJSON(ctx, w, http.StatusOK, toAskResponse(svcResp))
}

func toAskResponse(resp rag.AskResponse) AskResponse {
	references := make([]ReferenceResponse, len(resp.References))
	for i, ref := range resp.References {
		references[i] = ReferenceResponse{
			Rank:       ref.Rank,
			File:       ref.File,
			Segment:    ref.Segment,
			ChunkIndex: ref.Seq,
			Distance:   ref.Distance,
			Cited:      ref.Cited,
		}
	}

	out := AskResponse{
		Answer:     resp.Answer,
		References: references,
	}
	if resp.Debug != nil {
		chunks := make([]DebugRetrievedChunk, 0, len(resp.Debug.RetrievedChunks))
		for _, c := range resp.Debug.RetrievedChunks {
			chunks = append(chunks, DebugRetrievedChunk{
				ChunkID:      c.ChunkID,
				File:         c.File,
				ChunkIndex:   c.Seq,
				ScoreVector:  c.ScoreVector,
				ScoreLexical: c.ScoreLexical,
				Text:         c.Text,
				Rank:         c.Rank,
			})
		}
		out.Debug = &DebugInfo{
			IndexVersion:    resp.Debug.IndexVersion,
			Provider:        resp.Debug.Provider,
			RetrievedChunks: chunks,
			Context:         resp.Debug.Context,
		}
	}
	return out
}
