package rag

import "mga-chatbot/internal/domain"

// AskRequest represents a question against one partition.
type AskRequest struct {
	// Partition is the caller's partition. It is derived from the caller's
	// identity and never taken from client input.
	Partition domain.Partition `json:"-"`
	// Question is the user's question to answer.
	Question string `json:"question"`
	// K optionally sets the number of chunks to retrieve (default 3, max 20).
	K int `json:"k,omitempty"`
	// Debug enables debug mode, returning detailed retrieval information.
	Debug bool `json:"debug,omitempty"`
}

// Reference points at a chunk that was given to the responder.
type Reference struct {
	// Rank is the chunk's 1-based position in the context.
	Rank int `json:"rank"`
	// File is the name of the source file.
	File string `json:"file"`
	// Segment is the page (PDF) or 0.
	Segment int `json:"segment"`
	// Seq is the chunk index within its document.
	Seq int `json:"seq"`
	// Distance is the cosine distance to the question.
	Distance float32 `json:"distance"`
	// Cited is true when the answer refers to the chunk by its number.
	Cited bool `json:"cited,omitempty"`
}

// AskResponse represents the response from a RAG query.
type AskResponse struct {
	// Answer is the text returned by the responder.
	Answer string `json:"answer"`
	// References are the chunks that were used to generate the answer.
	References []Reference `json:"references"`
	// Debug contains debug information when debug mode is enabled.
	Debug *DebugInfo `json:"debug,omitempty"`
}

// DebugInfo contains detailed retrieval information for debugging and evaluation.
type DebugInfo struct {
	// IndexVersion identifies the index build that served the query.
	IndexVersion string `json:"index_version"`
	// Provider is the embedding provider of the index.
	Provider string `json:"provider"`
	// RetrievedChunks contains all retrieved chunks with scores and ranks.
	RetrievedChunks []RetrievedChunk `json:"retrieved_chunks"`
	// Context is the exact context handed to the responder.
	Context string `json:"context"`
}

// RetrievedChunk represents a retrieved chunk with scoring information.
type RetrievedChunk struct {
	ChunkID string `json:"chunk_id"`
	File    string `json:"file"`
	Seq     int    `json:"seq"`
	// ScoreVector is the cosine similarity (1 - distance).
	ScoreVector float64 `json:"score_vector"`
	// ScoreLexical is the query term overlap score. It is informational and does not affect ranking.
	ScoreLexical float64 `json:"score_lexical"`
	Text         string  `json:"text"`
	Rank         int     `json:"rank"`
}
