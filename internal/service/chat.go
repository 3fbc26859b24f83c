package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_partitions.go -package=mocks mga-chatbot/internal/service Partitions
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_history_store.go -package=mocks mga-chatbot/internal/service HistoryStore
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService mga-chatbot/internal/service ChatService

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"mga-chatbot/internal/auth"
	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/domain"
	"mga-chatbot/internal/rag"
)

// MaxQuestionRunes bounds the length of a question.
const MaxQuestionRunes = 2000

// Partitions resolves the partition of an authenticated identity.
// This interface is defined from the service layer's perspective (consumer-first).
type Partitions interface {
	EnsurePartition(ctx context.Context, id domain.Identity) (domain.Partition, error)
}

// HistoryStore keeps the question/answer turns of a session.
type HistoryStore interface {
	AppendHistory(token string, turn auth.Turn) error
	History(token string) ([]auth.Turn, error)
}

// AskRequest represents a question in the domain layer.
type AskRequest struct {
	Question string `validate:"required"`
	K        int
	Debug    bool
}

// ChatService answers questions from the caller's team documents.
type ChatService interface {
	// Ask answers a question and records the turn in the session history.
	Ask(ctx context.Context, req AskRequest) (rag.AskResponse, error)
	// History returns the session's turns, oldest first.
	History(ctx context.Context) ([]auth.Turn, error)
}

// chatService implements ChatService.
type chatService struct {
	partitions Partitions
	engine     rag.Engine
	history    HistoryStore
	now        func() time.Time
}

// NewChatService creates a new ChatService.
func NewChatService(partitions Partitions, engine rag.Engine, history HistoryStore) ChatService {
	return &chatService{
		partitions: partitions,
		engine:     engine,
		history:    history,
		now:        time.Now,
	}
}

// Ask processes a question for the identity on ctx.
func (s *chatService) Ask(ctx context.Context, req AskRequest) (rag.AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	id, ok := contextutil.IdentityFromContext(ctx)
	if !ok {
		return rag.AskResponse{}, &domain.AuthError{Reason: "no identity on request"}
	}

	// Business validation
	question := strings.TrimSpace(req.Question)
	if question == "" {
		logger.WarnContext(ctx, "empty question in ask request")
		return rag.AskResponse{}, &ValidationError{
			Field:   "question",
			Message: "cannot be empty",
		}
	}
	if utf8.RuneCountInString(question) > MaxQuestionRunes {
		return rag.AskResponse{}, &ValidationError{
			Field:   "question",
			Message: "is too long",
		}
	}
	if req.K < 0 || req.K > rag.MaxK {
		return rag.AskResponse{}, &ValidationError{
			Field:   "k",
			Message: "must be between 1 and 20",
		}
	}

	partition, err := s.partitions.EnsurePartition(ctx, id)
	if err != nil {
		logger.ErrorContext(ctx, "failed to resolve partition", "error", err)
		return rag.AskResponse{}, WrapError(err, "failed to resolve partition")
	}

	resp, err := s.engine.Ask(ctx, rag.AskRequest{
		Partition: partition,
		Question:  question,
		K:         req.K,
		Debug:     req.Debug,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to answer question", "error", err)
		return rag.AskResponse{}, WrapError(err, "failed to answer question")
	}

	if token := contextutil.SessionTokenFromContext(ctx); token != "" {
		turn := auth.Turn{Question: question, Answer: resp.Answer, AskedAt: s.now()}
		if err := s.history.AppendHistory(token, turn); err != nil {
			logger.WarnContext(ctx, "failed to record history", "error", err)
		}
	}

	logger.InfoContext(ctx, "question answered", "question_length", len(question), "answer_length", len(resp.Answer))
	return resp, nil
}

// History returns the turns of the session on ctx.
func (s *chatService) History(ctx context.Context) ([]auth.Turn, error) {
	token := contextutil.SessionTokenFromContext(ctx)
	if token == "" {
		return nil, &domain.AuthError{Reason: "no session on request"}
	}
	return s.history.History(token)
}
