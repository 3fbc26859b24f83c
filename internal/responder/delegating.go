package responder

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_client.go -package=mocks mga-chatbot/internal/responder ChatClient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/domain"
	"mga-chatbot/internal/llm"
)

// DefaultTimeout bounds a single call to the chat service.
const DefaultTimeout = 60 * time.Second

// ChatClient sends a conversation to a chat completion service.
type ChatClient interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Delegating forwards the prompt to a chat completion service and returns
// its reply verbatim. A transient failure is retried once.
type Delegating struct {
	client  ChatClient
	params  llm.ChatParams
	timeout time.Duration
	limiter *rate.Limiter
}

// DelegatingOption configures a Delegating responder.
type DelegatingOption func(*Delegating)

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) DelegatingOption {
	return func(r *Delegating) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithChatParams sets the model parameters sent with every request.
func WithChatParams(params llm.ChatParams) DelegatingOption {
	return func(r *Delegating) {
		r.params = params
	}
}

// WithRateLimit caps requests to perSecond, with bursts of one. Zero disables the limit.
func WithRateLimit(perSecond float64) DelegatingOption {
	return func(r *Delegating) {
		if perSecond > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewDelegating creates a Delegating responder.
func NewDelegating(client ChatClient, opts ...DelegatingOption) *Delegating {
	r := &Delegating{
		client:  client,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond sends the prompt and returns the reply. Failures are returned as
// *domain.AnswerGenerationError.
func (r *Delegating) Respond(ctx context.Context, p Prompt) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)
	messages := Messages(p)

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return "", &domain.AnswerGenerationError{Err: fmt.Errorf("rate limit wait: %w", err)}
			}
		}

		reply, err := r.call(ctx, messages)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if attempt == 1 && ctx.Err() == nil && llm.IsTransient(err) {
			logger.WarnContext(ctx, "chat request failed, retrying", "attempt", attempt, "error", err)
			continue
		}
		break
	}

	logger.ErrorContext(ctx, "chat request failed", "error", lastErr)
	return "", &domain.AnswerGenerationError{
		Err:       lastErr,
		Retryable: ctx.Err() == nil && llm.IsTransient(lastErr),
	}
}

func (r *Delegating) call(ctx context.Context, messages []llm.Message) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	reply, err := r.client.ChatWithMessages(attemptCtx, messages, r.params)
	if err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return "", fmt.Errorf("chat request timed out after %s: %w", r.timeout, context.DeadlineExceeded)
	}
	return reply, err
}

// Messages builds the chat conversation for a prompt: the system instruction
// followed by one user message holding the context and the question.
func Messages(p Prompt) []llm.Message {
	system := p.SystemInstruction
	if system == "" {
		system = DefaultSystemInstruction
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Document excerpts:\n%s\n\nQuestion: %s", p.Context, p.Question)},
	}
}
