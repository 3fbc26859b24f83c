package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

// LangChainClient sends chats through a langchaingo model. It exposes the
// same ChatWithMessages contract as Client.
type LangChainClient struct {
	model llms.Model
}

// NewLangChainClient wraps an existing langchaingo model.
func NewLangChainClient(model llms.Model) *LangChainClient {
	return &LangChainClient{model: model}
}

// NewAnthropicClient creates a LangChainClient backed by the Anthropic API.
func NewAnthropicClient(apiKey, model string) (*LangChainClient, error) {
	m, err := anthropic.New(
		anthropic.WithModel(model),
		anthropic.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create anthropic client: %w", err)
	}
	return NewLangChainClient(m), nil
}

// ChatWithMessages converts messages to langchaingo message content and
// returns the text of the first choice.
func (c *LangChainClient) ChatWithMessages(ctx context.Context, messages []Message, params ChatParams) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("no messages to send")
	}

	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		content = append(content, llms.TextParts(chatMessageType(m.Role), m.Content))
	}

	var opts []llms.CallOption
	if params.Model != "" {
		opts = append(opts, llms.WithModel(params.Model))
	}
	if params.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(params.MaxTokens))
	}
	if params.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(float64(params.Temperature)))
	}

	resp, err := c.model.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", providerError(err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	var b strings.Builder
	for _, choice := range resp.Choices {
		b.WriteString(choice.Content)
	}
	return b.String(), nil
}

// providerStatus matches the HTTP status langchaingo provider clients embed
// in their error text ("API returned unexpected status code: 529: ...").
var providerStatus = regexp.MustCompile(`status code:? (\d{3})`)

// providerErrorTypes maps Anthropic error types to the HTTP status they are sent with.
var providerErrorTypes = map[string]int{
	"rate_limit_error": 429,
	"overloaded_error": 529,
	"api_error":        500,
}

// providerError turns a provider failure that names an HTTP status into a
// *StatusError so IsTransient can classify it. Other errors pass through.
func providerError(err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return err
	}

	msg := err.Error()
	if m := providerStatus.FindStringSubmatch(msg); m != nil {
		code, convErr := strconv.Atoi(m[1])
		if convErr == nil {
			return &StatusError{StatusCode: code, Body: msg}
		}
	}
	for errType, code := range providerErrorTypes {
		if strings.Contains(msg, errType) {
			return &StatusError{StatusCode: code, Body: msg}
		}
	}
	return err
}

func chatMessageType(role string) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
