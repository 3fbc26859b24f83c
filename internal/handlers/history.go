package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"mga-chatbot/internal/auth"
	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/service"
)

// HistoryResponse represents the HTTP response payload for the chat history.
//
// swagger:model HistoryResponse
type HistoryResponse struct {
	Turns []auth.Turn `json:"turns"`
}

// HistoryHandler returns the session's chat history as JSON.
type HistoryHandler struct {
	chatService service.ChatService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(chatService service.ChatService) *HistoryHandler {
	return &HistoryHandler{chatService: chatService}
}

// ServeHTTP handles GET /api/history.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	turns, err := h.chatService.History(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load history")
		return
	}
	if turns == nil {
		turns = []auth.Turn{}
	}
	writeJSON(ctx, w, http.StatusOK, HistoryResponse{Turns: turns})
}

// HistoryPageHandler renders the session's chat history as an HTML page.
// Answers are treated as markdown; raw HTML in them is not rendered.
type HistoryPageHandler struct {
	chatService service.ChatService
	markdown    goldmark.Markdown
	template    *template.Template
}

type historyPageData struct {
	Username string
	Team     string
	Turns    []historyTurn
}

type historyTurn struct {
	Question string
	Answer   template.HTML
	AskedAt  string
}

// NewHistoryPageHandler creates a new HistoryPageHandler.
func NewHistoryPageHandler(chatService service.ChatService) *HistoryPageHandler {
	tmpl := template.Must(template.New("history").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Chat history - {{.Team}}</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 900px;
      line-height: 1.6;
    }
    header {
      border-bottom: 1px solid #ddd;
      margin-bottom: 1.5rem;
    }
    .turn {
      margin-bottom: 2rem;
    }
    .question {
      font-weight: 600;
    }
    .meta {
      color: #777;
      font-size: 0.85rem;
    }
    pre {
      background: #f5f5f5;
      padding: 1rem;
      overflow-x: auto;
    }
  </style>
</head>
<body>
  <header>
    <h1>Chat history</h1>
    <p class="meta">{{.Username}} &middot; {{.Team}}</p>
  </header>
  {{range .Turns}}
  <section class="turn">
    <p class="meta">{{.AskedAt}}</p>
    <p class="question">{{.Question}}</p>
    <article>{{.Answer}}</article>
  </section>
  {{else}}
  <p>No questions asked yet.</p>
  {{end}}
</body>
</html>`))

	return &HistoryPageHandler{
		chatService: chatService,
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Table,
				extension.Strikethrough,
				extension.Linkify,
			),
		),
		template: tmpl,
	}
}

// ServeHTTP handles GET /history.
func (h *HistoryPageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	turns, err := h.chatService.History(ctx)
	if err != nil {
		status, _ := statusFor(err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	id, _ := contextutil.IdentityFromContext(ctx)
	data := historyPageData{Username: id.Username, Team: id.Team}
	for _, t := range turns {
		answer, err := h.renderMarkdown([]byte(t.Answer))
		if err != nil {
			logger.ErrorContext(ctx, "failed to render answer", "error", err)
			http.Error(w, "failed to render history", http.StatusInternalServerError)
			return
		}
		data.Turns = append(data.Turns, historyTurn{
			Question: t.Question,
			Answer:   template.HTML(answer),
			AskedAt:  t.AskedAt.Format("2006-01-02 15:04"),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, data); err != nil {
		logger.ErrorContext(ctx, "failed to execute history template", "error", err)
	}
}

func (h *HistoryPageHandler) renderMarkdown(content []byte) (string, error) {
	var buf bytes.Buffer
	if err := h.markdown.Convert(content, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
