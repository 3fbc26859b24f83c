package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mga-chatbot/internal/handlers"
	"mga-chatbot/internal/service"
)

// Sessions is the session surface the router needs: login and logout for the
// auth endpoints, token lookup for the protected ones.
type Sessions interface {
	handlers.SessionManager
	Authenticator
}

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService      service.ChatService
	WorkspaceService service.WorkspaceService
	Sessions         Sessions
	SessionTTL       time.Duration
	HealthChecks     map[string]handlers.CheckFunc
	IndexHTML        string // Embedded HTML content
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)

	// Add CORS middleware
	r.Use(CORS)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/login", handlers.NewLoginHandler(deps.Sessions, deps.SessionTTL))
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.HealthChecks))

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(deps.Sessions))

			filesHandler := handlers.NewFilesHandler(deps.WorkspaceService)

			r.Method(http.MethodPost, "/logout", handlers.NewLogoutHandler(deps.Sessions))
			r.Method(http.MethodPost, "/ask", handlers.NewAskHandler(deps.ChatService))
			r.Method(http.MethodGet, "/files", filesHandler)
			r.Method(http.MethodPost, "/files", filesHandler)
			r.Method(http.MethodGet, "/history", handlers.NewHistoryHandler(deps.ChatService))
			r.Method(http.MethodPost, "/index/rebuild", handlers.NewRebuildHandler(deps.WorkspaceService))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(deps.Sessions))
		r.Method(http.MethodGet, "/history", handlers.NewHistoryPageHandler(deps.ChatService))
	})

	// Serve HTML page at root
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(deps.IndexHTML))
	})

	return r
}
