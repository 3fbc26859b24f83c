package handlers

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_session_manager.go -package=mocks mga-chatbot/internal/handlers SessionManager

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/domain"
)

// SessionCookieName is the cookie that carries the session token for browsers.
const SessionCookieName = "mga_session"

// SessionManager opens and closes login sessions.
type SessionManager interface {
	Login(ctx context.Context, username, password string) (string, domain.Identity, error)
	Logout(ctx context.Context, token string)
}

// LoginRequest represents the HTTP request payload for login.
//
// swagger:model LoginRequest
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the HTTP response payload for a successful login.
//
// swagger:model LoginResponse
type LoginResponse struct {
	// Opaque session token; send it as "Authorization: Bearer <token>".
	Token    string `json:"token"`
	Username string `json:"username"`
	Team     string `json:"team"`
	Message  string `json:"message"`
}

// LoginHandler handles HTTP requests for login.
type LoginHandler struct {
	sessions SessionManager
	ttl      time.Duration
}

// NewLoginHandler creates a new LoginHandler. ttl sets the cookie lifetime.
func NewLoginHandler(sessions SessionManager, ttl time.Duration) *LoginHandler {
	return &LoginHandler{sessions: sessions, ttl: ttl}
}

// ServeHTTP handles HTTP requests for login.
//
// swagger:route POST /api/login login
//
// # Log in with a team account
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Logged in
//	  schema:
//	    "$ref": "#/definitions/LoginResponse"
//	'401':
//	  description: Invalid username or password
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	token, id, err := h.sessions.Login(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(ctx, w, http.StatusOK, LoginResponse{
		Token:    token,
		Username: id.Username,
		Team:     id.Team,
		Message:  "Access granted. Welcome, " + id.Team + ".",
	})
}

// LogoutHandler handles HTTP requests for logout.
type LogoutHandler struct {
	sessions SessionManager
}

// NewLogoutHandler creates a new LogoutHandler.
func NewLogoutHandler(sessions SessionManager) *LogoutHandler {
	return &LogoutHandler{sessions: sessions}
}

// ServeHTTP ends the caller's session. It always succeeds.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if token := contextutil.SessionTokenFromContext(ctx); token != "" {
		h.sessions.Logout(ctx, token)
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	w.WriteHeader(http.StatusNoContent)
}
