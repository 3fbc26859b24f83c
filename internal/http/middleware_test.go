package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/domain"
	"mga-chatbot/internal/handlers"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoggerMiddleware(t *testing.T) {
	var capturedCtx context.Context
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedCtx = r.Context()
		w.WriteHeader(http.StatusOK)
	})

	middleware := LoggerMiddleware(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("LoggerMiddleware() status = %v, want %v", w.Code, http.StatusOK)
	}

	// Check that logger was added to context
	if capturedCtx == nil {
		t.Fatal("LoggerMiddleware() should capture context")
	}
	logger := capturedCtx.Value(contextutil.LoggerKey())
	if logger == nil {
		t.Error("LoggerMiddleware() should add logger to context")
	}
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		statusCode int
		shouldLog  bool
	}{
		{
			name:       "regular request",
			method:     http.MethodPost,
			path:       "/api/ask",
			statusCode: http.StatusOK,
			shouldLog:  true,
		},
		{
			name:       "health check skipped",
			method:     http.MethodGet,
			path:       "/",
			statusCode: http.StatusOK,
			shouldLog:  false,
		},
		{
			name:       "non-200 health check logged",
			method:     http.MethodGet,
			path:       "/",
			statusCode: http.StatusNotFound,
			shouldLog:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			})

			middleware := RequestLogger(handler)
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			middleware.ServeHTTP(w, req)

			if w.Code != tt.statusCode {
				t.Errorf("RequestLogger() status = %v, want %v", w.Code, tt.statusCode)
			}
		})
	}
}

func TestResponseWriter_WriteHeader(t *testing.T) {
	w := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("responseWriter.WriteHeader() statusCode = %v, want %v", rw.statusCode, http.StatusNotFound)
	}

	if w.Code != http.StatusNotFound {
		t.Errorf("responseWriter.WriteHeader() underlying status = %v, want %v", w.Code, http.StatusNotFound)
	}
}

func TestCORS(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := CORS(handler)

	tests := []struct {
		name           string
		method         string
		origin         string
		wantStatusCode int
		checkHeaders   func(*httptest.ResponseRecorder) bool
	}{
		{
			name:           "preflight OPTIONS",
			method:         http.MethodOptions,
			origin:         "http://localhost:3000",
			wantStatusCode: http.StatusNoContent,
			checkHeaders: func(w *httptest.ResponseRecorder) bool {
				return w.Header().Get("Access-Control-Allow-Origin") != ""
			},
		},
		{
			name:           "request with origin",
			method:         http.MethodPost,
			origin:         "http://localhost:3000",
			wantStatusCode: http.StatusOK,
			checkHeaders: func(w *httptest.ResponseRecorder) bool {
				return w.Header().Get("Access-Control-Allow-Origin") == "http://localhost:3000"
			},
		},
		{
			name:           "request without origin",
			method:         http.MethodPost,
			origin:         "",
			wantStatusCode: http.StatusOK,
			checkHeaders: func(w *httptest.ResponseRecorder) bool {
				return w.Header().Get("Access-Control-Allow-Origin") == "*"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			middleware.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Errorf("CORS() status = %v, want %v", w.Code, tt.wantStatusCode)
			}

			if tt.checkHeaders != nil && !tt.checkHeaders(w) {
				t.Error("CORS() header validation failed")
			}
		})
	}
}

func TestCORS_Headers(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := CORS(handler)

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	headers := map[string]string{
		"Access-Control-Allow-Origin":  "http://localhost:3000",
		"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type, Authorization",
		"Access-Control-Max-Age":       "3600",
	}

	for header, wantValue := range headers {
		gotValue := w.Header().Get(header)
		if gotValue != wantValue {
			t.Errorf("CORS() header %s = %v, want %v", header, gotValue, wantValue)
		}
	}
}

type fakeAuthenticator map[string]domain.Identity

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (domain.Identity, error) {
	id, ok := f[token]
	if !ok {
		return domain.Identity{}, &domain.AuthError{Reason: "unknown session"}
	}
	return id, nil
}

func TestAuthenticate(t *testing.T) {
	auth := fakeAuthenticator{"good": {Username: "userROU", Team: "Equipe_2"}}

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
	}{
		{name: "bearer token", header: "Bearer good", wantStatus: http.StatusOK},
		{name: "session cookie", cookie: "good", wantStatus: http.StatusOK},
		{name: "no credentials", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer bad", wantStatus: http.StatusUnauthorized},
		{name: "non-bearer scheme", header: "Basic good", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID domain.Identity
			var gotToken string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID, _ = contextutil.IdentityFromContext(r.Context())
				gotToken = contextutil.SessionTokenFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: handlers.SessionCookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()

			Authenticate(auth)(next).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Authenticate() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				var resp handlers.ErrorResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || resp.Error == "" {
					t.Errorf("Authenticate() body = %q, want JSON error", w.Body.String())
				}
				return
			}
			if gotID.Team != "Equipe_2" || gotToken != "good" {
				t.Errorf("Authenticate() context identity = %+v token = %q", gotID, gotToken)
			}
		})
	}
}

func TestAuthenticate_ErrorIsNotLeaked(t *testing.T) {
	auth := authFunc(func(context.Context, string) (domain.Identity, error) {
		return domain.Identity{}, errors.New("session table corrupt")
	})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	Authenticate(auth)(next).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Authenticate() status = %v, want 401", w.Code)
	}
	if body := w.Body.String(); len(body) == 0 || strings.Contains(body, "corrupt") {
		t.Errorf("Authenticate() body = %q", body)
	}
}

type authFunc func(context.Context, string) (domain.Identity, error)

func (f authFunc) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	return f(ctx, token)
}
