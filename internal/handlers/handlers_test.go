package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"mga-chatbot/internal/auth"
	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/domain"
	"mga-chatbot/internal/handlers/mocks"
	"mga-chatbot/internal/index"
	"mga-chatbot/internal/rag"
	"mga-chatbot/internal/service"
	svcmocks "mga-chatbot/internal/service/mocks"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var testIdentity = domain.Identity{Username: "userPT", Team: "Equipe_1"}

func authed(r *http.Request) *http.Request {
	ctx := contextutil.WithIdentity(r.Context(), testIdentity)
	ctx = contextutil.WithSessionToken(ctx, "token-1")
	return r.WithContext(ctx)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"auth", &domain.AuthError{Reason: "unknown session"}, http.StatusUnauthorized},
		{"validation", &service.ValidationError{Field: "question", Message: "cannot be empty"}, http.StatusBadRequest},
		{"unsupported", &domain.UnsupportedFormatError{Name: "a.png", Extension: "png"}, http.StatusBadRequest},
		{"empty corpus", service.WrapError(domain.ErrEmptyCorpus, "failed to answer question"), http.StatusConflict},
		{"answer generation", &domain.AnswerGenerationError{Err: errors.New("503"), Retryable: true}, http.StatusBadGateway},
		{"provider mismatch", &domain.ProviderMismatchError{IndexProvider: "a", QueryProvider: "b"}, http.StatusInternalServerError},
		{"config", &domain.ConfigError{Field: "X", Message: "bad"}, http.StatusInternalServerError},
		{"io", &domain.IOError{Op: "write", Path: "/x", Err: errors.New("disk full")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestHandleServiceError_NoInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	handleServiceError(w, context.Background(), errors.New("sqlite: database is locked at /var/db"), "Failed to process question")

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != "Failed to process question" {
		t.Errorf("error = %q, want the default message", resp.Error)
	}
}

func TestAskHandler(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		body           string
		query          string
		mockSetup      func(m *svcmocks.MockChatService)
		expectedStatus int
		check          func(t *testing.T, resp AskResponse)
	}{
		{
			name: "successful ask",
			body: `{"question":"What color is grass?","k":2}`,
			mockSetup: func(m *svcmocks.MockChatService) {
				m.EXPECT().
					Ask(gomock.Any(), service.AskRequest{Question: "What color is grass?", K: 2}).
					Return(rag.AskResponse{
						Answer: "Grass is green [1].",
						References: []rag.Reference{
							{Rank: 1, File: "colors.txt", Seq: 0, Distance: 0.2, Cited: true},
						},
					}, nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, resp AskResponse) {
				if resp.Answer != "Grass is green [1]." {
					t.Errorf("answer = %q", resp.Answer)
				}
				if len(resp.References) != 1 || resp.References[0].File != "colors.txt" || !resp.References[0].Cited {
					t.Errorf("references = %+v", resp.References)
				}
				if resp.Debug != nil {
					t.Error("debug should be omitted")
				}
			},
		},
		{
			name:  "debug mode",
			body:  `{"question":"q"}`,
			query: "?debug=1",
			mockSetup: func(m *svcmocks.MockChatService) {
				m.EXPECT().
					Ask(gomock.Any(), service.AskRequest{Question: "q", Debug: true}).
					Return(rag.AskResponse{
						Answer: "a",
						Debug: &rag.DebugInfo{
							Provider:        "hashing:256",
							RetrievedChunks: []rag.RetrievedChunk{{ChunkID: "c1", File: "f.txt", Rank: 1, ScoreVector: 0.9}},
							Context:         "[1] f.txt (chunk 0)\ntext",
						},
					}, nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, resp AskResponse) {
				if resp.Debug == nil || len(resp.Debug.RetrievedChunks) != 1 || resp.Debug.Provider != "hashing:256" {
					t.Errorf("debug = %+v", resp.Debug)
				}
			},
		},
		{
			name:           "invalid body",
			body:           `{`,
			mockSetup:      func(*svcmocks.MockChatService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "method not allowed",
			method:         http.MethodGet,
			mockSetup:      func(*svcmocks.MockChatService) {},
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name: "empty corpus",
			body: `{"question":"q"}`,
			mockSetup: func(m *svcmocks.MockChatService) {
				m.EXPECT().Ask(gomock.Any(), gomock.Any()).Return(rag.AskResponse{}, domain.ErrEmptyCorpus)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "generation failure",
			body: `{"question":"q"}`,
			mockSetup: func(m *svcmocks.MockChatService) {
				m.EXPECT().Ask(gomock.Any(), gomock.Any()).Return(rag.AskResponse{}, &domain.AnswerGenerationError{Err: errors.New("timeout")})
			},
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			chat := svcmocks.NewMockChatService(ctrl)
			tt.mockSetup(chat)
			handler := NewAskHandler(chat)

			method := tt.method
			if method == "" {
				method = http.MethodPost
			}
			req := authed(httptest.NewRequest(method, "/api/ask"+tt.query, strings.NewReader(tt.body)))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("ServeHTTP() status = %v, want %v (body %s)", w.Code, tt.expectedStatus, w.Body.String())
			}
			if tt.check != nil {
				var resp AskResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				tt.check(t, resp)
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockSetup      func(m *mocks.MockSessionManager)
		expectedStatus int
	}{
		{
			name: "valid credentials",
			body: `{"username":"userPT","password":"passwordPT"}`,
			mockSetup: func(m *mocks.MockSessionManager) {
				m.EXPECT().Login(gomock.Any(), "userPT", "passwordPT").Return("tok", testIdentity, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "invalid credentials",
			body: `{"username":"userPT","password":"nope"}`,
			mockSetup: func(m *mocks.MockSessionManager) {
				m.EXPECT().Login(gomock.Any(), "userPT", "nope").Return("", domain.Identity{}, &domain.AuthError{Username: "userPT", Reason: "invalid"})
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing password",
			body:           `{"username":"userPT"}`,
			mockSetup:      func(*mocks.MockSessionManager) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid body",
			body:           `not json`,
			mockSetup:      func(*mocks.MockSessionManager) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			sessions := mocks.NewMockSessionManager(ctrl)
			tt.mockSetup(sessions)
			handler := NewLoginHandler(sessions, time.Hour)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(tt.body)))

			if w.Code != tt.expectedStatus {
				t.Fatalf("ServeHTTP() status = %v, want %v", w.Code, tt.expectedStatus)
			}
			if w.Code != http.StatusOK {
				return
			}

			var resp LoginResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Token != "tok" || resp.Team != "Equipe_1" {
				t.Errorf("response = %+v", resp)
			}
			cookies := w.Result().Cookies()
			if len(cookies) != 1 || cookies[0].Name != SessionCookieName || cookies[0].Value != "tok" || !cookies[0].HttpOnly {
				t.Errorf("cookies = %+v", cookies)
			}
		})
	}
}

func TestLogoutHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessions := mocks.NewMockSessionManager(ctrl)
	sessions.EXPECT().Logout(gomock.Any(), "token-1").Times(1)

	w := httptest.NewRecorder()
	NewLogoutHandler(sessions).ServeHTTP(w, authed(httptest.NewRequest(http.MethodPost, "/api/logout", nil)))

	if w.Code != http.StatusNoContent {
		t.Errorf("ServeHTTP() status = %v, want %v", w.Code, http.StatusNoContent)
	}
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile(uploadField, name)
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		_, _ = part.Write([]byte(content))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestFilesHandler_Upload(t *testing.T) {
	ctrl := gomock.NewController(t)
	ws := svcmocks.NewMockWorkspaceService(ctrl)

	ws.EXPECT().
		Upload(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, files []service.Upload) (service.UploadReport, error) {
			if len(files) != 1 || files[0].Name != "notes.txt" {
				t.Errorf("Upload() files = %+v", files)
			}
			data, _ := io.ReadAll(files[0].Content)
			if string(data) != "hello" {
				t.Errorf("Upload() content = %q", data)
			}
			return service.UploadReport{
				Partition: "Equipe_1",
				Files:     []service.UploadResult{{Name: "notes.txt", Stored: true, Size: 5}},
				Stored:    1,
				Index:     &index.BuildStats{Chunks: 1},
			}, nil
		})

	body, contentType := multipartBody(t, map[string]string{"notes.txt": "hello"})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/files", body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	NewFilesHandler(ws).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("ServeHTTP() status = %v, want 200 (body %s)", w.Code, w.Body.String())
	}
	var resp UploadResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Stored != 1 || resp.Message != "Files saved to the team folder." || resp.Index == nil {
		t.Errorf("response = %+v", resp)
	}
}

func TestFilesHandler_Upload_IndexFailureKeepsReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	ws := svcmocks.NewMockWorkspaceService(ctrl)
	ws.EXPECT().Upload(gomock.Any(), gomock.Any()).Return(service.UploadReport{
		Partition:  "Equipe_1",
		Files:      []service.UploadResult{{Name: "notes.txt", Stored: true, Size: 5}},
		Stored:     1,
		IndexError: "index rebuild failed; it will be retried on the next question",
	}, nil)

	body, contentType := multipartBody(t, map[string]string{"notes.txt": "hello"})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/files", body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	NewFilesHandler(ws).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("ServeHTTP() status = %v, want 200 (body %s)", w.Code, w.Body.String())
	}
	var resp UploadResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Files) != 1 || !resp.Files[0].Stored {
		t.Errorf("response files = %+v, want the stored file", resp.Files)
	}
	if resp.IndexError == "" || resp.Index != nil {
		t.Errorf("response = %+v, want index_error set and no index stats", resp)
	}
	if want := "Files saved to the team folder. The index could not be rebuilt yet."; resp.Message != want {
		t.Errorf("response message = %q, want %q", resp.Message, want)
	}
}

func TestFilesHandler_Upload_Errors(t *testing.T) {
	t.Run("not multipart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ws := svcmocks.NewMockWorkspaceService(ctrl)

		w := httptest.NewRecorder()
		NewFilesHandler(ws).ServeHTTP(w, authed(httptest.NewRequest(http.MethodPost, "/api/files", strings.NewReader("x"))))
		if w.Code != http.StatusBadRequest {
			t.Errorf("ServeHTTP() status = %v, want 400", w.Code)
		}
	})

	t.Run("no files", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ws := svcmocks.NewMockWorkspaceService(ctrl)
		ws.EXPECT().Upload(gomock.Any(), gomock.Len(0)).
			Return(service.UploadReport{}, &service.ValidationError{Field: "files", Message: "at least one file is required"})

		body, contentType := multipartBody(t, nil)
		req := authed(httptest.NewRequest(http.MethodPost, "/api/files", body))
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		NewFilesHandler(ws).ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("ServeHTTP() status = %v, want 400", w.Code)
		}
	})

	t.Run("too large", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ws := svcmocks.NewMockWorkspaceService(ctrl)
		handler := NewFilesHandler(ws)
		handler.maxBytes = 16

		body, contentType := multipartBody(t, map[string]string{"big.txt": strings.Repeat("x", 1024)})
		req := authed(httptest.NewRequest(http.MethodPost, "/api/files", body))
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		if w.Code != http.StatusRequestEntityTooLarge && w.Code != http.StatusBadRequest {
			t.Errorf("ServeHTTP() status = %v, want 413 or 400", w.Code)
		}
	})
}

func TestFilesHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	ws := svcmocks.NewMockWorkspaceService(ctrl)
	ws.EXPECT().Files(gomock.Any()).Return(nil, nil)

	w := httptest.NewRecorder()
	NewFilesHandler(ws).ServeHTTP(w, authed(httptest.NewRequest(http.MethodGet, "/api/files", nil)))

	if w.Code != http.StatusOK {
		t.Fatalf("ServeHTTP() status = %v, want 200", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"files":[]}` {
		t.Errorf("body = %s, want empty list", got)
	}
}

func TestHistoryHandlers(t *testing.T) {
	ctrl := gomock.NewController(t)
	chat := svcmocks.NewMockChatService(ctrl)
	turns := []auth.Turn{{
		Question: "What is <b>bold</b>?",
		Answer:   "**Green**, see [1].\n\n<script>alert(1)</script>",
		AskedAt:  time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC),
	}}
	chat.EXPECT().History(gomock.Any()).Return(turns, nil).Times(2)

	t.Run("json", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHistoryHandler(chat).ServeHTTP(w, authed(httptest.NewRequest(http.MethodGet, "/api/history", nil)))

		var resp HistoryResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Turns) != 1 || resp.Turns[0].Question != turns[0].Question {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("html", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHistoryPageHandler(chat).ServeHTTP(w, authed(httptest.NewRequest(http.MethodGet, "/history", nil)))

		body := w.Body.String()
		if !strings.Contains(body, "<strong>Green</strong>") {
			t.Errorf("page should render markdown answers, got %s", body)
		}
		if strings.Contains(body, "<script>alert(1)</script>") {
			t.Error("page should not render raw HTML from answers")
		}
		if strings.Contains(body, "<b>bold</b>") {
			t.Error("page should escape questions")
		}
		if !strings.Contains(body, "Equipe_1") {
			t.Error("page should show the team")
		}
	})
}

func TestHistoryPageHandler_Unauthenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	chat := svcmocks.NewMockChatService(ctrl)
	chat.EXPECT().History(gomock.Any()).Return(nil, &domain.AuthError{Reason: "no session on request"})

	w := httptest.NewRecorder()
	NewHistoryPageHandler(chat).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("ServeHTTP() status = %v, want 401", w.Code)
	}
}

func TestRebuildHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	ws := svcmocks.NewMockWorkspaceService(ctrl)
	ws.EXPECT().Rebuild(gomock.Any()).Return(index.BuildStats{Partition: "Equipe_1", Chunks: 4}, nil)

	w := httptest.NewRecorder()
	NewRebuildHandler(ws).ServeHTTP(w, authed(httptest.NewRequest(http.MethodPost, "/api/index/rebuild", nil)))

	if w.Code != http.StatusOK {
		t.Fatalf("ServeHTTP() status = %v, want 200", w.Code)
	}
	var resp RebuildResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Stats.Chunks != 4 {
		t.Errorf("stats = %+v", resp.Stats)
	}

	w = httptest.NewRecorder()
	NewRebuildHandler(ws).ServeHTTP(w, authed(httptest.NewRequest(http.MethodGet, "/api/index/rebuild", nil)))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %v, want 405", w.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus int
		wantIssues int
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: http.StatusOK,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"database": func(context.Context) error { return nil },
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "vector store down",
			checks: map[string]CheckFunc{
				"database":     func(context.Context) error { return nil },
				"vector_store": func(context.Context) error { return errors.New("connection refused") },
			},
			wantStatus: http.StatusServiceUnavailable,
			wantIssues: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHealthHandler(tt.checks).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp.Issues) != tt.wantIssues || len(resp.Checks) != len(tt.checks) {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}
