package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8081/", "test-key", "test-model")
	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.BaseURL != "http://localhost:8081" {
		t.Errorf("NewClient() BaseURL = %v, want http://localhost:8081", client.BaseURL)
	}
	if client.APIKey != "test-key" {
		t.Errorf("NewClient() APIKey = %v, want test-key", client.APIKey)
	}
	if client.Model != "test-model" {
		t.Errorf("NewClient() Model = %v, want test-model", client.Model)
	}
	if client.client == nil {
		t.Error("NewClient() client should not be nil")
	}
}

func TestClient_ChatWithMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("expected /v1/chat/completions, got %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Error("missing Authorization header")
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(req.Messages) != 2 {
			t.Errorf("expected 2 messages, got %d", len(req.Messages))
		}
		if req.Model != "custom-model" || req.MaxTokens != 100 {
			t.Errorf("request params = %+v", req)
		}

		resp := ChatResponse{
			ID:     "test-id",
			Object: "chat.completion",
			Choices: []ChatChoice{
				{Index: 0, Message: ChatChoiceMessage{Role: "assistant", Content: "Response"}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")

	messages := []Message{
		{Role: RoleSystem, Content: "You are a helpful assistant"},
		{Role: RoleUser, Content: "Hello"},
	}

	reply, err := client.ChatWithMessages(context.Background(), messages, ChatParams{
		Model:       "custom-model",
		MaxTokens:   100,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("ChatWithMessages() error = %v", err)
	}

	if reply != "Response" {
		t.Errorf("ChatWithMessages() reply = %v, want Response", reply)
	}
}

func TestClient_ChatWithMessages_DefaultModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		if req.Model != "test-model" {
			t.Errorf("expected model test-model, got %s", req.Model)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("Authorization header should be omitted without an API key")
		}

		_ = json.NewEncoder(w).Encode(ChatResponse{
			Choices: []ChatChoice{{Message: ChatChoiceMessage{Content: "Response"}}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "test-model")

	reply, err := client.ChatWithMessages(context.Background(), []Message{{Role: RoleUser, Content: "Hello"}}, ChatParams{})
	if err != nil {
		t.Fatalf("ChatWithMessages() error = %v", err)
	}
	if reply != "Response" {
		t.Errorf("ChatWithMessages() reply = %v, want Response", reply)
	}
}

func TestClient_ChatWithMessages_Errors(t *testing.T) {
	tests := []struct {
		name          string
		handler       http.HandlerFunc
		wantStatus    int
		wantTransient bool
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("boom"))
			},
			wantStatus:    http.StatusInternalServerError,
			wantTransient: true,
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			wantStatus:    http.StatusUnauthorized,
			wantTransient: false,
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(ChatResponse{})
			},
			wantTransient: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(server.URL, "k", "m")
			_, err := client.ChatWithMessages(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, ChatParams{})
			if err == nil {
				t.Fatal("ChatWithMessages() expected error, got nil")
			}

			var statusErr *StatusError
			if tt.wantStatus != 0 && (!errors.As(err, &statusErr) || statusErr.StatusCode != tt.wantStatus) {
				t.Errorf("ChatWithMessages() error = %v, want status %d", err, tt.wantStatus)
			}
			if got := IsTransient(err); got != tt.wantTransient {
				t.Errorf("IsTransient(%v) = %v, want %v", err, got, tt.wantTransient)
			}
		})
	}
}

func TestClient_ChatWithMessages_Empty(t *testing.T) {
	client := NewClient("http://127.0.0.1:0", "", "m")
	if _, err := client.ChatWithMessages(context.Background(), nil, ChatParams{}); err == nil {
		t.Error("ChatWithMessages() with no messages should fail")
	}
}

func TestClient_ChatWithMessages_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, "", "m")
	_, err := client.ChatWithMessages(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, ChatParams{})
	if err == nil {
		t.Fatal("ChatWithMessages() expected error, got nil")
	}
	if !IsTransient(err) {
		t.Errorf("IsTransient(%v) = false, want true for refused connection", err)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", errors.Join(errors.New("x"), context.DeadlineExceeded), true},
		{"429", &StatusError{StatusCode: http.StatusTooManyRequests}, true},
		{"502", &StatusError{StatusCode: http.StatusBadGateway}, true},
		{"403", &StatusError{StatusCode: http.StatusForbidden}, false},
		{"plain", errors.New("invalid model"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
