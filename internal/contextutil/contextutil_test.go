package contextutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"mga-chatbot/internal/domain"
)

func TestLoggerFromContext(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(io.Discard, nil))

	if got := LoggerFromContext(context.Background()); got != slog.Default() {
		t.Error("LoggerFromContext() without logger should return slog.Default()")
	}
	if got := LoggerFromContext(WithLogger(context.Background(), custom)); got != custom {
		t.Error("LoggerFromContext() should return the logger stored in context")
	}
}

func TestIdentityFromContext(t *testing.T) {
	tests := []struct {
		name   string
		ctx    context.Context
		wantOK bool
	}{
		{"none", context.Background(), false},
		{"empty team", WithIdentity(context.Background(), domain.Identity{Username: "a"}), false},
		{"valid", WithIdentity(context.Background(), domain.Identity{Username: "userPT", Team: "Equipe_1"}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := IdentityFromContext(tt.ctx)
			if ok != tt.wantOK {
				t.Errorf("IdentityFromContext() ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}

func TestSessionTokenFromContext(t *testing.T) {
	if got := SessionTokenFromContext(context.Background()); got != "" {
		t.Errorf("SessionTokenFromContext() = %q, want empty", got)
	}
	ctx := WithSessionToken(context.Background(), "tok")
	if got := SessionTokenFromContext(ctx); got != "tok" {
		t.Errorf("SessionTokenFromContext() = %q, want %q", got, "tok")
	}
}
