package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/domain"
)

// DefaultTTL is how long a session stays valid after login.
const DefaultTTL = 8 * time.Hour

// MaxHistory bounds the number of turns kept per session; older turns are dropped.
const MaxHistory = 200

// Turn is one question and its answer within a session.
type Turn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

type session struct {
	identity  domain.Identity
	expiresAt time.Time
	history   []Turn
}

// Sessions issues opaque tokens after a successful credential check and
// keeps each session's chat history. State is in memory only; a restart
// logs everyone out.
type Sessions struct {
	store CredentialStore
	ttl   time.Duration
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessions creates a session manager. A ttl <= 0 uses DefaultTTL.
func NewSessions(store CredentialStore, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Sessions{
		store:    store,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Login verifies the credentials and opens a session.
func (s *Sessions) Login(ctx context.Context, username, password string) (string, domain.Identity, error) {
	logger := contextutil.LoggerFromContext(ctx)

	id, err := s.store.Verify(ctx, username, password)
	if err != nil {
		logger.WarnContext(ctx, "login rejected", "username", username)
		return "", domain.Identity{}, err
	}

	token := uuid.New().String()
	s.mu.Lock()
	s.pruneLocked()
	s.sessions[token] = &session{identity: id, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()

	logger.InfoContext(ctx, "user logged in", "username", id.Username, "team", id.Team)
	return token, id, nil
}

// Authenticate returns the identity of a live session.
func (s *Sessions) Authenticate(_ context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, &domain.AuthError{Reason: "missing session token"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookupLocked(token)
	if err != nil {
		return domain.Identity{}, err
	}
	return sess.identity, nil
}

// Logout ends the session and discards its history. Unknown tokens are ignored.
func (s *Sessions) Logout(ctx context.Context, token string) {
	s.mu.Lock()
	sess, ok := s.sessions[token]
	delete(s.sessions, token)
	s.mu.Unlock()

	if ok {
		contextutil.LoggerFromContext(ctx).InfoContext(ctx, "user logged out", "username", sess.identity.Username)
	}
}

// AppendHistory records a turn in the session's history.
func (s *Sessions) AppendHistory(token string, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookupLocked(token)
	if err != nil {
		return err
	}
	sess.history = append(sess.history, turn)
	if over := len(sess.history) - MaxHistory; over > 0 {
		sess.history = append([]Turn(nil), sess.history[over:]...)
	}
	return nil
}

// History returns a copy of the session's turns, oldest first.
func (s *Sessions) History(token string) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookupLocked(token)
	if err != nil {
		return nil, err
	}
	return append([]Turn(nil), sess.history...), nil
}

// Len returns the number of open sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) lookupLocked(token string) (*session, error) {
	sess, ok := s.sessions[token]
	if !ok {
		return nil, &domain.AuthError{Reason: "unknown session"}
	}
	if !s.now().Before(sess.expiresAt) {
		delete(s.sessions, token)
		return nil, &domain.AuthError{Username: sess.identity.Username, Reason: "session expired"}
	}
	return sess, nil
}

func (s *Sessions) pruneLocked() {
	now := s.now()
	for token, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, token)
		}
	}
}
