// Package auth verifies user credentials and tracks logged-in sessions.
package auth

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_credential_store.go -package=mocks mga-chatbot/internal/auth CredentialStore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/domain"
)

// CredentialStore checks a username and password and returns the identity
// they belong to.
type CredentialStore interface {
	Verify(ctx context.Context, username, password string) (domain.Identity, error)
}

// User is one entry of the credentials file.
type User struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
	Team         string `yaml:"team"`
}

type usersFile struct {
	Users []User `yaml:"users"`
}

// DefaultCredential is a built-in account used when no credentials file exists.
type DefaultCredential struct {
	Username string
	Password string
	Team     string
}

// DefaultCredentials are the five team accounts the chatbot ships with.
var DefaultCredentials = []DefaultCredential{
	{Username: "userPT", Password: "passwordPT", Team: "Equipe_1"},
	{Username: "userROU", Password: "passwordROU", Team: "Equipe_2"},
	{Username: "userBE", Password: "passwordBE", Team: "Equipe_3"},
	{Username: "userIT", Password: "passwordIT", Team: "Equipe_4"},
	{Username: "userPL", Password: "passwordPL", Team: "Equipe_5"},
}

// dummyHash is compared against when the username is unknown so both
// failure paths cost one bcrypt comparison.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z5u1aXbKcGbN3RGx2Zg6l4cK")

// FileStore is a CredentialStore backed by a YAML file of bcrypt hashes.
type FileStore struct {
	users map[string]User
}

// NewFileStore creates a store from users. Usernames must be unique and
// every user needs a team and a bcrypt hash.
func NewFileStore(users []User) (*FileStore, error) {
	s := &FileStore{users: make(map[string]User, len(users))}
	for i, u := range users {
		u.Username = strings.TrimSpace(u.Username)
		u.Team = strings.TrimSpace(u.Team)
		if u.Username == "" || u.Team == "" || u.PasswordHash == "" {
			return nil, &domain.ConfigError{Field: "users", Message: fmt.Sprintf("entry %d needs username, team and password_hash", i)}
		}
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			return nil, &domain.ConfigError{Field: "users", Message: fmt.Sprintf("user %q has an invalid password_hash: %v", u.Username, err)}
		}
		if _, dup := s.users[u.Username]; dup {
			return nil, &domain.ConfigError{Field: "users", Message: fmt.Sprintf("duplicate user %q", u.Username)}
		}
		s.users[u.Username] = u
	}
	return s, nil
}

// LoadFile reads a credentials file. If the file does not exist the store
// holds DefaultCredentials.
func LoadFile(ctx context.Context, path string) (*FileStore, error) {
	logger := contextutil.LoggerFromContext(ctx)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.WarnContext(ctx, "credentials file not found, using built-in accounts", "path", path)
		return defaultStore()
	}
	if err != nil {
		return nil, &domain.IOError{Op: "read", Path: path, Err: err}
	}

	var f usersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &domain.ConfigError{Field: "users", Message: fmt.Sprintf("failed to parse %s: %v", path, err)}
	}
	if len(f.Users) == 0 {
		return nil, &domain.ConfigError{Field: "users", Message: fmt.Sprintf("%s defines no users", path)}
	}

	store, err := NewFileStore(f.Users)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "credentials loaded", "path", path, "users", len(f.Users))
	return store, nil
}

func defaultStore() (*FileStore, error) {
	users := make([]User, 0, len(DefaultCredentials))
	for _, c := range DefaultCredentials {
		hash, err := HashPassword(c.Password)
		if err != nil {
			return nil, err
		}
		users = append(users, User{Username: c.Username, PasswordHash: hash, Team: c.Team})
	}
	return NewFileStore(users)
}

// MarshalUsers renders users in the credentials file format.
func MarshalUsers(users []User) ([]byte, error) {
	return yaml.Marshal(usersFile{Users: users})
}

// HashPassword returns the bcrypt hash stored in the credentials file.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify returns the user's identity if password matches.
func (s *FileStore) Verify(_ context.Context, username, password string) (domain.Identity, error) {
	u, ok := s.users[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return domain.Identity{}, &domain.AuthError{Username: username, Reason: "invalid username or password"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return domain.Identity{}, &domain.AuthError{Username: username, Reason: "invalid username or password"}
	}
	return domain.Identity{Username: u.Username, Team: u.Team}, nil
}

// Len returns the number of known users.
func (s *FileStore) Len() int { return len(s.users) }
