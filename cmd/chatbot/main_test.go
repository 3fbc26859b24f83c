package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"mga-chatbot/internal/config"
	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/domain"
	"mga-chatbot/internal/service"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		LogLevel:           slog.LevelInfo,
		LogFormat:          "text",
		APIPort:            "0",
		DataDir:            filepath.Join(dir, "Chatbot_Files"),
		DBPath:             filepath.Join(dir, "chatbot.db"),
		UsersFile:          filepath.Join(dir, "users.yaml"),
		SessionTTL:         time.Hour,
		ChunkSize:          500,
		ChunkOverlap:       50,
		TopK:               3,
		Responder:          config.ResponderTemplate,
		LLMProvider:        config.LLMProviderOpenAI,
		LLMTimeout:         time.Second,
		EmbeddingProvider:  config.EmbeddingProviderHashing,
		EmbeddingDimension: 256,
		IndexBackend:       config.IndexBackendMemory,
	}
}

func TestCommands_Registered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "ingest", "ask", "hash-password"} {
		assert.True(t, names[want], "command %s should be registered", want)
	}
}

func TestHashPasswordCmd(t *testing.T) {
	defer func() {
		passwdUsername, passwdTeam, passwdPassword = "", "", ""
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader("s3cret\n"))
	rootCmd.SetArgs([]string{"hash-password", "--username", "userNL", "--team", "Equipe_6"})

	require.NoError(t, rootCmd.Execute())

	var entry struct {
		Users []struct {
			Username     string `yaml:"username"`
			PasswordHash string `yaml:"password_hash"`
			Team         string `yaml:"team"`
		} `yaml:"users"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &entry))
	require.Len(t, entry.Users, 1)
	assert.Equal(t, "userNL", entry.Users[0].Username)
	assert.Equal(t, "Equipe_6", entry.Users[0].Team)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(entry.Users[0].PasswordHash), []byte("s3cret")))
}

func TestNewApp_EndToEnd(t *testing.T) {
	ctx := context.Background()
	a, err := newApp(ctx, testConfig(t))
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, a.Close(ctx))
	}()

	// Missing users.yaml falls back to the built-in accounts.
	token, id, err := a.sessions.Login(ctx, "userPT", "passwordPT")
	require.NoError(t, err)
	assert.Equal(t, "Equipe_1", id.Team)

	ctx = contextutil.WithIdentity(ctx, id)
	ctx = contextutil.WithSessionToken(ctx, token)

	_, err = a.chatService.Ask(ctx, service.AskRequest{Question: "What color is the sky?"})
	assert.ErrorIs(t, err, domain.ErrEmptyCorpus)

	report, err := a.workspaceService.Upload(ctx, []service.Upload{
		{Name: "sky.txt", Content: strings.NewReader("The sky is blue.")},
		{Name: "grass.txt", Content: strings.NewReader("Grass is green.")},
		{Name: "logo.png", Content: strings.NewReader("png")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Stored)
	require.NotNil(t, report.Index)
	assert.Equal(t, 2, report.Index.Chunks)

	resp, err := a.chatService.Ask(ctx, service.AskRequest{Question: "What color is the sky?", K: 1})
	require.NoError(t, err)
	require.Len(t, resp.References, 1)
	assert.Equal(t, "sky.txt", resp.References[0].File)
	assert.Contains(t, resp.Answer, "The sky is blue.")

	history, err := a.chatService.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "What color is the sky?", history[0].Question)

	// Another team sees none of Equipe_1's files.
	other, err := a.partitionFor(ctx, cliOperator, "Equipe_2")
	require.NoError(t, err)
	stats, err := a.engine.Rebuild(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Chunks)

	checks := a.healthChecks()
	require.Contains(t, checks, "database")
	assert.NoError(t, checks["database"](ctx))
	assert.NotContains(t, checks, "vector_store")
}

func TestNewApp_InvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.EmbeddingProvider = "word2vec"

	_, err := newApp(context.Background(), c)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestNewApp_InvalidChunking(t *testing.T) {
	c := testConfig(t)
	c.ChunkOverlap = c.ChunkSize

	_, err := newApp(context.Background(), c)
	require.ErrorIs(t, err, domain.ErrConfig)

	var cerr *domain.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "chunk_overlap", cerr.Field)
	assert.Equal(t, 1, strings.Count(err.Error(), "config error"), "error is reported once: %v", err)
}
