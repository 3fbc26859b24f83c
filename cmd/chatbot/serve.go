package main

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mga-chatbot/internal/http"
)

//go:embed index.html
var indexHTML string

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and web page",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			slog.Warn("Cleanup failed", "error", err)
		}
	}()

	router := http.NewRouter(&http.Deps{
		ChatService:      a.chatService,
		WorkspaceService: a.workspaceService,
		Sessions:         a.sessions,
		SessionTTL:       cfg.SessionTTL,
		HealthChecks:     a.healthChecks(),
		IndexHTML:        indexHTML,
	})

	srv := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
