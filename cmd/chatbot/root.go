package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mga-chatbot/internal/config"
)

// cfg is loaded once per invocation, before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "chatbot",
	Short: "Team document chatbot",
	Long: `Answers questions from the documents each team uploads.
Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// hash-password needs no configuration.
		if cmd.Annotations[skipConfigAnnotation] == "true" {
			return nil
		}
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		setupLogging(cfg)
		return nil
	},
}

const skipConfigAnnotation = "skip-config"

// setupLogging installs the process-wide slog handler.
func setupLogging(c *config.Config) {
	opts := &slog.HandlerOptions{
		Level: c.LogLevel,
	}
	var handler slog.Handler
	if c.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", c.LogLevel.String(), "format", c.LogFormat)
}
