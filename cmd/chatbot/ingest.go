package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestTeam string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Rebuild a team's index and print build statistics",
	Long: `Reads every file in the team's folder, extracts, chunks and embeds it,
and prints the build statistics as JSON. Files with unsupported formats
are listed under "skipped".`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestTeam, "team", "t", "", "team whose folder is indexed (required)")
	_ = ingestCmd.MarkFlagRequired("team")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close(ctx)
	}()

	p, err := a.partitionFor(ctx, cliOperator, ingestTeam)
	if err != nil {
		return err
	}

	stats, err := a.engine.Rebuild(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
