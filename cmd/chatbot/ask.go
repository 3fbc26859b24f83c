package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mga-chatbot/internal/domain"
	"mga-chatbot/internal/rag"
)

// cliOperator is recorded as the uploader/asker for command line operations.
const cliOperator = "cli"

var (
	askTeam  string
	askK     int
	askDebug bool
	askJSON  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against a team's documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askTeam, "team", "t", "", "team whose documents are searched (required)")
	askCmd.Flags().IntVar(&askK, "k", 0, "number of excerpts to retrieve (default from TOP_K)")
	askCmd.Flags().BoolVar(&askDebug, "debug", false, "include retrieval details")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the response as JSON")
	_ = askCmd.MarkFlagRequired("team")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("question cannot be empty")
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close(ctx)
	}()

	p, err := a.partitionFor(ctx, cliOperator, askTeam)
	if err != nil {
		return err
	}

	resp, err := a.engine.Ask(ctx, rag.AskRequest{
		Partition: p,
		Question:  question,
		K:         askK,
		Debug:     askDebug,
	})
	if errors.Is(err, domain.ErrEmptyCorpus) {
		cmd.Printf("No documents available for team %s. Upload files first.\n", askTeam)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to answer question: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal response: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printAnswer(cmd, resp)
	return nil
}

func printAnswer(cmd *cobra.Command, resp rag.AskResponse) {
	cmd.Println(resp.Answer)
	if len(resp.References) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("References:")
	for _, ref := range resp.References {
		marker := " "
		if ref.Cited {
			marker = "*"
		}
		cmd.Printf("%s [%d] %s (chunk %d, distance %.3f)\n", marker, ref.Rank, ref.File, ref.Seq, ref.Distance)
	}
}
