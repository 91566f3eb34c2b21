package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var askSessionID string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question about the course materials",
	Long: `Answers one question and exits.

Pass --session to continue an earlier conversation; without it a fresh
session is created and its id printed so a follow-up can reference it.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askSessionID, "session", "", "session id to continue")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	sessionID := askSessionID
	if sessionID == "" {
		sessionID = ragService.CreateSession()
	}

	answer, sources, err := ragService.Query(context.Background(), args[0], sessionID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	cmd.Println(answer)
	if len(sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, src := range sources {
			if src.URL != "" {
				cmd.Printf("  - %s (%s)\n", src.DisplayText, src.URL)
			} else {
				cmd.Printf("  - %s\n", src.DisplayText)
			}
		}
	}
	cmd.Println()
	cmd.Printf("Session: %s\n", sessionID)
	return nil
}
