package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursechat-cli/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [folder]",
	Short: "Watch a folder and ingest new transcripts",
	Long: `Watches a folder and ingests transcript files as they appear.

Existing files are ingested once at startup; after that any created or
modified transcript is picked up automatically. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	folder := args[0]
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	courses, chunks := ragService.AddCourseFolder(ctx, folder, false)
	cmd.Printf("Initial scan: %d courses (%d chunks)\n", courses, chunks)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(folder); err != nil {
		return fmt.Errorf("watch %s: %w", folder, err)
	}
	cmd.Printf("Watching %s\n", folder)

	for {
		select {
		case <-ctx.Done():
			cmd.Println("Stopped.")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !isTranscript(event.Name) {
				continue
			}
			logger.Debug("Watch event: %s %s", event.Op, event.Name)
			if course, n := ragService.AddCourseDocument(ctx, event.Name); course != nil {
				cmd.Printf("Added course %q (%d chunks)\n", course.Title, n)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

func isTranscript(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".pdf", ".docx":
		return true
	}
	return false
}
