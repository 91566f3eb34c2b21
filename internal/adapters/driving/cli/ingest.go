package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var ingestClear bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest course transcripts into the index",
	Long: `Parses transcript files and adds them to the vector index.

The path may be a single transcript file or a folder. Folders are
scanned for .txt, .pdf and .docx files; courses already present in the
index are skipped unless --clear is given. Without an argument the
configured docs folder is ingested.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "clear the existing index before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	path := docsDir
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return errors.New("no path given and no docs folder configured")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	ctx := context.Background()

	if info.IsDir() {
		courses, chunks := ragService.AddCourseFolder(ctx, path, ingestClear)
		cmd.Printf("Added %d courses (%d chunks)\n", courses, chunks)
		return nil
	}

	course, chunks := ragService.AddCourseDocument(ctx, path)
	if course == nil {
		return fmt.Errorf("ingest failed: could not process %s", path)
	}
	cmd.Printf("Added course %q (%d chunks)\n", course.Title, chunks)
	return nil
}
