// Package cli wires the cobra command tree to the core services.
// Services are injected from main via the Set* functions before
// Execute runs.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursechat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/coursechat-cli/internal/logger"
)

var (
	version = "dev"

	ragService driving.RAGService

	docsDir string

	verbose bool
)

// rootCmd is the base command; subcommands attach themselves in init.
var rootCmd = &cobra.Command{
	Use:   "coursechat",
	Short: "Chat with your course materials",
	Long: `Coursechat answers questions about your course transcripts.

Ingest transcript files into a local vector index, then ask questions
in one-shot mode or in an interactive chat session. Answers are
grounded in retrieved course content and cite their sources.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetRAGService injects the RAG service used by the commands.
func SetRAGService(s driving.RAGService) {
	ragService = s
}

// SetDocsDir sets the default transcript folder used by ingest when no
// path is given.
func SetDocsDir(dir string) {
	docsDir = dir
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
