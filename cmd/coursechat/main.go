// Command coursechat is a terminal chatbot over ingested course
// transcripts.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	configfile "github.com/custodia-labs/coursechat-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/coursechat-cli/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/coursechat-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/coursechat-cli/internal/adapters/driven/ingest"
	"github.com/custodia-labs/coursechat-cli/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/coursechat-cli/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/coursechat-cli/internal/adapters/driven/vectorstore/sqlite"
	"github.com/custodia-labs/coursechat-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/coursechat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/coursechat-cli/internal/core/services"
	"github.com/custodia-labs/coursechat-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	settings := configfile.ResolveSettings(configStore)

	cli.SetVersion(version)
	cli.SetDocsDir(settings.DocsDir)

	// Commands guard against a nil service themselves, so a missing
	// API key still leaves version and help usable.
	if rag, err := buildRAGService(settings); err != nil {
		logger.Warn("Service unavailable: %v", err)
	} else {
		cli.SetRAGService(rag)
	}

	return cli.Execute()
}

func buildRAGService(settings configfile.Settings) (*services.RAGService, error) {
	embedder, err := buildEmbedder(settings)
	if err != nil {
		return nil, err
	}

	store, err := buildVectorStore(settings, embedder)
	if err != nil {
		return nil, err
	}

	llm, err := anthropic.NewLLMService(anthropic.Config{
		APIKey:    settings.AnthropicAPIKey,
		BaseURL:   settings.LLMBaseURL,
		Model:     settings.LLMModel,
		MaxTokens: settings.LLMMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	parser := ingest.NewParser(settings.ChunkSize, settings.ChunkOverlap)

	return services.NewRAGService(parser, store, llm, settings.MaxHistory), nil
}

func buildEmbedder(settings configfile.Settings) (driven.EmbeddingService, error) {
	switch settings.EmbeddingProvider {
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:  settings.OpenAIAPIKey,
			BaseURL: settings.EmbeddingBaseURL,
			Model:   settings.EmbeddingModel,
		})
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: settings.EmbeddingBaseURL,
			Model:   settings.EmbeddingModel,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", settings.EmbeddingProvider)
	}
}

func buildVectorStore(settings configfile.Settings, embedder driven.EmbeddingService) (driven.VectorStore, error) {
	switch settings.StoreBackend {
	case "sqlite":
		return sqlite.NewStore(settings.DataDir, embedder, settings.MaxResults)
	case "memory":
		return memory.NewStore(embedder, settings.MaxResults), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", settings.StoreBackend)
	}
}
