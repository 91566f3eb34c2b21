package file

import (
	"os"

	"github.com/custodia-labs/coursechat-cli/internal/core/ports/driven"
)

// Settings is the resolved application configuration. Values come from
// the config store with defaults applied; API keys come from the
// environment only and are never written to disk.
type Settings struct {
	LLMModel     string
	LLMBaseURL   string
	LLMMaxTokens int

	EmbeddingProvider string
	EmbeddingModel    string
	EmbeddingBaseURL  string

	StoreBackend string
	DataDir      string
	MaxResults   int

	DocsDir      string
	ChunkSize    int
	ChunkOverlap int

	MaxHistory int

	AnthropicAPIKey string
	OpenAIAPIKey    string
}

// Configuration defaults.
const (
	DefaultEmbeddingProvider = "openai"
	DefaultStoreBackend      = "sqlite"
	DefaultDocsDir           = "docs"
)

// ResolveSettings reads the known keys out of the store, applying
// defaults for anything unset.
func ResolveSettings(store driven.ConfigStore) Settings {
	s := Settings{
		LLMModel:          store.GetString("llm.model"),
		LLMBaseURL:        store.GetString("llm.base_url"),
		LLMMaxTokens:      store.GetInt("llm.max_tokens"),
		EmbeddingProvider: store.GetString("embedding.provider"),
		EmbeddingModel:    store.GetString("embedding.model"),
		EmbeddingBaseURL:  store.GetString("embedding.base_url"),
		StoreBackend:      store.GetString("store.backend"),
		DataDir:           store.GetString("store.data_dir"),
		MaxResults:        store.GetInt("store.max_results"),
		DocsDir:           store.GetString("ingest.docs_dir"),
		ChunkSize:         store.GetInt("ingest.chunk_size"),
		ChunkOverlap:      store.GetInt("ingest.chunk_overlap"),
		MaxHistory:        store.GetInt("session.max_history"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
	}

	if s.EmbeddingProvider == "" {
		s.EmbeddingProvider = DefaultEmbeddingProvider
	}
	if s.StoreBackend == "" {
		s.StoreBackend = DefaultStoreBackend
	}
	if s.DocsDir == "" {
		s.DocsDir = DefaultDocsDir
	}

	return s
}
