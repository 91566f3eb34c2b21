package openai

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	service, err := NewEmbeddingService(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	return service
}

func embeddingsPayload(vectors ...[]float32) map[string]any {
	data := make([]map[string]any, len(vectors))
	for i, v := range vectors {
		data[i] = map[string]any{"object": "embedding", "index": i, "embedding": v}
	}
	return map[string]any{"object": "list", "data": data}
}

func TestNewEmbeddingService_RequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestNewEmbeddingService_ModelDimensions(t *testing.T) {
	service, err := NewEmbeddingService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, service.ModelName())
	assert.Equal(t, 1536, service.Dimensions())

	service, err = NewEmbeddingService(Config{APIKey: "k", Model: "text-embedding-3-large"})
	require.NoError(t, err)
	assert.Equal(t, 3072, service.Dimensions())

	// Unknown models fall back to the default dimensionality.
	service, err = NewEmbeddingService(Config{APIKey: "k", Model: "mystery-model"})
	require.NoError(t, err)
	assert.Equal(t, 1536, service.Dimensions())
}

func TestEmbedBatch_NormalizesVectors(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embeddingsPayload(
			[]float32{3, 4},
			[]float32{0, 5},
		))
	})

	vectors, err := service.EmbedBatch(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.InDelta(t, 0.6, vectors[0][0], 1e-6)
	assert.InDelta(t, 0.8, vectors[0][1], 1e-6)

	for _, v := range vectors {
		var sum float64
		for _, f := range v {
			sum += float64(f) * float64(f)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
	}
}

func TestEmbed_SingleText(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(embeddingsPayload([]float32{1, 0}))
	})

	vector, err := service.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vector)
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(embeddingsPayload([]float32{1, 0}))
	})

	_, err := service.EmbedBatch(context.Background(), []string{"a", "b"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 1 vectors for 2 inputs")
}

func TestL2Normalize_ZeroVector(t *testing.T) {
	v := []float32{0, 0, 0}

	l2normalize(v)

	assert.Equal(t, []float32{0, 0, 0}, v)
}
