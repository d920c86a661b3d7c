package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/poiesic/trialmatch/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeServer serves the two OpenAI endpoints the provider uses.
func newFakeServer(t *testing.T, completion string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/embeddings"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"object": "list",
				"model":  "embed",
				"data": []map[string]any{
					{"object": "embedding", "index": 0, "embedding": []float64{0.5, 0.25, 0}},
				},
				"usage": map[string]int{"prompt_tokens": 1, "total_tokens": 1},
			})
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":      "chatcmpl-1",
				"object":  "chat.completion",
				"created": 1,
				"model":   "complete",
				"choices": []map[string]any{
					{
						"index":         0,
						"finish_reason": "stop",
						"message":       map[string]string{"role": "assistant", "content": completion},
					},
				},
				"usage": map[string]int{"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(ai.NewConfig(ai.WithEmbeddingModel("")))
	assert.Error(t, err)
}

func TestProvider_EmbedText(t *testing.T) {
	srv := newFakeServer(t, "")
	defer srv.Close()

	provider, err := NewProvider(ai.NewConfig(ai.WithHost(srv.URL)))
	require.NoError(t, err)
	defer provider.Close()

	vec, err := provider.Embedder().EmbedText(context.Background(), "Patient has a condition of Asthma.")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25, 0}, vec)
}

func TestEmbedder_EmbedTexts_ServiceErrorNamesModelAndHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	embedder, err := NewEmbedder(ai.NewConfig(ai.WithHost(srv.URL), ai.WithEmbeddingModel("pubmedbert-nli")))
	require.NoError(t, err)

	_, err = embedder.EmbedTexts(context.Background(), []string{"age >= 18", "diagnosis of asthma"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed 2 statement(s) with pubmedbert-nli at "+srv.URL)
	assert.Contains(t, err.Error(), "503")
}

func TestEmbedder_EmbedText_EmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "embed",
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": []float64{}},
			},
		})
	}))
	defer srv.Close()

	embedder, err := NewEmbedder(ai.NewConfig(ai.WithHost(srv.URL)))
	require.NoError(t, err)

	_, err = embedder.EmbedText(context.Background(), "Patient has a condition of Asthma.")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyEmbedding))
	assert.Contains(t, err.Error(), "statement 1 of 1")
}

func TestEmbedder_EmbedTexts_NoStatements(t *testing.T) {
	embedder, err := NewEmbedder(ai.NewConfig(ai.WithHost("http://127.0.0.1:0")))
	require.NoError(t, err)

	vecs, err := embedder.EmbedTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestProvider_Complete(t *testing.T) {
	srv := newFakeServer(t, `{"inclusion": ["adults"], "exclusion": []}`)
	defer srv.Close()

	provider, err := NewProvider(ai.NewConfig(ai.WithHost(srv.URL)))
	require.NoError(t, err)

	text, err := provider.Completer().Complete(context.Background(), "[INST]parse[/INST]", 512)
	require.NoError(t, err)
	assert.Contains(t, text, `"inclusion"`)
}

func TestProvider_ExtractEntities(t *testing.T) {
	srv := newFakeServer(t, `{"entities": [{"word": "Asthma", "type": "Disease_disorder"}]}`)
	defer srv.Close()

	provider, err := NewProvider(ai.NewConfig(ai.WithHost(srv.URL)))
	require.NoError(t, err)

	words, err := provider.EntityExtractor().ExtractEntities(context.Background(), "Patient has a condition of Asthma.")
	require.NoError(t, err)
	assert.Equal(t, []string{"Asthma"}, words)

	words, err = provider.EntityExtractor().ExtractEntities(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, words)
}
