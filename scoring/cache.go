package scoring

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/poiesic/trialmatch/ai"
	"github.com/poiesic/trialmatch/core"
)

// DefaultCacheBytes is the default embedding cache capacity.
const DefaultCacheBytes = 64 << 20

// CachedEmbedder memoizes embeddings by text content.
//
// Embeddings are a pure function of text, so caching does not change scores.
// Keys are 64-bit content hashes; the model is assumed fixed for the cache's lifetime.
type CachedEmbedder struct {
	next  ai.Embedder
	cache *ristretto.Cache[uint64, []float32]
}

var _ ai.Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps next with a cache holding up to maxBytes of vectors.
// A maxBytes < 1 selects DefaultCacheBytes.
func NewCachedEmbedder(next ai.Embedder, maxBytes int64) (*CachedEmbedder, error) {
	if next == nil {
		return nil, ErrEmbedderRequired
	}
	if maxBytes < 1 {
		maxBytes = DefaultCacheBytes
	}
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, []float32]{
		NumCounters: 1e5,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding cache: %w", err)
	}
	return &CachedEmbedder{next: next, cache: cache}, nil
}

// EmbedText returns the cached embedding for text, computing it on a miss.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := uint64(core.IDFromContent(text))
	if vec, ok := c.cache.Get(key); ok {
		return vec, nil
	}
	vec, err := c.next.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	c.store(key, vec)
	return vec, nil
}

// EmbedTexts embeds only the texts missing from the cache, in one call.
func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if vec, ok := c.cache.Get(uint64(core.IDFromContent(text))); ok {
			result[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return result, nil
	}

	vecs, err := c.next.EmbedTexts(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", core.ErrExternalService, len(vecs), len(missing))
	}
	for j, vec := range vecs {
		result[missingIdx[j]] = vec
		c.store(uint64(core.IDFromContent(missing[j])), vec)
	}
	return result, nil
}

// Close releases the cache.
func (c *CachedEmbedder) Close() {
	c.cache.Close()
}

func (c *CachedEmbedder) store(key uint64, vec []float32) {
	c.cache.Set(key, vec, int64(len(vec))*4)
	// Make the entry visible to the next Get.
	c.cache.Wait()
}
