package scoring

import (
	"context"
	"testing"

	"github.com/poiesic/trialmatch/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedEmbedder_EmbedText(t *testing.T) {
	inner := mock.NewMockEmbedder()
	cached, err := NewCachedEmbedder(inner, 0)
	require.NoError(t, err)
	defer cached.Close()

	ctx := context.Background()
	first, err := cached.EmbedText(ctx, "Type 2 diabetes")
	require.NoError(t, err)
	second, err := cached.EmbedText(ctx, "Type 2 diabetes")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.CallCount())

	_, err = cached.EmbedText(ctx, "Hypertension")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.CallCount())
}

func TestCachedEmbedder_EmbedTexts(t *testing.T) {
	inner := mock.NewMockEmbedder()
	var batches [][]string
	inner.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		batches = append(batches, texts)
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{float32(len(texts[i])), 1}
		}
		return out, nil
	}
	cached, err := NewCachedEmbedder(inner, 1<<20)
	require.NoError(t, err)
	defer cached.Close()

	ctx := context.Background()
	_, err = cached.EmbedTexts(ctx, []string{"a", "bb"})
	require.NoError(t, err)

	got, err := cached.EmbedTexts(ctx, []string{"bb", "ccc", "a"})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"a", "bb"}, {"ccc"}}, batches)
	assert.Equal(t, [][]float32{{2, 1}, {3, 1}, {1, 1}}, got)
}

func TestCachedEmbedder_ScoresUnchanged(t *testing.T) {
	plain := newTestEngine(t, keywordEmbedder())
	cached, err := NewCachedEmbedder(keywordEmbedder(), 0)
	require.NoError(t, err)
	defer cached.Close()
	withCache, err := NewEngine(cached)
	require.NoError(t, err)

	criteria := testCriteria()
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		want, err := plain.Score(ctx, "include", criteria)
		require.NoError(t, err)
		got, err := withCache.Score(ctx, "include", criteria)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestNewCachedEmbedder_RequiresEmbedder(t *testing.T) {
	_, err := NewCachedEmbedder(nil, 0)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}
