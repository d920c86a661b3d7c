package gemini

import (
	"context"
	"testing"

	"github.com/poiesic/trialmatch/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	responses []string
	configs   []*genai.GenerateContentConfig
	vectors   [][]float32
	err       error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.configs = append(f.configs, config)
	if f.err != nil {
		return nil, f.err
	}
	text := ""
	if len(f.responses) > 0 {
		text, f.responses = f.responses[0], f.responses[1:]
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}, nil
}

func (f *fakeModels) EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	resp := &genai.EmbedContentResponse{}
	for i := range contents {
		resp.Embeddings = append(resp.Embeddings, &genai.ContentEmbedding{Values: f.vectors[i%len(f.vectors)]})
	}
	return resp, nil
}

func testConfig() *ai.Config {
	return ai.NewConfig(ai.WithBackend(ai.BackendGemini), ai.WithAPIKey("k"))
}

func TestProvider_Complete(t *testing.T) {
	models := &fakeModels{responses: []string{`{"inclusion": ["a"], "exclusion": []}`}}
	p := newProvider(models, testConfig())

	text, err := p.Complete(context.Background(), "prompt", 512)
	require.NoError(t, err)
	assert.Equal(t, `{"inclusion": ["a"], "exclusion": []}`, text)

	require.Len(t, models.configs, 1)
	assert.Equal(t, int32(512), models.configs[0].MaxOutputTokens)
	require.NotNil(t, models.configs[0].Temperature)
	assert.Zero(t, *models.configs[0].Temperature)
}

func TestProvider_CompleteEmpty(t *testing.T) {
	p := newProvider(&fakeModels{responses: []string{"  "}}, testConfig())

	_, err := p.Complete(context.Background(), "prompt", 16)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestProvider_EmbedTexts(t *testing.T) {
	p := newProvider(&fakeModels{vectors: [][]float32{{1, 0}, {0, 1}}}, testConfig())

	vecs, err := p.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)

	vec, err := p.EmbedText(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
}

func TestProvider_ExtractEntitiesRetries(t *testing.T) {
	models := &fakeModels{responses: []string{
		"not json",
		`{"entities": [{"word": "asthma", "type": "Disease_disorder"}]}`,
	}}
	p := newProvider(models, testConfig())

	words, err := p.ExtractEntities(context.Background(), "Patient has a condition of asthma.")
	require.NoError(t, err)
	assert.Equal(t, []string{"asthma"}, words)
	assert.Len(t, models.configs, 2)
	assert.Equal(t, "application/json", models.configs[0].ResponseMIMEType)
}

func TestProvider_Errors(t *testing.T) {
	p := newProvider(&fakeModels{err: assert.AnError}, testConfig())

	_, err := p.Complete(context.Background(), "prompt", 16)
	assert.ErrorIs(t, err, assert.AnError)

	_, err = p.EmbedText(context.Background(), "a")
	assert.ErrorIs(t, err, assert.AnError)
}
