package ingestion

import (
	"context"
	"testing"

	"github.com/poiesic/trialmatch/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProfile_DeduplicatesEntities(t *testing.T) {
	extractor := mock.NewMockEntityExtractor()
	extractor.ExtractEntitiesFunc = func(ctx context.Context, text string) ([]string, error) {
		return []string{"hypertension", "asthma", " ", "hypertension"}, nil
	}
	bundle, err := ParseBundle([]byte(testBundle))
	require.NoError(t, err)

	profile, err := BuildProfile(context.Background(), bundle, extractor)
	require.NoError(t, err)
	assert.Equal(t, []string{"asthma", "hypertension"}, profile.NEREntities)
}

func TestBuildProfile_NilBundle(t *testing.T) {
	_, err := BuildProfile(context.Background(), nil, mock.NewMockEntityExtractor())
	assert.ErrorIs(t, err, ErrInvalidBundle)
}

func TestParseBundle_EmptyEntryIsValid(t *testing.T) {
	bundle, err := ParseBundle([]byte(`{"entry": []}`))
	require.NoError(t, err)
	require.NotNil(t, bundle.Entry)
	assert.Empty(t, *bundle.Entry)
}
