package trialmatch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/trialmatch/ai"
	"github.com/poiesic/trialmatch/ai/mock"
	"github.com/poiesic/trialmatch/core"
	"github.com/poiesic/trialmatch/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceBundle = `{"resourceType": "Bundle", "id": "p-1", "entry": [
  {"resource": {"resourceType": "Condition", "code": {"text": "include asthma"}}}
]}`

// newTestService builds an in-memory service whose embedder maps text containing
// "include" to one direction and everything else to an orthogonal one.
func newTestService(t *testing.T, completion string) *Service {
	t.Helper()
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if strings.Contains(text, "include") {
			return []float32{1, 0}, nil
		}
		return []float32{0, 1}, nil
	}
	completer := mock.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return completion, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, completer, mock.NewMockEntityExtractor())

	svc, err := NewService(context.Background(), "",
		WithInMemory(),
		WithProvider(provider),
		WithDatasetDir(t.TempDir()),
		WithPoolSize(2),
		WithEmbeddingCache(0))
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestNewService(t *testing.T) {
	t.Run("on disk", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "db")
		svc, err := NewService(context.Background(), dir, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		assert.NotNil(t, svc.Orchestrator())
		assert.NotNil(t, svc.Ingestion())
		assert.NotNil(t, svc.Repositories())
		assert.NoError(t, svc.Close())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		svc, err := NewService(context.Background(), tmpFile, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, svc)
	})

	t.Run("invalid default trial count", func(t *testing.T) {
		_, err := NewService(context.Background(), "",
			WithInMemory(), WithProvider(mock.NewMockProvider()), WithNumRandomTrials(-1))
		assert.Error(t, err)
	})
}

func TestNewProvider_UnknownBackend(t *testing.T) {
	_, err := NewProvider(context.Background(), &ai.Config{Backend: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestNewProvider_GeminiRequiresKey(t *testing.T) {
	config := ai.NewConfig(ai.WithBackend(ai.BackendGemini))
	_, err := NewProvider(context.Background(), config)
	assert.Error(t, err)
}

func TestService_EndToEnd(t *testing.T) {
	svc := newTestService(t, `{"inclusion": ["include adults"], "exclusion": ["pregnancy"]}`)
	ctx := context.Background()

	patient, err := svc.IngestPatient(ctx, "", []byte(serviceBundle))
	require.NoError(t, err)
	assert.Equal(t, "p-1", patient.PatientID)

	n, err := svc.UploadTrials(ctx, []ingestion.TrialUpload{
		{NCTID: "NCT1", BriefTitle: "Asthma Study", Criteria: "Inclusion: adults"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	record, err := svc.RunMatching(ctx, "p-1", core.MatchModeDemo, 0)
	require.NoError(t, err)
	require.Len(t, record.Trials, 1)
	assert.Equal(t, core.MatchResult{NCTID: "NCT1", Title: "Asthma Study", Score: 100}, record.Trials[0])

	got, latest, err := svc.PatientDetail(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "p-1", got.PatientID)
	require.NotNil(t, latest)
	assert.Equal(t, record.Id, latest.Id)

	patients, err := svc.ListPatients(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, patients, 1)
}

func TestService_RunMatching_NoTrials(t *testing.T) {
	svc := newTestService(t, `{}`)
	ctx := context.Background()

	_, err := svc.IngestPatient(ctx, "", []byte(serviceBundle))
	require.NoError(t, err)

	_, err = svc.RunMatching(ctx, "p-1", core.MatchModeDemo, 0)
	assert.ErrorIs(t, err, core.ErrNoTrialsAvailable)

	results := svc.RunBatch(ctx, []string{"p-1", "ghost"}, core.MatchModeRandom, 2)
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, core.ErrNoTrialsAvailable)
	assert.ErrorIs(t, results[1].Err, core.ErrPatientNotFound)

	latest, err := svc.LatestMatches(ctx, "p-1")
	require.NoError(t, err)
	assert.Nil(t, latest)
}
