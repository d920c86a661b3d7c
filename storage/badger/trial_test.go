package badger

import (
	"context"
	"testing"

	"github.com/poiesic/trialmatch/core"
	"github.com/poiesic/trialmatch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrialRepository_Upsert(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	n, err := repos.Trials.UpsertTrials(ctx,
		&core.Trial{NCTID: "NCT2", BriefTitle: "Second", Criteria: "adults"},
		&core.Trial{NCTID: "NCT1", BriefTitle: "First", Criteria: "children", OverallStatus: "RECRUITING"},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Replace an existing trial
	n, err = repos.Trials.UpsertTrials(ctx, &core.Trial{NCTID: "NCT2", BriefTitle: "Second v2", Criteria: "adults"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := repos.Trials.CountTrials(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := repos.Trials.GetTrial(ctx, "NCT2")
	require.NoError(t, err)
	assert.Equal(t, "Second v2", got.BriefTitle)
}

func TestTrialRepository_UpsertInvalidWritesNothing(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	_, err := repos.Trials.UpsertTrials(ctx,
		&core.Trial{NCTID: "NCT1", BriefTitle: "First", Criteria: "x"},
		&core.Trial{NCTID: "NCT2", BriefTitle: "Missing criteria"},
	)
	assert.ErrorIs(t, err, core.ErrEmptyCriteria)

	count, err := repos.Trials.CountTrials(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTrialRepository_List(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	for _, id := range []string{"NCT3", "NCT1", "NCT2"} {
		_, err := repos.Trials.UpsertTrials(ctx, &core.Trial{NCTID: id, BriefTitle: id, Criteria: "x"})
		require.NoError(t, err)
	}

	all, err := repos.Trials.ListTrials(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "NCT1", all[0].NCTID)

	limited, err := repos.Trials.ListTrials(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestTrialRepository_GetMissing(t *testing.T) {
	repos := newTestRepositories(t)

	_, err := repos.Trials.GetTrial(context.Background(), "NCT404")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
