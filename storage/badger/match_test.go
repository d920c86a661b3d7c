package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/trialmatch/core"
	"github.com/poiesic/trialmatch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRepository_AddAssignsIDs(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	first, err := repos.Matches.AddMatchRecord(ctx, &core.MatchRecord{PatientID: "p1", Mode: core.MatchModeDemo})
	require.NoError(t, err)
	second, err := repos.Matches.AddMatchRecord(ctx, &core.MatchRecord{PatientID: "p1", Mode: core.MatchModeDemo})
	require.NoError(t, err)

	assert.NotZero(t, first.Id)
	assert.Greater(t, second.Id, first.Id)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestMatchRepository_Latest(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()
	now := time.Now().UTC()

	records := []*core.MatchRecord{
		{PatientID: "p1", Mode: core.MatchModeDemo, CreatedAt: now.Add(-2 * time.Hour)},
		{PatientID: "p1", Mode: core.MatchModeRandom, CreatedAt: now.Add(-1 * time.Hour), Trials: []core.MatchResult{
			{NCTID: "NCT1", Title: "One", Score: 80},
		}},
		// Older record inserted last must not win
		{PatientID: "p1", Mode: core.MatchModeDemo, CreatedAt: now.Add(-3 * time.Hour)},
		{PatientID: "p2", Mode: core.MatchModeDemo, CreatedAt: now},
	}
	for _, r := range records {
		_, err := repos.Matches.AddMatchRecord(ctx, r)
		require.NoError(t, err)
	}

	latest, err := repos.Matches.LatestMatchRecord(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, core.MatchModeRandom, latest.Mode)
	require.Len(t, latest.Trials, 1)
	assert.Equal(t, 80.0, latest.Trials[0].Score)

	all, err := repos.Matches.GetMatchRecords(ctx, "p1", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))
	assert.True(t, all[1].CreatedAt.After(all[2].CreatedAt))
}

func TestMatchRepository_LatestMissing(t *testing.T) {
	repos := newTestRepositories(t)

	_, err := repos.Matches.LatestMatchRecord(context.Background(), "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMatchRepository_RejectsInvalid(t *testing.T) {
	repos := newTestRepositories(t)

	_, err := repos.Matches.AddMatchRecord(context.Background(), &core.MatchRecord{PatientID: "p1", Mode: "other"})
	assert.ErrorIs(t, err, core.ErrInvalidMatchMode)
}
