package db

import (
	"context"
	"testing"
	"time"

	"Gin_postgres_redis_qr_tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryForItemOrderedAndRestartable(t *testing.T) {
	repo := NewRepo(NewTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	entries := []models.HistoryEntry{
		{ItemID: "item-a", Action: models.ActionBorrow, Person: "Ana", CreatedAt: base.Add(time.Minute)},
		{ItemID: "item-a", Action: models.ActionRegister, Person: "Luis", CreatedAt: base},
		{ItemID: "item-b", Action: models.ActionRegister, Person: "Luis", CreatedAt: base},
		{ItemID: "item-a", Action: models.ActionReturn, Person: "Ana", CreatedAt: base.Add(time.Minute)},
	}
	for i := range entries {
		require.NoError(t, repo.AppendHistory(ctx, &entries[i]))
	}

	seq := repo.HistoryForItem(ctx, "item-a")
	collect := func() []models.HistoryAction {
		var out []models.HistoryAction
		for e, err := range seq {
			require.NoError(t, err)
			out = append(out, e.Action)
		}
		return out
	}

	want := []models.HistoryAction{models.ActionRegister, models.ActionBorrow, models.ActionReturn}
	assert.Equal(t, want, collect())

	// A second range re-runs the query and sees new entries.
	require.NoError(t, repo.AppendHistory(ctx, &models.HistoryEntry{
		ItemID: "item-a", Action: models.ActionRepair, CreatedAt: base.Add(time.Hour),
	}))
	assert.Equal(t, append(want, models.ActionRepair), collect())
}

func TestHistoryDefaults(t *testing.T) {
	repo := NewRepo(NewTestDB(t))
	ctx := context.Background()

	e := &models.HistoryEntry{ItemID: "item-a", Action: models.ActionReturn, Person: "Ana"}
	require.NoError(t, repo.AppendHistory(ctx, e))
	assert.Equal(t, models.SystemActor, e.ValidatedBy)
	assert.Equal(t, 1, e.Quantity)
	assert.NotZero(t, e.ID)
}

func TestHistoryEarlyBreak(t *testing.T) {
	repo := NewRepo(NewTestDB(t))
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.AppendHistory(ctx, &models.HistoryEntry{ItemID: "item-a", Action: models.ActionBorrow}))
	}

	n := 0
	for _, err := range repo.HistoryForItem(ctx, "item-a") {
		require.NoError(t, err)
		n++
		break
	}
	assert.Equal(t, 1, n)

	// The cursor was closed, so the single connection is free again.
	require.NoError(t, repo.AppendHistory(ctx, &models.HistoryEntry{ItemID: "item-a", Action: models.ActionReturn}))
}
