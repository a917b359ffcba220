package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"Gin_postgres_redis_qr_tracker/apperr"
	"Gin_postgres_redis_qr_tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceScenario(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	_, err := e.EnrollWorker(ctx, EnrollInput{Code: "W1", Name: "Ana"})
	require.NoError(t, err)

	for _, want := range []models.AttendanceAction{models.AttendanceIn, models.AttendanceOut, models.AttendanceIn} {
		res, err := e.ToggleAttendance(ctx, "W1", "")
		require.NoError(t, err)
		assert.Equal(t, want, res.Action)
		assert.Equal(t, "W1", res.Worker.QRCode)
	}

	w, entries, err := e.WorkerAttendance(ctx, "W1")
	require.NoError(t, err)
	assert.Equal(t, 3, w.AttendanceSeq)
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		assert.NotEqual(t, entries[i-1].Action, entries[i].Action, "entries %d and %d repeat", i-1, i)
		assert.True(t, entries[i].Timestamp.After(entries[i-1].Timestamp))
	}
}

func TestAttendanceUnknownWorker(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.ToggleAttendance(context.Background(), "W404", "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestConcurrentAttendanceNeverRepeats(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	_, err := e.EnrollWorker(ctx, EnrollInput{Code: "W1", Name: "Ana"})
	require.NoError(t, err)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.ToggleAttendance(ctx, "W1", "")
			if err != nil && !errors.Is(err, apperr.ErrConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	_, entries, err := e.WorkerAttendance(ctx, "W1")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, models.AttendanceIn, entries[0].Action)
	for i := 1; i < len(entries); i++ {
		assert.NotEqual(t, entries[i-1].Action, entries[i].Action)
		assert.Equal(t, entries[i-1].Seq+1, entries[i].Seq)
	}
}
