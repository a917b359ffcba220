package db

import (
	"context"
	"sync"
	"testing"

	"Gin_postgres_redis_qr_tracker/models"
	"Gin_postgres_redis_qr_tracker/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAndParseItemCode(t *testing.T) {
	assert.Equal(t, "G001", FormatItemCode(1))
	assert.Equal(t, "G042", FormatItemCode(42))
	assert.Equal(t, "G1000", FormatItemCode(1000))

	tests := []struct {
		code string
		n    int64
		ok   bool
	}{
		{"G001", 1, true},
		{"G1000", 1000, true},
		{"G", 0, false},
		{"T001", 0, false},
		{"G12a", 0, false},
		{"g001", 0, false},
	}
	for _, tt := range tests {
		n, ok := ParseItemCode(tt.code)
		assert.Equal(t, tt.ok, ok, tt.code)
		assert.Equal(t, tt.n, n, tt.code)
	}
}

func TestNextItemCodeStartsAtOne(t *testing.T) {
	repo := NewRepo(NewTestDB(t))
	ctx := context.Background()

	for _, want := range []string{"G001", "G002", "G003"} {
		got, err := repo.NextItemCode(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestReserveItemCodeRaisesCounter(t *testing.T) {
	repo := NewRepo(NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.ReserveItemCode(ctx, "G041"))
	require.NoError(t, repo.ReserveItemCode(ctx, "G007")) // lower, ignored
	require.NoError(t, repo.ReserveItemCode(ctx, "DRILL-1"))

	got, err := repo.NextItemCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "G042", got)
}

func TestMigrateSeedsCounterFromExistingCodes(t *testing.T) {
	conn := NewTestDB(t)
	repo := NewRepo(conn)
	ctx := context.Background()

	for _, code := range []string{"G003", "G120", "T001"} {
		require.NoError(t, repo.CreateItem(ctx, &models.Item{QRCode: code, Name: code, Stock: 1}))
	}
	require.NoError(t, Migrate(conn))

	got, err := repo.NextItemCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "G121", got)
}

func TestRolledBackAllocationReleasesCode(t *testing.T) {
	repo := NewRepo(NewTestDB(t))
	ctx := context.Background()

	err := repo.Atomic(ctx, func(tx ports.Store) error {
		code, err := tx.NextItemCode(ctx)
		require.NoError(t, err)
		assert.Equal(t, "G001", code)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := repo.NextItemCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "G001", got)
}

func TestNextItemCodeConcurrent(t *testing.T) {
	repo := NewRepo(NewTestDB(t))
	ctx := context.Background()

	const n = 20
	codes := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := repo.NextItemCode(ctx)
			assert.NoError(t, err)
			codes <- code
		}()
	}
	wg.Wait()
	close(codes)

	seen := map[string]bool{}
	for c := range codes {
		assert.False(t, seen[c], "duplicate code %s", c)
		seen[c] = true
	}
	require.Len(t, seen, n)
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[FormatItemCode(i)], "missing %s", FormatItemCode(i))
	}
}
