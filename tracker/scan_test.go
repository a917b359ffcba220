package tracker

import (
	"context"
	"testing"

	"Gin_postgres_redis_qr_tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveScan(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	registerTool(t, e, "T001", "Drill")
	_, err := e.EnrollWorker(ctx, EnrollInput{Code: "W1", Name: "Ana"})
	require.NoError(t, err)
	// Same code in both registries.
	registerTool(t, e, "X9", "Cart")
	_, err = e.EnrollWorker(ctx, EnrollInput{Code: "X9", Name: "Pedro"})
	require.NoError(t, err)

	tests := []struct {
		code string
		kind ScanKind
		name string
	}{
		{"T001", ScanItem, "Drill"},
		{" W1 ", ScanWorker, "Ana"},
		{"X9", ScanItem, "Cart"},
		{"ZZZ", ScanNone, ""},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			res, err := e.ResolveScan(ctx, tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, res.Kind)
			switch tt.kind {
			case ScanItem:
				require.NotNil(t, res.Item)
				assert.Nil(t, res.Worker)
				assert.Equal(t, tt.name, res.Item.Name)
			case ScanWorker:
				require.NotNil(t, res.Worker)
				assert.Nil(t, res.Item)
				assert.Equal(t, tt.name, res.Worker.Name)
			default:
				assert.Nil(t, res.Item)
				assert.Nil(t, res.Worker)
			}
		})
	}
}

func TestScanDoesNotMutate(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	registerTool(t, e, "T001", "Drill")

	_, err := e.ResolveScan(ctx, "T001")
	require.NoError(t, err)
	assert.Equal(t, []models.HistoryAction{models.ActionRegister}, historyActions(t, e, "T001"))
}
