package tracker

import (
	"context"
	"testing"

	"Gin_postgres_redis_qr_tracker/apperr"
	"Gin_postgres_redis_qr_tracker/db"
	"Gin_postgres_redis_qr_tracker/models"
	"Gin_postgres_redis_qr_tracker/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// racingStore hands the engine the row as it was read, then lets a rival
// write land in the same transaction before the engine's conditional write.
type racingStore struct {
	ports.Store
	t     *testing.T
	rival func(ctx context.Context, tx ports.Store, it *models.Item) error
	fired bool
}

func (s *racingStore) Atomic(ctx context.Context, fn func(ports.Store) error) error {
	return s.Store.Atomic(ctx, func(tx ports.Store) error {
		return fn(&racingTx{Store: tx, parent: s})
	})
}

type racingTx struct {
	ports.Store
	parent *racingStore
}

func (tx *racingTx) FindItemByCode(ctx context.Context, code string) (*models.Item, error) {
	it, err := tx.Store.FindItemByCode(ctx, code)
	if err != nil || tx.parent.fired || tx.parent.rival == nil {
		return it, err
	}
	tx.parent.fired = true
	seen := *it
	require.NoError(tx.parent.t, tx.parent.rival(ctx, tx.Store, it))
	return &seen, nil
}

func (tx *racingTx) FindWorkerByCode(ctx context.Context, code string) (*models.Worker, error) {
	w, err := tx.Store.FindWorkerByCode(ctx, code)
	if err != nil || tx.parent.fired {
		return w, err
	}
	tx.parent.fired = true
	seen := *w
	ok, err := tx.Store.AppendAttendance(ctx, w.ID, w.AttendanceSeq, &models.AttendanceEntry{
		Action:    w.CurrentAction().Flip(),
		Timestamp: epoch,
	})
	require.NoError(tx.parent.t, err)
	require.True(tx.parent.t, ok)
	return &seen, nil
}

func TestStaleReadIsConflict(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, e *Engine)
		op      Op
		req     Request
		rival   func(ctx context.Context, tx ports.Store, it *models.Item) error
		wantMsg string
		status  models.ItemStatus
		stock   int
	}{
		{
			name:  "borrow after rival borrow",
			setup: func(t *testing.T, e *Engine) { registerTool(t, e, "T001", "Drill") },
			op:    OpBorrow,
			req:   Request{Code: "T001", Actor: "Ana"},
			rival: func(ctx context.Context, tx ports.Store, it *models.Item) error {
				_, err := tx.MarkBorrowed(ctx, it.ID, "Pedro", epoch)
				return err
			},
			wantMsg: "item T001 is no longer available",
			status:  models.ItemStatusAvailable,
			stock:   1,
		},
		{
			name: "consume after rival drained stock",
			setup: func(t *testing.T, e *Engine) {
				_, err := e.RegisterItem(context.Background(), RegisterInput{Code: "G001", Name: "Screws", RegisteredBy: "Luis", IsConsumable: true, Stock: intPtr(5)})
				require.NoError(t, err)
			},
			op:  OpBorrow,
			req: Request{Code: "G001", Actor: "Ana", Quantity: 3},
			rival: func(ctx context.Context, tx ports.Store, it *models.Item) error {
				_, err := tx.ConsumeStock(ctx, it.ID, 4)
				return err
			},
			wantMsg: "stock of G001 changed, scan again",
			status:  models.ItemStatusAvailable,
			stock:   5,
		},
		{
			name: "return after rival return",
			setup: func(t *testing.T, e *Engine) {
				registerTool(t, e, "T001", "Drill")
				_, err := e.BorrowOrConsume(context.Background(), Request{Code: "T001", Actor: "Ana"})
				require.NoError(t, err)
			},
			op:  OpReturn,
			req: Request{Code: "T001", Actor: "Ana"},
			rival: func(ctx context.Context, tx ports.Store, it *models.Item) error {
				_, err := tx.MarkReturned(ctx, it.ID)
				return err
			},
			wantMsg: "item T001 is not borrowed",
			status:  models.ItemStatusBorrowed,
			stock:   1,
		},
		{
			name:  "repair after rival borrow",
			setup: func(t *testing.T, e *Engine) { registerTool(t, e, "T001", "Drill") },
			op:    OpRepair,
			req:   Request{Code: "T001", Actor: "Luis"},
			rival: func(ctx context.Context, tx ports.Store, it *models.Item) error {
				_, err := tx.MarkBorrowed(ctx, it.ID, "Pedro", epoch)
				return err
			},
			wantMsg: "item T001 is no longer available",
			status:  models.ItemStatusAvailable,
			stock:   1,
		},
		{
			name: "finish repair after rival finish",
			setup: func(t *testing.T, e *Engine) {
				registerTool(t, e, "T001", "Drill")
				_, err := e.SendToRepair(context.Background(), Request{Code: "T001", Actor: "Luis"})
				require.NoError(t, err)
			},
			op:  OpFinishRepair,
			req: Request{Code: "T001", Actor: "Luis"},
			rival: func(ctx context.Context, tx ports.Store, it *models.Item) error {
				_, err := tx.FinishRepair(ctx, it.ID)
				return err
			},
			wantMsg: "item T001 is not in repair",
			status:  models.ItemStatusRepair,
			stock:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := db.NewRepo(db.NewTestDB(t))
			plain := New(repo, nil, WithClock(steppedClock()))
			tt.setup(t, plain)
			before := historyActions(t, plain, tt.req.Code)

			racing := New(&racingStore{Store: repo, t: t, rival: tt.rival}, nil, WithClock(steppedClock()))
			_, err := racing.Transact(ctx, tt.op, tt.req)
			require.ErrorIs(t, err, apperr.ErrConflict)
			assert.EqualError(t, err, tt.wantMsg)

			// 整个事务回滚，包括对手的写入
			it, err := repo.FindItemByCode(ctx, tt.req.Code)
			require.NoError(t, err)
			assert.Equal(t, tt.status, it.Status)
			assert.Equal(t, tt.stock, it.Stock)
			assert.Equal(t, before, historyActions(t, plain, tt.req.Code))
		})
	}
}

func TestStaleAttendanceCursorIsConflict(t *testing.T) {
	ctx := context.Background()
	repo := db.NewRepo(db.NewTestDB(t))
	plain := New(repo, nil, WithClock(steppedClock()))
	_, err := plain.EnrollWorker(ctx, EnrollInput{Code: "W1", Name: "Ana"})
	require.NoError(t, err)

	racing := New(&racingStore{Store: repo, t: t}, nil, WithClock(steppedClock()))
	_, err = racing.ToggleAttendance(ctx, "W1", "")
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.EqualError(t, err, "attendance for W1 changed, scan again")

	w, entries, err := plain.WorkerAttendance(ctx, "W1")
	require.NoError(t, err)
	assert.Zero(t, w.AttendanceSeq)
	assert.Empty(t, entries)
}
