// Package ports declares the storage contracts the tracker engine runs on.
// The db package satisfies them with GORM; tests may swap in fakes.
package ports

import (
	"context"
	"iter"
	"time"

	"Gin_postgres_redis_qr_tracker/models"
)

// ItemQuery filters ListItems. Zero value lists everything sorted by name.
type ItemQuery struct {
	Q      string // 模糊搜索：qr_code/name/category
	Status models.ItemStatus
	Page   int
	Size   int
}

type ItemRepository interface {
	FindItemByCode(ctx context.Context, code string) (*models.Item, error)
	FindItemByName(ctx context.Context, name string) (*models.Item, error)
	CreateItem(ctx context.Context, it *models.Item) error
	ListItems(ctx context.Context, q ItemQuery) ([]models.Item, error)
	ListBorrowedBefore(ctx context.Context, t time.Time) ([]models.Item, error)

	// Conditional writes. applied is false when the predicate no longer held.
	MarkBorrowed(ctx context.Context, id, holder string, at time.Time) (applied bool, err error)
	ConsumeStock(ctx context.Context, id string, quantity int) (applied bool, err error)
	MarkReturned(ctx context.Context, id string) (applied bool, err error)
	MarkRepair(ctx context.Context, id string) (applied bool, err error)
	FinishRepair(ctx context.Context, id string) (applied bool, err error)
}

type HistoryRepository interface {
	AppendHistory(ctx context.Context, e *models.HistoryEntry) error
	// HistoryForItem is lazy and restartable: every range runs the query again.
	HistoryForItem(ctx context.Context, itemID string) iter.Seq2[models.HistoryEntry, error]
}

type WorkerRepository interface {
	FindWorkerByCode(ctx context.Context, code string) (*models.Worker, error)
	FindWorkerByID(ctx context.Context, id string) (*models.Worker, error)
	CreateWorker(ctx context.Context, w *models.Worker) error
	ListWorkers(ctx context.Context) ([]models.Worker, error)
	CountWorkersByRole(ctx context.Context, role models.Role) (int64, error)
	TouchWorkerSeen(ctx context.Context, id string) error

	AppendAttendance(ctx context.Context, workerID string, expectedSeq int, e *models.AttendanceEntry) (applied bool, err error)
	ListAttendance(ctx context.Context, workerID string) ([]models.AttendanceEntry, error)
}

type SequenceAllocator interface {
	NextItemCode(ctx context.Context) (string, error)
	ReserveItemCode(ctx context.Context, code string) error
}

// Store bundles every repository. Atomic runs fn against a Store bound to a
// single database transaction; fn's error rolls everything back.
type Store interface {
	ItemRepository
	HistoryRepository
	WorkerRepository
	SequenceAllocator

	Atomic(ctx context.Context, fn func(tx Store) error) error
}
