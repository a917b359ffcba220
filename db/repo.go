package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"Gin_postgres_redis_qr_tracker/apperr"
	"Gin_postgres_redis_qr_tracker/models"
	"Gin_postgres_redis_qr_tracker/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

var _ ports.Store = (*Repo)(nil)

// Atomic runs fn inside one transaction. Called on a Repo that is already
// transactional, GORM nests it as a savepoint.
func (r *Repo) Atomic(ctx context.Context, fn func(tx ports.Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repo{DB: tx})
	})
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Workers

func (r *Repo) FindWorkerByCode(ctx context.Context, code string) (*models.Worker, error) {
	var w models.Worker
	err := r.DB.WithContext(ctx).First(&w, "qr_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("worker %s not found", code)
	}
	if err != nil {
		return nil, wrap(err, "find worker %s", code)
	}
	return &w, nil
}

// 按 ID 查
func (r *Repo) FindWorkerByID(ctx context.Context, id string) (*models.Worker, error) {
	var w models.Worker
	err := r.DB.WithContext(ctx).First(&w, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("worker not found")
	}
	if err != nil {
		return nil, wrap(err, "find worker by id")
	}
	return &w, nil
}

func (r *Repo) CreateWorker(ctx context.Context, w *models.Worker) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	err := r.DB.WithContext(ctx).Create(w).Error
	if isDuplicate(err) {
		return apperr.Conflict("code %s already in use", w.QRCode)
	}
	return wrap(err, "create worker")
}

// ListWorkers 附带每人的考勤记录（按 seq 升序）
func (r *Repo) ListWorkers(ctx context.Context) ([]models.Worker, error) {
	var ws []models.Worker
	err := r.DB.WithContext(ctx).
		Preload("Attendance", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Order("name ASC, qr_code ASC").
		Find(&ws).Error
	if err != nil {
		return nil, wrap(err, "list workers")
	}
	return ws, nil
}

func (r *Repo) CountWorkersByRole(ctx context.Context, role models.Role) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Worker{}).
		Where("role = ?", role).
		Count(&n).Error
	return n, wrap(err, "count workers")
}

// TouchWorkerSeen 不动 updated_at，只记最后活跃时间
func (r *Repo) TouchWorkerSeen(ctx context.Context, id string) error {
	return wrap(r.DB.WithContext(ctx).Model(&models.Worker{}).
		Where("id = ?", id).
		UpdateColumn("last_seen_at", time.Now().UTC()).Error, "touch worker")
}
