// db/repo_items.go
package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"Gin_postgres_redis_qr_tracker/apperr"
	"Gin_postgres_redis_qr_tracker/models"
	"Gin_postgres_redis_qr_tracker/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var availableStatuses = []models.ItemStatus{models.ItemStatusNew, models.ItemStatusAvailable}

// Items

func (r *Repo) CreateItem(ctx context.Context, it *models.Item) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	err := r.DB.WithContext(ctx).Create(it).Error
	if isDuplicate(err) {
		return apperr.Conflict("code %s already in use", it.QRCode)
	}
	return wrap(err, "create item")
}

func (r *Repo) FindItemByCode(ctx context.Context, code string) (*models.Item, error) {
	var it models.Item
	err := r.DB.WithContext(ctx).First(&it, "qr_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("item %s not found", code)
	}
	if err != nil {
		return nil, wrap(err, "find item %s", code)
	}
	return &it, nil
}

// FindItemByName 忽略大小写精确匹配名称；重名时取最早登记的一件
func (r *Repo) FindItemByName(ctx context.Context, name string) (*models.Item, error) {
	var it models.Item
	err := r.DB.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("created_at ASC, qr_code ASC").
		First(&it).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("item %s not found", name)
	}
	if err != nil {
		return nil, wrap(err, "find item by name")
	}
	return &it, nil
}

func (r *Repo) ListItems(ctx context.Context, q ports.ItemQuery) ([]models.Item, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Item{})

	// 过滤
	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(qr_code) LIKE ? OR LOWER(name) LIKE ? OR LOWER(category) LIKE ?", pat, pat, pat)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	tx = tx.Order("name ASC, qr_code ASC")
	if q.Size > 0 {
		if q.Size > 200 {
			q.Size = 200
		}
		if q.Page <= 0 {
			q.Page = 1
		}
		tx = tx.Offset((q.Page - 1) * q.Size).Limit(q.Size)
	}

	var items []models.Item
	if err := tx.Find(&items).Error; err != nil {
		return nil, wrap(err, "list items")
	}
	return items, nil
}

// ListBorrowedBefore returns unique items whose loan started before t, oldest first.
func (r *Repo) ListBorrowedBefore(ctx context.Context, t time.Time) ([]models.Item, error) {
	var items []models.Item
	err := r.DB.WithContext(ctx).
		Where("status = ? AND is_consumable = ? AND loan_date < ?", models.ItemStatusBorrowed, false, t).
		Order("loan_date ASC").
		Find(&items).Error
	if err != nil {
		return nil, wrap(err, "list overdue items")
	}
	return items, nil
}

// 条件写：谓词即前置状态，RowsAffected == 1 才算成功

// MarkBorrowed: 仅当仍为唯一工具且处于 new/available
func (r *Repo) MarkBorrowed(ctx context.Context, id, holder string, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND is_consumable = ? AND status IN ?", id, false, availableStatuses).
		Updates(map[string]any{
			"status":         models.ItemStatusBorrowed,
			"current_holder": holder,
			"loan_date":      at,
		})
	return applied(res, "mark borrowed")
}

// ConsumeStock: 库存足够才扣减，stock 永不为负
func (r *Repo) ConsumeStock(ctx context.Context, id string, quantity int) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND is_consumable = ? AND stock >= ?", id, true, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	return applied(res, "consume stock")
}

func (r *Repo) MarkReturned(ctx context.Context, id string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND is_consumable = ? AND status = ?", id, false, models.ItemStatusBorrowed).
		Updates(map[string]any{
			"status":         models.ItemStatusAvailable,
			"current_holder": nil,
			"loan_date":      nil,
		})
	return applied(res, "mark returned")
}

func (r *Repo) MarkRepair(ctx context.Context, id string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND is_consumable = ? AND status IN ?", id, false, availableStatuses).
		Update("status", models.ItemStatusRepair)
	return applied(res, "mark repair")
}

func (r *Repo) FinishRepair(ctx context.Context, id string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND status = ?", id, models.ItemStatusRepair).
		Update("status", models.ItemStatusAvailable)
	return applied(res, "finish repair")
}

func applied(res *gorm.DB, op string) (bool, error) {
	if res.Error != nil {
		return false, wrap(res.Error, "%s", op)
	}
	return res.RowsAffected == 1, nil
}
