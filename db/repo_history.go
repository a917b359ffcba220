package db

import (
	"context"
	"iter"

	"Gin_postgres_redis_qr_tracker/models"
)

// AppendHistory 只追加；审计表没有更新和删除入口
func (r *Repo) AppendHistory(ctx context.Context, e *models.HistoryEntry) error {
	if e.ValidatedBy == "" {
		e.ValidatedBy = models.SystemActor
	}
	if e.Quantity < 1 {
		e.Quantity = 1
	}
	return wrap(r.DB.WithContext(ctx).Create(e).Error, "insert history")
}

// HistoryForItem streams the item's entries oldest first. Each range opens a
// fresh cursor; stopping early closes it.
func (r *Repo) HistoryForItem(ctx context.Context, itemID string) iter.Seq2[models.HistoryEntry, error] {
	return func(yield func(models.HistoryEntry, error) bool) {
		db := r.DB.WithContext(ctx)
		rows, err := db.Model(&models.HistoryEntry{}).
			Where("item_id = ?", itemID).
			Order("created_at ASC, id ASC").
			Rows()
		if err != nil {
			yield(models.HistoryEntry{}, wrap(err, "query history"))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var e models.HistoryEntry
			if err := db.ScanRows(rows, &e); err != nil {
				yield(models.HistoryEntry{}, wrap(err, "scan history"))
				return
			}
			if !yield(e, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.HistoryEntry{}, wrap(err, "iterate history"))
		}
	}
}
