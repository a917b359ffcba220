package tracker

import (
	"context"
	"iter"
	"strings"

	"Gin_postgres_redis_qr_tracker/apperr"
	"Gin_postgres_redis_qr_tracker/models"
)

// History returns the item's audit trail as a lazy sequence. Ranging over it
// again re-reads the log.
func (e *Engine) History(ctx context.Context, code string) (*models.Item, iter.Seq2[models.HistoryEntry, error], error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil, apperr.Validation("code is required")
	}
	it, err := e.store.FindItemByCode(ctx, code)
	if err != nil {
		return nil, nil, apperr.Internal(err, "find item %s", code)
	}
	return it, e.store.HistoryForItem(ctx, it.ID), nil
}

// ItemHistory collects History in chronological order.
func (e *Engine) ItemHistory(ctx context.Context, code string) ([]models.HistoryEntry, error) {
	_, seq, err := e.History(ctx, code)
	if err != nil {
		return nil, err
	}
	out := []models.HistoryEntry{}
	for entry, err := range seq {
		if err != nil {
			return nil, apperr.Internal(err, "read history for %s", code)
		}
		out = append(out, entry)
	}
	return out, nil
}
