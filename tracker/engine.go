// Package tracker is the transactional core: item transitions paired with
// their audit entries, code allocation, the attendance toggle and scan
// resolution. Every mutation runs inside one store transaction and relies on
// conditional writes; nothing here locks in process.
package tracker

import (
	"context"
	"strings"
	"time"

	"Gin_postgres_redis_qr_tracker/apperr"
	"Gin_postgres_redis_qr_tracker/metrics"
	"Gin_postgres_redis_qr_tracker/models"
	"Gin_postgres_redis_qr_tracker/ports"

	"go.uber.org/zap"
)

type Engine struct {
	store   ports.Store
	log     *zap.Logger
	metrics *metrics.Recorder
	now     func() time.Time

	nameFallback bool
}

type Option func(*Engine)

// WithNameFallback lets item transactions resolve a case-insensitive item
// name when no qr code matches.
func WithNameFallback(on bool) Option { return func(e *Engine) { e.nameFallback = on } }

func WithMetrics(m *metrics.Recorder) Option { return func(e *Engine) { e.metrics = m } }

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func New(store ports.Store, log *zap.Logger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// lookupItem resolves by exact code, then by name when the fallback is on.
func (e *Engine) lookupItem(ctx context.Context, repo ports.ItemRepository, code string) (*models.Item, error) {
	it, err := repo.FindItemByCode(ctx, code)
	if err == nil || !e.nameFallback || apperr.KindOf(err) != apperr.KindNotFound {
		return it, err
	}
	byName, nerr := repo.FindItemByName(ctx, code)
	if nerr != nil {
		if apperr.KindOf(nerr) == apperr.KindNotFound {
			return nil, err
		}
		return nil, nerr
	}
	e.log.Debug("item resolved by name", zap.String("input", code), zap.String("code", byName.QRCode))
	return byName, nil
}

func (e *Engine) ListItems(ctx context.Context, q ports.ItemQuery) ([]models.Item, error) {
	q.Q = strings.TrimSpace(q.Q)
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperr.Validation("unknown status %q", q.Status)
	}
	items, err := e.store.ListItems(ctx, q)
	if err != nil {
		return nil, apperr.Internal(err, "list items")
	}
	return items, nil
}

// OverdueItems lists unique items borrowed for longer than after.
func (e *Engine) OverdueItems(ctx context.Context, after time.Duration) ([]models.Item, error) {
	items, err := e.store.ListBorrowedBefore(ctx, e.now().Add(-after))
	if err != nil {
		return nil, apperr.Internal(err, "list overdue items")
	}
	return items, nil
}

func orSystem(s string) string {
	if s == "" {
		return models.SystemActor
	}
	return s
}
