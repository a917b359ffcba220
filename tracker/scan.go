package tracker

import (
	"context"
	"strings"

	"Gin_postgres_redis_qr_tracker/apperr"
	"Gin_postgres_redis_qr_tracker/models"
)

type ScanKind string

const (
	ScanItem   ScanKind = "item"
	ScanWorker ScanKind = "worker"
	ScanNone   ScanKind = "none"
)

type ScanResult struct {
	Kind   ScanKind       `json:"kind"`
	Item   *models.Item   `json:"item,omitempty"`
	Worker *models.Worker `json:"worker,omitempty"`
}

// ResolveScan checks items first, then workers. If a code exists in both, the
// item wins. Only exact codes match here.
func (e *Engine) ResolveScan(ctx context.Context, code string) (ScanResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return ScanResult{}, apperr.Validation("code is required")
	}

	res, err := e.resolve(ctx, code)
	if err != nil {
		return ScanResult{}, apperr.Internal(err, "resolve %s", code)
	}
	e.metrics.Scan(string(res.Kind))
	return res, nil
}

func (e *Engine) resolve(ctx context.Context, code string) (ScanResult, error) {
	it, err := e.store.FindItemByCode(ctx, code)
	if err == nil {
		return ScanResult{Kind: ScanItem, Item: it}, nil
	}
	if apperr.KindOf(err) != apperr.KindNotFound {
		return ScanResult{}, err
	}

	w, err := e.store.FindWorkerByCode(ctx, code)
	if err == nil {
		return ScanResult{Kind: ScanWorker, Worker: w}, nil
	}
	if apperr.KindOf(err) != apperr.KindNotFound {
		return ScanResult{}, err
	}
	return ScanResult{Kind: ScanNone}, nil
}
