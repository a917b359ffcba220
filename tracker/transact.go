package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Gin_postgres_redis_qr_tracker/apperr"
	"Gin_postgres_redis_qr_tracker/models"
	"Gin_postgres_redis_qr_tracker/ports"

	"go.uber.org/zap"
)

type Op string

const (
	OpBorrow       Op = "borrow"
	OpReturn       Op = "return"
	OpRepair       Op = "repair"
	OpFinishRepair Op = "finish_repair"
)

// Request is one scanned item transaction. Quantity only matters for
// consumables and defaults to 1.
type Request struct {
	Code      string
	Actor     string
	Validator string
	Quantity  int
	Notes     string
}

// transition checks the observed item, applies the conditional write and
// returns the audit entry to append. A write that no longer matches its
// predicate is a Conflict.
type transition func(ctx context.Context, tx ports.ItemRepository, it *models.Item, req Request, now time.Time) (*models.HistoryEntry, error)

var transitions = map[Op]transition{
	OpBorrow:       borrowOrConsume,
	OpReturn:       returnItem,
	OpRepair:       sendToRepair,
	OpFinishRepair: finishRepair,
}

func borrowOrConsume(ctx context.Context, tx ports.ItemRepository, it *models.Item, req Request, now time.Time) (*models.HistoryEntry, error) {
	if it.IsConsumable {
		if it.Stock < req.Quantity {
			return nil, apperr.Conflict("insufficient stock for %s: %d left, %d requested", it.QRCode, it.Stock, req.Quantity)
		}
		ok, err := tx.ConsumeStock(ctx, it.ID, req.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Conflict("stock of %s changed, scan again", it.QRCode)
		}
		return &models.HistoryEntry{Action: models.ActionConsumption, Quantity: req.Quantity}, nil
	}

	switch it.Status {
	case models.ItemStatusBorrowed:
		holder := ""
		if it.CurrentHolder != nil {
			holder = *it.CurrentHolder
		}
		return nil, apperr.Conflict("item %s already borrowed by %s", it.QRCode, holder)
	case models.ItemStatusRepair:
		return nil, apperr.Conflict("item %s is in repair", it.QRCode)
	}
	ok, err := tx.MarkBorrowed(ctx, it.ID, req.Actor, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("item %s is no longer available", it.QRCode)
	}
	return &models.HistoryEntry{Action: models.ActionBorrow, Quantity: 1}, nil
}

func returnItem(ctx context.Context, tx ports.ItemRepository, it *models.Item, _ Request, _ time.Time) (*models.HistoryEntry, error) {
	if it.IsConsumable {
		return nil, apperr.Conflict("item %s is consumable and cannot be returned", it.QRCode)
	}
	if it.Status != models.ItemStatusBorrowed {
		return nil, apperr.Conflict("item %s is not borrowed", it.QRCode)
	}
	ok, err := tx.MarkReturned(ctx, it.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("item %s is not borrowed", it.QRCode)
	}
	return &models.HistoryEntry{Action: models.ActionReturn, Quantity: 1}, nil
}

func sendToRepair(ctx context.Context, tx ports.ItemRepository, it *models.Item, _ Request, _ time.Time) (*models.HistoryEntry, error) {
	if it.IsConsumable {
		return nil, apperr.Conflict("item %s is consumable and cannot go to repair", it.QRCode)
	}
	switch it.Status {
	case models.ItemStatusBorrowed:
		return nil, apperr.Conflict("item %s is borrowed, return it first", it.QRCode)
	case models.ItemStatusRepair:
		return nil, apperr.Conflict("item %s is already in repair", it.QRCode)
	}
	ok, err := tx.MarkRepair(ctx, it.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("item %s is no longer available", it.QRCode)
	}
	return &models.HistoryEntry{Action: models.ActionRepair, Quantity: 1, Notes: "sent to repair"}, nil
}

func finishRepair(ctx context.Context, tx ports.ItemRepository, it *models.Item, _ Request, _ time.Time) (*models.HistoryEntry, error) {
	if it.Status != models.ItemStatusRepair {
		return nil, apperr.Conflict("item %s is not in repair", it.QRCode)
	}
	ok, err := tx.FinishRepair(ctx, it.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("item %s is not in repair", it.QRCode)
	}
	return &models.HistoryEntry{Action: models.ActionRepair, Quantity: 1, Notes: "repair finished"}, nil
}

// Transact runs op against the item named by req.Code. The item write and its
// history entry commit together or not at all; conflicts are not retried.
func (e *Engine) Transact(ctx context.Context, op Op, req Request) (*models.Item, error) {
	apply, ok := transitions[op]
	if !ok {
		return nil, apperr.Validation("unknown operation %q", op)
	}
	req, err := normalizeRequest(req)
	if err != nil {
		e.metrics.Transaction(string(op), err)
		return nil, err
	}

	var out *models.Item
	err = e.store.Atomic(ctx, func(tx ports.Store) error {
		it, err := e.lookupItem(ctx, tx, req.Code)
		if err != nil {
			return err
		}
		now := e.now()
		entry, err := apply(ctx, tx, it, req, now)
		if err != nil {
			return err
		}

		entry.ItemID = it.ID
		entry.Person = req.Actor
		entry.ValidatedBy = orSystem(req.Validator)
		entry.CreatedAt = now
		if req.Notes != "" {
			entry.Notes = joinNotes(entry.Notes, req.Notes)
		}
		if err := tx.AppendHistory(ctx, entry); err != nil {
			return err
		}

		out, err = tx.FindItemByCode(ctx, it.QRCode)
		return err
	})
	e.metrics.Transaction(string(op), err)
	if err != nil {
		err = apperr.Internal(err, "%s %s", op, req.Code)
		e.logFailure(string(op), req.Code, err)
		return nil, err
	}

	e.log.Info("item transaction",
		zap.String("op", string(op)),
		zap.String("code", out.QRCode),
		zap.String("actor", req.Actor),
		zap.String("validator", orSystem(req.Validator)),
		zap.Int("quantity", req.Quantity))
	return out, nil
}

func (e *Engine) BorrowOrConsume(ctx context.Context, req Request) (*models.Item, error) {
	return e.Transact(ctx, OpBorrow, req)
}

func (e *Engine) ReturnItem(ctx context.Context, req Request) (*models.Item, error) {
	return e.Transact(ctx, OpReturn, req)
}

func (e *Engine) SendToRepair(ctx context.Context, req Request) (*models.Item, error) {
	return e.Transact(ctx, OpRepair, req)
}

func (e *Engine) FinishRepair(ctx context.Context, req Request) (*models.Item, error) {
	return e.Transact(ctx, OpFinishRepair, req)
}

func normalizeRequest(req Request) (Request, error) {
	req.Code = strings.TrimSpace(req.Code)
	req.Actor = strings.TrimSpace(req.Actor)
	req.Validator = strings.TrimSpace(req.Validator)
	req.Notes = strings.TrimSpace(req.Notes)
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	switch {
	case req.Code == "":
		return req, apperr.Validation("code is required")
	case req.Actor == "":
		return req, apperr.Validation("actor is required")
	case req.Quantity < 1:
		return req, apperr.Validation("quantity must be at least 1")
	}
	return req, nil
}

func joinNotes(a, b string) string {
	if a == "" {
		return b
	}
	return fmt.Sprintf("%s; %s", a, b)
}

// logFailure keeps business rejections at info and storage failures at error.
func (e *Engine) logFailure(op, code string, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		e.log.Error("item transaction failed", zap.String("op", op), zap.String("code", code), zap.Error(err))
		return
	}
	e.log.Info("item transaction rejected", zap.String("op", op), zap.String("code", code), zap.String("reason", err.Error()))
}
