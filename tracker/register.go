package tracker

import (
	"context"
	"fmt"
	"strings"

	"Gin_postgres_redis_qr_tracker/apperr"
	"Gin_postgres_redis_qr_tracker/models"
	"Gin_postgres_redis_qr_tracker/ports"

	"go.uber.org/zap"
)

type RegisterInput struct {
	Code         string // optional; allocated when empty
	Name         string
	Category     string
	Description  string
	RegisteredBy string
	IsConsumable bool
	Stock        *int // consumables only, defaults to 0
}

// RegisterItem creates an available item, allocating the next G code unless
// one is supplied, and records a register entry in the same transaction.
func (e *Engine) RegisterItem(ctx context.Context, in RegisterInput) (*models.Item, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.RegisteredBy = strings.TrimSpace(in.RegisteredBy)
	switch {
	case in.Name == "":
		return nil, apperr.Validation("name is required")
	case in.RegisteredBy == "":
		return nil, apperr.Validation("registeredBy is required")
	case in.Stock != nil && *in.Stock < 0:
		return nil, apperr.Validation("stock must not be negative")
	}

	stock := 1
	if in.IsConsumable {
		stock = 0
		if in.Stock != nil {
			stock = *in.Stock
		}
	}

	var out *models.Item
	err := e.store.Atomic(ctx, func(tx ports.Store) error {
		code := in.Code
		if code == "" {
			next, err := tx.NextItemCode(ctx)
			if err != nil {
				return err
			}
			code = next
		} else {
			if _, err := tx.FindItemByCode(ctx, code); err == nil {
				return apperr.Conflict("code %s already in use", code)
			} else if apperr.KindOf(err) != apperr.KindNotFound {
				return err
			}
			if err := tx.ReserveItemCode(ctx, code); err != nil {
				return err
			}
		}

		now := e.now()
		it := &models.Item{
			QRCode:       code,
			Name:         in.Name,
			Category:     strings.TrimSpace(in.Category),
			Description:  strings.TrimSpace(in.Description),
			Status:       models.ItemStatusAvailable,
			RegisteredBy: in.RegisteredBy,
			IsConsumable: in.IsConsumable,
			Stock:        stock,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.CreateItem(ctx, it); err != nil {
			return err
		}

		entry := &models.HistoryEntry{
			ItemID:      it.ID,
			Action:      models.ActionRegister,
			Person:      in.RegisteredBy,
			ValidatedBy: models.SystemActor,
			Quantity:    1,
			CreatedAt:   now,
		}
		if in.IsConsumable {
			entry.Notes = fmt.Sprintf("initial stock %d", stock)
		}
		if err := tx.AppendHistory(ctx, entry); err != nil {
			return err
		}
		out = it
		return nil
	})
	e.metrics.Transaction(string(models.ActionRegister), err)
	if err != nil {
		err = apperr.Internal(err, "register item")
		e.logFailure(string(models.ActionRegister), in.Code, err)
		return nil, err
	}

	e.log.Info("item registered",
		zap.String("code", out.QRCode),
		zap.String("name", out.Name),
		zap.Bool("consumable", out.IsConsumable),
		zap.Int("stock", out.Stock))
	return out, nil
}
