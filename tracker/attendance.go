package tracker

import (
	"context"
	"strings"

	"Gin_postgres_redis_qr_tracker/apperr"
	"Gin_postgres_redis_qr_tracker/models"
	"Gin_postgres_redis_qr_tracker/ports"

	"go.uber.org/zap"
)

type AttendanceResult struct {
	Worker *models.Worker          `json:"worker"`
	Action models.AttendanceAction `json:"action"`
	Entry  models.AttendanceEntry  `json:"entry"`
}

// ToggleAttendance flips the worker's last action (OUT when none) and appends
// it. The append is conditional on the attendance count read here, so of two
// concurrent scans one wins and the other gets a Conflict.
func (e *Engine) ToggleAttendance(ctx context.Context, code, notes string) (*AttendanceResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.Validation("code is required")
	}

	var res *AttendanceResult
	err := e.store.Atomic(ctx, func(tx ports.Store) error {
		w, err := tx.FindWorkerByCode(ctx, code)
		if err != nil {
			return err
		}
		next := w.CurrentAction().Flip()
		entry := models.AttendanceEntry{
			Action:    next,
			Timestamp: e.now(),
			Notes:     strings.TrimSpace(notes),
		}
		ok, err := tx.AppendAttendance(ctx, w.ID, w.AttendanceSeq, &entry)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("attendance for %s changed, scan again", code)
		}
		w.AttendanceSeq = entry.Seq
		w.LastAction = &next
		res = &AttendanceResult{Worker: w, Action: next, Entry: entry}
		return nil
	})

	action := ""
	if res != nil {
		action = string(res.Action)
	}
	e.metrics.Attendance(action, err)
	if err != nil {
		err = apperr.Internal(err, "attendance %s", code)
		e.logFailure("attendance", code, err)
		return nil, err
	}

	e.log.Info("attendance recorded",
		zap.String("worker", res.Worker.QRCode),
		zap.String("action", action),
		zap.Int("seq", res.Entry.Seq))
	return res, nil
}

// WorkerAttendance returns the worker and its attendance log in order.
func (e *Engine) WorkerAttendance(ctx context.Context, code string) (*models.Worker, []models.AttendanceEntry, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil, apperr.Validation("code is required")
	}
	w, err := e.store.FindWorkerByCode(ctx, code)
	if err != nil {
		return nil, nil, apperr.Internal(err, "find worker %s", code)
	}
	es, err := e.store.ListAttendance(ctx, w.ID)
	if err != nil {
		return nil, nil, apperr.Internal(err, "list attendance %s", code)
	}
	return w, es, nil
}
