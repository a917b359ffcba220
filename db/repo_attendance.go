package db

import (
	"context"
	"errors"

	"Gin_postgres_redis_qr_tracker/models"

	"gorm.io/gorm"
)

// AppendAttendance 以 attendance_seq 做乐观锁：游标未变才推进并写入条目。
// 游标已被别的扫码推进时返回 applied=false
func (r *Repo) AppendAttendance(ctx context.Context, workerID string, expectedSeq int, e *models.AttendanceEntry) (bool, error) {
	ok := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Worker{}).
			Where("id = ? AND attendance_seq = ?", workerID, expectedSeq).
			Updates(map[string]any{
				"attendance_seq": expectedSeq + 1,
				"last_action":    e.Action,
			})
		if res.Error != nil {
			return wrap(res.Error, "advance attendance")
		}
		if res.RowsAffected != 1 {
			return nil
		}

		e.WorkerID = workerID
		e.Seq = expectedSeq + 1
		if err := tx.Create(e).Error; err != nil {
			if isDuplicate(err) {
				return errSeqTaken
			}
			return wrap(err, "insert attendance")
		}
		ok = true
		return nil
	})
	if errors.Is(err, errSeqTaken) {
		return false, nil
	}
	return ok, err
}

var errSeqTaken = errors.New("attendance seq taken")

func (r *Repo) ListAttendance(ctx context.Context, workerID string) ([]models.AttendanceEntry, error) {
	var es []models.AttendanceEntry
	if err := r.DB.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Order("seq ASC").
		Find(&es).Error; err != nil {
		return nil, wrap(err, "list attendance")
	}
	return es, nil
}
