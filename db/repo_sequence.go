package db

import (
	"context"
	"fmt"
	"strconv"

	"Gin_postgres_redis_qr_tracker/models"

	"gorm.io/gorm"
)

const itemCodeCounter = "item_code"

// FormatItemCode renders n as G plus at least three digits: G001, G042, G1000.
func FormatItemCode(n int64) string { return fmt.Sprintf("G%03d", n) }

// ParseItemCode returns the numeric suffix of a G<digits> code.
func ParseItemCode(code string) (int64, bool) {
	if len(code) < 2 || code[0] != 'G' {
		return 0, false
	}
	for _, c := range code[1:] {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(code[1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextItemCode 原子递增计数器再读回：UPDATE 持有行锁直到事务结束，
// 并发调用被串行化；外层事务回滚时编号一起释放
func (r *Repo) NextItemCode(ctx context.Context) (string, error) {
	var code string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Counter{}).
			Where("name = ?", itemCodeCounter).
			Update("value", gorm.Expr("value + 1"))
		if res.Error != nil {
			return fmt.Errorf("increment counter: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("counter %s missing, run migrations", itemCodeCounter)
		}
		var c models.Counter
		if err := tx.First(&c, "name = ?", itemCodeCounter).Error; err != nil {
			return fmt.Errorf("read counter: %w", err)
		}
		code = FormatItemCode(c.Value)
		return nil
	})
	return code, err
}

// ReserveItemCode lifts the counter past a caller supplied G<digits> code.
// Other codes do not touch the counter.
func (r *Repo) ReserveItemCode(ctx context.Context, code string) error {
	n, ok := ParseItemCode(code)
	if !ok {
		return nil
	}
	return raiseCounter(r.DB.WithContext(ctx), n)
}

func raiseCounter(tx *gorm.DB, n int64) error {
	if n <= 0 {
		return nil
	}
	err := tx.Model(&models.Counter{}).
		Where("name = ? AND value < ?", itemCodeCounter, n).
		Update("value", n).Error
	return wrap(err, "raise counter")
}
