package db

import (
	"fmt"
	"strings"
	"time"

	"Gin_postgres_redis_qr_tracker/config"
	"Gin_postgres_redis_qr_tracker/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects with the configured driver. SQLite is limited to a single
// connection so writers queue instead of failing with SQLITE_BUSY.
func Open(cfg config.DBConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(cfg.DSN()))
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(log),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return conn, nil
}

// newGormLogger 把 GORM 的慢查询和错误写进 zap；查无记录是正常分支，不记
func newGormLogger(log *zap.Logger) gormlogger.Interface {
	if log == nil {
		log = zap.NewNop()
	}
	std, err := zap.NewStdLogAt(log.Named("gorm"), zap.WarnLevel)
	if err != nil {
		return gormlogger.Discard
	}
	return gormlogger.New(std, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=busy_timeout") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)"
}

// ConnectDB opens the database and runs migrations.
func ConnectDB(cfg config.DBConfig, log *zap.Logger) (*gorm.DB, error) {
	conn, err := Open(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("database connected", zap.String("driver", cfg.Driver))
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Item{},
		&models.HistoryEntry{},
		&models.Worker{},
		&models.AttendanceEntry{},
		&models.Counter{},
	); err != nil {
		return err
	}

	// 逾期报表只扫描借出中的唯一工具
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_borrowed_loan_date
	  ON %s (loan_date)
	  WHERE status = 'borrowed';
	`, models.ItemTable, models.ItemTable)).Error; err != nil {
		return err
	}

	return seedItemCodeCounter(db)
}

// seedItemCodeCounter creates the counter row and lifts it to the highest
// G<digits> code already stored, so data written before the counter existed
// never collides with new allocations.
func seedItemCodeCounter(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Counter{Name: itemCodeCounter}).Error; err != nil {
			return fmt.Errorf("create counter: %w", err)
		}

		var codes []string
		if err := tx.Model(&models.Item{}).
			Where("qr_code LIKE ?", "G%").
			Pluck("qr_code", &codes).Error; err != nil {
			return fmt.Errorf("scan item codes: %w", err)
		}
		var highest int64
		for _, code := range codes {
			if n, ok := ParseItemCode(code); ok && n > highest {
				highest = n
			}
		}
		return raiseCounter(tx, highest)
	})
}
