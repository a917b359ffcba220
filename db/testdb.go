package db

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"Gin_postgres_redis_qr_tracker/config"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

// NewTestDB opens a migrated in-memory SQLite database. Every call gets its
// own database, also within one test.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, t.Name())
	conn, err := Open(config.DBConfig{
		Driver:     "sqlite",
		SQLitePath: fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, testDBSeq.Add(1)),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := Migrate(conn); err != nil {
		t.Fatalf("creating test database schema: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("test database handle: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	return conn
}
