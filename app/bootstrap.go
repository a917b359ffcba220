// app/bootstrap.go
package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"Gin_postgres_redis_qr_tracker/models"
	"Gin_postgres_redis_qr_tracker/tracker"

	"go.uber.org/zap"
)

// BootstrapFirstAdmin enrolls a SuperAdmin named by BOOTSTRAP_ADMIN_NAME when
// none exists yet. The one-time PIN is only ever written to the log.
func BootstrapFirstAdmin(ctx context.Context, name string, engine *tracker.Engine, log *zap.Logger) (*models.Worker, error) {
	if name == "" {
		return nil, nil
	}
	n, err := engine.CountWorkersByRole(ctx, models.RoleSuperAdmin)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, nil // 已经有管理员，跳过
	}

	pin, err := randomPIN(6)
	if err != nil {
		return nil, err
	}
	w, err := engine.EnrollWorker(ctx, tracker.EnrollInput{
		Name: name,
		Role: models.RoleSuperAdmin,
		PIN:  pin,
	})
	if err != nil {
		return nil, err
	}

	log.Warn("[BOOTSTRAP] no SuperAdmin found, enrolled one",
		zap.String("name", w.Name),
		zap.String("code", w.QRCode),
		zap.String("pin", pin))
	return w, nil
}

func randomPIN(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n.Int64()), nil
}
