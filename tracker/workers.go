package tracker

import (
	"context"
	"strings"

	"Gin_postgres_redis_qr_tracker/apperr"
	"Gin_postgres_redis_qr_tracker/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type EnrollInput struct {
	Code     string // optional; W + short id when empty
	Name     string
	Position string
	Role     models.Role
	PIN      string
}

func validPIN(pin string) bool {
	if len(pin) < 4 || len(pin) > 12 {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func newWorkerCode() string {
	return "W" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (e *Engine) EnrollWorker(ctx context.Context, in EnrollInput) (*models.Worker, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if in.Role == "" {
		in.Role = models.RoleWorker
	}
	switch {
	case in.Name == "":
		return nil, apperr.Validation("name is required")
	case !in.Role.Valid():
		return nil, apperr.Validation("unknown role %q", in.Role)
	case in.PIN != "" && !validPIN(in.PIN):
		return nil, apperr.Validation("pin must be 4 to 12 digits")
	}
	if in.Code == "" {
		in.Code = newWorkerCode()
	}

	w := &models.Worker{
		QRCode:   in.Code,
		Name:     in.Name,
		Position: strings.TrimSpace(in.Position),
		Role:     in.Role,
	}
	if in.PIN != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.PIN), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperr.Internal(err, "hash pin")
		}
		w.PIN = string(hash)
	}
	if err := e.store.CreateWorker(ctx, w); err != nil {
		return nil, apperr.Internal(err, "enroll worker")
	}

	e.log.Info("worker enrolled", zap.String("code", w.QRCode), zap.String("role", string(w.Role)))
	return w, nil
}

func (e *Engine) ListWorkers(ctx context.Context) ([]models.Worker, error) {
	ws, err := e.store.ListWorkers(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "list workers")
	}
	return ws, nil
}

// Authenticate checks a worker code and PIN. Every failure reads the same so
// codes cannot be probed.
func (e *Engine) Authenticate(ctx context.Context, code, pin string) (*models.Worker, error) {
	code = strings.TrimSpace(code)
	if code == "" || pin == "" {
		return nil, apperr.Validation("code and pin are required")
	}
	w, err := e.store.FindWorkerByCode(ctx, code)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Unauthorized("invalid code or pin")
		}
		return nil, apperr.Internal(err, "find worker")
	}
	if w.PIN == "" || bcrypt.CompareHashAndPassword([]byte(w.PIN), []byte(pin)) != nil {
		return nil, apperr.Unauthorized("invalid code or pin")
	}
	return w, nil
}

// FindWorker loads a worker by id, used to refresh the session principal.
func (e *Engine) FindWorker(ctx context.Context, id string) (*models.Worker, error) {
	w, err := e.store.FindWorkerByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "find worker")
	}
	return w, nil
}

func (e *Engine) CountWorkersByRole(ctx context.Context, role models.Role) (int64, error) {
	n, err := e.store.CountWorkersByRole(ctx, role)
	if err != nil {
		return 0, apperr.Internal(err, "count workers")
	}
	return n, nil
}

func (e *Engine) TouchWorkerSeen(ctx context.Context, id string) error {
	return e.store.TouchWorkerSeen(ctx, id)
}
