package app

import (
	"errors"
	"net/http"

	"Gin_postgres_redis_qr_tracker/apperr"
	"Gin_postgres_redis_qr_tracker/models"
	"Gin_postgres_redis_qr_tracker/session"
	"Gin_postgres_redis_qr_tracker/tracker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const AppSessionCookie = "app_session"

// Context keys set by AuthRequired.
const (
	CtxWorkerID   = "workerID"
	CtxWorkerCode = "workerCode"
	CtxWorkerName = "workerName"
	CtxRole       = "role"
)

func AuthRequired(appSess *session.AppSessionStore, engine *tracker.Engine, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				log.Error("session lookup failed", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		// 确认人员仍存在；角色以数据库为准（只查一次）
		w, err := engine.FindWorker(c.Request.Context(), as.WorkerID)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				_ = appSess.Delete(c.Request.Context(), ck.Value)
				c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, H{"error": "internal error"})
			return
		}
		c.Set(CtxWorkerID, w.ID)
		c.Set(CtxWorkerCode, w.QRCode)
		c.Set(CtxWorkerName, w.Name)
		c.Set(CtxRole, w.Role)

		c.Next()
	}
}

// RequireRole must run after AuthRequired.
func RequireRole(minimum models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxRole)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		role, _ := v.(models.Role)
		if !models.RoleAtLeast(role, minimum) {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
