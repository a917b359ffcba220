// controllers/srv.go
package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"Gin_postgres_redis_qr_tracker/app"
	"Gin_postgres_redis_qr_tracker/apperr"
	"Gin_postgres_redis_qr_tracker/logger"
	"Gin_postgres_redis_qr_tracker/session"
	"Gin_postgres_redis_qr_tracker/tracker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Srv struct {
	Engine    *tracker.Engine
	AppSess   *session.AppSessionStore
	WebOrigin string
	Log       *zap.Logger
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Engine:    a.Engine,
		AppSess:   a.AppSessions(),
		WebOrigin: a.Config.WebOrigin,
		Log:       logger.Named(a.Log, "handlers"),
	}
}

// --- helpers ---

// fail 按错误类型统一返回 {"error": msg}
func (s *Srv) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.Log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, app.H{"error": apperr.PublicMessage(err)})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, app.H{"error": "invalid request: " + err.Error()})
}

// 统一设置业务会话 Cookie
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}

// 登录成功：创建会话 + 写 Cookie
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, workerID, role string) error {
	id, err := s.AppSess.Create(ctx, workerID, role)
	if err != nil {
		return err
	}
	s.setAppCookie(w, id, s.AppSess.TTL())
	return nil
}

// signedInName is the logged-in worker's name, used as the validator.
func signedInName(c *gin.Context) string { return c.GetString(app.CtxWorkerName) }
