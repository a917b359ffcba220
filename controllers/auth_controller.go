package controllers

import (
	"net/http"
	"time"

	"Gin_postgres_redis_qr_tracker/app"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

type LoginReq struct {
	Code string `json:"code" binding:"required"`
	PIN  string `json:"pin" binding:"required"`
}

// 扫工牌 + 输入 PIN 登录
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	w, err := ac.Engine.Authenticate(c.Request.Context(), req.Code, req.PIN)
	if err != nil {
		ac.Log.Info("login rejected", zap.String("code", req.Code), zap.String("client_ip", c.ClientIP()))
		ac.fail(c, err)
		return
	}
	if err := ac.issueSession(c.Request.Context(), c.Writer, w.ID, string(w.Role)); err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "worker": w})
}

// 登出：删 Redis 会话，Cookie 置空
func (ac *AuthController) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		_ = ac.AppSess.Delete(c.Request.Context(), ck.Value)
	}
	ac.setAppCookie(c.Writer, "", -time.Second) // MaxAge<0 删除
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// LogoutAll 撤销当前人员在所有终端上的会话
func (ac *AuthController) LogoutAll(c *gin.Context) {
	if err := ac.AppSess.RevokeAllForWorker(c.Request.Context(), c.GetString(app.CtxWorkerID)); err != nil {
		ac.fail(c, err)
		return
	}
	ac.setAppCookie(c.Writer, "", -time.Second)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (ac *AuthController) WhoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, app.H{
		"workerID": c.GetString(app.CtxWorkerID),
		"code":     c.GetString(app.CtxWorkerCode),
		"name":     c.GetString(app.CtxWorkerName),
		"role":     c.MustGet(app.CtxRole),
	})
}
