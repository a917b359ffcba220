package controllers

import (
	"net/http"

	"Gin_postgres_redis_qr_tracker/app"

	"github.com/gin-gonic/gin"
)

type HistoryController struct{ *Srv }

func NewHistoryController(s *Srv) *HistoryController { return &HistoryController{Srv: s} }

// 物品审计记录，按时间正序
func (hc *HistoryController) ItemHistory(c *gin.Context) {
	code := c.Param("code")
	entries, err := hc.Engine.ItemHistory(c.Request.Context(), code)
	if err != nil {
		hc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"code": code, "history": entries})
}
