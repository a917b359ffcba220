package controllers

import (
	"net/http"

	"Gin_postgres_redis_qr_tracker/app"
	"Gin_postgres_redis_qr_tracker/models"
	"Gin_postgres_redis_qr_tracker/tracker"

	"github.com/gin-gonic/gin"
)

type WorkerController struct{ *Srv }

func NewWorkerController(s *Srv) *WorkerController { return &WorkerController{Srv: s} }

type EnrollWorkerReq struct {
	Code     string      `json:"code"`
	Name     string      `json:"name" binding:"required"`
	Position string      `json:"position"`
	Role     models.Role `json:"role"`
	PIN      string      `json:"pin" binding:"omitempty,numeric,min=4,max=12"`
}

func (wc *WorkerController) EnrollWorker(c *gin.Context) {
	var req EnrollWorkerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	w, err := wc.Engine.EnrollWorker(c.Request.Context(), tracker.EnrollInput{
		Code:     req.Code,
		Name:     req.Name,
		Position: req.Position,
		Role:     req.Role,
		PIN:      req.PIN,
	})
	if err != nil {
		wc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (wc *WorkerController) ListWorkers(c *gin.Context) {
	ws, err := wc.Engine.ListWorkers(c.Request.Context())
	if err != nil {
		wc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"workers": ws})
}

func (wc *WorkerController) Attendance(c *gin.Context) {
	w, entries, err := wc.Engine.WorkerAttendance(c.Request.Context(), c.Param("code"))
	if err != nil {
		wc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"worker": w, "attendance": entries})
}

type AttendanceScanReq struct {
	Code  string `json:"code" binding:"required"`
	Notes string `json:"notes" binding:"max=255"`
}

// 考勤打卡：IN/OUT 自动翻转
func (wc *WorkerController) ToggleAttendance(c *gin.Context) {
	var req AttendanceScanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := wc.Engine.ToggleAttendance(c.Request.Context(), req.Code, req.Notes)
	if err != nil {
		wc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
