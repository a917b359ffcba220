package routes

import (
	"net/http"

	"Gin_postgres_redis_qr_tracker/app"
	"Gin_postgres_redis_qr_tracker/controllers"
	"Gin_postgres_redis_qr_tracker/logger"
	"Gin_postgres_redis_qr_tracker/metrics"
	"Gin_postgres_redis_qr_tracker/models"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	itemCtl := controllers.NewItemController(s)
	historyCtl := controllers.NewHistoryController(s)
	workerCtl := controllers.NewWorkerController(s)
	scanCtl := controllers.NewScanController(s)

	// 复用的中间件
	authMW := app.AuthRequired(a.AppSessions(), a.Engine, logger.Named(a.Log, "auth"))
	seenMW := app.TouchLastSeen(a.Engine, a.RDB, a.Config.SeenThrottle, logger.Named(a.Log, "auth"))
	keeperMW := app.RequireRole(models.RoleWarehouseKeeper)
	superMW := app.RequireRole(models.RoleSuperAdmin)

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler(a.Registry)))

	// ------------------------------
	// 扫码终端（公开）
	// ------------------------------
	r.GET("/api/scan/:code", scanCtl.Resolve)
	r.POST("/api/attendance/scan", workerCtl.ToggleAttendance)

	// ------------------------------
	// 登录 / 登出
	// ------------------------------
	r.POST("/api/auth/login", authCtl.Login)
	auth := r.Group("/api/auth", authMW, seenMW)
	{
		auth.POST("/logout", authCtl.Logout)
		auth.POST("/logout-all", authCtl.LogoutAll)
		auth.GET("/whoami", authCtl.WhoAmI)
	}

	// ------------------------------
	// 物品：浏览/借/还/领用
	// ------------------------------
	items := r.Group("/api/items", authMW, seenMW)
	{
		items.GET("", itemCtl.ListItems) // ?q=&status=&page=&size=
		items.GET("/:code/history", historyCtl.ItemHistory)
		items.POST("/borrow", itemCtl.Borrow())
		items.POST("/return", itemCtl.Return())
	}

	// 仓管：登记、维修
	itemsKeeper := r.Group("/api/items", authMW, seenMW, keeperMW)
	{
		itemsKeeper.POST("", itemCtl.RegisterItem)
		itemsKeeper.POST("/repair", itemCtl.SendToRepair())
		itemsKeeper.POST("/repair/finish", itemCtl.FinishRepair())
	}

	// ------------------------------
	// 人员
	// ------------------------------
	workers := r.Group("/api/workers", authMW, seenMW, keeperMW)
	{
		workers.GET("", workerCtl.ListWorkers)
		workers.GET("/:code/attendance", workerCtl.Attendance)
		workers.POST("", superMW, workerCtl.EnrollWorker)
	}
}
