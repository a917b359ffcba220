// controllers/item_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_qr_tracker/app"
	"Gin_postgres_redis_qr_tracker/models"
	"Gin_postgres_redis_qr_tracker/ports"
	"Gin_postgres_redis_qr_tracker/tracker"

	"github.com/gin-gonic/gin"
)

type ItemController struct{ *Srv }

func NewItemController(s *Srv) *ItemController { return &ItemController{Srv: s} }

type RegisterItemReq struct {
	Code         string `json:"code"`
	Name         string `json:"name" binding:"required"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	IsConsumable bool   `json:"isConsumable"`
	Stock        *int   `json:"stock" binding:"omitempty,min=0"`
}

// 登记新物品，编号为空时自动分配 Gxxx
func (ic *ItemController) RegisterItem(c *gin.Context) {
	var req RegisterItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	it, err := ic.Engine.RegisterItem(c.Request.Context(), tracker.RegisterInput{
		Code:         req.Code,
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		RegisteredBy: signedInName(c),
		IsConsumable: req.IsConsumable,
		Stock:        req.Stock,
	})
	if err != nil {
		ic.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

// ItemTxReq is the body of every item transaction. Actor defaults to the
// signed-in worker; the signed-in worker always validates.
type ItemTxReq struct {
	Code     string `json:"code" binding:"required"`
	Actor    string `json:"actor"`
	Quantity int    `json:"quantity" binding:"omitempty,min=1"`
	Notes    string `json:"notes" binding:"max=255"`
}

func (ic *ItemController) transact(op tracker.Op) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ItemTxReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		validator := signedInName(c)
		actor := req.Actor
		if actor == "" {
			actor = validator
		}
		it, err := ic.Engine.Transact(c.Request.Context(), op, tracker.Request{
			Code:      req.Code,
			Actor:     actor,
			Validator: validator,
			Quantity:  req.Quantity,
			Notes:     req.Notes,
		})
		if err != nil {
			ic.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

// 借出 / 领用（耗材按数量扣库存）
func (ic *ItemController) Borrow() gin.HandlerFunc { return ic.transact(tracker.OpBorrow) }

// 归还
func (ic *ItemController) Return() gin.HandlerFunc { return ic.transact(tracker.OpReturn) }

func (ic *ItemController) SendToRepair() gin.HandlerFunc { return ic.transact(tracker.OpRepair) }

func (ic *ItemController) FinishRepair() gin.HandlerFunc { return ic.transact(tracker.OpFinishRepair) }

// 列表：?q=&status=&page=&size=，按名称排序；不传 size 返回全部
func (ic *ItemController) ListItems(c *gin.Context) {
	q := ports.ItemQuery{
		Q:      c.Query("q"),
		Status: models.ItemStatus(c.Query("status")),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.Query("size"))

	items, err := ic.Engine.ListItems(c.Request.Context(), q)
	if err != nil {
		ic.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}
