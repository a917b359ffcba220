package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ScanController struct{ *Srv }

func NewScanController(s *Srv) *ScanController { return &ScanController{Srv: s} }

// Resolve answers {"kind": "item"|"worker"|"none", ...}. An unknown code is
// not an error.
func (sc *ScanController) Resolve(c *gin.Context) {
	res, err := sc.Engine.ResolveScan(c.Request.Context(), c.Param("code"))
	if err != nil {
		sc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
