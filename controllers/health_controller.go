package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/daily-pulse/firebase"
)

type Checker interface {
	Check(ctx context.Context) error
}

type HealthController struct {
	store Checker
	auth  firebase.Prober
	docs  firebase.Prober
}

// docs = nil khi kho tài liệu không phải Firestore.
func NewHealthController(store Checker, auth, docs firebase.Prober) *HealthController {
	return &HealthController{store: store, auth: auth, docs: docs}
}

// GET /health
func (hc *HealthController) HealthCheck(c *gin.Context) {
	// Mặc định trạng thái OK
	response := gin.H{
		"status":  "ok",
		"message": "Service is healthy",
		"store":   "ok",
	}

	if err := hc.store.Check(c.Request.Context()); err != nil {
		response["status"] = "error"
		response["store"] = "error: " + err.Error()
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// GET /api/status
func (hc *HealthController) Status(c *gin.Context) {
	status := firebase.CheckStatus(c.Request.Context(), hc.auth, hc.docs)
	code := http.StatusOK
	if !status.IsConnected {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
