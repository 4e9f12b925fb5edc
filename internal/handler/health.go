package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealroom/internal/db"
)

type HealthHandler struct {
	DB *db.DB
}

func (h *HealthHandler) Register(r gin.IRouter) {
	r.GET("/healthz", h.healthz)
	r.GET("/readyz", h.readyz)
}

func (h *HealthHandler) healthz(c *gin.Context) {
	ok(c, gin.H{"status": "up"})
}

func (h *HealthHandler) readyz(c *gin.Context) {
	if err := db.Ping(h.DB); err != nil {
		fail(c, http.StatusServiceUnavailable, "store unreachable")
		return
	}
	ok(c, gin.H{"status": "ready"})
}
