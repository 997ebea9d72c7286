package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	Now func() time.Time
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{Now: time.Now}
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Bot is running!")
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": h.Now().UTC()})
}
