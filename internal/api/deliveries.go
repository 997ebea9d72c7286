package api

import (
	"context"
	"net/http"
	"strconv"

	"memeindex-bot/internal/models"

	"github.com/gin-gonic/gin"
)

// DeliveryLister reads the delivery journal.
type DeliveryLister interface {
	Recent(ctx context.Context, limit int) ([]models.Delivery, error)
}

type DeliveryHandler struct {
	Store DeliveryLister
}

func NewDeliveryHandler(store DeliveryLister) *DeliveryHandler {
	return &DeliveryHandler{Store: store}
}

// GetDeliveries lists the most recent deliveries, newest first.
func (h *DeliveryHandler) GetDeliveries(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "delivery journal disabled"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	deliveries, err := h.Store.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if deliveries == nil {
		deliveries = []models.Delivery{}
	}

	c.JSON(http.StatusOK, deliveries)
}
