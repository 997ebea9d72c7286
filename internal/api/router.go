package api

import (
	"fmt"
	"net/http"

	"memeindex-bot/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Deps struct {
	Bot        Inviter
	Deliveries DeliveryLister // nil when the journal is disabled
	Stream     gin.HandlerFunc
	Logger     *logrus.Entry
}

// NewRouter wires the HTTP surface: liveness, health, the send-template
// trigger and the delivery journal.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(logging.GinLogger(deps.Logger))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		deps.Logger.WithField("panic", recovered).Error("handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ServerErrorBody(fmt.Sprint(recovered), fmt.Sprintf("%T", recovered)))
	}))
	r.Use(CORS())

	health := NewHealthHandler()
	trigger := NewTriggerHandler(deps.Bot, deps.Logger)
	deliveries := NewDeliveryHandler(deps.Deliveries)

	r.GET("/", health.Root)
	r.GET("/health", health.Health)
	r.POST("/send-template", trigger.SendTemplate)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/deliveries", deliveries.GetDeliveries)
	}

	if deps.Stream != nil {
		r.GET("/ws", deps.Stream)
	}

	return r
}

// CORS allows any origin to call the service.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}
