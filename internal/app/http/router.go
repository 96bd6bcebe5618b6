package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ptalsvc/internal/app/http/handler"
	"ptalsvc/internal/app/http/middleware"
)

func NewRouter(h *handler.Handler, log *zap.Logger) *gin.Engine {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		middleware.ZapLogger(log),
		middleware.ZapRecovery(log),
	)

	r.GET("/health", h.Health)

	r.POST("/ptal/create", h.PtalCreate)
	r.POST("/webhook/github", h.Webhook)

	return r
}
