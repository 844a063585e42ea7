package router

import (
	"github.com/labstack/echo/v4"

	"chitchat/internal/adapter/api/handler"
	"chitchat/internal/adapter/api/middleware"
)

func SetupMessageRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	messageHandler := handler.GetMessageHandler()

	protected := e.Group("/v1/messages")
	protected.Use(authMiddleware.Authenticate)

	protected.POST("/send/:id", messageHandler.Send)
	protected.GET("/with/:id", messageHandler.History)
	protected.GET("/with/:id/statuses", messageHandler.Statuses)
	protected.POST("/seen", messageHandler.MarkSeen)
}
