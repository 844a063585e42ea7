package router

import (
	"github.com/labstack/echo/v4"

	"chitchat/internal/adapter/api/handler"
	"chitchat/internal/adapter/api/middleware"
)

func SetupReactionRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	reactionHandler := handler.GetReactionHandler()

	protected := e.Group("/v1/messages/:id/reactions")
	protected.Use(authMiddleware.Authenticate)

	protected.PUT("", reactionHandler.Toggle)
	protected.GET("", reactionHandler.List)
}
