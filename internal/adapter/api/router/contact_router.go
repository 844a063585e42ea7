package router

import (
	"github.com/labstack/echo/v4"

	"chitchat/internal/adapter/api/handler"
	"chitchat/internal/adapter/api/middleware"
)

func SetupContactRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	contactHandler := handler.GetContactHandler()

	protected := e.Group("/v1/contacts")
	protected.Use(authMiddleware.Authenticate)

	protected.GET("", contactHandler.ListAll)
	protected.GET("/chats", contactHandler.ListChatted)
	protected.GET("/suggested", contactHandler.ListSuggested)
}
