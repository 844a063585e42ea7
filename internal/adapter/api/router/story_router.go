package router

import (
	"github.com/labstack/echo/v4"

	"chitchat/internal/adapter/api/handler"
	"chitchat/internal/adapter/api/middleware"
)

func SetupStoryRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	storyHandler := handler.GetStoryHandler()

	protected := e.Group("/v1/stories")
	protected.Use(authMiddleware.Authenticate)

	protected.POST("", storyHandler.Create)
	protected.GET("", storyHandler.Feed)
	protected.GET("/mine", storyHandler.Mine)
	protected.POST("/:id/view", storyHandler.View)
	protected.DELETE("/:id", storyHandler.Delete)
}
