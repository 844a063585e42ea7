package router

import (
	"github.com/labstack/echo/v4"

	"chitchat/internal/adapter/api/handler"
	"chitchat/internal/adapter/api/middleware"
)

func SetupProfileRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	profileHandler := handler.GetProfileHandler()

	protected := e.Group("/v1/profile")
	protected.Use(authMiddleware.Authenticate)

	protected.GET("", profileHandler.GetProfile)
	protected.PATCH("", profileHandler.UpdateProfile)
	protected.PUT("/picture", profileHandler.UpdateProfilePicture)
	protected.GET("/:username", profileHandler.GetProfileByUsername)
}
