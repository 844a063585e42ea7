package router

import (
	"github.com/labstack/echo/v4"

	"chitchat/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	SetupAuthRouter(e, authMiddleware)
	SetupProfileRouter(e, authMiddleware)
	SetupContactRouter(e, authMiddleware)
	SetupMessageRouter(e, authMiddleware)
	SetupReactionRouter(e, authMiddleware)
	SetupStoryRouter(e, authMiddleware)
	SetupHealthRouter(e)
}
