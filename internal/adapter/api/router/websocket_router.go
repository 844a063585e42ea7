package router

import (
	"github.com/labstack/echo/v4"

	"chitchat/internal/adapter/api/handler"
)

// SetupWebSocketRouter registers the realtime endpoint. Auth happens
// inside the handler via the token query parameter.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws", wsHandler.HandleWebSocket)
}
