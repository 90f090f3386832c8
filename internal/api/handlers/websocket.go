package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/pinfield/backend/internal/ws"
)

// HandleSessionWebSocket handles real-time session communication
func HandleSessionWebSocket() gin.HandlerFunc {
	return ws.HandleWebSocket
}
