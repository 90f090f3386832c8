package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pinfield/backend/internal/config"
)

// GetConfig returns minimal config values required by frontend
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"tick_rate":           cfg.TickRate,
			"difficulty":          cfg.Difficulty,
			"global_scatter":      cfg.GlobalScatter,
			"session_ttl_minutes": cfg.SessionTTLMinutes,
		})
	}
}
