package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/pinfield/backend/internal/admin"
	"github.com/pinfield/backend/internal/config"
)

// GetOperatorRuntimeConfig returns all runtime config entries
func GetOperatorRuntimeConfig(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		configs, err := admin.GetAllRuntimeConfig(db)
		if err != nil {
			log.Printf("[OPERATOR] Failed to fetch runtime config: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch config"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"configs": configs})
	}
}

// UpdateOperatorRuntimeConfig updates a single runtime config value.
// Changes apply to the in-memory config immediately; running sessions keep
// the settings they started with.
func UpdateOperatorRuntimeConfig(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		operatorUsername := c.GetString("operator_username")
		key := c.Param("key")

		var req struct {
			Value string `json:"value" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Value is required"})
			return
		}

		err := admin.UpdateRuntimeConfigValue(db, key, req.Value, operatorUsername)
		if err != nil {
			log.Printf("[OPERATOR] Failed to update config %s: %v", key, err)
			admin.LogOperatorAction(db, operatorUsername, c.ClientIP(), "/api/v1/operator/config/"+key, "update_config", map[string]interface{}{"key": key, "value": req.Value}, false)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Re-apply runtime config to in-memory config
		if err := admin.ApplyRuntimeConfigToConfig(db, cfg); err != nil {
			log.Printf("[OPERATOR] Warning: failed to apply runtime config: %v", err)
		}

		admin.LogOperatorAction(db, operatorUsername, c.ClientIP(), "/api/v1/operator/config/"+key, "update_config", map[string]interface{}{"key": key, "value": req.Value}, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
