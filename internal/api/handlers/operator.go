package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"
	"github.com/pinfield/backend/internal/admin"
	"github.com/pinfield/backend/internal/config"
)

// OperatorLogin validates operator credentials and issues a JWT
func OperatorLogin(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Token    string `json:"token" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and token required"})
			return
		}

		account, err := admin.ValidateOperatorCredentials(db, req.Username, req.Token)
		if err != nil {
			admin.LogOperatorAction(db, req.Username, c.ClientIP(), c.FullPath(), "login", nil, false)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		exp := time.Now().Add(time.Duration(cfg.OperatorSessionMinutes) * time.Minute)
		custom := jwt.MapClaims{"operator": account.Username, "exp": exp.Unix()}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, custom)
		signed, err := token.SignedString([]byte(cfg.JWTSecret))
		if err != nil {
			log.Printf("[OPERATOR] Failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		admin.LogOperatorAction(db, account.Username, c.ClientIP(), c.FullPath(), "login", nil, true)

		c.JSON(http.StatusOK, gin.H{
			"token":      signed,
			"expires_at": exp.Format(time.RFC3339),
			"operator": gin.H{
				"username":     account.Username,
				"display_name": account.DisplayName,
			},
		})
	}
}

// OperatorAuthMiddleware validates the bearer JWT and sets operator_username in context
func OperatorAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")

		parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !parsed.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		username, ok := claims["operator"].(string)
		if !ok || username == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("operator_username", username)
		c.Next()
	}
}

// OperatorMe returns the authenticated operator's account
func OperatorMe(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetString("operator_username")
		account, err := admin.GetOperatorAccount(db, username)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Operator not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"username":     account.Username,
			"display_name": account.DisplayName,
			"created_at":   account.CreatedAt,
		})
	}
}
