package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/pinfield/backend/internal/game"
	"github.com/pinfield/backend/internal/models"
)

// CreateSession starts a live simulation for a stored layout
func CreateSession(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			LayoutID int   `json:"layout_id" binding:"required"`
			Seed     int64 `json:"seed"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "layout_id required"})
			return
		}

		var layout models.Layout
		err := db.Get(&layout, `SELECT id, name, document, created_at, updated_at FROM layouts WHERE id=$1`, req.LayoutID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Layout not found"})
			return
		}
		if err != nil {
			log.Printf("[SESSION] Failed to fetch layout %d: %v", req.LayoutID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch layout"})
			return
		}

		session, err := game.Manager.CreateSession(&layout, req.Seed)
		if err != nil {
			log.Printf("[SESSION] Failed to create session for layout %d: %v", req.LayoutID, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"session_token": session.Token,
			"session_id":    session.ID,
			"layout_id":     layout.ID,
			"seed":          session.Seed,
			"ws_path":       "/api/v1/sessions/" + session.Token + "/ws",
		})
	}
}

// GetSession returns a session record, plus the live state when running
func GetSession(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		resp := gin.H{}
		if s, err := game.Manager.GetSession(token); err == nil {
			resp["status"] = string(s.Status())
			resp["state"] = s.StateFrame()
		}

		record, err := game.Manager.GetSessionRecord(token)
		if err != nil && len(resp) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		if err == nil {
			resp["session"] = record
		}

		c.JSON(http.StatusOK, resp)
	}
}

// ListSessions returns active in-memory sessions
func ListSessions() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokens := game.Manager.ActiveTokens()
		sessions := make([]gin.H, 0, len(tokens))
		for _, token := range tokens {
			s, err := game.Manager.GetSession(token)
			if err != nil {
				continue
			}
			sessions = append(sessions, gin.H{
				"session_token": s.Token,
				"session_id":    s.ID,
				"layout_id":     s.LayoutID,
				"status":        string(s.Status()),
				"created_at":    s.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
	}
}

// CloseSession ends a running session
func CloseSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if err := game.Manager.CloseSession(token, "closed_by_client"); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// GetSessionEvents returns recorded events for a session, newest first
func GetSessionEvents(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		limit := 100
		if l := c.Query("limit"); l != "" {
			if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}

		var events []models.SimEventRecord
		err := db.Select(&events, `
			SELECT e.id, e.session_id, e.tick, e.device, e.kind, e.value, e.speed, e.ball_id, e.created_at
			FROM sim_events e
			JOIN sim_sessions s ON s.id = e.session_id
			WHERE s.token=$1
			ORDER BY e.tick DESC, e.id DESC
			LIMIT $2
		`, token, limit)
		if err != nil {
			log.Printf("[SESSION] Failed to fetch events for %s: %v", token, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
	}
}
