package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/pinfield/backend/internal/models"
	"github.com/pinfield/backend/internal/sim"
)

// validateLayoutDocument builds a throwaway world from the document so bad
// device parameters and dangling wires are rejected at save time, with the
// sim's invalid-reference errors surfaced verbatim.
func validateLayoutDocument(doc json.RawMessage) error {
	var pf sim.Playfield
	if err := json.Unmarshal(doc, &pf); err != nil {
		return err
	}
	_, err := pf.BuildWorld()
	return err
}

// ListLayouts returns all stored layouts (documents omitted)
func ListLayouts(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		type layoutRow struct {
			ID        int    `db:"id" json:"id"`
			Name      string `db:"name" json:"name"`
			CreatedAt string `db:"created_at" json:"created_at"`
			UpdatedAt string `db:"updated_at" json:"updated_at"`
		}
		var rows []layoutRow
		err := db.Select(&rows, `
			SELECT id, name,
				to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"') as created_at,
				to_char(updated_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"') as updated_at
			FROM layouts
			ORDER BY name
		`)
		if err != nil {
			log.Printf("[LAYOUT] Failed to list layouts: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch layouts"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"layouts": rows})
	}
}

// GetLayout returns one layout with its full document
func GetLayout(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid layout id"})
			return
		}

		var layout models.Layout
		err = db.Get(&layout, `SELECT id, name, document, created_at, updated_at FROM layouts WHERE id=$1`, id)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Layout not found"})
			return
		}
		if err != nil {
			log.Printf("[LAYOUT] Failed to fetch layout %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch layout"})
			return
		}

		c.JSON(http.StatusOK, layout)
	}
}

// CreateLayout stores a new layout document
func CreateLayout(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name     string          `json:"name" binding:"required"`
			Document json.RawMessage `json:"document" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and document required"})
			return
		}

		if err := validateLayoutDocument(req.Document); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var id int
		err := db.QueryRowx(`INSERT INTO layouts (name, document, created_at, updated_at) VALUES ($1, $2::jsonb, NOW(), NOW()) RETURNING id`,
			req.Name, string(req.Document)).Scan(&id)
		if err != nil {
			log.Printf("[LAYOUT] Failed to create layout %q: %v", req.Name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create layout"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"id": id, "name": req.Name})
	}
}

// UpdateLayout replaces a layout document
func UpdateLayout(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid layout id"})
			return
		}

		var req struct {
			Name     string          `json:"name"`
			Document json.RawMessage `json:"document" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "document required"})
			return
		}

		if err := validateLayoutDocument(req.Document); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res, err := db.Exec(`UPDATE layouts SET name=COALESCE(NULLIF($1, ''), name), document=$2::jsonb, updated_at=NOW() WHERE id=$3`,
			req.Name, string(req.Document), id)
		if err != nil {
			log.Printf("[LAYOUT] Failed to update layout %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update layout"})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Layout not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// DeleteLayout removes a layout with no session rows referencing it
func DeleteLayout(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid layout id"})
			return
		}

		var inUse int
		if err := db.Get(&inUse, `SELECT COUNT(*) FROM sim_sessions WHERE layout_id=$1`, id); err == nil && inUse > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Layout has sessions; cannot delete"})
			return
		}

		res, err := db.Exec(`DELETE FROM layouts WHERE id=$1`, id)
		if err != nil {
			log.Printf("[LAYOUT] Failed to delete layout %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete layout"})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Layout not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// SeedDemoLayout inserts the built-in demo table if no layouts exist yet.
func SeedDemoLayout(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM layouts`); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	doc, err := json.Marshal(sim.NewDemoPlayfield())
	if err != nil {
		return err
	}
	_, err = db.Exec(`INSERT INTO layouts (name, document, created_at, updated_at) VALUES ($1, $2::jsonb, NOW(), NOW())`,
		"demo", string(doc))
	if err == nil {
		log.Printf("[LAYOUT] Seeded demo layout")
	}
	return err
}
