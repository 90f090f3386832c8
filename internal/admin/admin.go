package admin

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/pinfield/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// GetOperatorAccount retrieves an operator account by username
func GetOperatorAccount(db *sqlx.DB, username string) (*models.OperatorAccount, error) {
	var op models.OperatorAccount
	err := db.Get(&op, `SELECT username, display_name, token_hash, created_at, updated_at FROM operator_accounts WHERE username=$1`, username)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// VerifyOperatorToken checks if the provided token matches the stored hash
func VerifyOperatorToken(hashedToken, plainToken string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(plainToken))
	return err == nil
}

// CreateOperatorAccount creates or updates an operator account (used for seeding)
func CreateOperatorAccount(db *sqlx.DB, username, displayName, plainToken string) error {
	hashedToken, err := bcrypt.GenerateFromPassword([]byte(plainToken), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash token: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO operator_accounts (username, display_name, token_hash, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (username) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			token_hash = EXCLUDED.token_hash,
			updated_at = NOW()
	`, username, displayName, string(hashedToken))

	return err
}

// ValidateOperatorCredentials validates username + token combination
func ValidateOperatorCredentials(db *sqlx.DB, username, token string) (*models.OperatorAccount, error) {
	op, err := GetOperatorAccount(db, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("operator account not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !VerifyOperatorToken(op.TokenHash, token) {
		log.Printf("[OPERATOR] Token verification failed for %s", username)
		return nil, fmt.Errorf("invalid token")
	}

	return op, nil
}

// LogOperatorAction records an operator action in the audit log
func LogOperatorAction(db *sqlx.DB, username, ip, route, action string, details map[string]interface{}, success bool) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		log.Printf("Failed to marshal operator audit details: %v", err)
		detailsJSON = []byte("{}")
	}

	_, err = db.Exec(`
		INSERT INTO operator_audit (username, ip, route, action, details, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, username, ip, route, action, detailsJSON, success)

	if err != nil {
		log.Printf("Failed to log operator action: %v", err)
	}

	return err
}

// GetOperatorAuditLogs retrieves recent operator audit logs with pagination
func GetOperatorAuditLogs(db *sqlx.DB, limit, offset int) ([]models.OperatorAudit, error) {
	var logs []models.OperatorAudit
	query := `
		SELECT id, username, ip, route, action, details, success, created_at
		FROM operator_audit
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	err := db.Select(&logs, query, limit, offset)
	return logs, err
}

// GetOperatorAuditLogsByUsername retrieves audit logs for a specific operator
func GetOperatorAuditLogsByUsername(db *sqlx.DB, username string, limit, offset int) ([]models.OperatorAudit, error) {
	var logs []models.OperatorAudit
	query := `
		SELECT id, username, ip, route, action, details, success, created_at
		FROM operator_audit
		WHERE username = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	err := db.Select(&logs, query, username, limit, offset)
	return logs, err
}
