package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Layout is an authored playfield document stored as JSON
type Layout struct {
	ID        int             `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Document  json.RawMessage `db:"document" json:"document"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// SimSessionRecord is the persistent row backing a live simulation session
type SimSessionRecord struct {
	ID          int          `db:"id" json:"id"`
	Token       string       `db:"token" json:"token"`
	LayoutID    int          `db:"layout_id" json:"layout_id"`
	Seed        int64        `db:"seed" json:"seed"`
	Status      string       `db:"status" json:"status"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	StartedAt   sql.NullTime `db:"started_at" json:"started_at,omitempty"`
	CompletedAt sql.NullTime `db:"completed_at" json:"completed_at,omitempty"`
}

// SimEventRecord is one device event captured from a session's event bus
type SimEventRecord struct {
	ID        int       `db:"id" json:"id"`
	SessionID int       `db:"session_id" json:"session_id"`
	Tick      int64     `db:"tick" json:"tick"`
	Device    string    `db:"device" json:"device"`
	Kind      string    `db:"kind" json:"kind"`
	Value     bool      `db:"value" json:"value"`
	Speed     float64   `db:"speed" json:"speed"`
	BallID    int       `db:"ball_id" json:"ball_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RuntimeConfig represents a runtime-tunable config entry
type RuntimeConfig struct {
	Key         string         `db:"key" json:"key"`
	Value       string         `db:"value" json:"value"`
	ValueType   string         `db:"value_type" json:"value_type"`
	Description sql.NullString `db:"description" json:"description,omitempty"`
	UpdatedBy   sql.NullString `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// OperatorAccount represents an operator login
type OperatorAccount struct {
	Username    string    `db:"username" json:"username"`
	DisplayName string    `db:"display_name" json:"display_name"`
	TokenHash   string    `db:"token_hash" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// OperatorAudit is one entry in the operator action log
type OperatorAudit struct {
	ID        int             `db:"id" json:"id"`
	Username  string          `db:"username" json:"username"`
	IP        string          `db:"ip" json:"ip"`
	Route     string          `db:"route" json:"route"`
	Action    string          `db:"action" json:"action"`
	Details   json.RawMessage `db:"details" json:"details,omitempty"`
	Success   bool            `db:"success" json:"success"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
