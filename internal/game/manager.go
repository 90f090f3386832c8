package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pinfield/backend/internal/config"
	"github.com/pinfield/backend/internal/models"
	"github.com/pinfield/backend/internal/sim"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
)

// SessionManager owns all live simulation sessions.
type SessionManager struct {
	sessions map[string]*SimSession // keyed by session token
	rdb      *redis.Client
	db       *sqlx.DB
	cfg      *config.Config

	broadcaster Broadcaster
	mu          sync.RWMutex
}

// Manager is the global session manager instance
var Manager *SessionManager

// InitializeManager initializes the global session manager and starts the reaper
func InitializeManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	Manager = NewSessionManager(db, rdb, cfg)
	go StartSessionReaper(context.Background(), db, rdb, cfg)
}

// NewSessionManager creates a new session manager
func NewSessionManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*SimSession),
		rdb:      rdb,
		db:       db,
		cfg:      cfg,
	}
}

// SetBroadcaster wires the ws hub in after both packages are initialized.
func (sm *SessionManager) SetBroadcaster(b Broadcaster) {
	sm.broadcaster = b
}

func (sm *SessionManager) GetConfig() *config.Config { return sm.cfg }

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// CreateSession builds a world from the layout document and starts its tick
// loop. Runtime config overrides (difficulty, global scatter) apply on top of
// the authored settings; an explicit seed pins the scatter sequence.
func (sm *SessionManager) CreateSession(layout *models.Layout, seed int64) (*SimSession, error) {
	var pf sim.Playfield
	if err := json.Unmarshal(layout.Document, &pf); err != nil {
		return nil, fmt.Errorf("invalid layout document: %w", err)
	}

	pf.Settings.Difficulty = sm.cfg.Difficulty
	pf.Settings.GlobalScatter = sm.cfg.GlobalScatter
	if seed != 0 {
		pf.Settings.Seed = seed
	}

	token := generateToken(16)

	var sessionID int
	if sm.db != nil {
		err := sm.db.QueryRowx(`INSERT INTO sim_sessions (token, layout_id, seed, status, created_at, started_at) VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING id`,
			token, layout.ID, pf.Settings.Seed, string(StatusRunning)).Scan(&sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to create session row: %w", err)
		}
	}

	s, err := newSimSession(sessionID, token, layout.ID, &pf, sm)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	sm.mu.Lock()
	sm.sessions[token] = s
	sm.mu.Unlock()

	go s.Run(ctx)

	log.Printf("[SESSION] Created session %s (id=%d layout=%d seed=%d)", token, sessionID, layout.ID, pf.Settings.Seed)

	sm.TouchSession(token)
	sm.saveSnapshotToRedis(s)

	return s, nil
}

// GetSession retrieves a live session by token.
func (sm *SessionManager) GetSession(token string) (*SimSession, error) {
	sm.mu.RLock()
	s, exists := sm.sessions[token]
	sm.mu.RUnlock()
	if !exists {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// ActiveSessionCount returns the number of live sessions
func (sm *SessionManager) ActiveSessionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// ActiveTokens returns the tokens of all live sessions
func (sm *SessionManager) ActiveTokens() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	tokens := make([]string, 0, len(sm.sessions))
	for token := range sm.sessions {
		tokens = append(tokens, token)
	}
	return tokens
}

// CloseSession stops a session's tick loop, persists the terminal status, and
// publishes a session_closed event for connected clients.
func (sm *SessionManager) CloseSession(token, reason string) error {
	sm.mu.Lock()
	s, exists := sm.sessions[token]
	if exists {
		delete(sm.sessions, token)
	}
	sm.mu.Unlock()

	if !exists {
		return ErrSessionNotFound
	}

	s.close()
	log.Printf("[SESSION] Closed session %s (%s)", token, reason)

	if sm.db != nil && s.ID > 0 {
		if _, err := sm.db.Exec(`UPDATE sim_sessions SET status=$1, completed_at=NOW() WHERE id=$2`, string(StatusClosed), s.ID); err != nil {
			log.Printf("[DB] Failed to mark session %d closed: %v", s.ID, err)
		}
	}

	if sm.rdb != nil {
		ctx := context.Background()
		sm.rdb.ZRem(ctx, "session_expiry", token)
		sm.rdb.Del(ctx, "session_active:"+token)

		payload := map[string]interface{}{"type": "session_closed", "session_token": token, "reason": reason}
		if b, err := json.Marshal(payload); err == nil {
			if err := sm.rdb.Publish(ctx, "session_events", b).Err(); err != nil {
				log.Printf("[SESSION] publish session_closed failed: %v", err)
			}
		}
	}

	return nil
}

// TouchSession resets the reaper deadline for a session. Called on every
// client command so active sessions never expire.
func (sm *SessionManager) TouchSession(token string) {
	if sm.rdb == nil {
		return
	}
	ctx := context.Background()
	now := time.Now().Unix()
	ttl := int64(sm.cfg.SessionTTLMinutes) * 60
	sm.rdb.Set(ctx, "session_active:"+token, fmt.Sprintf("%d", now), 0)
	sm.rdb.ZAdd(ctx, "session_expiry", redis.Z{Score: float64(now + ttl), Member: token})
}

// saveSnapshotToRedis persists the session's current state frame with a TTL,
// for observability and the session-list endpoint.
func (sm *SessionManager) saveSnapshotToRedis(s *SimSession) {
	if sm.rdb == nil {
		return
	}

	snapshot := map[string]interface{}{
		"token":      s.Token,
		"layout_id":  s.LayoutID,
		"seed":       s.Seed,
		"status":     string(s.Status()),
		"created_at": s.CreatedAt,
		"state":      s.StateFrame(),
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("[SESSION] Failed to marshal snapshot for %s: %v", s.Token, err)
		return
	}

	ctx := context.Background()
	key := "session:" + s.Token + ":snapshot"
	ttl := time.Duration(sm.cfg.SnapshotTTLMinutes) * time.Minute
	if err := sm.rdb.SetEx(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("[SESSION] Failed to save snapshot for %s: %v", s.Token, err)
	}
}

// recordEvents persists a batch of device events. Best-effort and async; the
// tick loop never blocks on the database.
func (sm *SessionManager) recordEvents(sessionID int, events []pendingEvent) {
	if sm.db == nil || sessionID == 0 || len(events) == 0 {
		return
	}

	batch := make([]pendingEvent, len(events))
	copy(batch, events)

	go func() {
		tx, err := sm.db.Beginx()
		if err != nil {
			log.Printf("[DB] Failed to begin event batch for session %d: %v", sessionID, err)
			return
		}
		for _, pe := range batch {
			if _, err := tx.Exec(`INSERT INTO sim_events (session_id, tick, device, kind, value, speed, ball_id, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())`,
				sessionID, pe.tick, pe.ev.Device, pe.ev.Kind.String(), pe.ev.Value, pe.ev.Speed, pe.ev.BallID); err != nil {
				log.Printf("[DB] Failed to record event for session %d: %v", sessionID, err)
				tx.Rollback()
				return
			}
		}
		if err := tx.Commit(); err != nil {
			log.Printf("[DB] Failed to commit event batch for session %d: %v", sessionID, err)
		}
	}()
}

// GetSessionRecord loads the persistent row for a session token.
func (sm *SessionManager) GetSessionRecord(token string) (*models.SimSessionRecord, error) {
	if sm.db == nil {
		return nil, ErrSessionNotFound
	}
	var rec models.SimSessionRecord
	err := sm.db.Get(&rec, `SELECT id, token, layout_id, seed, status, created_at, started_at, completed_at FROM sim_sessions WHERE token=$1`, token)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return &rec, nil
}
