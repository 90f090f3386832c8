package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pinfield/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// StartSessionReaper starts a background worker that expires idle sessions
// using a Redis sorted set of deadlines. Every client command pushes a
// session's deadline forward; sessions whose deadline passes get closed and a
// session_expired event is published for connected clients.
func StartSessionReaper(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	if rdb == nil || cfg == nil {
		log.Println("[REAPER] Redis or config missing; session reaper not started")
		return
	}

	log.Println("[REAPER] Session reaper started")
	ticker := time.NewTicker(time.Duration(cfg.ReaperPollSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[REAPER] Session reaper stopping")
			return
		case <-ticker.C:
			now := time.Now().Unix()

			members, err := rdb.ZRangeByScore(ctx, "session_expiry", &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now)}).Result()
			if err != nil {
				log.Printf("[REAPER] Failed to fetch expired deadlines: %v", err)
				continue
			}

			for _, token := range members {
				// Remove first so a concurrent TouchSession re-adding the
				// member wins over this sweep.
				removed, _ := rdb.ZRem(ctx, "session_expiry", token).Result()
				if removed == 0 {
					continue
				}

				last, _ := rdb.Get(ctx, "session_active:"+token).Result()
				lastTs, _ := strconv.ParseInt(last, 10, 64)
				ttl := int64(cfg.SessionTTLMinutes) * 60
				if time.Now().Unix()-lastTs < ttl {
					// Touched since the deadline was scheduled; reschedule.
					rdb.ZAdd(ctx, "session_expiry", redis.Z{Score: float64(lastTs + ttl), Member: token})
					continue
				}

				log.Printf("[REAPER] Expiring idle session %s", token)
				if err := Manager.CloseSession(token, "expired"); err != nil {
					log.Printf("[REAPER] Close failed for %s: %v", token, err)
					continue
				}

				payload := map[string]interface{}{
					"type":          "session_expired",
					"session_token": token,
					"message":       "Session expired due to inactivity.",
				}
				b, _ := json.Marshal(payload)
				if n, err := rdb.Publish(ctx, "session_events", b).Result(); err != nil {
					log.Printf("[REAPER] publish session_expired failed: session=%s err=%v", token, err)
				} else {
					log.Printf("[REAPER] published session_expired: session=%s subscribers=%d", token, n)
				}
			}
		}
	}
}
