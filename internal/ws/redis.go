package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/pinfield/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

var rdbClient *redis.Client
var wsConfig *config.Config

func SetRedisClient(r *redis.Client, cfg *config.Config) {
	rdbClient = r
	wsConfig = cfg
}

// StartSessionEventSubscriber subscribes to the session_events channel and
// forwards events into the session rooms. The reaper and the manager publish
// here, so expiry notices reach clients on every server instance.
func StartSessionEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; session event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, "session_events")
	ch := pubsub.Channel()
	go func() {
		log.Println("[WS] session_events subscriber started")
		for msg := range ch {
			var payload map[string]interface{}
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				log.Printf("[WS] invalid session event payload: %v", err)
				continue
			}

			typeStr, _ := payload["type"].(string)
			token, _ := payload["session_token"].(string)
			if token == "" {
				log.Printf("[WS] session event without token: type=%s", typeStr)
				continue
			}

			switch typeStr {
			case "session_expired", "session_closed":
				if size := SimHub.RoomSize(token); size > 0 {
					log.Printf("[WS] broadcasting %s to session %s (room_size=%d)", typeStr, token, size)
				}
				SimHub.BroadcastToSession(token, map[string]interface{}{
					"type":    typeStr,
					"message": payload["message"],
					"reason":  payload["reason"],
				})

			default:
				log.Printf("[WS] unknown session event type: %s", typeStr)
			}
		}
	}()
}
