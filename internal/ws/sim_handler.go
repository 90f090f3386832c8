package ws

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pinfield/backend/internal/game"
	"github.com/pinfield/backend/internal/sim"
)

// Command payloads
type KickData struct {
	Device      string  `json:"device"`
	Angle       float64 `json:"angle"`
	Speed       float64 `json:"speed"`
	Inclination float64 `json:"inclination"`
}

type DeviceData struct {
	Device string `json:"device"`
}

type CoilSetData struct {
	Device  string `json:"device"`
	Coil    string `json:"coil"`
	Enabled bool   `json:"enabled"`
}

type AnalogData struct {
	Device string  `json:"device"`
	Value  float64 `json:"value"`
}

type SwitchData struct {
	Name  string `json:"name"`
	Value bool   `json:"value"`
}

// SimHub is the single hub for all sessions.
var SimHub *Hub

func init() {
	SimHub = NewHub()
	go runSimHub(SimHub)
}

func newClientID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades a session spectator/controller connection.
func HandleWebSocket(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}

	if _, err := game.Manager.GetSession(token); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:         conn,
		clientID:     newClientID(),
		sessionToken: token,
		send:         make(chan []byte, 256),
	}

	SimHub.register <- client

	go client.writePump()
	go client.readPump()
}

// runSimHub owns room membership for the session hub.
func runSimHub(h *Hub) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.clientID] = client
			if _, exists := h.rooms[client.sessionToken]; !exists {
				h.rooms[client.sessionToken] = make(map[string]*Client)
			}
			h.rooms[client.sessionToken][client.clientID] = client
			h.mu.Unlock()

			log.Printf("[WS] Client %s connected to session %s", client.clientID, client.sessionToken)

			// Send the current state immediately so the client does not
			// wait for the next state frame.
			if s, err := game.Manager.GetSession(client.sessionToken); err == nil {
				h.SendToClient(client.clientID, s.StateFrame())
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.clientID]; ok && cur == client {
				delete(h.clients, client.clientID)
				if room, exists := h.rooms[client.sessionToken]; exists {
					delete(room, client.clientID)
					if len(room) == 0 {
						delete(h.rooms, client.sessionToken)
					}
				}
				log.Printf("[WS] Client %s disconnected from session %s", client.clientID, client.sessionToken)

				select {
				case <-client.send:
				default:
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// readPump reads client commands for one session connection.
func (c *Client) readPump() {
	defer func() {
		SimHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error (unexpected) for client %s: %v", c.clientID, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage dispatches one client command against the session's world.
func (c *Client) handleMessage(msg WSMessage) {
	s, err := game.Manager.GetSession(c.sessionToken)
	if err != nil {
		c.sendError("Session not found")
		return
	}

	// Any command counts as activity for the reaper.
	game.Manager.TouchSession(c.sessionToken)

	switch msg.Type {
	case "kick":
		var data KickData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid kick data")
			return
		}
		c.runCommand(s, func(w *sim.World) error {
			k, err := lookupKicker(w, data.Device)
			if err != nil {
				return err
			}
			if data.Speed == 0 {
				// No explicit parameters: fire the device's own kick coil.
				p := k.Params()
				k.Kick(p.KickAngle, p.KickSpeed, p.KickInclination)
				return nil
			}
			k.Kick(data.Angle, data.Speed, data.Inclination)
			return nil
		})

	case "plunger_pull":
		var data DeviceData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid plunger data")
			return
		}
		c.runCommand(s, func(w *sim.World) error {
			p, err := lookupPlunger(w, data.Device)
			if err != nil {
				return err
			}
			p.PullBack()
			return nil
		})

	case "plunger_fire":
		var data DeviceData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid plunger data")
			return
		}
		c.runCommand(s, func(w *sim.World) error {
			p, err := lookupPlunger(w, data.Device)
			if err != nil {
				return err
			}
			p.Fire()
			return nil
		})

	case "plunger_analog":
		var data AnalogData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid analog data")
			return
		}
		c.runCommand(s, func(w *sim.World) error {
			p, err := lookupPlunger(w, data.Device)
			if err != nil {
				return err
			}
			p.SetAnalog(data.Value)
			return nil
		})

	case "coil_set":
		var data CoilSetData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid coil data")
			return
		}
		c.runCommand(s, func(w *sim.World) error {
			d, err := w.Device(data.Device)
			if err != nil {
				return err
			}
			cb, ok := d.(sim.CoilBearer)
			if !ok {
				return &sim.InvalidReferenceError{Kind: "coil", Name: data.Coil}
			}
			coil, err := cb.CoilByName(data.Coil)
			if err != nil {
				return err
			}
			coil.Set(data.Enabled)
			return nil
		})

	case "set_switch":
		var data SwitchData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid switch data")
			return
		}
		c.runCommand(s, func(w *sim.World) error {
			return w.Network().SetSwitch(data.Name, data.Value)
		})

	case "create_ball":
		var data DeviceData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid device data")
			return
		}
		c.runCommand(s, func(w *sim.World) error {
			k, err := lookupKicker(w, data.Device)
			if err != nil {
				return err
			}
			k.CreateBall()
			return nil
		})

	case "destroy_ball":
		var data DeviceData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid device data")
			return
		}
		c.runCommand(s, func(w *sim.World) error {
			k, err := lookupKicker(w, data.Device)
			if err != nil {
				return err
			}
			k.DestroyBall()
			return nil
		})

	case "get_state":
		d, _ := json.Marshal(s.StateFrame())
		select {
		case c.send <- d:
		default:
		}

	default:
		c.sendError("Unknown message type")
	}
}

// runCommand executes a world mutation and surfaces sim errors verbatim,
// including the invalid-reference errors with their valid name sets.
func (c *Client) runCommand(s *game.SimSession, fn func(w *sim.World) error) {
	if err := s.Do(fn); err != nil {
		c.sendError(err.Error())
	}
}

func lookupKicker(w *sim.World, name string) (*sim.Kicker, error) {
	d, err := w.Device(name)
	if err != nil {
		return nil, err
	}
	k, ok := d.(*sim.Kicker)
	if !ok {
		return nil, &sim.InvalidReferenceError{Kind: "kicker", Name: name, Valid: kickerNames(w)}
	}
	return k, nil
}

func lookupPlunger(w *sim.World, name string) (*sim.Plunger, error) {
	d, err := w.Device(name)
	if err != nil {
		return nil, err
	}
	p, ok := d.(*sim.Plunger)
	if !ok {
		return nil, &sim.InvalidReferenceError{Kind: "plunger", Name: name, Valid: plungerNames(w)}
	}
	return p, nil
}

func kickerNames(w *sim.World) []string {
	var names []string
	for _, d := range w.Devices() {
		if d.Kind() == sim.KindKicker {
			names = append(names, d.Name())
		}
	}
	return names
}

func plungerNames(w *sim.World) []string {
	var names []string
	for _, d := range w.Devices() {
		if d.Kind() == sim.KindPlunger {
			names = append(names, d.Name())
		}
	}
	return names
}
