package game

import (
	"context"
	"sync"
	"time"

	"github.com/pinfield/backend/internal/sim"
)

type SessionStatus string

const (
	StatusRunning SessionStatus = "running"
	StatusClosed  SessionStatus = "closed"
)

// stateFrameEvery throttles state frames to a third of the tick rate; device
// event frames still go out on the tick they fired.
const stateFrameEvery = 3

// Broadcaster pushes frames to the clients of one session. Implemented by
// the ws hub; wired in at startup to keep the dependency one-directional.
type Broadcaster interface {
	BroadcastToSession(token string, payload interface{})
}

// SimSession is one live playfield simulation: a world, its tick loop, and
// the event log draining into Postgres. All world access goes through the
// session mutex; the sim itself stays single-threaded.
type SimSession struct {
	ID        int
	Token     string
	LayoutID  int
	Seed      int64
	CreatedAt time.Time

	playfield *sim.Playfield
	world     *sim.World
	manager   *SessionManager
	cancel    context.CancelFunc

	mu           sync.Mutex
	status       SessionStatus
	lastActivity time.Time

	// device events fired since the last flush, with the tick they fired on
	pending []pendingEvent
}

type pendingEvent struct {
	ev   sim.Event
	tick int64
}

func newSimSession(id int, token string, layoutID int, pf *sim.Playfield, m *SessionManager) (*SimSession, error) {
	world, err := pf.BuildWorld()
	if err != nil {
		return nil, err
	}

	s := &SimSession{
		ID:           id,
		Token:        token,
		LayoutID:     layoutID,
		Seed:         pf.Settings.Seed,
		CreatedAt:    time.Now(),
		playfield:    pf,
		world:        world,
		manager:      m,
		status:       StatusRunning,
		lastActivity: time.Now(),
	}

	// Capture every device event for the log and the event frames. The
	// handlers run under the session mutex since all world mutation does.
	for _, d := range world.Devices() {
		d.Events().SubscribeAll(func(ev sim.Event) {
			s.pending = append(s.pending, pendingEvent{ev: ev, tick: s.world.Tick()})
		})
	}

	return s, nil
}

func (s *SimSession) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *SimSession) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Run drives the session's tick loop until the context is cancelled.
func (s *SimSession) Run(ctx context.Context) {
	tickRate := s.manager.cfg.TickRate
	if tickRate <= 0 {
		tickRate = 60
	}
	dt := 1.0 / float64(tickRate)

	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.step(dt)
		}
	}
}

func (s *SimSession) step(dt float64) {
	s.mu.Lock()
	if s.status != StatusRunning {
		s.mu.Unlock()
		return
	}
	s.world.Step(dt)
	events := s.drainEventsLocked()
	var state map[string]interface{}
	if s.world.Tick()%stateFrameEvery == 0 {
		state = s.stateFrameLocked()
	}
	s.mu.Unlock()

	s.publish(events, state)
}

// Do runs a client command against the world under the session mutex, then
// flushes any device events the command fired.
func (s *SimSession) Do(fn func(w *sim.World) error) error {
	s.mu.Lock()
	if s.status != StatusRunning {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.lastActivity = time.Now()
	err := fn(s.world)
	events := s.drainEventsLocked()
	s.mu.Unlock()

	s.publish(events, nil)
	return err
}

// StateFrame returns the current state snapshot for one client.
func (s *SimSession) StateFrame() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateFrameLocked()
}

func (s *SimSession) drainEventsLocked() []pendingEvent {
	if len(s.pending) == 0 {
		return nil
	}
	events := s.pending
	s.pending = nil
	return events
}

func (s *SimSession) stateFrameLocked() map[string]interface{} {
	balls := make([]map[string]interface{}, 0, len(s.world.Balls()))
	for _, b := range s.world.Balls() {
		balls = append(balls, map[string]interface{}{
			"id":       b.ID,
			"position": b.Position,
			"velocity": b.Velocity,
			"frozen":   b.Frozen,
			"radius":   b.Radius,
		})
	}

	devices := make(map[string]interface{})
	for _, d := range s.world.Devices() {
		entry := map[string]interface{}{"kind": string(d.Kind())}
		switch dev := d.(type) {
		case *sim.Kicker:
			entry["has_ball"] = dev.HasBall()
		case *sim.Plunger:
			entry["position"] = dev.Position()
			entry["state"] = dev.State()
			entry["stroke_ratio"] = dev.StrokeRatio()
		}
		devices[d.Name()] = entry
	}

	switches := make(map[string]bool)
	for _, name := range s.world.Network().SwitchNames() {
		if sw, err := s.world.Network().SwitchByName(name); err == nil {
			switches[name] = sw.Value
		}
	}

	return map[string]interface{}{
		"type":     "state",
		"tick":     s.world.Tick(),
		"balls":    balls,
		"devices":  devices,
		"switches": switches,
	}
}

// publish pushes event and state frames to connected clients and hands the
// events to the manager for persistence. Called outside the session mutex.
func (s *SimSession) publish(events []pendingEvent, state map[string]interface{}) {
	if len(events) > 0 {
		if s.manager.broadcaster != nil {
			for _, pe := range events {
				s.manager.broadcaster.BroadcastToSession(s.Token, map[string]interface{}{
					"type":    "event",
					"tick":    pe.tick,
					"device":  pe.ev.Device,
					"kind":    pe.ev.Kind.String(),
					"value":   pe.ev.Value,
					"speed":   pe.ev.Speed,
					"ball_id": pe.ev.BallID,
				})
			}
		}
		s.manager.recordEvents(s.ID, events)
	}
	if state != nil && s.manager.broadcaster != nil {
		s.manager.broadcaster.BroadcastToSession(s.Token, state)
	}
}

// close marks the session closed. The manager owns removal and persistence.
func (s *SimSession) close() {
	s.mu.Lock()
	s.status = StatusClosed
	s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}
