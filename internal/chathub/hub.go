package chathub

import (
	"time"

	"chatline/backend/internal/models"
	"chatline/backend/internal/storage"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Inbound is one decoded event together with the connection it arrived on.
type Inbound struct {
	Client Client
	Event  models.ClientEvent
}

// Hub is the connection lifecycle manager. Every mutation of shared
// realtime state (registry installs/removals, room joins/leaves) is
// funneled through its single Run goroutine, so those operations are
// serialized without fine-grained locking in the handlers.
type Hub struct {
	Registry *Registry
	Rooms    *RoomTable
	Router   *Router
	Calls    *CallCoordinator

	Storage storage.Storage

	RegisterCh   chan Client
	UnregisterCh chan Client
	IncomingCh   chan Inbound

	// busCh carries events mirrored from other processes via Redis.
	busCh chan busEnvelope

	// instanceID marks frames this process published, so the bus bridge
	// can skip its own echoes.
	instanceID string
}

// NewHub wires the realtime core around a storage collaborator.
// ringTimeout is the call coordinator's missed-call policy (zero: never
// expire a ringing call).
func NewHub(s storage.Storage, ringTimeout time.Duration) *Hub {
	registry := NewRegistry()
	rooms := NewRoomTable()

	h := &Hub{
		Registry:     registry,
		Rooms:        rooms,
		Storage:      s,
		Calls:        NewCallCoordinator(s, ringTimeout),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		IncomingCh:   make(chan Inbound, 64),
		busCh:        make(chan busEnvelope, 64),
		instanceID:   uuid.New().String(),
	}
	h.Router = NewRouter(registry, rooms, h.evictAsync)
	h.Calls.SetMissedHandler(h.notifyMissedCall)
	return h
}

// Submit hands a decoded inbound event to the dispatch loop.
func (h *Hub) Submit(c Client, ev models.ClientEvent) {
	h.IncomingCh <- Inbound{Client: c, Event: ev}
}

// Run is the hub's main loop. Start it once, as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.RegisterCh:
			h.register(c)
		case c := <-h.UnregisterCh:
			h.unregister(c)
		case in := <-h.IncomingCh:
			h.dispatch(in)
		case env := <-h.busCh:
			h.deliverBusEvent(env)
		}
	}
}

// register installs c as the sole live handle for its identity. A prior
// connection for the same identity observes this as a forced close with
// the superseded code, after its room subscriptions are torn down.
func (h *Hub) register(c Client) {
	identity := c.Identity()

	if prior, ok := h.Registry.Lookup(identity); ok && prior != c {
		h.Rooms.Clear(identity)
		for _, sess := range h.Calls.EndAllFor(identity) {
			h.notifyCallEnded(sess, models.CallStatusEnded, int(time.Since(sess.StartedAt).Seconds()))
		}
		prior.Close(CloseSuperseded, "superseded by a newer connection")
	}
	h.Registry.Install(c)

	if err := h.Storage.SetOnlineStatus(identity, true); err != nil {
		log.Error().Err(err).Str("module", "chathub").Str("identity", identity).
			Msg("failed to record online status")
	}

	// Ack with the resolved identity.
	if err := c.TrySend(models.ServerEvent{Type: models.ServerConnected, Identity: identity}); err != nil {
		log.Warn().Err(err).Str("module", "chathub").Str("identity", identity).
			Msg("could not deliver connected ack")
	}
	log.Info().Str("module", "chathub").Str("identity", identity).Msg("client registered")
}

// unregister runs the unconditional cleanup for a closed connection:
// registry entry removed, room subscriptions cleared, participant calls
// ended. A stale unregister from an already-superseded connection is a
// no-op so it cannot tear down its successor's state.
func (h *Hub) unregister(c Client) {
	identity := c.Identity()

	if !h.Registry.Remove(c) {
		// Stale unregister from a superseded connection; its successor's
		// state must stay intact.
		return
	}

	for _, roomID := range h.Rooms.Clear(identity) {
		h.broadcastRoom(roomID, models.ServerEvent{
			Type:   models.ServerUserLeft,
			RoomID: roomID,
			Sender: identity,
		}, identity)
	}

	for _, sess := range h.Calls.EndAllFor(identity) {
		h.notifyCallEnded(sess, models.CallStatusEnded, int(time.Since(sess.StartedAt).Seconds()))
	}

	if err := h.Storage.SetOnlineStatus(identity, false); err != nil {
		log.Error().Err(err).Str("module", "chathub").Str("identity", identity).
			Msg("failed to record offline status")
	}

	c.Close(websocket.CloseNormalClosure, "")
	log.Info().Str("module", "chathub").Str("identity", identity).Msg("client unregistered")
}

// evictAsync requests an unregister from outside the Run goroutine
// without risking a deadlock on the hub's own channels.
func (h *Hub) evictAsync(c Client) {
	go func() { h.UnregisterCh <- c }()
}

// broadcastRoom fans out locally and mirrors the event onto the shared
// bus for other processes.
func (h *Hub) broadcastRoom(roomID string, ev models.ServerEvent, exclude string) {
	h.Router.BroadcastToRoom(roomID, ev, exclude)
	h.publishToBus(roomID, exclude, ev)
}

// broadcastGlobal is the room-less variant of broadcastRoom.
func (h *Hub) broadcastGlobal(ev models.ServerEvent) {
	h.Router.BroadcastGlobal(ev)
	h.publishToBus("", "", ev)
}

func (h *Hub) notifyMissedCall(sess CallSession, duration int) {
	h.notifyCallEnded(sess, models.CallStatusMissed, duration)
}

func (h *Hub) notifyCallEnded(sess CallSession, status string, duration int) {
	ev := models.ServerEvent{
		Type:            models.ServerCallEnded,
		CallID:          sess.CallID,
		Caller:          sess.Caller,
		Receiver:        sess.Receiver,
		Status:          status,
		DurationSeconds: duration,
	}
	h.Router.SendToUser(sess.Caller, ev)
	h.Router.SendToUser(sess.Receiver, ev)
}
