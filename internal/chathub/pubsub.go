package chathub

import (
	"encoding/json"

	"chatline/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// busEnvelope wraps an outbound event for the shared Redis channel.
// Origin identifies the publishing process so each instance can skip its
// own echoes; an empty RoomID means a global broadcast.
type busEnvelope struct {
	Origin  string             `json:"origin"`
	RoomID  string             `json:"room_id,omitempty"`
	Exclude string             `json:"exclude,omitempty"`
	Event   models.ServerEvent `json:"event"`
}

// publishToBus mirrors a broadcast onto the shared channel. Failures are
// logged and swallowed: the local fan-out already happened and a broker
// hiccup must not fail the sender.
func (h *Hub) publishToBus(roomID, exclude string, ev models.ServerEvent) {
	payload, err := json.Marshal(busEnvelope{
		Origin:  h.instanceID,
		RoomID:  roomID,
		Exclude: exclude,
		Event:   ev,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "chathub.bus").Msg("failed to encode bus event")
		return
	}
	if err := h.Storage.PublishEvent(payload); err != nil {
		log.Warn().Err(err).Str("module", "chathub.bus").Msg("failed to publish bus event")
	}
}

// StartBusBridge consumes events published by other processes and feeds
// them into the hub loop for local delivery. Started from main; tests
// and single-process deployments can run without it.
func (h *Hub) StartBusBridge(pubsub *redis.PubSub) {
	go func() {
		defer pubsub.Close()
		for msg := range pubsub.Channel() {
			var env busEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Warn().Err(err).Str("module", "chathub.bus").Msg("dropping malformed bus event")
				continue
			}
			if env.Origin == h.instanceID {
				continue
			}
			h.busCh <- env
		}
	}()
}

// deliverBusEvent delivers a remote event to local subscribers only; the
// originating process already persisted and published it.
func (h *Hub) deliverBusEvent(env busEnvelope) {
	if env.RoomID == "" {
		h.Router.BroadcastGlobal(env.Event)
		return
	}
	h.Router.BroadcastToRoom(env.RoomID, env.Event, env.Exclude)
}
