package chathub

import (
	"chatline/backend/internal/models"

	"github.com/rs/zerolog/log"
)

// Router delivers outbound events to live handles. Delivery is
// best-effort and at-most-once: offline targets are silently skipped and
// nothing is queued for them. Per-connection ordering is FIFO via the
// client's send buffer; there is no ordering guarantee across senders.
//
// The interface is deliberately narrow (room, user, global) so a
// multi-process deployment can put a broker behind it without touching
// callers.
type Router struct {
	registry *Registry
	rooms    *RoomTable

	// evict is invoked off the broadcasting goroutine when a client's
	// buffer is full, so one stalled consumer never delays the rest.
	evict func(Client)
}

func NewRouter(registry *Registry, rooms *RoomTable, evict func(Client)) *Router {
	return &Router{registry: registry, rooms: rooms, evict: evict}
}

// SendToUser delivers ev to identity's live handle, if any.
func (r *Router) SendToUser(identity string, ev models.ServerEvent) {
	if c, ok := r.registry.Lookup(identity); ok {
		r.deliver(c, ev)
	}
}

// BroadcastToRoom delivers ev to every subscribed member of roomID,
// except the identity named by exclude (empty means no exclusion).
func (r *Router) BroadcastToRoom(roomID string, ev models.ServerEvent, exclude string) {
	for _, identity := range r.rooms.MembersOf(roomID) {
		if identity == exclude {
			continue
		}
		if c, ok := r.registry.Lookup(identity); ok {
			r.deliver(c, ev)
		}
	}
}

// BroadcastGlobal delivers ev to every connected user.
func (r *Router) BroadcastGlobal(ev models.ServerEvent) {
	for _, c := range r.registry.All() {
		r.deliver(c, ev)
	}
}

func (r *Router) deliver(c Client, ev models.ServerEvent) {
	if err := c.TrySend(ev); err == ErrBackpressure {
		log.Warn().Str("module", "chathub.router").Str("identity", c.Identity()).
			Msg("send buffer full, evicting slow client")
		if r.evict != nil {
			r.evict(c)
		}
	}
}
