package chathub

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Registry maps user identities to their single live connection handle.
// It owns connection lifetime: installing a handle for an identity that
// already has one displaces the prior handle, so at most one live handle
// exists per identity at any instant.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

// Install atomically makes c the live handle for its identity and returns
// the displaced prior handle, or nil when there was none. The caller is
// responsible for closing the prior handle and tearing down its room
// subscriptions.
func (r *Registry) Install(c Client) (prior Client) {
	identity := c.Identity()

	r.mu.Lock()
	prior = r.clients[identity]
	r.clients[identity] = c
	r.mu.Unlock()

	if prior != nil {
		log.Info().Str("module", "chathub.registry").Str("identity", identity).
			Msg("connection superseded by a newer one")
	}
	return prior
}

// Remove deletes the entry for c's identity only while c is still the
// installed handle. A stale remove from an already-superseded connection
// is a no-op and returns false.
func (r *Registry) Remove(c Client) bool {
	identity := c.Identity()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clients[identity] != c {
		return false
	}
	delete(r.clients, identity)
	return true
}

// Lookup returns the live handle for identity, if any. Non-blocking.
func (r *Registry) Lookup(identity string) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[identity]
	return c, ok
}

// Online returns the identities that currently have a live handle.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.clients))
	for identity := range r.clients {
		ids = append(ids, identity)
	}
	return ids
}

// All returns every live handle, for global broadcast.
func (r *Registry) All() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	return clients
}
