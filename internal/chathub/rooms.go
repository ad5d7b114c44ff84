package chathub

import "sync"

// RoomTable tracks which rooms each connected identity is subscribed to
// for live events. Subscriptions are ephemeral runtime state, distinct
// from persisted chat membership: authorization is checked once at join
// time by the hub, not on every broadcast.
//
// A reverse index (room to identities) is maintained alongside the
// forward index so MembersOf is O(room size) instead of a scan over all
// connections. Both indexes are updated under one lock; readers never
// observe a half-updated pair.
type RoomTable struct {
	mu     sync.RWMutex
	byUser map[string]map[string]struct{}
	byRoom map[string]map[string]struct{}
}

func NewRoomTable() *RoomTable {
	return &RoomTable{
		byUser: make(map[string]map[string]struct{}),
		byRoom: make(map[string]map[string]struct{}),
	}
}

// Join subscribes identity to roomID. Idempotent.
func (t *RoomTable) Join(identity, roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.byUser[identity] == nil {
		t.byUser[identity] = make(map[string]struct{})
	}
	t.byUser[identity][roomID] = struct{}{}

	if t.byRoom[roomID] == nil {
		t.byRoom[roomID] = make(map[string]struct{})
	}
	t.byRoom[roomID][identity] = struct{}{}
}

// Leave unsubscribes identity from roomID. Idempotent.
func (t *RoomTable) Leave(identity, roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.leaveLocked(identity, roomID)
}

func (t *RoomTable) leaveLocked(identity, roomID string) {
	if rooms, ok := t.byUser[identity]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(t.byUser, identity)
		}
	}
	if members, ok := t.byRoom[roomID]; ok {
		delete(members, identity)
		if len(members) == 0 {
			delete(t.byRoom, roomID)
		}
	}
}

// Clear drops every subscription identity holds and returns the rooms it
// was in, so the caller can announce the departure.
func (t *RoomTable) Clear(identity string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	rooms := make([]string, 0, len(t.byUser[identity]))
	for roomID := range t.byUser[identity] {
		rooms = append(rooms, roomID)
	}
	for _, roomID := range rooms {
		t.leaveLocked(identity, roomID)
	}
	return rooms
}

// MembersOf returns the identities currently subscribed to roomID.
func (t *RoomTable) MembersOf(roomID string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	members := make([]string, 0, len(t.byRoom[roomID]))
	for identity := range t.byRoom[roomID] {
		members = append(members, identity)
	}
	return members
}

// Rooms returns the rooms identity is subscribed to.
func (t *RoomTable) Rooms(identity string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rooms := make([]string, 0, len(t.byUser[identity]))
	for roomID := range t.byUser[identity] {
		rooms = append(rooms, roomID)
	}
	return rooms
}

// In reports whether identity is subscribed to roomID.
func (t *RoomTable) In(identity, roomID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.byRoom[roomID][identity]
	return ok
}
