package chathub_test

import (
	"testing"

	"chatline/backend/internal/chathub"

	"github.com/stretchr/testify/assert"
)

func TestRoomTableJoinLeaveRoundTrip(t *testing.T) {
	rooms := chathub.NewRoomTable()

	rooms.Join("user_A", "room_7")
	assert.Contains(t, rooms.MembersOf("room_7"), "user_A")
	assert.True(t, rooms.In("user_A", "room_7"))

	rooms.Leave("user_A", "room_7")
	assert.NotContains(t, rooms.MembersOf("room_7"), "user_A")
	assert.False(t, rooms.In("user_A", "room_7"))
}

func TestRoomTableIdempotence(t *testing.T) {
	rooms := chathub.NewRoomTable()

	rooms.Join("user_A", "room_7")
	rooms.Join("user_A", "room_7")
	assert.Len(t, rooms.MembersOf("room_7"), 1)

	rooms.Leave("user_A", "room_7")
	rooms.Leave("user_A", "room_7")
	assert.Empty(t, rooms.MembersOf("room_7"))

	// Leaving a room never joined is also harmless.
	rooms.Leave("user_B", "room_unknown")
}

func TestRoomTableReverseIndexConsistency(t *testing.T) {
	rooms := chathub.NewRoomTable()

	rooms.Join("user_A", "room_1")
	rooms.Join("user_A", "room_2")
	rooms.Join("user_B", "room_1")

	assert.ElementsMatch(t, []string{"room_1", "room_2"}, rooms.Rooms("user_A"))
	assert.ElementsMatch(t, []string{"user_A", "user_B"}, rooms.MembersOf("room_1"))
}

func TestRoomTableClear(t *testing.T) {
	rooms := chathub.NewRoomTable()

	rooms.Join("user_A", "room_1")
	rooms.Join("user_A", "room_2")
	rooms.Join("user_B", "room_1")

	cleared := rooms.Clear("user_A")
	assert.ElementsMatch(t, []string{"room_1", "room_2"}, cleared)

	assert.Empty(t, rooms.Rooms("user_A"))
	assert.ElementsMatch(t, []string{"user_B"}, rooms.MembersOf("room_1"))
	assert.Empty(t, rooms.MembersOf("room_2"))

	// Clearing again returns nothing.
	assert.Empty(t, rooms.Clear("user_A"))
}
