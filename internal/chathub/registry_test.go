package chathub_test

import (
	"sync"
	"testing"

	"chatline/backend/internal/chathub"

	"github.com/stretchr/testify/assert"
)

func TestRegistryInstallAndLookup(t *testing.T) {
	reg := chathub.NewRegistry()
	a := newMockClient("user_A")

	prior := reg.Install(a)
	assert.Nil(t, prior)

	got, ok := reg.Lookup("user_A")
	assert.True(t, ok)
	assert.Same(t, a, got.(*mockClient))

	_, ok = reg.Lookup("user_B")
	assert.False(t, ok)
}

func TestRegistryInstallDisplacesPrior(t *testing.T) {
	reg := chathub.NewRegistry()
	first := newMockClient("user_A")
	second := newMockClient("user_A")

	assert.Nil(t, reg.Install(first))
	prior := reg.Install(second)
	assert.Same(t, first, prior.(*mockClient))

	got, _ := reg.Lookup("user_A")
	assert.Same(t, second, got.(*mockClient))
	assert.Len(t, reg.Online(), 1)
}

func TestRegistryStaleRemoveIsNoOp(t *testing.T) {
	reg := chathub.NewRegistry()
	first := newMockClient("user_A")
	second := newMockClient("user_A")

	reg.Install(first)
	reg.Install(second)

	// The superseded connection's cleanup must not tear down its successor.
	assert.False(t, reg.Remove(first))
	got, ok := reg.Lookup("user_A")
	assert.True(t, ok)
	assert.Same(t, second, got.(*mockClient))

	assert.True(t, reg.Remove(second))
	_, ok = reg.Lookup("user_A")
	assert.False(t, ok)
}

// TestRegistryConcurrentInstallSingleWinner is the supersession property:
// concurrent installs for one identity leave exactly one live handle, and
// every other handle is returned as a displaced prior exactly once.
func TestRegistryConcurrentInstallSingleWinner(t *testing.T) {
	reg := chathub.NewRegistry()

	const n = 64
	clients := make([]*mockClient, n)
	for i := range clients {
		clients[i] = newMockClient("user_A")
	}

	var mu sync.Mutex
	displaced := make(map[chathub.Client]int)

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *mockClient) {
			defer wg.Done()
			if prior := reg.Install(c); prior != nil {
				mu.Lock()
				displaced[prior]++
				mu.Unlock()
			}
		}(c)
	}
	wg.Wait()

	assert.Len(t, reg.Online(), 1)
	winner, ok := reg.Lookup("user_A")
	assert.True(t, ok)

	assert.Len(t, displaced, n-1, "every loser displaced exactly once")
	for prior, count := range displaced {
		assert.Equal(t, 1, count)
		assert.NotSame(t, winner, prior)
	}
}
