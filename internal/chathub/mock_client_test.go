package chathub_test

import (
	"errors"
	"sync"

	"chatline/backend/internal/chathub"
	"chatline/backend/internal/models"
)

// mockClient implements chathub.Client for tests. Delivered events land
// on Recv; Close records the code it was called with.
type mockClient struct {
	identity string

	// Recv buffers everything TrySend delivered.
	Recv chan models.ServerEvent

	// full simulates a stalled consumer: every TrySend reports backpressure.
	full bool

	mu         sync.Mutex
	closed     bool
	closeCode  int
	closeText  string
	closeCount int
}

func newMockClient(identity string) *mockClient {
	return &mockClient{
		identity: identity,
		Recv:     make(chan models.ServerEvent, 32),
	}
}

func (c *mockClient) Identity() string { return c.identity }

func (c *mockClient) TrySend(ev models.ServerEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("closed")
	}
	if c.full {
		return chathub.ErrBackpressure
	}
	c.Recv <- ev
	return nil
}

func (c *mockClient) Close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCount++
	if c.closed {
		return
	}
	c.closed = true
	c.closeCode = code
	c.closeText = reason
}

func (c *mockClient) Run() {}

func (c *mockClient) closedWith() (bool, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed, c.closeCode
}

// drain empties Recv, returning everything received so far.
func (c *mockClient) drain() []models.ServerEvent {
	var evs []models.ServerEvent
	for {
		select {
		case ev := <-c.Recv:
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}
