package chathub

import (
	"errors"

	"chatline/backend/internal/models"
)

// ErrBackpressure is returned by TrySend when a client's outbound buffer
// is full. The router treats it as a stalled consumer and evicts the
// connection rather than blocking fan-out.
var ErrBackpressure = errors.New("chathub: send buffer full")

// Application close codes, in the websocket 4xxx private range so callers
// can branch on the reason a connection was shut.
const (
	CloseInternalError = 4000
	CloseMissingToken  = 4001
	CloseAuthFailed    = 4003
	CloseSuperseded    = 4005
)

// Client is the live handle for one authenticated transport connection.
// It abstracts the underlying transport so the hub can manage websocket
// connections and test doubles uniformly.
type Client interface {
	// Identity returns the stable user identity bound to the connection.
	Identity() string

	// TrySend queues an event for delivery without blocking. It returns
	// ErrBackpressure when the outbound buffer is full and an error when
	// the connection is already closed.
	TrySend(ev models.ServerEvent) error

	// Close shuts the connection down with the given close code and
	// reason. It is idempotent; only the first call takes effect.
	Close(code int, reason string)

	// Run starts the client's read and write pumps.
	Run()
}
