package handler

import (
	"errors"
	"net/http"

	"chatline/backend/internal/auth"
	"chatline/backend/internal/chathub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers cannot set headers on websocket dials, so same-origin
	// enforcement is left to the deployment in front of this service.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and runs the authenticate,
// register, pump lifecycle. Authentication happens after the upgrade so
// failures can be reported with a distinct application close code the
// client can branch on.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	credential := c.Query("token")
	if credential == "" {
		credential = c.GetHeader("Authorization")
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return
	}

	identity, err := h.Auth.Authenticate(credential)
	if err != nil {
		code, reason := chathub.CloseAuthFailed, "authentication failed"
		if errors.Is(err, auth.ErrMissingToken) {
			code, reason = chathub.CloseMissingToken, "missing token"
		}
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
		conn.Close()
		log.Info().Str("module", "api.ws").Str("reason", reason).Msg("websocket rejected")
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, conn, identity)
	h.Hub.RegisterCh <- client
	client.Run()
}
