package chathub

import (
	"fmt"
	"time"

	"chatline/backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// dispatch routes one inbound event to its handler. Every failure mode
// here is recoverable: protocol errors, authorization refusals and
// collaborator outages are reported back to the sender as an error event
// and the connection stays open. A panic in a handler is contained the
// same way so one bad frame cannot take down the loop.
func (h *Hub) dispatch(in Inbound) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "chathub").Str("identity", in.Client.Identity()).
				Interface("panic", r).Msg("recovered from event handler panic")
			in.Client.TrySend(models.ErrorEvent("internal error while processing event"))
		}
	}()

	switch in.Event.Kind {
	case models.EventJoinRoom:
		h.handleJoinRoom(in.Client, in.Event)
	case models.EventLeaveRoom:
		h.handleLeaveRoom(in.Client, in.Event)
	case models.EventNewMessage:
		h.handleNewMessage(in.Client, in.Event)
	case models.EventTyping:
		h.handleTyping(in.Client, in.Event)
	case models.EventPresence:
		h.handlePresence(in.Client, in.Event)
	case models.EventReadReceipt:
		h.handleReadReceipt(in.Client, in.Event)
	case models.EventCallStart:
		h.handleCallStart(in.Client, in.Event)
	case models.EventCallAnswer:
		h.handleCallAnswer(in.Client, in.Event)
	case models.EventCallEnd:
		h.handleCallEnd(in.Client, in.Event)
	default:
		in.Client.TrySend(models.ErrorEvent(fmt.Sprintf("unknown event type %q", in.Event.Kind)))
	}
}

// handleJoinRoom verifies persisted chat membership once, then
// subscribes the identity to the room's live events. Membership is not
// re-verified on later broadcasts: a user removed from a chat mid-session
// keeps receiving events until evicted.
func (h *Hub) handleJoinRoom(c Client, ev models.ClientEvent) {
	if ev.RoomID == "" {
		c.TrySend(models.ErrorEvent("join-room requires room_id"))
		return
	}
	identity := c.Identity()

	member, err := h.Storage.IsMember(identity, ev.RoomID)
	if err != nil {
		log.Error().Err(err).Str("module", "chathub").Str("room", ev.RoomID).
			Msg("membership check failed")
		c.TrySend(models.ErrorEvent("could not verify chat membership"))
		return
	}
	if !member {
		c.TrySend(models.ErrorEvent("access denied to this chat"))
		return
	}

	h.Rooms.Join(identity, ev.RoomID)
	h.broadcastRoom(ev.RoomID, models.ServerEvent{
		Type:   models.ServerUserJoined,
		RoomID: ev.RoomID,
		Sender: identity,
	}, "")
}

func (h *Hub) handleLeaveRoom(c Client, ev models.ClientEvent) {
	if ev.RoomID == "" {
		c.TrySend(models.ErrorEvent("leave-room requires room_id"))
		return
	}
	identity := c.Identity()
	h.Rooms.Leave(identity, ev.RoomID)
	h.broadcastRoom(ev.RoomID, models.ServerEvent{
		Type:   models.ServerUserLeft,
		RoomID: ev.RoomID,
		Sender: identity,
	}, "")
}

// handleNewMessage persists the message, then broadcasts it to the room
// with the sender included (echo doubles as the delivery ack). Persist
// and broadcast are not atomic: a crash in between leaves a stored but
// undelivered-live message, which history fetch surfaces later.
func (h *Hub) handleNewMessage(c Client, ev models.ClientEvent) {
	if ev.RoomID == "" || ev.Content == "" {
		c.TrySend(models.ErrorEvent("new-message requires room_id and content"))
		return
	}
	identity := c.Identity()

	kind := ev.MsgKind
	if kind == "" {
		kind = models.MessageKindText
	}
	msg := &models.Message{
		ChatID:         ev.RoomID,
		SenderUsername: identity,
		Content:        ev.Content,
		Kind:           kind,
		MediaURL:       ev.MediaURL,
	}
	if err := h.Storage.SaveMessage(msg); err != nil {
		log.Error().Err(err).Str("module", "chathub").Str("room", ev.RoomID).
			Msg("failed to persist message")
		c.TrySend(models.ErrorEvent("failed to persist message"))
		return
	}
	now := time.Now()
	msg.DeliveredAt = &now

	h.broadcastRoom(ev.RoomID, models.ServerEvent{
		Type:          models.ServerNewMessage,
		RoomID:        ev.RoomID,
		Sender:        identity,
		Content:       ev.Content,
		MessageRecord: msg,
	}, "")
}

func (h *Hub) handleTyping(c Client, ev models.ClientEvent) {
	if ev.RoomID == "" || ev.IsTyping == nil {
		c.TrySend(models.ErrorEvent("typing requires room_id and is_typing"))
		return
	}
	h.broadcastRoom(ev.RoomID, models.ServerEvent{
		Type:     models.ServerTyping,
		RoomID:   ev.RoomID,
		Sender:   c.Identity(),
		IsTyping: ev.IsTyping,
	}, c.Identity())
}

// handlePresence fans a status change out to every connected user, not
// just shared rooms.
func (h *Hub) handlePresence(c Client, ev models.ClientEvent) {
	if ev.Status == "" {
		c.TrySend(models.ErrorEvent("presence requires status"))
		return
	}
	h.broadcastGlobal(models.ServerEvent{
		Type:   models.ServerPresence,
		Sender: c.Identity(),
		Status: ev.Status,
	})
}

func (h *Hub) handleReadReceipt(c Client, ev models.ClientEvent) {
	if ev.RoomID == "" || ev.MessageID == 0 {
		c.TrySend(models.ErrorEvent("read-receipt requires room_id and message_id"))
		return
	}
	if err := h.Storage.MarkMessageRead(ev.MessageID); err != nil {
		log.Error().Err(err).Str("module", "chathub").Uint("message_id", ev.MessageID).
			Msg("failed to mark message read")
		c.TrySend(models.ErrorEvent("failed to record read receipt"))
		return
	}
	h.broadcastRoom(ev.RoomID, models.ServerEvent{
		Type:      models.ServerReadMark,
		RoomID:    ev.RoomID,
		Sender:    c.Identity(),
		MessageID: ev.MessageID,
	}, "")
}

func (h *Hub) handleCallStart(c Client, ev models.ClientEvent) {
	if ev.Receiver == "" {
		c.TrySend(models.ErrorEvent("call-start requires receiver"))
		return
	}
	kind := ev.CallKind
	if kind != models.CallKindVoice && kind != models.CallKindVideo {
		c.TrySend(models.ErrorEvent("call-start requires call_kind voice or video"))
		return
	}
	callID := ev.CallID
	if callID == "" {
		callID = uuid.New().String()
	}
	caller := c.Identity()

	if err := h.Calls.Start(callID, ev.RoomID, caller, ev.Receiver, kind); err != nil {
		c.TrySend(models.ErrorEvent("call id already active"))
		return
	}

	h.Router.SendToUser(ev.Receiver, models.ServerEvent{
		Type:     models.ServerCallRing,
		CallID:   callID,
		Caller:   caller,
		Receiver: ev.Receiver,
		CallKind: kind,
	})
	c.TrySend(models.ServerEvent{
		Type:   models.ServerCallStatus,
		CallID: callID,
		Status: models.CallStatusRinging,
	})
}

// handleCallAnswer accepts or rejects a ringing call. An absent call id
// is a benign race with the other side hanging up first; nothing is
// reported.
func (h *Hub) handleCallAnswer(c Client, ev models.ClientEvent) {
	if ev.CallID == "" {
		c.TrySend(models.ErrorEvent("call-answer requires call_id"))
		return
	}

	if ev.Status == models.CallStatusRejected {
		sess, ok := h.Calls.Active(ev.CallID)
		if !ok {
			return
		}
		if duration, ended := h.Calls.End(ev.CallID, models.CallStatusRejected); ended {
			h.notifyCallEnded(sess, models.CallStatusRejected, duration)
		}
		return
	}

	sess, ok := h.Calls.Active(ev.CallID)
	if !ok || !h.Calls.UpdateStatus(ev.CallID, models.CallStatusOngoing) {
		return
	}
	status := models.ServerEvent{
		Type:   models.ServerCallStatus,
		CallID: ev.CallID,
		Status: models.CallStatusOngoing,
	}
	h.Router.SendToUser(sess.Caller, status)
	h.Router.SendToUser(sess.Receiver, status)
}

func (h *Hub) handleCallEnd(c Client, ev models.ClientEvent) {
	if ev.CallID == "" {
		c.TrySend(models.ErrorEvent("call-end requires call_id"))
		return
	}
	sess, ok := h.Calls.Active(ev.CallID)
	if !ok {
		return
	}
	if duration, ended := h.Calls.End(ev.CallID, models.CallStatusEnded); ended {
		h.notifyCallEnded(sess, models.CallStatusEnded, duration)
	}
}
