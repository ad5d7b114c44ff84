package models

// Inbound event kinds a connected client may send over the websocket.
const (
	EventJoinRoom    = "join-room"
	EventLeaveRoom   = "leave-room"
	EventNewMessage  = "new-message"
	EventTyping      = "typing"
	EventPresence    = "presence"
	EventReadReceipt = "read-receipt"
	EventCallStart   = "call-start"
	EventCallAnswer  = "call-answer"
	EventCallEnd     = "call-end"
)

// Outbound event types pushed to connected clients.
const (
	ServerConnected  = "connected"
	ServerNewMessage = "new_message"
	ServerTyping     = "typing_indicator"
	ServerPresence   = "presence"
	ServerReadMark   = "read_receipt"
	ServerError      = "error"
	ServerUserJoined = "user_joined"
	ServerUserLeft   = "user_left"
	ServerCallRing   = "call_ringing"
	ServerCallStatus = "call_status"
	ServerCallEnded  = "call_ended"
)

// ClientEvent is one decoded inbound frame. Kind selects which of the
// remaining fields are meaningful; the dispatcher validates per kind and
// treats an unknown Kind as a recoverable protocol error.
type ClientEvent struct {
	Kind      string `json:"type"`
	RoomID    string `json:"room_id,omitempty"`
	Content   string `json:"content,omitempty"`
	MsgKind   string `json:"message_kind,omitempty"`
	MediaURL  string `json:"media_url,omitempty"`
	IsTyping  *bool  `json:"is_typing,omitempty"`
	Status    string `json:"status,omitempty"`
	MessageID uint   `json:"message_id,omitempty"`
	CallID    string `json:"call_id,omitempty"`
	Receiver  string `json:"receiver,omitempty"`
	CallKind  string `json:"call_kind,omitempty"`
}

// ServerEvent is one outbound frame. Only fields relevant to Type are set;
// everything else is omitted from the JSON encoding.
type ServerEvent struct {
	Type     string `json:"type"`
	RoomID   string `json:"room_id,omitempty"`
	Sender   string `json:"sender,omitempty"`
	Identity string `json:"identity,omitempty"`
	Content  string `json:"content,omitempty"`
	Message  string `json:"message,omitempty"`

	MessageRecord *Message `json:"message_record,omitempty"`

	IsTyping  *bool  `json:"is_typing,omitempty"`
	Status    string `json:"status,omitempty"`
	MessageID uint   `json:"message_id,omitempty"`

	CallID          string `json:"call_id,omitempty"`
	Caller          string `json:"caller,omitempty"`
	Receiver        string `json:"receiver,omitempty"`
	CallKind        string `json:"call_kind,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

// ErrorEvent builds the recoverable error frame sent back to a client.
func ErrorEvent(msg string) ServerEvent {
	return ServerEvent{Type: ServerError, Message: msg}
}
