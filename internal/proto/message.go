package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	ProtocolVersion = 1

	InboundTypeHello      = "hello"
	InboundTypeSubmit     = "submit"
	InboundTypeQuickReply = "quick_reply"
	InboundTypeSuggestion = "suggestion"
	InboundTypeUpload     = "upload"
	InboundTypeDismiss    = "dismiss"
	InboundTypeReset      = "reset"
	InboundTypeConnect    = "connect"
	InboundTypeDisconnect = "disconnect"

	InboundTypeClearNotifications = "clear_notifications"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventSnapshot            = "snapshot"
	EventHello               = "hello"
	EventMessage             = "message"
	EventStatus              = "status"
	EventNotification        = "notification"
	EventNotificationRemoved = "notification_removed"
	EventPresence            = "presence"
	EventState               = "state"
	EventReset               = "reset"
	EventAccepted            = "accepted"
)

// Protocol-level error codes.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeUnsupportedVersion = "unsupported_version"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeRateLimited        = "rate_limited"
	ErrCodeInvalidMessage     = "invalid_message"
)

// HelloData is sent by the client to introduce itself.
type HelloData struct {
	User     string `json:"user"`
	Token    string `json:"token,omitempty"`
	Protocol int    `json:"protocol,omitempty"`
}

// TextData carries the text of submit, quick_reply and suggestion.
type TextData struct {
	Text string `json:"text"`
}

// UploadData names the uploaded file.
type UploadData struct {
	Name string `json:"name"`
}

// DismissData targets a notification.
type DismissData struct {
	ID string `json:"id"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Message is a chat message on the wire. TS is unix milliseconds.
type Message struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Sender       string   `json:"sender"`
	Author       string   `json:"author,omitempty"`
	TS           int64    `json:"ts"`
	Status       string   `json:"status,omitempty"`
	QuickReplies []string `json:"quick_replies,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
}

// StatusData reports a delivery status change.
type StatusData struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Notification is a toast on the wire.
type Notification struct {
	ID         string `json:"id"`
	Severity   string `json:"severity"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Position   string `json:"position"`
	TS         int64  `json:"ts"`
	DurationMS int64  `json:"duration_ms"`
}

// NotificationRemovedData reports a toast leaving the queue.
type NotificationRemovedData struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Presence is one roster row. LastSeen is unix milliseconds.
type Presence struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	LastSeen *int64 `json:"last_seen,omitempty"`
}

// StateData reports the session state.
type StateData struct {
	State string `json:"state"`
}

// SnapshotData is the first event of every connection.
type SnapshotData struct {
	SessionID     string         `json:"session_id"`
	Kind          string         `json:"kind"`
	State         string         `json:"state"`
	LocalName     string         `json:"local_name"`
	Messages      []Message      `json:"messages"`
	Notifications []Notification `json:"notifications"`
	Roster        []Presence     `json:"roster"`
}

// HelloAckData answers a hello.
type HelloAckData struct {
	SessionID     string `json:"session_id"`
	User          string `json:"user"`
	Protocol      int    `json:"protocol"`
	Authenticated bool   `json:"authenticated"`
}

// AcceptedData answers a submit-like command.
type AcceptedData struct {
	Accepted  bool   `json:"accepted"`
	MessageID string `json:"message_id,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
