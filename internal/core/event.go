package core

// EventKind is a notification the session emits to subscribers.
type EventKind int

const (
	// EventMessageAppended carries a message added to the conversation.
	EventMessageAppended EventKind = iota
	// EventMessageStatus carries a delivery status change.
	EventMessageStatus
	// EventConversationReset tells subscribers the message list was cleared.
	EventConversationReset
	// EventNotificationPushed carries a new toast.
	EventNotificationPushed
	// EventNotificationRemoved tells subscribers a toast expired or was dismissed.
	EventNotificationRemoved
	// EventPresenceChanged carries a roster entry whose status changed.
	EventPresenceChanged
	// EventStateChanged carries the new session state.
	EventStateChanged
)

func (k EventKind) String() string {
	switch k {
	case EventMessageAppended:
		return "message"
	case EventMessageStatus:
		return "status"
	case EventConversationReset:
		return "reset"
	case EventNotificationPushed:
		return "notification"
	case EventNotificationRemoved:
		return "notification_removed"
	case EventPresenceChanged:
		return "presence"
	case EventStateChanged:
		return "state"
	default:
		return "unknown"
	}
}

// Event describes what happened in a session.
type Event struct {
	Kind         EventKind
	SessionID    string
	Message      *Message
	MessageID    string
	Status       Status
	Notification *Notification
	Removal      RemovalReason
	Presence     *PresenceEntry
	State        State
}
