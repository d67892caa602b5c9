package core

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser        Sender = "user"
	SenderCounterpart Sender = "counterpart"
	SenderSystem      Sender = "system"
)

// Status is the simulated delivery status of a user message.
type Status string

const (
	StatusNone      Status = ""
	StatusSending   Status = "sending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

// rank orders statuses along the delivery progression.
func (s Status) rank() int {
	switch s {
	case StatusSending:
		return 1
	case StatusSent:
		return 2
	case StatusDelivered:
		return 3
	case StatusRead:
		return 4
	default:
		return 0
	}
}

// Valid reports whether s is one of the known delivery statuses.
func (s Status) Valid() bool {
	return s.rank() > 0
}

// Advances reports whether moving from s to next is a forward transition.
func (s Status) Advances(next Status) bool {
	return next.Valid() && next.rank() > s.rank()
}

// Message is the domain model for a chat message.
type Message struct {
	ID           string
	Text         string
	Sender       Sender
	Author       string
	CreatedAt    time.Time
	Status       Status
	QuickReplies []string
	Suggestions  []string
}

func (m Message) clone() Message {
	if m.QuickReplies != nil {
		m.QuickReplies = append([]string(nil), m.QuickReplies...)
	}
	if m.Suggestions != nil {
		m.Suggestions = append([]string(nil), m.Suggestions...)
	}
	return m
}
