package core

import (
	"fmt"
	"time"
)

// Kind selects which demo a session simulates.
type Kind string

const (
	KindChatRoom Kind = "chat"
	KindChatbot  Kind = "bot"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindChatRoom, KindChatbot:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown session kind %q", s)
	}
}

// Profile holds every tunable of one simulated conversation.
// The chat room and the chatbot carry independent profiles.
type Profile struct {
	Kind Kind

	// ConnectDelay is how long the session stays connecting. Zero starts connected.
	ConnectDelay time.Duration

	Delivery DeliveryDelays

	ReplyProbability float64
	ReplyDelayMin    time.Duration
	ReplyDelayMax    time.Duration
	// TypingDelay is when the counterpart starts typing. Zero disables the indicator.
	TypingDelay time.Duration

	// PresenceInterval is the presence tick. Zero disables the simulator.
	PresenceInterval          time.Duration
	PresenceChangeProbability float64

	// ChatterInterval is the ambient peer message tick. Zero disables chatter.
	ChatterInterval    time.Duration
	ChatterProbability float64

	NotificationDuration time.Duration

	// ConfirmSends pushes a success toast for every accepted message.
	ConfirmSends bool
	// AnnounceReplies pushes an info toast when a counterpart reply arrives.
	AnnounceReplies bool
	// ClearedWelcomeDelay re-posts a welcome after reset. Zero disables it.
	ClearedWelcomeDelay time.Duration
}

// DefaultChatRoomProfile reproduces the chat room demo timings.
func DefaultChatRoomProfile() Profile {
	return Profile{
		Kind:                      KindChatRoom,
		ConnectDelay:              time.Second,
		Delivery:                  DefaultDeliveryDelays(),
		ReplyProbability:          0.3,
		ReplyDelayMin:             time.Second,
		ReplyDelayMax:             time.Second,
		PresenceInterval:          10 * time.Second,
		PresenceChangeProbability: 0.2,
		ChatterInterval:           15 * time.Second,
		ChatterProbability:        0.3,
		NotificationDuration:      DefaultNotificationDuration,
		ConfirmSends:              true,
		AnnounceReplies:           true,
	}
}

// DefaultChatbotProfile reproduces the chatbot widget timings.
func DefaultChatbotProfile() Profile {
	return Profile{
		Kind:                 KindChatbot,
		Delivery:             DefaultDeliveryDelays(),
		ReplyProbability:     1,
		ReplyDelayMin:        4 * time.Second,
		ReplyDelayMax:        4 * time.Second,
		TypingDelay:          2 * time.Second,
		NotificationDuration: DefaultNotificationDuration,
		ClearedWelcomeDelay:  500 * time.Millisecond,
	}
}

// Validate checks the profile for values the simulation cannot honor.
func (p Profile) Validate() error {
	if _, err := ParseKind(string(p.Kind)); err != nil {
		return err
	}
	d := p.Delivery
	if d.Sending < 0 || d.Sent < d.Sending || d.Delivered < d.Sent || d.Read < d.Delivered {
		return fmt.Errorf("delivery delays must be non-negative and non-decreasing")
	}
	for name, v := range map[string]float64{
		"reply_probability":           p.ReplyProbability,
		"presence_change_probability": p.PresenceChangeProbability,
		"chatter_probability":         p.ChatterProbability,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0,1], got %v", name, v)
		}
	}
	if p.ReplyDelayMin < 0 || p.ReplyDelayMax < p.ReplyDelayMin {
		return fmt.Errorf("reply delay range [%s,%s] is invalid", p.ReplyDelayMin, p.ReplyDelayMax)
	}
	if p.TypingDelay < 0 || p.ConnectDelay < 0 || p.PresenceInterval < 0 || p.ChatterInterval < 0 || p.ClearedWelcomeDelay < 0 {
		return fmt.Errorf("delays and intervals must not be negative")
	}
	if p.NotificationDuration <= 0 {
		return fmt.Errorf("notification duration must be positive")
	}
	return nil
}
