package core

// Audience groups the subscribers of one session.
type Audience struct {
	subscribers map[*Subscriber]struct{}
}

// NewAudience constructs an audience with no subscribers.
func NewAudience() *Audience {
	return &Audience{subscribers: make(map[*Subscriber]struct{})}
}

// Add inserts a subscriber. Returns true if newly added.
func (a *Audience) Add(s *Subscriber) bool {
	if _, exists := a.subscribers[s]; exists {
		return false
	}
	a.subscribers[s] = struct{}{}
	return true
}

// Remove deletes a subscriber and closes its channel. Returns true if removed.
func (a *Audience) Remove(s *Subscriber) bool {
	if _, exists := a.subscribers[s]; !exists {
		return false
	}
	delete(a.subscribers, s)
	close(s.Events)
	return true
}

// Broadcast sends an event to every subscriber.
func (a *Audience) Broadcast(event *Event) {
	for s := range a.subscribers {
		select {
		case s.Events <- event:
		default:
			// Drop if slow consumer.
		}
	}
}

// CloseAll removes every subscriber.
func (a *Audience) CloseAll() {
	for s := range a.subscribers {
		a.Remove(s)
	}
}

// Len returns the number of subscribers.
func (a *Audience) Len() int {
	return len(a.subscribers)
}
