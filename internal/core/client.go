package core

// Subscriber receives the events of one session.
type Subscriber struct {
	ID     string
	Events chan *Event
}

// NewSubscriber constructs a subscriber with a buffered event channel.
func NewSubscriber(id string, buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = 32
	}
	return &Subscriber{
		ID:     id,
		Events: make(chan *Event, buffer),
	}
}
