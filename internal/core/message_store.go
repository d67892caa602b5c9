package core

// MessageStore holds the ordered message sequence of one conversation.
// It is not safe for concurrent use; a Session confines it to its loop.
type MessageStore struct {
	messages []Message
	index    map[string]int
}

// NewMessageStore constructs an empty store.
func NewMessageStore() *MessageStore {
	return &MessageStore{index: make(map[string]int)}
}

// Append adds the message at the end of the sequence and returns its id.
func (s *MessageStore) Append(msg Message) string {
	s.index[msg.ID] = len(s.messages)
	s.messages = append(s.messages, msg.clone())
	return msg.ID
}

// UpdateStatus replaces the status of the message with the given id.
// Unknown ids and transitions that do not move the status forward are
// ignored. Returns true if the message changed.
func (s *MessageStore) UpdateStatus(id string, status Status) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	if !s.messages[i].Status.Advances(status) {
		return false
	}
	s.messages[i].Status = status
	return true
}

// Get returns a copy of the message with the given id.
func (s *MessageStore) Get(id string) (Message, bool) {
	i, ok := s.index[id]
	if !ok {
		return Message{}, false
	}
	return s.messages[i].clone(), true
}

// Messages returns a copy of the sequence in insertion order.
func (s *MessageStore) Messages() []Message {
	out := make([]Message, len(s.messages))
	for i, m := range s.messages {
		out[i] = m.clone()
	}
	return out
}

// Len returns the number of stored messages.
func (s *MessageStore) Len() int {
	return len(s.messages)
}

// Reset clears the sequence.
func (s *MessageStore) Reset() {
	s.messages = nil
	s.index = make(map[string]int)
}
