package core

// State is the connection and turn state of a session.
// Typing is a sub-state of a connected session, so a counterpart cannot be
// typing while the session is disconnected.
type State string

const (
	StateConnecting    State = "connecting"
	StateIdle          State = "idle"
	StateAwaitingReply State = "awaiting_reply"
	StateTyping        State = "typing"
	StateDisconnected  State = "disconnected"
)

// Connected reports whether messages may be submitted in this state.
func (s State) Connected() bool {
	switch s {
	case StateIdle, StateAwaitingReply, StateTyping:
		return true
	default:
		return false
	}
}
