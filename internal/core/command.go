package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandSubmit sends a typed message.
	CommandSubmit CommandKind = iota
	// CommandQuickReply sends a quick reply chip.
	CommandQuickReply
	// CommandSuggestion sends a suggestion chip.
	CommandSuggestion
	// CommandUpload echoes an uploaded file name.
	CommandUpload
	// CommandDismiss removes a toast.
	CommandDismiss
	// CommandReset clears the conversation.
	CommandReset
	// CommandConnect reconnects a disconnected session.
	CommandConnect
	// CommandDisconnect drops the simulated connection.
	CommandDisconnect
	// CommandRename changes the local user's display name.
	CommandRename
	// CommandClearNotifications removes every toast.
	CommandClearNotifications
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	// Text is the message text, the file name for uploads, or the new name for renames.
	Text string
	// ID targets a notification for dismissals.
	ID string
}

// SubmitResult reports the outcome of a message submission.
type SubmitResult struct {
	// Accepted is false when the session was not connected.
	Accepted bool
	Message  Message
}
