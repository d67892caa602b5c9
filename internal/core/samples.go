package core

import (
	"time"

	"github.com/samber/lo"
)

// Sample data used by the default profiles.

// LocalUserID is the roster id of the person driving the session.
const LocalUserID = "user-1"

// DefaultLocalName is the display name of the local user until a hello renames it.
const DefaultLocalName = "You"

var chatRoomReplies = []Response{
	{Text: "Thanks for your message! I'm a bot assistant here to help."},
}

var chatterLines = []string{
	"Hey everyone! How's it going?",
	"Just finished a great project 🎉",
	"Anyone working on something interesting?",
	"The weather is amazing today!",
	"Check out this cool article I found",
	"Coffee break time ☕",
	"Happy to be here with you all!",
}

var welcomeQuickReplies = []string{"Get started", "Learn more", "Contact support"}

var chatbotReplies = []Response{
	{
		Text:         "Hello! I'm your AI assistant. How can I help you today?",
		QuickReplies: welcomeQuickReplies,
		Suggestions:  []string{"What can you do?", "Show me features", "Help with account"},
	},
	{
		Text:         "I can help you with various tasks including answering questions, providing information, and assisting with your needs.",
		QuickReplies: []string{"Ask a question", "Browse features", "Get help"},
		Suggestions:  []string{"How does this work?", "What are your capabilities?", "Show examples"},
	},
	{
		Text:         "Great question! I'm designed to provide helpful, accurate, and timely responses to assist you with your inquiries.",
		QuickReplies: []string{"That's helpful", "Tell me more", "What else?"},
		Suggestions:  []string{"Can you help with technical issues?", "Do you support multiple languages?"},
	},
}

// ChatRoomReplies returns the chat room bot lines.
func ChatRoomReplies() []Response { return append([]Response(nil), chatRoomReplies...) }

// ChatbotReplies returns the chatbot canned responses.
func ChatbotReplies() []Response { return append([]Response(nil), chatbotReplies...) }

// ChatterLines returns the lines peers post as ambient chatter.
func ChatterLines() []string { return append([]string(nil), chatterLines...) }

// ChatbotWelcome is the first chatbot message.
func ChatbotWelcome() Response {
	return chatbotReplies[0]
}

// ChatbotClearedWelcome is posted after the chatbot conversation is cleared.
func ChatbotClearedWelcome() Response {
	return Response{
		Text:         "Chat cleared! How can I help you today?",
		QuickReplies: welcomeQuickReplies,
	}
}

// ChatRoomWelcome is the system line appended once the room connects.
const ChatRoomWelcome = "Welcome to the chat room! 👋"

// DefaultRoster is the chat room population seeded on connect.
func DefaultRoster(localName string, now time.Time) []PresenceEntry {
	return []PresenceEntry{
		{UserID: LocalUserID, Name: localName, Status: PresenceOnline},
		{UserID: "user-2", Name: "Alice Johnson", Status: PresenceOnline},
		{UserID: "user-3", Name: "Bob Smith", Status: PresenceAway},
		{UserID: "user-4", Name: "Carol Davis", Status: PresenceOffline, LastSeen: lo.ToPtr(now.Add(-5 * time.Minute))},
	}
}
