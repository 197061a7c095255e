package domain

import "time"

// Message is a direct message relayed through the remote API.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId,omitempty"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// Conversation is a cached summary of a message thread. The remote copy is
// canonical; the local copy only bridges offline reads.
type Conversation struct {
	ID            string     `json:"id"`
	BuddyID       string     `json:"buddyId,omitempty"`
	BuddyName     string     `json:"buddyName,omitempty"`
	LastMessage   string     `json:"lastMessage,omitempty"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
	UnreadCount   int        `json:"unreadCount"`
}
