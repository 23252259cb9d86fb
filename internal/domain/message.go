package domain

import "time"

// MessageType distinguishes user text from system notices.
type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeSystem MessageType = "system"
	MessageTypeImage  MessageType = "image"
)

// Valid reports whether the message type is known.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeSystem, MessageTypeImage:
		return true
	}
	return false
}

// Message is a chat entry between the two parties of an exchange.
type Message struct {
	ID         string
	ExchangeID string
	SenderID   string
	Content    string
	Type       MessageType
	IsRead     bool
	CreatedAt  time.Time

	SenderName   string
	SenderAvatar *string
}
