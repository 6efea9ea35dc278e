package types

import "github.com/google/uuid"

// SessionID identifies a chat session.
type SessionID string

func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

func (x SessionID) String() string {
	return string(x)
}

// MessageID identifies one message recorded in a session.
type MessageID string

func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

func (x MessageID) String() string {
	return string(x)
}
