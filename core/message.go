package core

import (
	"time"

	"github.com/google/uuid"
)

// MessageKind categorizes an entry in the inter-stage communication log.
type MessageKind string

const (
	// KindInstruction is a routing or work instruction from the dispatcher.
	KindInstruction MessageKind = "instruction"
	// KindData announces a produced output.
	KindData MessageKind = "data"
	// KindFeedback carries review feedback back toward analysis.
	KindFeedback MessageKind = "feedback"
	// KindError reports a stage failure.
	KindError MessageKind = "error"
)

// Message is one append-only record of the run's audit log. After creation it
// should be treated as immutable; merging concatenates, never reorders.
type Message struct {
	ID        string      `json:"id"`
	Sender    Stage       `json:"sender"`
	Recipient Stage       `json:"recipient"`
	Kind      MessageKind `json:"kind"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewMessage creates a message authored by sender for recipient with a high
// precision UTC timestamp and a generated ID.
func NewMessage(sender, recipient Stage, kind MessageKind, content string) Message {
	return Message{
		ID:        NewID(),
		Sender:    sender,
		Recipient: recipient,
		Kind:      kind,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewID generates a new unique identifier for messages and runs.
func NewID() string { return uuid.NewString() }
