package messaging

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

// Kind is the closed set of message types. A message's kind is immutable.
type Kind string

const (
	KindPublic  Kind = "public"  // scoped to a class
	KindPrivate Kind = "private" // scoped to a receiver
)

type Message struct {
	ID         int       `json:"id"`
	Kind       Kind      `json:"type"`
	SenderID   int       `json:"sender_id"`
	ClassID    null.Int  `json:"class_id"`    // set for public messages
	ReceiverID null.Int  `json:"receiver_id"` // set for private messages
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sent_at"` // UTC
}

type NewMessage struct {
	Type       Kind   `json:"type" validate:"required,oneof=public private"`
	ClassID    int    `json:"class_id" validate:"required_if=Type public"`
	ReceiverID int    `json:"receiver_id" validate:"required_if=Type private"`
	Content    string `json:"content" validate:"required"`
}

func (nm *NewMessage) Validate() error { return core.Validate.Struct(nm) }
