package models

// MessageStatus tracks an outgoing message bubble from creation to delivery.
type MessageStatus string

const (
	MessageSending MessageStatus = "sending"
	MessageSent    MessageStatus = "sent"
	MessageQueued  MessageStatus = "queued"
	MessageFailed  MessageStatus = "failed"
)

// Chat is a conversation between two or more users.
type Chat struct {
	// ID is the unique identifier for the chat (UUID format).
	ID string `json:"id"`

	// Name is the display name; empty for one-to-one chats.
	Name string `json:"name,omitempty"`

	// Members are user IDs.
	Members []string `json:"members"`

	// Messages are ordered oldest first.
	Messages []Message `json:"messages"`

	// UpdatedAt is the Unix timestamp of the latest message.
	UpdatedAt int64 `json:"updated_at"`
}

// Message is a single chat message.
type Message struct {
	// ID is the server-assigned ID, or a client-generated temporary ID until the
	// send succeeds.
	ID string `json:"id"`

	// ClientID echoes the temporary ID the client used, so the optimistic bubble
	// can be matched to the stored message.
	ClientID string `json:"client_id,omitempty"`

	SenderID  string        `json:"sender_id"`
	Text      string        `json:"text"`
	Timestamp int64         `json:"timestamp"`
	Status    MessageStatus `json:"status,omitempty"`
}

// QueuedMessage is a message waiting in the offline outbox.
// Queued messages are immutable: they are inserted once and deleted after replay.
type QueuedMessage struct {
	Message
	ChatID string `json:"chat_id"`
}

// PushSubscription is the browser-style push endpoint handed to the backend.
type PushSubscription struct {
	UserID    string `json:"user_id,omitempty"`
	Endpoint  string `json:"endpoint"`
	P256dh    string `json:"p256dh"`
	Auth      string `json:"auth"`
	PublicKey string `json:"public_key"`
	CreatedAt int64  `json:"created_at,omitempty"`
}
