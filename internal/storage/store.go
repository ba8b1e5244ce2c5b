// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/ouge98-max/your-repo-sub000/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrNotMember         = errors.New("user is not a member of this chat")
)

// Account is one side of a money movement.
type Account int

const (
	// External is money entering or leaving the system (cards, banks, merchants).
	External Account = iota
	Main
	Savings
)

// Movement describes a single ledger posting for one user.
// Amount is debited from From and credited to To. When RecipientID is set the
// amount is also credited to that user's main balance.
type Movement struct {
	UserID      string
	RecipientID string
	Type        models.TransactionType
	From        Account
	To          Account
	Amount      float64
	Peer        string
	Note        string
	Tax         *models.TaxBreakdown
}

// Store defines the interface for server-side persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateUser persists a new user. Email must be unique.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns nil and no error when no user has this email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns nil and no error when the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// ListUsers returns every user ordered by name.
	ListUsers(ctx context.Context) ([]models.User, error)

	// Apply performs a movement atomically: balance check, debit, credit and
	// transaction rows. It returns the sender's transaction.
	Apply(ctx context.Context, m Movement) (*models.Transaction, error)

	// ListTransactions returns a user's transactions, newest first.
	ListTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error)

	// CreateChat persists a chat and its members.
	CreateChat(ctx context.Context, chat *models.Chat) error

	// ListChats returns the chats userID is a member of, with messages.
	ListChats(ctx context.Context, userID string) ([]models.Chat, error)

	// AddMessage stores msg in chatID. A message whose ClientID was already
	// stored in the chat is not inserted again; the stored copy is returned.
	AddMessage(ctx context.Context, chatID string, msg *models.Message) (*models.Message, error)

	// SavePushSubscription upserts a push endpoint for a user.
	SavePushSubscription(ctx context.Context, sub *models.PushSubscription) error

	// Close releases any resources held by the store.
	Close() error
}
