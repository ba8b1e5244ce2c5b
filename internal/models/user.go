package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCurrency is used when a user or an intent does not name one.
const DefaultCurrency = "BDT"

// User represents a registered account and its wallet.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Name is the display name shown in chats and receipts.
	Name string `json:"name"`

	// Email is the login identifier (unique).
	Email string `json:"email"`

	// Phone is the mobile number used for recharges and lookups.
	Phone string `json:"phone,omitempty"`

	// PasswordHash is the bcrypt hash. Never serialized.
	PasswordHash string `json:"-"`

	// Balance is the spendable wallet balance.
	Balance float64 `json:"balance"`

	// SavingsBalance is money moved out of the wallet into savings.
	SavingsBalance float64 `json:"savings_balance"`

	// Currency is the wallet currency code (e.g. "BDT").
	Currency string `json:"currency"`

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp of the last profile or balance change.
	UpdatedAt int64 `json:"updated_at"`
}

// NewUser builds a user with a fresh ID and timestamps.
func NewUser(email, name, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Currency:     DefaultCurrency,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
