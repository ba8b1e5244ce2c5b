package rpc

import "github.com/ouge98-max/your-repo-sub000/internal/models"

// Empty is the request of calls that take no arguments.
type Empty struct{}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by Register and Login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type UserResponse struct {
	User *models.User `json:"user"`
}

type UsersResponse struct {
	Users []models.User `json:"users"`
}

type SavePushSubscriptionRequest struct {
	Subscription models.PushSubscription `json:"subscription"`
}

type SendMoneyRequest struct {
	RecipientID string  `json:"recipient_id"`
	Amount      float64 `json:"amount"`
	Note        string  `json:"note,omitempty"`
}

type AddMoneyRequest struct {
	Source string  `json:"source"`
	Amount float64 `json:"amount"`
}

type WithdrawRequest struct {
	Destination string  `json:"destination"`
	Amount      float64 `json:"amount"`
}

// SavingsRequest moves money between the main and savings balances.
type SavingsRequest struct {
	Amount float64 `json:"amount"`
}

type MobileRechargeRequest struct {
	Operator string  `json:"operator"`
	Phone    string  `json:"phone"`
	Amount   float64 `json:"amount"`
}

type PayBillRequest struct {
	Biller        models.Biller `json:"biller"`
	AccountNumber string        `json:"account_number"`
	Amount        float64       `json:"amount"`
}

type PurchaseTicketRequest struct {
	Ticket models.Ticket `json:"ticket"`
	Amount float64       `json:"amount"`
}

type InternationalTransferRequest struct {
	RecipientName string  `json:"recipient_name"`
	Country       string  `json:"country"`
	BankAccount   string  `json:"bank_account"`
	Currency      string  `json:"currency"`
	ExchangeRate  float64 `json:"exchange_rate"`
	Amount        float64 `json:"amount"`
}

type BuyProductRequest struct {
	ProductID       string  `json:"product_id"`
	Quantity        int     `json:"quantity"`
	DeliveryAddress string  `json:"delivery_address"`
	Amount          float64 `json:"amount"`
}

type PurchaseGiftRequest struct {
	RecipientID string  `json:"recipient_id"`
	GiftType    string  `json:"gift_type"`
	Message     string  `json:"message,omitempty"`
	Amount      float64 `json:"amount"`
}

// TransactionResponse is returned by every money-moving call.
type TransactionResponse struct {
	Transaction *models.Transaction `json:"transaction"`
}

type ListTransactionsRequest struct {
	Limit int `json:"limit,omitempty"`
}

type ListTransactionsResponse struct {
	Transactions []models.Transaction `json:"transactions"`
}

type ChatsResponse struct {
	Chats []models.Chat `json:"chats"`
}

type CreateChatRequest struct {
	Name    string   `json:"name,omitempty"`
	Members []string `json:"members"`
}

type ChatResponse struct {
	Chat *models.Chat `json:"chat"`
}

// SendMessageRequest carries the client's temporary ID so retries of the same
// message are stored once.
type SendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	ClientID  string `json:"client_id"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

type MessageResponse struct {
	Message *models.Message `json:"message"`
}
