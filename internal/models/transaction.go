package models

// TransactionType tags what kind of money movement a Transaction records.
type TransactionType string

const (
	TxSendMoney             TransactionType = "send_money"
	TxReceiveMoney          TransactionType = "receive_money"
	TxAddMoney              TransactionType = "add_money"
	TxWithdraw              TransactionType = "withdraw"
	TxSavingsDeposit        TransactionType = "savings_deposit"
	TxSavingsWithdraw       TransactionType = "savings_withdraw"
	TxMobileRecharge        TransactionType = "mobile_recharge"
	TxBillPayment           TransactionType = "bill_payment"
	TxTicketPurchase        TransactionType = "ticket_purchase"
	TxInternationalTransfer TransactionType = "international_transfer"
	TxProductPurchase       TransactionType = "product_purchase"
	TxCartCheckout          TransactionType = "cart_checkout"
	TxGiftPurchase          TransactionType = "gift_purchase"
)

// TransactionStatus is the settlement state of a Transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "Pending"
	StatusCompleted TransactionStatus = "Completed"
	StatusFailed    TransactionStatus = "Failed"
)

// Transaction is the normalized receipt returned for every successful payment.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string `json:"id"`

	// UserID is the wallet owner this row belongs to.
	UserID string `json:"user_id"`

	// Type is the kind of movement.
	Type TransactionType `json:"type"`

	// Amount is the figure debited or credited, in Currency.
	Amount float64 `json:"amount"`

	// Currency is the ISO-like currency code.
	Currency string `json:"currency"`

	// Peer is the counterparty: a user name, an operator, a biller, a merchant.
	Peer string `json:"peer"`

	// Timestamp is the Unix time the transaction was recorded.
	Timestamp int64 `json:"timestamp"`

	// Status is Pending, Completed or Failed.
	Status TransactionStatus `json:"status"`

	// Note is an optional free-form description.
	Note string `json:"note,omitempty"`

	// Tax is set for movements that carry VAT (bill payments).
	Tax *TaxBreakdown `json:"tax,omitempty"`
}

// TaxBreakdown splits an amount into its pre-tax base and VAT.
type TaxBreakdown struct {
	Base  float64 `json:"base"`
	Rate  float64 `json:"rate"`
	VAT   float64 `json:"vat"`
	Total float64 `json:"total"`
}
