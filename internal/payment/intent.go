// Package payment models payment intents and routes them to the backend.
//
// An Intent is built synchronously by whatever collects the payment details,
// consumed exactly once by Dispatch, and never persisted.
package payment

import (
	"github.com/ouge98-max/your-repo-sub000/internal/models"
	"github.com/ouge98-max/your-repo-sub000/internal/pricing"
)

// Intent is the tagged union of everything the wallet can pay for.
// The set of variants is closed: only types in this package implement it.
type Intent interface {
	// Type is the transaction type the intent produces.
	Type() models.TransactionType

	// Total is the single figure shown on the PIN prompt.
	Total() float64

	isIntent()
}

// SendMoney transfers wallet balance to another user.
type SendMoney struct {
	RecipientID string
	Amount      float64
	Note        string
}

// AddMoney tops up the wallet from an external source (card, bank, agent).
type AddMoney struct {
	Source string
	Amount float64
}

// Withdraw cashes out wallet balance to an external destination.
type Withdraw struct {
	Destination string
	Amount      float64
}

// SavingsDeposit moves wallet balance into savings.
type SavingsDeposit struct {
	Amount float64
}

// SavingsWithdraw moves savings back into the wallet.
type SavingsWithdraw struct {
	Amount float64
}

// MobileRecharge tops up a prepaid phone line.
type MobileRecharge struct {
	OperatorName string
	Phone        string
	Amount       float64
}

// BillPayment pays a utility or service bill.
type BillPayment struct {
	Biller        models.Biller
	AccountNumber string
	Amount        float64
}

// TicketPurchase books a bus, train, flight or event ticket.
type TicketPurchase struct {
	Ticket models.Ticket
	Amount float64
}

// InternationalTransfer sends money abroad. Amount is in the wallet currency;
// the recipient receives Amount × ExchangeRate in Currency.
type InternationalTransfer struct {
	RecipientName string
	Country       string
	BankAccount   string
	Currency      string
	ExchangeRate  float64
	Amount        float64
}

// ProductPurchase buys a single marketplace product.
type ProductPurchase struct {
	Item models.CartItem
}

// CartCheckout buys every line in the cart, one purchase per line.
type CartCheckout struct {
	Items       []models.CartItem
	DeliveryFee float64
}

// GiftPurchase buys a gift card for another user.
type GiftPurchase struct {
	RecipientID string
	GiftType    string
	Message     string
	Amount      float64
}

func (SendMoney) Type() models.TransactionType             { return models.TxSendMoney }
func (AddMoney) Type() models.TransactionType              { return models.TxAddMoney }
func (Withdraw) Type() models.TransactionType              { return models.TxWithdraw }
func (SavingsDeposit) Type() models.TransactionType        { return models.TxSavingsDeposit }
func (SavingsWithdraw) Type() models.TransactionType       { return models.TxSavingsWithdraw }
func (MobileRecharge) Type() models.TransactionType        { return models.TxMobileRecharge }
func (BillPayment) Type() models.TransactionType           { return models.TxBillPayment }
func (TicketPurchase) Type() models.TransactionType        { return models.TxTicketPurchase }
func (InternationalTransfer) Type() models.TransactionType { return models.TxInternationalTransfer }
func (ProductPurchase) Type() models.TransactionType       { return models.TxProductPurchase }
func (CartCheckout) Type() models.TransactionType          { return models.TxCartCheckout }
func (GiftPurchase) Type() models.TransactionType          { return models.TxGiftPurchase }

func (i SendMoney) Total() float64             { return i.Amount }
func (i AddMoney) Total() float64              { return i.Amount }
func (i Withdraw) Total() float64              { return i.Amount }
func (i SavingsDeposit) Total() float64        { return i.Amount }
func (i SavingsWithdraw) Total() float64       { return i.Amount }
func (i MobileRecharge) Total() float64        { return i.Amount }
func (i BillPayment) Total() float64           { return i.Amount }
func (i TicketPurchase) Total() float64        { return i.Amount }
func (i InternationalTransfer) Total() float64 { return i.Amount }
func (i ProductPurchase) Total() float64       { return i.Item.LineTotal() }
func (i GiftPurchase) Total() float64          { return i.Amount }

// Total is the cart grand total: all lines plus one delivery fee.
func (i CartCheckout) Total() float64 {
	return pricing.Cart(i.Items, i.DeliveryFee).GrandTotal
}

func (SendMoney) isIntent()             {}
func (AddMoney) isIntent()              {}
func (Withdraw) isIntent()              {}
func (SavingsDeposit) isIntent()        {}
func (SavingsWithdraw) isIntent()       {}
func (MobileRecharge) isIntent()        {}
func (BillPayment) isIntent()           {}
func (TicketPurchase) isIntent()        {}
func (InternationalTransfer) isIntent() {}
func (ProductPurchase) isIntent()       {}
func (CartCheckout) isIntent()          {}
func (GiftPurchase) isIntent()          {}
