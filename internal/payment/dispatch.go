package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ouge98-max/your-repo-sub000/internal/models"
	"github.com/ouge98-max/your-repo-sub000/internal/pricing"
)

var (
	ErrInvalidPIN             = errors.New("incorrect PIN")
	ErrNotAuthenticated       = errors.New("you must be logged in to make payments")
	ErrMissingDeliveryAddress = errors.New("delivery address is required for every item")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrInvalidQuantity        = errors.New("quantity must be at least 1")
	ErrNoTransaction          = errors.New("payment was not completed")
	ErrUnknownIntent          = errors.New("unknown payment type")
)

// Backend is the set of money-moving calls the dispatcher routes to.
// The caller's identity is carried by the backend session, not by arguments.
type Backend interface {
	SendMoney(ctx context.Context, recipientID string, amount float64, note string) (*models.Transaction, error)
	AddMoney(ctx context.Context, source string, amount float64) (*models.Transaction, error)
	Withdraw(ctx context.Context, destination string, amount float64) (*models.Transaction, error)
	DepositToSavings(ctx context.Context, amount float64) (*models.Transaction, error)
	WithdrawFromSavings(ctx context.Context, amount float64) (*models.Transaction, error)
	PerformMobileRecharge(ctx context.Context, operatorName, phone string, amount float64) (*models.Transaction, error)
	PerformBillPayment(ctx context.Context, biller models.Biller, accountNumber string, amount float64) (*models.Transaction, error)
	PurchaseTicket(ctx context.Context, ticket models.Ticket, amount float64) (*models.Transaction, error)
	SendInternationalTransfer(ctx context.Context, recipientName, country, bankAccount, currency string, exchangeRate, amount float64) (*models.Transaction, error)
	BuyProduct(ctx context.Context, productID string, quantity int, deliveryAddress string, amount float64) (*models.Transaction, error)
	PurchaseGift(ctx context.Context, recipientID, giftType, message string, amount float64) (*models.Transaction, error)
}

// CheckoutError reports a cart checkout that stopped part way.
// Purchases listed in Completed were already charged and are not reversed.
type CheckoutError struct {
	Index     int
	ProductID string
	Completed []string
	Err       error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout aborted at item %d (%s) after %d completed purchases: %v",
		e.Index+1, e.ProductID, len(e.Completed), e.Err)
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

// Dispatch routes intent to exactly one backend call (one per line for carts)
// and returns the resulting transaction. A nil transaction from the backend
// is reported as ErrNoTransaction.
func Dispatch(ctx context.Context, b Backend, intent Intent) (*models.Transaction, error) {
	slog.Debug("Dispatching payment", "type", intent.Type(), "total", intent.Total())

	var (
		tx  *models.Transaction
		err error
	)

	switch in := intent.(type) {
	case SendMoney:
		tx, err = b.SendMoney(ctx, in.RecipientID, in.Amount, in.Note)
	case AddMoney:
		tx, err = b.AddMoney(ctx, in.Source, in.Amount)
	case Withdraw:
		tx, err = b.Withdraw(ctx, in.Destination, in.Amount)
	case SavingsDeposit:
		tx, err = b.DepositToSavings(ctx, in.Amount)
	case SavingsWithdraw:
		tx, err = b.WithdrawFromSavings(ctx, in.Amount)
	case MobileRecharge:
		tx, err = b.PerformMobileRecharge(ctx, in.OperatorName, in.Phone, in.Amount)
	case BillPayment:
		tx, err = b.PerformBillPayment(ctx, in.Biller, in.AccountNumber, in.Amount)
	case TicketPurchase:
		tx, err = b.PurchaseTicket(ctx, in.Ticket, in.Amount)
	case InternationalTransfer:
		tx, err = b.SendInternationalTransfer(ctx, in.RecipientName, in.Country, in.BankAccount, in.Currency, in.ExchangeRate, in.Amount)
	case ProductPurchase:
		if in.Item.Quantity < 1 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidQuantity, in.Item.ProductID)
		}
		tx, err = b.BuyProduct(ctx, in.Item.ProductID, in.Item.Quantity, in.Item.DeliveryAddress, in.Total())
	case CartCheckout:
		return checkout(ctx, b, in)
	case GiftPurchase:
		tx, err = b.PurchaseGift(ctx, in.RecipientID, in.GiftType, in.Message, in.Amount)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownIntent, intent)
	}

	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrNoTransaction
	}
	return tx, nil
}

// checkout buys each cart line in order. The delivery fee rides on the first
// line. A line with a quantity below 1 rejects the whole cart before any purchase. A line without a delivery address stops the loop before its purchase;
// lines bought before it stay bought.
func checkout(ctx context.Context, b Backend, cart CartCheckout) (*models.Transaction, error) {
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	completed := make([]*models.Transaction, 0, len(cart.Items))
	abort := func(i int, err error) (*models.Transaction, error) {
		ids := make([]string, len(completed))
		for j, tx := range completed {
			ids[j] = tx.ID
		}
		if len(ids) > 0 {
			slog.Warn("Cart checkout aborted after partial purchase",
				"failed_index", i,
				"product_id", cart.Items[i].ProductID,
				"completed", ids,
			)
		}
		return nil, &CheckoutError{
			Index:     i,
			ProductID: cart.Items[i].ProductID,
			Completed: ids,
			Err:       err,
		}
	}

	// Quantities are checked up front so nothing is charged for a cart whose
	// lines do not match the total shown at the PIN prompt.
	for i, item := range cart.Items {
		if item.Quantity < 1 {
			return abort(i, ErrInvalidQuantity)
		}
	}

	for i, item := range cart.Items {
		if strings.TrimSpace(item.DeliveryAddress) == "" {
			return abort(i, ErrMissingDeliveryAddress)
		}

		amount := item.LineTotal()
		if i == 0 {
			amount = pricing.Round(amount + cart.DeliveryFee)
		}

		tx, err := b.BuyProduct(ctx, item.ProductID, item.Quantity, item.DeliveryAddress, amount)
		if err != nil {
			return abort(i, err)
		}
		if tx == nil {
			return abort(i, ErrNoTransaction)
		}
		completed = append(completed, tx)
	}

	summary := &models.Transaction{
		ID:        uuid.New().String(),
		UserID:    completed[0].UserID,
		Type:      models.TxCartCheckout,
		Currency:  completed[0].Currency,
		Peer:      "Marketplace",
		Timestamp: time.Now().Unix(),
		Status:    models.StatusCompleted,
		Note:      fmt.Sprintf("%d items", len(completed)),
	}
	for _, tx := range completed {
		summary.Amount += tx.Amount
		if tx.Timestamp > summary.Timestamp {
			summary.Timestamp = tx.Timestamp
		}
	}
	summary.Amount = pricing.Round(summary.Amount)

	return summary, nil
}
