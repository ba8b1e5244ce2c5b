package payment

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/ouge98-max/your-repo-sub000/internal/models"
)

type call struct {
	method string
	args   []any
}

// recordingBackend records every call and returns a transaction echoing the amount.
type recordingBackend struct {
	calls  []call
	failOn map[string]error
	nilOn  map[string]bool
}

func (r *recordingBackend) record(method string, amount float64, args ...any) (*models.Transaction, error) {
	r.calls = append(r.calls, call{method: method, args: args})
	if err := r.failOn[method]; err != nil {
		return nil, err
	}
	if r.nilOn[method] {
		return nil, nil
	}
	return &models.Transaction{
		ID:       method + "-tx",
		UserID:   "u1",
		Amount:   amount,
		Currency: models.DefaultCurrency,
		Status:   models.StatusCompleted,
	}, nil
}

func (r *recordingBackend) SendMoney(ctx context.Context, recipientID string, amount float64, note string) (*models.Transaction, error) {
	return r.record("SendMoney", amount, recipientID, amount, note)
}

func (r *recordingBackend) AddMoney(ctx context.Context, source string, amount float64) (*models.Transaction, error) {
	return r.record("AddMoney", amount, source, amount)
}

func (r *recordingBackend) Withdraw(ctx context.Context, destination string, amount float64) (*models.Transaction, error) {
	return r.record("Withdraw", amount, destination, amount)
}

func (r *recordingBackend) DepositToSavings(ctx context.Context, amount float64) (*models.Transaction, error) {
	return r.record("DepositToSavings", amount, amount)
}

func (r *recordingBackend) WithdrawFromSavings(ctx context.Context, amount float64) (*models.Transaction, error) {
	return r.record("WithdrawFromSavings", amount, amount)
}

func (r *recordingBackend) PerformMobileRecharge(ctx context.Context, operatorName, phone string, amount float64) (*models.Transaction, error) {
	return r.record("PerformMobileRecharge", amount, operatorName, phone, amount)
}

func (r *recordingBackend) PerformBillPayment(ctx context.Context, biller models.Biller, accountNumber string, amount float64) (*models.Transaction, error) {
	return r.record("PerformBillPayment", amount, biller, accountNumber, amount)
}

func (r *recordingBackend) PurchaseTicket(ctx context.Context, ticket models.Ticket, amount float64) (*models.Transaction, error) {
	return r.record("PurchaseTicket", amount, ticket, amount)
}

func (r *recordingBackend) SendInternationalTransfer(ctx context.Context, recipientName, country, bankAccount, currency string, exchangeRate, amount float64) (*models.Transaction, error) {
	return r.record("SendInternationalTransfer", amount, recipientName, country, bankAccount, currency, exchangeRate, amount)
}

func (r *recordingBackend) BuyProduct(ctx context.Context, productID string, quantity int, deliveryAddress string, amount float64) (*models.Transaction, error) {
	return r.record("BuyProduct", amount, productID, quantity, deliveryAddress, amount)
}

func (r *recordingBackend) PurchaseGift(ctx context.Context, recipientID, giftType, message string, amount float64) (*models.Transaction, error) {
	return r.record("PurchaseGift", amount, recipientID, giftType, message, amount)
}

func TestDispatchRoutesEachIntent(t *testing.T) {
	biller := models.Biller{ID: "desco", Name: "DESCO", Category: "electricity", VATRate: 0.05}
	ticket := models.Ticket{Kind: "bus", Provider: "Green Line", From: "Dhaka", To: "Sylhet", Date: "2026-11-02", Seats: 2}
	item := models.CartItem{ProductID: "p-9", Name: "Kettle", Price: 1500, Quantity: 2, DeliveryAddress: "House 4, Road 7, Dhanmondi"}

	tests := []struct {
		name       string
		intent     Intent
		wantMethod string
		wantArgs   []any
	}{
		{
			name:       "send money",
			intent:     SendMoney{RecipientID: "u2", Amount: 500, Note: "lunch"},
			wantMethod: "SendMoney",
			wantArgs:   []any{"u2", 500.0, "lunch"},
		},
		{
			name:       "add money",
			intent:     AddMoney{Source: "card", Amount: 1000},
			wantMethod: "AddMoney",
			wantArgs:   []any{"card", 1000.0},
		},
		{
			name:       "withdraw",
			intent:     Withdraw{Destination: "agent-22", Amount: 300},
			wantMethod: "Withdraw",
			wantArgs:   []any{"agent-22", 300.0},
		},
		{
			name:       "savings deposit",
			intent:     SavingsDeposit{Amount: 200},
			wantMethod: "DepositToSavings",
			wantArgs:   []any{200.0},
		},
		{
			name:       "savings withdraw",
			intent:     SavingsWithdraw{Amount: 50},
			wantMethod: "WithdrawFromSavings",
			wantArgs:   []any{50.0},
		},
		{
			name:       "mobile recharge",
			intent:     MobileRecharge{OperatorName: "Grameenphone", Phone: "+8801711000000", Amount: 100},
			wantMethod: "PerformMobileRecharge",
			wantArgs:   []any{"Grameenphone", "+8801711000000", 100.0},
		},
		{
			name:       "bill payment",
			intent:     BillPayment{Biller: biller, AccountNumber: "ACC-7", Amount: 1200},
			wantMethod: "PerformBillPayment",
			wantArgs:   []any{biller, "ACC-7", 1200.0},
		},
		{
			name:       "ticket purchase",
			intent:     TicketPurchase{Ticket: ticket, Amount: 1400},
			wantMethod: "PurchaseTicket",
			wantArgs:   []any{ticket, 1400.0},
		},
		{
			name:       "international transfer",
			intent:     InternationalTransfer{RecipientName: "Ayesha", Country: "MY", BankAccount: "MY-001", Currency: "MYR", ExchangeRate: 0.039, Amount: 10000},
			wantMethod: "SendInternationalTransfer",
			wantArgs:   []any{"Ayesha", "MY", "MY-001", "MYR", 0.039, 10000.0},
		},
		{
			name:       "product purchase",
			intent:     ProductPurchase{Item: item},
			wantMethod: "BuyProduct",
			wantArgs:   []any{"p-9", 2, "House 4, Road 7, Dhanmondi", 3000.0},
		},
		{
			name:       "cart checkout",
			intent:     CartCheckout{Items: []models.CartItem{item}, DeliveryFee: 60},
			wantMethod: "BuyProduct",
			wantArgs:   []any{"p-9", 2, "House 4, Road 7, Dhanmondi", 3060.0},
		},
		{
			name:       "gift purchase",
			intent:     GiftPurchase{RecipientID: "u3", GiftType: "eid", Message: "Eid Mubarak", Amount: 750},
			wantMethod: "PurchaseGift",
			wantArgs:   []any{"u3", "eid", "Eid Mubarak", 750.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &recordingBackend{}
			tx, err := Dispatch(context.Background(), backend, tt.intent)
			if err != nil {
				t.Fatalf("Dispatch failed: %v", err)
			}
			if tx == nil {
				t.Fatal("expected transaction, got nil")
			}
			if len(backend.calls) != 1 {
				t.Fatalf("expected exactly 1 backend call, got %d", len(backend.calls))
			}
			got := backend.calls[0]
			if got.method != tt.wantMethod {
				t.Errorf("method: expected %s, got %s", tt.wantMethod, got.method)
			}
			if !reflect.DeepEqual(got.args, tt.wantArgs) {
				t.Errorf("args: expected %v, got %v", tt.wantArgs, got.args)
			}
		})
	}
}

func TestDispatchBackendFailures(t *testing.T) {
	t.Run("backend error is returned", func(t *testing.T) {
		boom := errors.New("insufficient funds")
		backend := &recordingBackend{failOn: map[string]error{"SendMoney": boom}}

		tx, err := Dispatch(context.Background(), backend, SendMoney{RecipientID: "u2", Amount: 10})
		if !errors.Is(err, boom) {
			t.Errorf("expected %v, got %v", boom, err)
		}
		if tx != nil {
			t.Errorf("expected nil transaction, got %+v", tx)
		}
	})

	t.Run("nil transaction is a failure", func(t *testing.T) {
		backend := &recordingBackend{nilOn: map[string]bool{"AddMoney": true}}

		tx, err := Dispatch(context.Background(), backend, AddMoney{Source: "bank", Amount: 10})
		if !errors.Is(err, ErrNoTransaction) {
			t.Errorf("expected ErrNoTransaction, got %v", err)
		}
		if tx != nil {
			t.Errorf("expected nil transaction, got %+v", tx)
		}
	})
}

func TestCartCheckout(t *testing.T) {
	line := func(id, address string) models.CartItem {
		return models.CartItem{ProductID: id, Name: id, Price: 100, Quantity: 1, DeliveryAddress: address}
	}

	t.Run("every line is purchased and summarized", func(t *testing.T) {
		backend := &recordingBackend{}
		cart := CartCheckout{
			Items:       []models.CartItem{line("p1", "Banani"), line("p2", "Banani"), line("p3", "Banani")},
			DeliveryFee: 50,
		}

		tx, err := Dispatch(context.Background(), backend, cart)
		if err != nil {
			t.Fatalf("Dispatch failed: %v", err)
		}
		if len(backend.calls) != 3 {
			t.Fatalf("expected 3 purchases, got %d", len(backend.calls))
		}
		if tx.Type != models.TxCartCheckout {
			t.Errorf("type: expected %s, got %s", models.TxCartCheckout, tx.Type)
		}
		if tx.Amount != cart.Total() {
			t.Errorf("amount: expected %v, got %v", cart.Total(), tx.Amount)
		}
	})

	t.Run("missing address aborts without rolling back earlier lines", func(t *testing.T) {
		backend := &recordingBackend{}
		cart := CartCheckout{
			Items: []models.CartItem{line("p1", "Gulshan"), line("p2", ""), line("p3", "Gulshan")},
		}

		tx, err := Dispatch(context.Background(), backend, cart)
		if tx != nil {
			t.Errorf("expected nil transaction, got %+v", tx)
		}
		if !errors.Is(err, ErrMissingDeliveryAddress) {
			t.Fatalf("expected ErrMissingDeliveryAddress, got %v", err)
		}

		var checkoutErr *CheckoutError
		if !errors.As(err, &checkoutErr) {
			t.Fatalf("expected *CheckoutError, got %T", err)
		}
		if checkoutErr.Index != 1 {
			t.Errorf("index: expected 1, got %d", checkoutErr.Index)
		}
		if len(checkoutErr.Completed) != 1 || checkoutErr.Completed[0] != "BuyProduct-tx" {
			t.Errorf("completed: expected [BuyProduct-tx], got %v", checkoutErr.Completed)
		}

		// Item 1 was bought, item 3 never attempted.
		if len(backend.calls) != 1 {
			t.Errorf("expected 1 backend call, got %d", len(backend.calls))
		}
	})

	t.Run("backend failure mid-cart reports completed lines", func(t *testing.T) {
		backend := &recordingBackend{failOn: map[string]error{}}
		cart := CartCheckout{Items: []models.CartItem{line("p1", "Uttara")}}
		backend.failOn["BuyProduct"] = errors.New("out of stock")

		_, err := Dispatch(context.Background(), backend, cart)
		var checkoutErr *CheckoutError
		if !errors.As(err, &checkoutErr) {
			t.Fatalf("expected *CheckoutError, got %v", err)
		}
		if len(checkoutErr.Completed) != 0 {
			t.Errorf("expected no completed purchases, got %v", checkoutErr.Completed)
		}
	})

	t.Run("zero quantity line rejects the cart before any purchase", func(t *testing.T) {
		backend := &recordingBackend{}
		bad := line("p2", "Dhanmondi")
		bad.Quantity = 0
		cart := CartCheckout{Items: []models.CartItem{line("p1", "Dhanmondi"), bad}}

		tx, err := Dispatch(context.Background(), backend, cart)
		if tx != nil {
			t.Errorf("expected nil transaction, got %+v", tx)
		}
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
		var checkoutErr *CheckoutError
		if !errors.As(err, &checkoutErr) || checkoutErr.Index != 1 || len(checkoutErr.Completed) != 0 {
			t.Errorf("expected failure at index 1 with nothing completed, got %+v", checkoutErr)
		}
		if len(backend.calls) != 0 {
			t.Errorf("expected no backend calls, got %d", len(backend.calls))
		}
	})

	t.Run("empty cart", func(t *testing.T) {
		backend := &recordingBackend{}
		_, err := Dispatch(context.Background(), backend, CartCheckout{})
		if !errors.Is(err, ErrEmptyCart) {
			t.Errorf("expected ErrEmptyCart, got %v", err)
		}
		if len(backend.calls) != 0 {
			t.Errorf("expected no backend calls, got %d", len(backend.calls))
		}
	})
}

func TestProductPurchaseRejectsZeroQuantity(t *testing.T) {
	backend := &recordingBackend{}
	intent := ProductPurchase{Item: models.CartItem{ProductID: "p1", Price: 100, Quantity: 0, DeliveryAddress: "Mirpur"}}

	if _, err := Dispatch(context.Background(), backend, intent); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
	if len(backend.calls) != 0 {
		t.Errorf("expected no backend calls, got %d", len(backend.calls))
	}
}
