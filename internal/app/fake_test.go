package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ouge98-max/your-repo-sub000/internal/connectivity"
	"github.com/ouge98-max/your-repo-sub000/internal/localstore"
	"github.com/ouge98-max/your-repo-sub000/internal/models"
	"github.com/ouge98-max/your-repo-sub000/internal/notify"
)

// fakeBackend is an in-memory Backend that counts calls.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	user  *models.User
	users []models.User
	chats []models.Chat

	// payErr is returned by every money-moving call when set.
	payErr error
	// sendErr decides the outcome of SendMessage per message text.
	sendErr func(text string) error
	// chatsHook, when set, runs at the start of GetChats with the call number.
	// A non-nil result replaces the stored chats for that call.
	chatsHook func(call int) []models.Chat
	// userGate, when set, blocks GetCurrentUser until closed.
	userGate chan struct{}

	sent []models.Message
	subs []models.PushSubscription
}

func newFakeBackend() *fakeBackend {
	user := &models.User{ID: "u1", Name: "Rahim", Email: "rahim@example.com", Balance: 1000, Currency: models.DefaultCurrency}
	return &fakeBackend{
		calls: make(map[string]int),
		user:  user,
		users: []models.User{*user, {ID: "u2", Name: "Karim", Email: "karim@example.com", Currency: models.DefaultCurrency}},
		chats: []models.Chat{{ID: "c1", Members: []string{"u1", "u2"}}},
	}
}

func (f *fakeBackend) record(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.calls[name]
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) totalPaymentCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for name, c := range f.calls {
		switch name {
		case "GetCurrentUser", "GetAllUsers", "GetChats", "SendMessage", "SavePushSubscription":
		default:
			n += c
		}
	}
	return n
}

func (f *fakeBackend) tx(name string, txType models.TransactionType, amount float64) (*models.Transaction, error) {
	n := f.record(name)
	if f.payErr != nil {
		return nil, f.payErr
	}
	return &models.Transaction{
		ID:       fmt.Sprintf("%s-%d", name, n),
		UserID:   "u1",
		Type:     txType,
		Amount:   amount,
		Currency: models.DefaultCurrency,
		Status:   models.StatusCompleted,
	}, nil
}

func (f *fakeBackend) SendMoney(_ context.Context, _ string, amount float64, _ string) (*models.Transaction, error) {
	return f.tx("SendMoney", models.TxSendMoney, amount)
}

func (f *fakeBackend) AddMoney(_ context.Context, _ string, amount float64) (*models.Transaction, error) {
	return f.tx("AddMoney", models.TxAddMoney, amount)
}

func (f *fakeBackend) Withdraw(_ context.Context, _ string, amount float64) (*models.Transaction, error) {
	return f.tx("Withdraw", models.TxWithdraw, amount)
}

func (f *fakeBackend) DepositToSavings(_ context.Context, amount float64) (*models.Transaction, error) {
	return f.tx("DepositToSavings", models.TxSavingsDeposit, amount)
}

func (f *fakeBackend) WithdrawFromSavings(_ context.Context, amount float64) (*models.Transaction, error) {
	return f.tx("WithdrawFromSavings", models.TxSavingsWithdraw, amount)
}

func (f *fakeBackend) PerformMobileRecharge(_ context.Context, _, _ string, amount float64) (*models.Transaction, error) {
	return f.tx("PerformMobileRecharge", models.TxMobileRecharge, amount)
}

func (f *fakeBackend) PerformBillPayment(_ context.Context, _ models.Biller, _ string, amount float64) (*models.Transaction, error) {
	return f.tx("PerformBillPayment", models.TxBillPayment, amount)
}

func (f *fakeBackend) PurchaseTicket(_ context.Context, _ models.Ticket, amount float64) (*models.Transaction, error) {
	return f.tx("PurchaseTicket", models.TxTicketPurchase, amount)
}

func (f *fakeBackend) SendInternationalTransfer(_ context.Context, _, _, _, _ string, _, amount float64) (*models.Transaction, error) {
	return f.tx("SendInternationalTransfer", models.TxInternationalTransfer, amount)
}

func (f *fakeBackend) BuyProduct(_ context.Context, _ string, _ int, _ string, amount float64) (*models.Transaction, error) {
	return f.tx("BuyProduct", models.TxProductPurchase, amount)
}

func (f *fakeBackend) PurchaseGift(_ context.Context, _, _, _ string, amount float64) (*models.Transaction, error) {
	return f.tx("PurchaseGift", models.TxGiftPurchase, amount)
}

func (f *fakeBackend) GetCurrentUser(ctx context.Context) (*models.User, error) {
	f.record("GetCurrentUser")
	if f.userGate != nil {
		select {
		case <-f.userGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return nil, nil
	}
	u := *f.user
	return &u, nil
}

func (f *fakeBackend) GetAllUsers(context.Context) ([]models.User, error) {
	f.record("GetAllUsers")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.User(nil), f.users...), nil
}

func (f *fakeBackend) GetChats(context.Context) ([]models.Chat, error) {
	n := f.record("GetChats")
	if f.chatsHook != nil {
		if chats := f.chatsHook(n); chats != nil {
			return chats, nil
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Chat, len(f.chats))
	for i, c := range f.chats {
		c.Messages = append([]models.Message(nil), c.Messages...)
		out[i] = c
	}
	return out, nil
}

func (f *fakeBackend) SendMessage(_ context.Context, chatID string, msg models.Message) (*models.Message, error) {
	n := f.record("SendMessage")
	if f.sendErr != nil {
		if err := f.sendErr(msg.Text); err != nil {
			return nil, err
		}
	}

	stored := models.Message{
		ID:        fmt.Sprintf("m-%d", n),
		ClientID:  msg.ID,
		SenderID:  msg.SenderID,
		Text:      msg.Text,
		Timestamp: msg.Timestamp,
		Status:    models.MessageSent,
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, stored)
	for i := range f.chats {
		if f.chats[i].ID == chatID {
			f.chats[i].Messages = append(f.chats[i].Messages, stored)
		}
	}
	return &stored, nil
}

func (f *fakeBackend) SavePushSubscription(_ context.Context, sub models.PushSubscription) error {
	f.record("SavePushSubscription")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, sub)
	return nil
}

func (f *fakeBackend) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.Text
	}
	return out
}

type testApp struct {
	*App
	api     *fakeBackend
	store   *localstore.Store
	toasts  *notify.Recorder
	monitor *connectivity.Monitor
}

func newTestApp(t *testing.T, api *fakeBackend) *testApp {
	t.Helper()

	store, err := localstore.Open(filepath.Join(t.TempDir(), "client.db"))
	if err != nil {
		t.Fatalf("Failed to open local store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	toasts := &notify.Recorder{}
	monitor := connectivity.NewMonitor(true)
	a := New(Config{
		Backend:       api,
		Outbox:        store,
		Cache:         store,
		Monitor:       monitor,
		Notifier:      toasts,
		PushPublicKey: "BPublicKey",
	})
	return &testApp{App: a, api: api, store: store, toasts: toasts, monitor: monitor}
}

// signIn loads the fake's user into the app.
func (ta *testApp) signIn(t *testing.T) {
	t.Helper()
	if err := ta.RefreshData(context.Background()); err != nil {
		t.Fatalf("RefreshData failed: %v", err)
	}
	if ta.CurrentUser() == nil {
		t.Fatal("expected a current user after refresh")
	}
}

func (ta *testApp) lastToast(t *testing.T) notify.Toast {
	t.Helper()
	toast, ok := ta.toasts.Last()
	if !ok {
		t.Fatal("expected a toast")
	}
	return toast
}
