package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/ouge98-max/your-repo-sub000/internal/connectivity"
	"github.com/ouge98-max/your-repo-sub000/internal/models"
	"github.com/ouge98-max/your-repo-sub000/internal/notify"
	"github.com/ouge98-max/your-repo-sub000/internal/outbox"
	"github.com/ouge98-max/your-repo-sub000/internal/payment"
)

func TestProcessPayment(t *testing.T) {
	ctx := context.Background()
	send := payment.SendMoney{RecipientID: "u2", Amount: 250, Note: "lunch"}

	t.Run("wrong PIN never reaches the backend", func(t *testing.T) {
		ta := newTestApp(t, newFakeBackend())
		ta.signIn(t)

		tx, err := ta.ProcessPayment(ctx, "9999", send)
		if tx != nil {
			t.Errorf("expected nil transaction, got %+v", tx)
		}
		if !errors.Is(err, payment.ErrInvalidPIN) {
			t.Errorf("expected ErrInvalidPIN, got %v", err)
		}
		if n := ta.api.totalPaymentCalls(); n != 0 {
			t.Errorf("expected no backend payment calls, got %d", n)
		}
		if toast := ta.lastToast(t); toast.Level != notify.LevelError || toast.Message != "Incorrect PIN" {
			t.Errorf("unexpected toast %+v", toast)
		}
	})

	t.Run("wrong PIN is rejected for every intent", func(t *testing.T) {
		ta := newTestApp(t, newFakeBackend())
		ta.signIn(t)

		item := models.CartItem{ProductID: "p1", Name: "Kettle", Price: 100, Quantity: 1, DeliveryAddress: "Banani"}
		intents := []payment.Intent{
			payment.SendMoney{RecipientID: "u2", Amount: 10},
			payment.AddMoney{Source: "card", Amount: 10},
			payment.Withdraw{Destination: "bank", Amount: 10},
			payment.SavingsDeposit{Amount: 10},
			payment.SavingsWithdraw{Amount: 10},
			payment.MobileRecharge{OperatorName: "Grameenphone", Phone: "01700000000", Amount: 10},
			payment.BillPayment{Biller: models.Biller{ID: "desco", Name: "DESCO"}, AccountNumber: "A1", Amount: 10},
			payment.TicketPurchase{Ticket: models.Ticket{Kind: "bus", Provider: "Green Line", Seats: 1}, Amount: 10},
			payment.InternationalTransfer{RecipientName: "Ayesha", Country: "MY", Currency: "MYR", ExchangeRate: 0.04, Amount: 10},
			payment.ProductPurchase{Item: item},
			payment.CartCheckout{Items: []models.CartItem{item}},
			payment.GiftPurchase{RecipientID: "u2", GiftType: "eid", Amount: 10},
		}
		if len(intents) != 12 {
			t.Fatalf("expected 12 intents, got %d", len(intents))
		}

		for _, intent := range intents {
			tx, err := ta.ProcessPayment(ctx, "0000", intent)
			if tx != nil || !errors.Is(err, payment.ErrInvalidPIN) {
				t.Errorf("%s: expected ErrInvalidPIN and nil transaction, got %+v, %v", intent.Type(), tx, err)
			}
		}
		if n := ta.api.totalPaymentCalls(); n != 0 {
			t.Errorf("expected no backend payment calls, got %d", n)
		}
	})

	t.Run("signed-out user never reaches the backend", func(t *testing.T) {
		ta := newTestApp(t, newFakeBackend())

		tx, err := ta.ProcessPayment(ctx, payment.DefaultPIN, send)
		if tx != nil {
			t.Errorf("expected nil transaction, got %+v", tx)
		}
		if !errors.Is(err, payment.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if n := ta.api.totalPaymentCalls(); n != 0 {
			t.Errorf("expected no backend payment calls, got %d", n)
		}
		if toast := ta.lastToast(t); toast.Level != notify.LevelError {
			t.Errorf("expected error toast, got %+v", toast)
		}
	})

	t.Run("success refreshes exactly once", func(t *testing.T) {
		ta := newTestApp(t, newFakeBackend())
		ta.signIn(t)

		tx, err := ta.ProcessPayment(ctx, payment.DefaultPIN, send)
		if err != nil {
			t.Fatalf("ProcessPayment failed: %v", err)
		}
		if tx == nil || tx.Type != models.TxSendMoney || tx.Amount != 250 {
			t.Fatalf("unexpected transaction %+v", tx)
		}
		if n := ta.api.count("SendMoney"); n != 1 {
			t.Errorf("expected 1 SendMoney call, got %d", n)
		}
		// One fetch from signIn plus exactly one from the payment.
		for _, name := range []string{"GetCurrentUser", "GetAllUsers", "GetChats"} {
			if n := ta.api.count(name); n != 2 {
				t.Errorf("expected 2 %s calls, got %d", name, n)
			}
		}
		if toast := ta.lastToast(t); toast.Level != notify.LevelSuccess {
			t.Errorf("expected success toast, got %+v", toast)
		}
	})

	t.Run("backend error shows its message and skips refresh", func(t *testing.T) {
		api := newFakeBackend()
		ta := newTestApp(t, api)
		ta.signIn(t)
		api.payErr = connect.NewError(connect.CodeFailedPrecondition, errors.New("insufficient funds"))

		tx, err := ta.ProcessPayment(ctx, payment.DefaultPIN, payment.SavingsDeposit{Amount: 5000})
		if tx != nil {
			t.Errorf("expected nil transaction, got %+v", tx)
		}
		if err == nil {
			t.Fatal("expected an error")
		}
		if toast := ta.lastToast(t); toast.Message != "insufficient funds" {
			t.Errorf("expected backend message in toast, got %q", toast.Message)
		}
		if n := api.count("GetCurrentUser"); n != 1 {
			t.Errorf("expected no refresh after failure, got %d user fetches", n)
		}
	})

	t.Run("cart without delivery address reports partial purchase", func(t *testing.T) {
		ta := newTestApp(t, newFakeBackend())
		ta.signIn(t)

		cart := payment.CartCheckout{
			Items: []models.CartItem{
				{ProductID: "p1", Name: "Kettle", Price: 1200, Quantity: 1, DeliveryAddress: "Dhaka"},
				{ProductID: "p2", Name: "Mug", Price: 150, Quantity: 2},
				{ProductID: "p3", Name: "Tea", Price: 300, Quantity: 1, DeliveryAddress: "Dhaka"},
			},
			DeliveryFee: 60,
		}

		tx, err := ta.ProcessPayment(ctx, payment.DefaultPIN, cart)
		if tx != nil {
			t.Errorf("expected nil transaction, got %+v", tx)
		}
		var checkoutErr *payment.CheckoutError
		if !errors.As(err, &checkoutErr) {
			t.Fatalf("expected CheckoutError, got %v", err)
		}
		if len(checkoutErr.Completed) != 1 {
			t.Errorf("expected 1 completed purchase, got %v", checkoutErr.Completed)
		}
		if n := ta.api.count("BuyProduct"); n != 1 {
			t.Errorf("expected 1 BuyProduct call, got %d", n)
		}
		if toast := ta.lastToast(t); !strings.HasPrefix(toast.Message, "Checkout failed:") {
			t.Errorf("unexpected toast %q", toast.Message)
		}
	})
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()
	unreachable := errors.New("network unreachable")

	t.Run("online success reconciles the bubble", func(t *testing.T) {
		ta := newTestApp(t, newFakeBackend())
		ta.signIn(t)

		msg, err := ta.SendMessage(ctx, "c1", "hello")
		if err != nil {
			t.Fatalf("SendMessage failed: %v", err)
		}
		if msg.Status != models.MessageSent {
			t.Errorf("expected status sent, got %s", msg.Status)
		}

		chat, _ := ta.Chat("c1")
		if len(chat.Messages) != 1 {
			t.Fatalf("expected 1 message in chat, got %d", len(chat.Messages))
		}
		if got := chat.Messages[0]; got.ID != msg.ID || !strings.HasPrefix(got.ClientID, tempIDPrefix) {
			t.Errorf("unexpected message %+v", got)
		}
	})

	t.Run("online failure is a hard failure", func(t *testing.T) {
		api := newFakeBackend()
		api.sendErr = func(string) error { return unreachable }
		ta := newTestApp(t, api)
		ta.signIn(t)

		msg, err := ta.SendMessage(ctx, "c1", "hello")
		if msg != nil || !errors.Is(err, unreachable) {
			t.Fatalf("expected failure, got %+v, %v", msg, err)
		}
		queued, _ := ta.store.GetQueuedMessages(ctx)
		if len(queued) != 0 {
			t.Errorf("expected empty outbox, got %d", len(queued))
		}
		chat, _ := ta.Chat("c1")
		if len(chat.Messages) != 1 || chat.Messages[0].Status != models.MessageFailed {
			t.Errorf("expected one failed bubble, got %+v", chat.Messages)
		}
		if toast := ta.lastToast(t); toast.Level != notify.LevelError {
			t.Errorf("expected error toast, got %+v", toast)
		}
	})

	t.Run("offline failure is queued with its temporary id", func(t *testing.T) {
		api := newFakeBackend()
		ta := newTestApp(t, api)
		ta.signIn(t)
		api.sendErr = func(string) error { return unreachable }
		ta.monitor.Set(false)

		msg, err := ta.SendMessage(ctx, "c1", "see you soon")
		if err != nil {
			t.Fatalf("expected nil error when queued, got %v", err)
		}
		if msg.Status != models.MessageQueued || !strings.HasPrefix(msg.ID, tempIDPrefix) {
			t.Errorf("unexpected queued message %+v", msg)
		}

		queued, err := ta.store.GetQueuedMessages(ctx)
		if err != nil {
			t.Fatalf("GetQueuedMessages failed: %v", err)
		}
		if len(queued) != 1 || queued[0].ID != msg.ID || queued[0].ChatID != "c1" {
			t.Fatalf("unexpected queue %+v", queued)
		}
		if len(api.sentTexts()) != 0 {
			t.Errorf("expected nothing delivered, got %v", api.sentTexts())
		}
		if !ta.Syncer().Pending(outbox.SyncTag) {
			t.Error("expected sync tag to be pending")
		}
		if toast := ta.lastToast(t); toast.Level != notify.LevelInfo {
			t.Errorf("expected info toast, got %+v", toast)
		}
	})
}

func TestSyncQueuedMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("drain replays once and is idempotent", func(t *testing.T) {
		api := newFakeBackend()
		ta := newTestApp(t, api)
		ta.signIn(t)
		api.sendErr = func(string) error { return errors.New("offline") }
		ta.monitor.Set(false)

		msg, err := ta.SendMessage(ctx, "c1", "queued hello")
		if err != nil {
			t.Fatalf("SendMessage failed: %v", err)
		}

		api.sendErr = nil
		ta.monitor.Set(true)

		res, err := ta.SyncQueuedMessages(ctx)
		if err != nil {
			t.Fatalf("SyncQueuedMessages failed: %v", err)
		}
		if res.Sent != 1 || res.Failed != 0 {
			t.Errorf("unexpected result %+v", res)
		}

		res, err = ta.SyncQueuedMessages(ctx)
		if err != nil {
			t.Fatalf("second SyncQueuedMessages failed: %v", err)
		}
		if res.Sent != 0 {
			t.Errorf("expected nothing to resend, got %+v", res)
		}
		if got := api.sentTexts(); len(got) != 1 {
			t.Errorf("expected exactly one delivery, got %v", got)
		}

		chat, _ := ta.Chat("c1")
		if len(chat.Messages) != 1 {
			t.Fatalf("expected reconciled chat with 1 message, got %+v", chat.Messages)
		}
		if got := chat.Messages[0]; got.ClientID != msg.ID || got.Status != models.MessageSent {
			t.Errorf("bubble not reconciled: %+v", got)
		}
	})

	t.Run("failures stay queued and produce one toast", func(t *testing.T) {
		api := newFakeBackend()
		api.sendErr = func(text string) error {
			if text == "bad" {
				return errors.New("rejected")
			}
			return nil
		}
		ta := newTestApp(t, api)
		ta.signIn(t)

		for _, qm := range []models.QueuedMessage{
			{Message: models.Message{ID: "tmp-1", SenderID: "u1", Text: "one"}, ChatID: "c1"},
			{Message: models.Message{ID: "tmp-2", SenderID: "u1", Text: "bad"}, ChatID: "c1"},
			{Message: models.Message{ID: "tmp-3", SenderID: "u1", Text: "three"}, ChatID: "c1"},
		} {
			if err := ta.store.AddMessageToQueue(ctx, qm); err != nil {
				t.Fatalf("AddMessageToQueue failed: %v", err)
			}
		}

		res, err := ta.SyncQueuedMessages(ctx)
		if err != nil {
			t.Fatalf("SyncQueuedMessages failed: %v", err)
		}
		if res.Sent != 2 || res.Failed != 1 {
			t.Errorf("unexpected result %+v", res)
		}

		remaining, _ := ta.store.GetQueuedMessages(ctx)
		if len(remaining) != 1 || remaining[0].ID != "tmp-2" {
			t.Errorf("expected only tmp-2 to remain, got %+v", remaining)
		}
		if got := api.sentTexts(); len(got) != 2 || got[0] != "one" || got[1] != "three" {
			t.Errorf("unexpected delivery order %v", got)
		}

		failures := 0
		for _, toast := range ta.toasts.Toasts() {
			if toast.Message == "Failed to send some messages." {
				failures++
			}
		}
		if failures != 1 {
			t.Errorf("expected one aggregate failure toast, got %d", failures)
		}
	})
}

func TestRunDrainsOnReconnect(t *testing.T) {
	api := newFakeBackend()
	ta := newTestApp(t, api)
	ta.signIn(t)

	api.sendErr = func(string) error { return errors.New("offline") }
	ta.monitor.Set(false)
	if _, err := ta.SendMessage(context.Background(), "c1", "later"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	api.sendErr = nil

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ta.Run(ctx) }()

	ta.monitor.Set(true)

	deadline := time.Now().Add(2 * time.Second)
	for {
		queued, err := ta.store.GetQueuedMessages(context.Background())
		if err != nil {
			t.Fatalf("GetQueuedMessages failed: %v", err)
		}
		if len(queued) == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("outbox was not drained after reconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if got := api.sentTexts(); len(got) != 1 || got[0] != "later" {
		t.Errorf("unexpected deliveries %v", got)
	}
}

func TestRefreshData(t *testing.T) {
	ctx := context.Background()

	t.Run("offline skips the network", func(t *testing.T) {
		ta := newTestApp(t, newFakeBackend())
		ta.monitor.Set(false)

		if err := ta.RefreshData(ctx); err != nil {
			t.Errorf("RefreshData: %v", err)
		}
		if err := ta.RefreshChats(ctx); err != nil {
			t.Errorf("RefreshChats: %v", err)
		}
		for _, name := range []string{"GetCurrentUser", "GetAllUsers", "GetChats"} {
			if n := ta.api.count(name); n != 0 {
				t.Errorf("expected no %s calls, got %d", name, n)
			}
		}
	})

	t.Run("missing user applies nothing", func(t *testing.T) {
		api := newFakeBackend()
		api.user = nil
		ta := newTestApp(t, api)

		if err := ta.RefreshData(ctx); !errors.Is(err, ErrNoCurrentUser) {
			t.Errorf("expected ErrNoCurrentUser, got %v", err)
		}
		if len(ta.Users()) != 0 || len(ta.Chats()) != 0 {
			t.Error("expected no partial state after failed refresh")
		}
	})

	t.Run("snapshot is mirrored to the cache", func(t *testing.T) {
		ta := newTestApp(t, newFakeBackend())
		ta.signIn(t)

		var cached models.User
		ok, err := ta.store.Get(ctx, cacheKeyCurrentUser, &cached)
		if err != nil || !ok {
			t.Fatalf("expected cached user, got ok=%v err=%v", ok, err)
		}
		if cached.ID != "u1" {
			t.Errorf("expected cached user u1, got %s", cached.ID)
		}
		var chats []models.Chat
		if ok, _ := ta.store.Get(ctx, cacheKeyChats, &chats); !ok || len(chats) != 1 {
			t.Errorf("expected 1 cached chat, got %v", chats)
		}
	})

	t.Run("stale poll does not overwrite a newer refresh", func(t *testing.T) {
		api := newFakeBackend()
		ta := newTestApp(t, api)
		ta.signIn(t)

		started := make(chan struct{})
		release := make(chan struct{})
		api.chatsHook = func(call int) []models.Chat {
			if call != 2 {
				return nil
			}
			close(started)
			<-release
			return []models.Chat{{ID: "c1", Name: "stale"}}
		}
		api.mu.Lock()
		api.chats[0].Name = "fresh"
		api.mu.Unlock()

		pollDone := make(chan error, 1)
		go func() { pollDone <- ta.RefreshChats(ctx) }()
		<-started

		if err := ta.RefreshData(ctx); err != nil {
			t.Fatalf("RefreshData failed: %v", err)
		}
		close(release)
		if err := <-pollDone; err != nil {
			t.Fatalf("RefreshChats failed: %v", err)
		}

		chat, ok := ta.Chat("c1")
		if !ok || chat.Name != "fresh" {
			t.Errorf("expected fresh chat to win, got %+v", chat)
		}
	})
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()

	warm := newTestApp(t, newFakeBackend())
	warm.signIn(t)

	slow := newFakeBackend()
	slow.userGate = make(chan struct{})
	slow.user = &models.User{ID: "u1", Name: "Rahim (updated)", Currency: models.DefaultCurrency}

	a := New(Config{Backend: slow, Outbox: warm.store, Cache: warm.store, Notifier: &notify.Recorder{}})

	cached, refreshed := a.Bootstrap(ctx)
	if !cached {
		t.Fatal("expected cached snapshot to be applied")
	}
	user := a.CurrentUser()
	if user == nil || user.Name != "Rahim" {
		t.Fatalf("expected cached user before network, got %+v", user)
	}
	if len(a.Chats()) != 1 {
		t.Errorf("expected cached chats, got %d", len(a.Chats()))
	}

	close(slow.userGate)
	select {
	case err := <-refreshed:
		if err != nil {
			t.Fatalf("background refresh failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("background refresh did not finish")
	}
	if user := a.CurrentUser(); user.Name != "Rahim (updated)" {
		t.Errorf("expected network user to replace cache, got %s", user.Name)
	}
}

func TestBootstrapKeepsCacheWhenNetworkFails(t *testing.T) {
	ctx := context.Background()

	warm := newTestApp(t, newFakeBackend())
	warm.signIn(t)

	broken := newFakeBackend()
	broken.user = nil

	a := New(Config{Backend: broken, Outbox: warm.store, Cache: warm.store, Notifier: &notify.Recorder{}})

	cached, refreshed := a.Bootstrap(ctx)
	if !cached {
		t.Fatal("expected cached snapshot to be applied")
	}
	select {
	case err := <-refreshed:
		if !errors.Is(err, ErrNoCurrentUser) {
			t.Fatalf("expected ErrNoCurrentUser, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("background refresh did not finish")
	}

	user := a.CurrentUser()
	if user == nil || user.ID != "u1" {
		t.Fatalf("expected cached user to stay applied, got %+v", user)
	}
	if len(a.Chats()) != 1 {
		t.Errorf("expected cached chats to stay applied, got %d", len(a.Chats()))
	}
}

func TestLogoutClearsCache(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, newFakeBackend())
	ta.signIn(t)

	if err := ta.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if ta.CurrentUser() != nil {
		t.Error("expected no current user after logout")
	}
	var u models.User
	if ok, _ := ta.store.Get(ctx, cacheKeyCurrentUser, &u); ok {
		t.Error("expected cached user to be removed")
	}
}

func TestLogoutDuringRefresh(t *testing.T) {
	ctx := context.Background()
	api := newFakeBackend()
	ta := newTestApp(t, api)
	ta.signIn(t)

	api.userGate = make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- ta.RefreshData(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for api.count("GetCurrentUser") < 2 {
		if time.Now().After(deadline) {
			t.Fatal("refresh never reached the backend")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := ta.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	close(api.userGate)
	if err := <-done; err != nil {
		t.Fatalf("RefreshData failed: %v", err)
	}

	if ta.CurrentUser() != nil {
		t.Error("refresh started before logout signed the user back in")
	}
	var raw models.User
	if ok, _ := ta.store.Get(ctx, cacheKeyCurrentUser, &raw); ok {
		t.Errorf("refresh rewrote the cleared cache: %+v", raw)
	}

	// A cold start on the same store must come up signed out.
	cold := New(Config{
		Backend:  newFakeBackend(),
		Outbox:   ta.store,
		Cache:    ta.store,
		Monitor:  connectivity.NewMonitor(false),
		Notifier: &notify.Recorder{},
	})
	cached, refreshed := cold.Bootstrap(ctx)
	<-refreshed
	if cached || cold.CurrentUser() != nil {
		t.Fatalf("expected no cached session, got cached=%v user=%+v", cached, cold.CurrentUser())
	}
	if _, err := cold.ProcessPayment(ctx, payment.DefaultPIN, payment.SavingsDeposit{Amount: 10}); !errors.Is(err, payment.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestBootstrapIgnoresBlankCachedUser(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, newFakeBackend())

	var nobody *models.User
	if err := ta.store.Put(ctx, cacheKeyCurrentUser, nobody); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	ta.monitor.Set(false)

	cached, refreshed := ta.Bootstrap(ctx)
	<-refreshed
	if cached {
		t.Error("a null cached user must not count as a snapshot")
	}
	if ta.CurrentUser() != nil {
		t.Errorf("expected no current user, got %+v", ta.CurrentUser())
	}
}

func TestEnablePush(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, newFakeBackend())

	if _, err := ta.EnablePush(ctx, "https://push.example/1", "key", "auth"); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("expected ErrNotLoggedIn, got %v", err)
	}

	ta.signIn(t)
	sub, err := ta.EnablePush(ctx, "https://push.example/1", "key", "auth")
	if err != nil {
		t.Fatalf("EnablePush failed: %v", err)
	}
	if sub.PublicKey != "BPublicKey" || sub.UserID != "u1" {
		t.Errorf("unexpected subscription %+v", sub)
	}
	if n := ta.api.count("SavePushSubscription"); n != 1 {
		t.Errorf("expected 1 SavePushSubscription call, got %d", n)
	}
}
