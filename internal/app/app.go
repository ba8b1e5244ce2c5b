// Package app is the client core: process-wide application state (current user,
// users, chats) plus the operations that mutate it: payments, refreshes, chat
// sends and the offline outbox drain.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"connectrpc.com/connect"

	"github.com/ouge98-max/your-repo-sub000/internal/connectivity"
	"github.com/ouge98-max/your-repo-sub000/internal/models"
	"github.com/ouge98-max/your-repo-sub000/internal/notify"
	"github.com/ouge98-max/your-repo-sub000/internal/outbox"
	"github.com/ouge98-max/your-repo-sub000/internal/payment"
)

// DefaultPollInterval is how often chats are re-fetched while running.
const DefaultPollInterval = 5 * time.Second

// Backend is every backend call the client core makes.
type Backend interface {
	payment.Backend

	GetCurrentUser(ctx context.Context) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
	GetChats(ctx context.Context) ([]models.Chat, error)
	SendMessage(ctx context.Context, chatID string, msg models.Message) (*models.Message, error)
	SavePushSubscription(ctx context.Context, sub models.PushSubscription) error
}

// Cache is the persistent key/value mirror of the last fetched snapshot.
type Cache interface {
	Put(ctx context.Context, key string, v any) error
	Get(ctx context.Context, key string, v any) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// Config wires an App. Backend, Outbox and Cache are required.
type Config struct {
	Backend  Backend
	Outbox   outbox.Queue
	Cache    Cache
	Monitor  *connectivity.Monitor
	Syncer   *outbox.Syncer
	Notifier notify.Notifier
	PIN      payment.PINVerifier

	PollInterval  time.Duration
	PushPublicKey string
}

// App holds the client's state. All methods are safe for concurrent use.
type App struct {
	api      Backend
	outbox   outbox.Queue
	cache    Cache
	monitor  *connectivity.Monitor
	syncer   *outbox.Syncer
	notifier notify.Notifier
	pin      payment.PINVerifier

	pollInterval  time.Duration
	pushPublicKey string

	mu          sync.RWMutex
	currentUser *models.User
	users       map[string]models.User
	chats       []models.Chat
	// local holds bubbles not yet confirmed by the backend, per chat.
	local map[string][]models.Message

	// seq orders fetches by start time; a response older than the last
	// applied one is dropped.
	seq          atomic.Uint64
	userApplied  uint64
	chatsApplied uint64

	drainMu sync.Mutex
}

// New creates an App and subscribes it to connectivity changes.
func New(cfg Config) *App {
	a := &App{
		api:           cfg.Backend,
		outbox:        cfg.Outbox,
		cache:         cfg.Cache,
		monitor:       cfg.Monitor,
		syncer:        cfg.Syncer,
		notifier:      cfg.Notifier,
		pin:           cfg.PIN,
		pollInterval:  cfg.PollInterval,
		pushPublicKey: cfg.PushPublicKey,
		users:         make(map[string]models.User),
		local:         make(map[string][]models.Message),
	}
	if a.monitor == nil {
		a.monitor = connectivity.NewMonitor(true)
	}
	if a.syncer == nil {
		a.syncer = outbox.NewSyncer(a.monitor.Online)
	}
	if a.notifier == nil {
		a.notifier = notify.Log{}
	}
	if a.pin == nil {
		a.pin = payment.StaticPIN(payment.DefaultPIN)
	}
	if a.pollInterval <= 0 {
		a.pollInterval = DefaultPollInterval
	}

	a.monitor.OnChange(a.connectivityChanged)
	return a
}

func (a *App) connectivityChanged(online bool) {
	if !online {
		slog.Info("Connectivity lost")
		a.info("You are offline. Some features may be unavailable.")
		return
	}
	slog.Info("Connectivity restored")
	a.info("You are back online.")
	a.syncer.Register(outbox.SyncTag)
}

// Monitor exposes the connectivity flag the app acts on.
func (a *App) Monitor() *connectivity.Monitor {
	return a.monitor
}

// Syncer exposes the background-sync registry the app listens to.
func (a *App) Syncer() *outbox.Syncer {
	return a.syncer
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (a *App) CurrentUser() *models.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.currentUser == nil {
		return nil
	}
	u := *a.currentUser
	return &u
}

// User looks up a user by ID.
func (a *App) User(id string) (models.User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	u, ok := a.users[id]
	return u, ok
}

// Users returns all known users.
func (a *App) Users() []models.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]models.User, 0, len(a.users))
	for _, u := range a.users {
		out = append(out, u)
	}
	return out
}

// Chats returns the chats with any unconfirmed local bubbles appended.
func (a *App) Chats() []models.Chat {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]models.Chat, len(a.chats))
	for i, c := range a.chats {
		c.Messages = append(append([]models.Message(nil), c.Messages...), a.local[c.ID]...)
		out[i] = c
	}
	return out
}

// Chat returns one chat by ID.
func (a *App) Chat(id string) (models.Chat, bool) {
	for _, c := range a.Chats() {
		if c.ID == id {
			return c, true
		}
	}
	return models.Chat{}, false
}

// Logout clears in-memory state and the cached snapshot.
func (a *App) Logout(ctx context.Context) error {
	a.mu.Lock()
	a.currentUser = nil
	a.users = make(map[string]models.User)
	a.chats = nil
	a.local = make(map[string][]models.Message)
	a.userApplied = a.seq.Load()
	a.chatsApplied = a.seq.Load()
	a.mu.Unlock()

	return a.cache.Delete(ctx, cacheKeyCurrentUser, cacheKeyAllUsers, cacheKeyChats)
}

func (a *App) info(msg string) {
	a.notifier.Notify(notify.Toast{Level: notify.LevelInfo, Message: msg})
}

func (a *App) success(msg string) {
	a.notifier.Notify(notify.Toast{Level: notify.LevelSuccess, Message: msg})
}

func (a *App) fail(msg string) {
	a.notifier.Notify(notify.Toast{Level: notify.LevelError, Message: msg})
}

// userMessage picks the text to show for err: the backend's message when the
// error came over the wire, otherwise the error text, otherwise fallback.
func userMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}

	var checkoutErr *payment.CheckoutError
	if errors.As(err, &checkoutErr) {
		return "Checkout failed: " + userMessage(checkoutErr.Err, fallback)
	}

	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		if msg := connectErr.Message(); msg != "" {
			return msg
		}
		return fallback
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
