package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ouge98-max/your-repo-sub000/internal/metrics"
	"github.com/ouge98-max/your-repo-sub000/internal/models"
	"github.com/ouge98-max/your-repo-sub000/internal/outbox"
)

// tempIDPrefix marks client-generated message IDs.
const tempIDPrefix = "tmp-"

var (
	ErrEmptyMessage = errors.New("message text is empty")
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrUnknownChat  = errors.New("chat not found")
)

// DrainResult summarizes one outbox drain.
type DrainResult struct {
	Sent   int
	Failed int
}

// SendMessage shows an optimistic bubble and sends text to chatID. If the
// send fails while offline, the message is queued for background sync and
// returned with status queued and a nil error. Online failures mark the bubble
// failed and return the error.
func (a *App) SendMessage(ctx context.Context, chatID, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	user := a.CurrentUser()
	if user == nil {
		a.fail("You must be logged in to send messages")
		return nil, ErrNotLoggedIn
	}
	if _, ok := a.Chat(chatID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChat, chatID)
	}

	msg := models.Message{
		ID:        tempIDPrefix + uuid.New().String(),
		SenderID:  user.ID,
		Text:      text,
		Timestamp: time.Now().Unix(),
		Status:    models.MessageSending,
	}
	a.addLocal(chatID, msg)

	sent, err := a.api.SendMessage(ctx, chatID, msg)
	if err == nil && sent != nil {
		a.reconcile(chatID, msg.ID, *sent)
		slog.Info("Message sent", "chat_id", chatID, "message_id", sent.ID)
		out := *sent
		out.Status = models.MessageSent
		return &out, nil
	}
	if err == nil {
		err = errors.New("backend returned no message")
	}

	if a.monitor.Online() {
		slog.Error("Failed to send message", "chat_id", chatID, "error", err)
		a.setLocalStatus(chatID, msg.ID, models.MessageFailed)
		a.fail(userMessage(err, "Failed to send message."))
		return nil, err
	}

	queued := models.QueuedMessage{Message: msg, ChatID: chatID}
	queued.Status = models.MessageQueued
	if qerr := a.outbox.AddMessageToQueue(ctx, queued); qerr != nil {
		slog.Error("Failed to queue message", "chat_id", chatID, "message_id", msg.ID, "error", qerr)
		a.setLocalStatus(chatID, msg.ID, models.MessageFailed)
		a.fail("Failed to save message for later.")
		return nil, fmt.Errorf("failed to queue message: %w", qerr)
	}
	metrics.MessageQueued()
	a.setLocalStatus(chatID, msg.ID, models.MessageQueued)
	a.syncer.Register(outbox.SyncTag)

	slog.Info("Message queued while offline", "chat_id", chatID, "message_id", msg.ID)
	a.info("You are offline. Message will be sent when you reconnect.")
	return &queued.Message, nil
}

// SyncQueuedMessages replays every queued message once, in order. Each
// success is deleted from the queue; failures stay queued for the next sync.
// Concurrent calls are serialized.
func (a *App) SyncQueuedMessages(ctx context.Context) (DrainResult, error) {
	a.drainMu.Lock()
	defer a.drainMu.Unlock()

	var res DrainResult

	queued, err := a.outbox.GetQueuedMessages(ctx)
	if err != nil {
		slog.Error("Failed to read outbox", "error", err)
		return res, fmt.Errorf("failed to read queued messages: %w", err)
	}
	if len(queued) == 0 {
		return res, nil
	}

	slog.Info("Replaying queued messages", "count", len(queued))

	for _, q := range queued {
		sent, err := a.api.SendMessage(ctx, q.ChatID, q.Message)
		if err != nil || sent == nil {
			res.Failed++
			metrics.MessageReplayed(metrics.ResultError)
			slog.Warn("Queued message replay failed", "chat_id", q.ChatID, "message_id", q.ID, "error", err)
			continue
		}

		if err := a.outbox.DeleteQueuedMessage(ctx, q.ID); err != nil {
			// Sent but still queued; the backend dedupes the replay by client ID.
			slog.Error("Failed to delete replayed message", "message_id", q.ID, "error", err)
		}
		res.Sent++
		metrics.MessageReplayed(metrics.ResultOK)
		a.reconcile(q.ChatID, q.ID, *sent)
	}

	slog.Info("Outbox drain finished", "sent", res.Sent, "failed", res.Failed)
	if res.Failed > 0 {
		a.fail("Failed to send some messages.")
	}
	return res, nil
}

func (a *App) addLocal(chatID string, msg models.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.local[chatID] = append(a.local[chatID], msg)
}

func (a *App) setLocalStatus(chatID, id string, status models.MessageStatus) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.local[chatID] {
		if a.local[chatID][i].ID == id {
			a.local[chatID][i].Status = status
			return
		}
	}
}

// reconcile replaces the optimistic bubble tempID with the stored message.
func (a *App) reconcile(chatID, tempID string, sent models.Message) {
	sent.Status = models.MessageSent
	if sent.ClientID == "" {
		sent.ClientID = tempID
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	pending := a.local[chatID]
	for i, m := range pending {
		if m.ID == tempID {
			a.local[chatID] = append(pending[:i:i], pending[i+1:]...)
			break
		}
	}
	if len(a.local[chatID]) == 0 {
		delete(a.local, chatID)
	}

	for i := range a.chats {
		if a.chats[i].ID != chatID {
			continue
		}
		for _, m := range a.chats[i].Messages {
			if m.ID == sent.ID {
				return
			}
		}
		a.chats[i].Messages = append(a.chats[i].Messages, sent)
		if sent.Timestamp > a.chats[i].UpdatedAt {
			a.chats[i].UpdatedAt = sent.Timestamp
		}
		return
	}
}
