package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/ouge98-max/your-repo-sub000/internal/outbox"
)

// Run drives the app until ctx is done: it polls chats every poll interval and
// drains the outbox whenever the syncer broadcasts SYNC_MESSAGES.
func (a *App) Run(ctx context.Context) error {
	events, unsubscribe := a.syncer.Subscribe()
	defer unsubscribe()

	// Anything registered before we subscribed fires now.
	a.syncer.FirePending()

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	slog.Info("App loop started", "poll_interval", a.pollInterval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("App loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := a.RefreshChats(ctx); err != nil {
				slog.Warn("Chat poll failed", "error", err)
			}
		case ev := <-events:
			if ev.Type != outbox.MessageSyncMessages {
				continue
			}
			if _, err := a.SyncQueuedMessages(ctx); err != nil {
				slog.Error("Outbox drain failed", "error", err)
				continue
			}
			if err := a.RefreshChats(ctx); err != nil {
				slog.Warn("Chat refresh after drain failed", "error", err)
			}
		}
	}
}
