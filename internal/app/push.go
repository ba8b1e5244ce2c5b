package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ouge98-max/your-repo-sub000/internal/models"
)

var ErrPushNotConfigured = errors.New("push public key is not configured")

// EnablePush registers a push endpoint for the current user, stamped with the
// application server public key.
func (a *App) EnablePush(ctx context.Context, endpoint, p256dh, auth string) (*models.PushSubscription, error) {
	if a.pushPublicKey == "" {
		return nil, ErrPushNotConfigured
	}
	user := a.CurrentUser()
	if user == nil {
		return nil, ErrNotLoggedIn
	}
	if endpoint == "" {
		return nil, errors.New("push endpoint is required")
	}

	sub := models.PushSubscription{
		UserID:    user.ID,
		Endpoint:  endpoint,
		P256dh:    p256dh,
		Auth:      auth,
		PublicKey: a.pushPublicKey,
		CreatedAt: time.Now().Unix(),
	}
	if err := a.api.SavePushSubscription(ctx, sub); err != nil {
		slog.Error("Failed to save push subscription", "user_id", user.ID, "error", err)
		a.fail(userMessage(err, "Failed to enable notifications."))
		return nil, fmt.Errorf("failed to save push subscription: %w", err)
	}

	slog.Info("Push subscription saved", "user_id", user.ID)
	a.success("Notifications enabled")
	return &sub, nil
}
