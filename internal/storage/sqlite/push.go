package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ouge98-max/your-repo-sub000/internal/models"
)

// SavePushSubscription inserts or refreshes a push endpoint for a user.
func (s *SQLiteStore) SavePushSubscription(ctx context.Context, sub *models.PushSubscription) error {
	if sub.CreatedAt == 0 {
		sub.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, public_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, endpoint) DO UPDATE SET
			p256dh = excluded.p256dh,
			auth = excluded.auth,
			public_key = excluded.public_key`,
		sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth, sub.PublicKey, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save push subscription: %w", err)
	}
	return nil
}

// CountPushSubscriptions returns how many endpoints a user has registered.
func (s *SQLiteStore) CountPushSubscriptions(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM push_subscriptions WHERE user_id = ?", userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count push subscriptions: %w", err)
	}
	return n, nil
}
