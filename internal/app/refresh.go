package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ouge98-max/your-repo-sub000/internal/metrics"
	"github.com/ouge98-max/your-repo-sub000/internal/models"
)

const (
	cacheKeyCurrentUser = "currentUser"
	cacheKeyAllUsers    = "allUsers"
	cacheKeyChats       = "chats"
)

var ErrNoCurrentUser = errors.New("backend returned no current user")

// RefreshData fetches the current user, all users and chats in parallel and
// applies them together. Any failed fetch leaves state untouched. The applied
// snapshot is mirrored to the cache. Offline, it logs and returns nil.
func (a *App) RefreshData(ctx context.Context) error {
	if !a.monitor.Online() {
		slog.Info("Skipping data refresh while offline")
		return nil
	}

	seq := a.seq.Add(1)

	var (
		user  *models.User
		users []models.User
		chats []models.Chat
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := a.api.GetCurrentUser(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch current user: %w", err)
		}
		if u == nil {
			return ErrNoCurrentUser
		}
		user = u
		return nil
	})
	g.Go(func() error {
		list, err := a.api.GetAllUsers(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch users: %w", err)
		}
		users = list
		return nil
	})
	g.Go(func() error {
		list, err := a.api.GetChats(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch chats: %w", err)
		}
		chats = list
		return nil
	})

	if err := g.Wait(); err != nil {
		metrics.ObserveRefresh("full", metrics.ResultError)
		slog.Error("Data refresh failed", "error", err)
		return err
	}
	metrics.ObserveRefresh("full", metrics.ResultOK)

	a.mu.Lock()
	userFresh := seq > a.userApplied
	if userFresh {
		a.currentUser = user
		a.users = indexUsers(users)
		a.userApplied = seq
	} else {
		slog.Debug("Dropping stale user refresh", "seq", seq, "applied", a.userApplied)
	}
	chatsFresh := seq > a.chatsApplied
	if chatsFresh {
		a.setChatsLocked(chats)
		a.chatsApplied = seq
	} else {
		slog.Debug("Dropping stale chat refresh", "seq", seq, "applied", a.chatsApplied)
	}
	a.mu.Unlock()

	// A refresh overtaken by a newer one or by Logout must not touch the cache.
	if userFresh || chatsFresh {
		a.mirror(ctx)
	}
	return nil
}

// RefreshChats re-fetches chats only. Offline, it logs and returns nil.
func (a *App) RefreshChats(ctx context.Context) error {
	if !a.monitor.Online() {
		slog.Debug("Skipping chat refresh while offline")
		return nil
	}

	seq := a.seq.Add(1)
	chats, err := a.api.GetChats(ctx)
	if err != nil {
		metrics.ObserveRefresh("chats", metrics.ResultError)
		return fmt.Errorf("failed to fetch chats: %w", err)
	}
	metrics.ObserveRefresh("chats", metrics.ResultOK)

	a.mu.Lock()
	applied := seq > a.chatsApplied
	if applied {
		a.setChatsLocked(chats)
		a.chatsApplied = seq
	}
	signedIn := a.currentUser != nil
	a.mu.Unlock()

	if applied && signedIn {
		if err := a.cache.Put(ctx, cacheKeyChats, chats); err != nil {
			slog.Warn("Failed to cache chats", "error", err)
		}
	}
	return nil
}

// Bootstrap applies the cached snapshot, if any, then starts a network refresh
// in the background. It never waits for the network. The returned channel
// yields the refresh result once.
func (a *App) Bootstrap(ctx context.Context) (cached bool, refreshed <-chan error) {
	cached = a.loadCache(ctx)

	done := make(chan error, 1)
	go func() {
		err := a.RefreshData(ctx)
		if err != nil {
			slog.Warn("Initial refresh failed, keeping cached data", "error", err)
		}
		done <- err
	}()

	return cached, done
}

func (a *App) loadCache(ctx context.Context) bool {
	var (
		user  models.User
		users []models.User
		chats []models.Chat
	)

	hasUser, err := a.cache.Get(ctx, cacheKeyCurrentUser, &user)
	if err != nil {
		slog.Warn("Failed to read cached user", "error", err)
		return false
	}
	if !hasUser || user.ID == "" {
		return false
	}
	if _, err := a.cache.Get(ctx, cacheKeyAllUsers, &users); err != nil {
		slog.Warn("Failed to read cached users", "error", err)
	}
	if _, err := a.cache.Get(ctx, cacheKeyChats, &chats); err != nil {
		slog.Warn("Failed to read cached chats", "error", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	// A network result may already have landed; it always wins.
	if a.userApplied == 0 {
		a.currentUser = &user
		a.users = indexUsers(users)
	}
	if a.chatsApplied == 0 {
		a.setChatsLocked(chats)
	}

	slog.Info("Loaded cached snapshot", "user_id", user.ID, "users", len(users), "chats", len(chats))
	return true
}

// mirror writes the in-memory snapshot to the cache. A signed-out app writes
// nothing. Failures are logged only.
func (a *App) mirror(ctx context.Context) {
	a.mu.RLock()
	var user *models.User
	if a.currentUser != nil {
		u := *a.currentUser
		user = &u
	}
	users := make([]models.User, 0, len(a.users))
	for _, u := range a.users {
		users = append(users, u)
	}
	chats := append([]models.Chat(nil), a.chats...)
	a.mu.RUnlock()

	if user == nil {
		slog.Debug("Nothing to mirror, no current user")
		return
	}

	for key, v := range map[string]any{
		cacheKeyCurrentUser: user,
		cacheKeyAllUsers:    users,
		cacheKeyChats:       chats,
	} {
		if err := a.cache.Put(ctx, key, v); err != nil {
			slog.Warn("Failed to mirror snapshot", "key", key, "error", err)
		}
	}
}

// setChatsLocked replaces chats and drops local bubbles the backend now has.
// Caller holds a.mu.
func (a *App) setChatsLocked(chats []models.Chat) {
	a.chats = chats
	for _, c := range chats {
		pending := a.local[c.ID]
		if len(pending) == 0 {
			continue
		}
		known := make(map[string]bool, len(c.Messages))
		for _, m := range c.Messages {
			if m.ClientID != "" {
				known[m.ClientID] = true
			}
		}
		kept := pending[:0]
		for _, m := range pending {
			if !known[m.ID] {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			delete(a.local, c.ID)
		} else {
			a.local[c.ID] = kept
		}
	}
}

func indexUsers(users []models.User) map[string]models.User {
	m := make(map[string]models.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return m
}
