package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"connectrpc.com/connect"

	"github.com/ouge98-max/your-repo-sub000/internal/models"
	"github.com/ouge98-max/your-repo-sub000/internal/rpc"
	"github.com/ouge98-max/your-repo-sub000/internal/storage"
)

// UserService serves profiles and push subscriptions.
type UserService struct {
	store storage.Store
}

func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

// GetCurrentUser returns the signed-in user with fresh balances.
func (s *UserService) GetCurrentUser(ctx context.Context, _ *connect.Request[rpc.Empty]) (*connect.Response[rpc.UserResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	if user == nil {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("user not found"))
	}

	return connect.NewResponse(&rpc.UserResponse{User: user}), nil
}

// GetAllUsers lists every user. Balances of other users are hidden.
func (s *UserService) GetAllUsers(ctx context.Context, _ *connect.Request[rpc.Empty]) (*connect.Response[rpc.UsersResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		slog.Error("GetAllUsers failed", "error", err)
		return nil, storeError(err)
	}
	for i := range users {
		if users[i].ID != userID {
			users[i].Balance = 0
			users[i].SavingsBalance = 0
		}
	}
	if users == nil {
		users = []models.User{}
	}

	return connect.NewResponse(&rpc.UsersResponse{Users: users}), nil
}

// SavePushSubscription stores the caller's push endpoint.
func (s *UserService) SavePushSubscription(ctx context.Context, req *connect.Request[rpc.SavePushSubscriptionRequest]) (*connect.Response[rpc.Empty], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	sub := req.Msg.Subscription
	if u, err := url.Parse(sub.Endpoint); err != nil || u.Scheme != "https" || u.Host == "" {
		return nil, invalid("push endpoint must be an https URL")
	}
	if sub.P256dh == "" || sub.Auth == "" || sub.PublicKey == "" {
		return nil, invalid("push subscription keys are required")
	}
	sub.UserID = userID

	if err := s.store.SavePushSubscription(ctx, &sub); err != nil {
		slog.Error("SavePushSubscription failed", "user_id", userID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Push subscription saved", "user_id", userID)
	return connect.NewResponse(&rpc.Empty{}), nil
}
