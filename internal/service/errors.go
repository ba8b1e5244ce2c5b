package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/ouge98-max/your-repo-sub000/internal/auth"
	"github.com/ouge98-max/your-repo-sub000/internal/middleware"
	"github.com/ouge98-max/your-repo-sub000/internal/storage"
)

// storeError maps storage errors to Connect codes.
func storeError(err error) error {
	switch {
	case errors.Is(err, storage.ErrInsufficientFunds):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, storage.ErrInvalidAmount):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrNotMember):
		return connect.NewError(connect.CodePermissionDenied, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func invalid(msg string) error {
	return connect.NewError(connect.CodeInvalidArgument, errors.New(msg))
}

// caller returns the authenticated user ID set by RequireAuth.
func caller(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}
