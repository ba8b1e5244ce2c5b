package app

import (
	"context"
	"log/slog"

	"github.com/ouge98-max/your-repo-sub000/internal/metrics"
	"github.com/ouge98-max/your-repo-sub000/internal/models"
	"github.com/ouge98-max/your-repo-sub000/internal/payment"
)

const (
	toastIncorrectPIN   = "Incorrect PIN"
	toastLoginRequired  = "You must be logged in to make payments"
	toastPaymentOK      = "Payment successful"
	toastPaymentFailure = "Payment failed. Please try again."
)

// ProcessPayment verifies pin, checks that a user is signed in and routes
// intent to the backend. On success the app state is refreshed once before the
// transaction is returned. Every failure is surfaced as a toast and a nil
// transaction; the returned error carries the cause.
func (a *App) ProcessPayment(ctx context.Context, pin string, intent payment.Intent) (*models.Transaction, error) {
	paymentType := string(intent.Type())

	if !a.pin.Verify(pin) {
		slog.Warn("Payment rejected: PIN check failed", "type", paymentType)
		metrics.ObservePayment(paymentType, metrics.ResultError)
		a.fail(toastIncorrectPIN)
		return nil, payment.ErrInvalidPIN
	}

	user := a.CurrentUser()
	if user == nil {
		slog.Warn("Payment rejected: no current user", "type", paymentType)
		metrics.ObservePayment(paymentType, metrics.ResultError)
		a.fail(toastLoginRequired)
		return nil, payment.ErrNotAuthenticated
	}

	slog.Info("Processing payment", "type", paymentType, "user_id", user.ID, "total", intent.Total())

	tx, err := payment.Dispatch(ctx, a.api, intent)
	if err != nil {
		slog.Error("Payment failed", "type", paymentType, "user_id", user.ID, "error", err)
		metrics.ObservePayment(paymentType, metrics.ResultError)
		a.fail(userMessage(err, toastPaymentFailure))
		return nil, err
	}

	if err := a.RefreshData(ctx); err != nil {
		// The money already moved; a stale view is not a payment failure.
		slog.Warn("Refresh after payment failed", "transaction_id", tx.ID, "error", err)
	}

	metrics.ObservePayment(paymentType, metrics.ResultOK)
	slog.Info("Payment completed", "type", paymentType, "transaction_id", tx.ID, "amount", tx.Amount)
	a.success(toastPaymentOK)
	return tx, nil
}
