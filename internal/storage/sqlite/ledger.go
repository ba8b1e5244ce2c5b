package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ouge98-max/your-repo-sub000/internal/models"
	"github.com/ouge98-max/your-repo-sub000/internal/pricing"
	"github.com/ouge98-max/your-repo-sub000/internal/storage"
)

// Apply performs m inside one database transaction.
func (s *SQLiteStore) Apply(ctx context.Context, m storage.Movement) (*models.Transaction, error) {
	if math.IsNaN(m.Amount) || math.IsInf(m.Amount, 0) {
		return nil, storage.ErrInvalidAmount
	}
	// Amounts below one minor unit round to zero and would post an empty movement.
	amount := pricing.Round(m.Amount)
	if amount <= 0 {
		return nil, storage.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		name             string
		balance, savings float64
		currency         string
	)
	err = tx.QueryRowContext(ctx,
		"SELECT name, balance, savings_balance, currency FROM users WHERE id = ?",
		m.UserID,
	).Scan(&name, &balance, &savings, &currency)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", m.UserID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load balances: %w", err)
	}

	switch m.From {
	case storage.Main:
		if balance < amount {
			return nil, storage.ErrInsufficientFunds
		}
		balance = pricing.Add(balance, -amount)
	case storage.Savings:
		if savings < amount {
			return nil, storage.ErrInsufficientFunds
		}
		savings = pricing.Add(savings, -amount)
	}

	switch m.To {
	case storage.Main:
		balance = pricing.Add(balance, amount)
	case storage.Savings:
		savings = pricing.Add(savings, amount)
	}

	now := time.Now().Unix()
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET balance = ?, savings_balance = ?, updated_at = ? WHERE id = ?",
		balance, savings, now, m.UserID,
	); err != nil {
		return nil, fmt.Errorf("failed to update balances: %w", err)
	}

	record := &models.Transaction{
		ID:        uuid.New().String(),
		UserID:    m.UserID,
		Type:      m.Type,
		Amount:    amount,
		Currency:  currency,
		Peer:      m.Peer,
		Timestamp: now,
		Status:    models.StatusCompleted,
		Note:      m.Note,
		Tax:       m.Tax,
	}
	if err := insertTransaction(ctx, tx, record); err != nil {
		return nil, err
	}

	if m.RecipientID != "" {
		res, err := tx.ExecContext(ctx,
			"UPDATE users SET balance = ROUND(balance + ?, 2), updated_at = ? WHERE id = ?",
			amount, now, m.RecipientID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to credit recipient: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, fmt.Errorf("recipient %s: %w", m.RecipientID, storage.ErrNotFound)
		}

		if err := insertTransaction(ctx, tx, &models.Transaction{
			ID:        uuid.New().String(),
			UserID:    m.RecipientID,
			Type:      models.TxReceiveMoney,
			Amount:    amount,
			Currency:  currency,
			Peer:      name,
			Timestamp: now,
			Status:    models.StatusCompleted,
			Note:      m.Note,
		}); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return record, nil
}

func insertTransaction(ctx context.Context, tx *sql.Tx, t *models.Transaction) error {
	var base, rate, vat, total sql.NullFloat64
	if t.Tax != nil {
		base = sql.NullFloat64{Float64: t.Tax.Base, Valid: true}
		rate = sql.NullFloat64{Float64: t.Tax.Rate, Valid: true}
		vat = sql.NullFloat64{Float64: t.Tax.VAT, Valid: true}
		total = sql.NullFloat64{Float64: t.Tax.Total, Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, type, amount, currency, peer, timestamp, status, note,
			tax_base, tax_rate, tax_vat, tax_total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, string(t.Type), t.Amount, t.Currency, t.Peer, t.Timestamp, string(t.Status), t.Note,
		base, rate, vat, total,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// ListTransactions returns the user's transactions, newest first.
// A limit of zero or less returns everything.
func (s *SQLiteStore) ListTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, amount, currency, peer, timestamp, status, note,
			tax_base, tax_rate, tax_vat, tax_total
		FROM transactions
		WHERE user_id = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var (
			t                      models.Transaction
			base, rate, vat, total sql.NullFloat64
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Currency, &t.Peer, &t.Timestamp,
			&t.Status, &t.Note, &base, &rate, &vat, &total); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if base.Valid {
			t.Tax = &models.TaxBreakdown{Base: base.Float64, Rate: rate.Float64, VAT: vat.Float64, Total: total.Float64}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return out, nil
}
