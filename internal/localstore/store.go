// Package localstore is the client's on-device persistent store: the offline
// message outbox and a key/value mirror of the last fetched snapshot.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/ouge98-max/your-repo-sub000/internal/models"
	"github.com/ouge98-max/your-repo-sub000/internal/outbox"
)

// Ensure Store implements outbox.Queue
var _ outbox.Queue = (*Store)(nil)

// Store implements the outbox queue and the key/value cache on one SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at path and brings the schema up to date.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddMessageToQueue inserts msg into the offline-messages store.
func (s *Store) AddMessageToQueue(ctx context.Context, msg models.QueuedMessage) error {
	if msg.ID == "" {
		return fmt.Errorf("queued message has no id")
	}

	payload, err := json.Marshal(msg.Message)
	if err != nil {
		return fmt.Errorf("failed to encode queued message: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO offline_messages (id, chat_id, payload, queued_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		msg.ID, msg.ChatID, string(payload), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to queue message: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to queue message: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", outbox.ErrDuplicateMessage, msg.ID)
	}
	return nil
}

// GetQueuedMessages returns every queued message in insertion order.
func (s *Store) GetQueuedMessages(ctx context.Context) ([]models.QueuedMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT chat_id, payload FROM offline_messages ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list queued messages: %w", err)
	}
	defer rows.Close()

	var queued []models.QueuedMessage
	for rows.Next() {
		var (
			chatID  string
			payload string
		)
		if err := rows.Scan(&chatID, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan queued message: %w", err)
		}

		qm := models.QueuedMessage{ChatID: chatID}
		if err := json.Unmarshal([]byte(payload), &qm.Message); err != nil {
			return nil, fmt.Errorf("failed to decode queued message: %w", err)
		}
		queued = append(queued, qm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate queued messages: %w", err)
	}

	return queued, nil
}

// DeleteQueuedMessage removes a queued message. Unknown IDs are ignored.
func (s *Store) DeleteQueuedMessage(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM offline_messages WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete queued message: %w", err)
	}
	return nil
}

// Put stores v as JSON under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO key_value_store (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// Get decodes the value stored under key into v. It reports false if the key is absent.
func (s *Store) Get(ctx context.Context, key string, v any) (bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM key_value_store WHERE key = ?", key).Scan(&data)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(data), v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// Delete removes keys from the key/value store.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM key_value_store WHERE key = ?", key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return nil
}
