package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ouge98-max/your-repo-sub000/internal/models"
	"github.com/ouge98-max/your-repo-sub000/internal/storage"
)

// CreateChat persists a chat and its members.
func (s *SQLiteStore) CreateChat(ctx context.Context, chat *models.Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	if chat.UpdatedAt == 0 {
		chat.UpdatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO chats (id, name, updated_at) VALUES (?, ?, ?)",
		chat.ID, chat.Name, chat.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert chat: %w", err)
	}

	for _, member := range chat.Members {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO chat_members (chat_id, user_id) VALUES (?, ?)",
			chat.ID, member,
		); err != nil {
			return fmt.Errorf("failed to insert chat member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListChats returns the user's chats, most recently active first.
func (s *SQLiteStore) ListChats(ctx context.Context, userID string) ([]models.Chat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.updated_at
		FROM chats c
		JOIN chat_members m ON m.chat_id = c.id
		WHERE m.user_id = ?
		ORDER BY c.updated_at DESC, c.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	var chats []models.Chat
	for rows.Next() {
		var c models.Chat
		if err := rows.Scan(&c.ID, &c.Name, &c.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chats: %w", err)
	}

	// Rows are closed before the follow-up queries; the store holds a single connection.
	for i := range chats {
		if chats[i].Members, err = s.chatMembers(ctx, chats[i].ID); err != nil {
			return nil, err
		}
		if chats[i].Messages, err = s.chatMessages(ctx, chats[i].ID); err != nil {
			return nil, err
		}
	}

	return chats, nil
}

func (s *SQLiteStore) chatMembers(ctx context.Context, chatID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM chat_members WHERE chat_id = ? ORDER BY user_id", chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chat member: %w", err)
		}
		members = append(members, id)
	}
	return members, rows.Err()
}

func (s *SQLiteStore) chatMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(client_id, ''), sender_id, text, timestamp
		FROM messages
		WHERE chat_id = ?
		ORDER BY timestamp, rowid`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		m := models.Message{Status: models.MessageSent}
		if err := rows.Scan(&m.ID, &m.ClientID, &m.SenderID, &m.Text, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// AddMessage stores msg in chatID unless a message with the same ClientID is
// already there, in which case the stored one is returned.
func (s *SQLiteStore) AddMessage(ctx context.Context, chatID string, msg *models.Message) (*models.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var member int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chat_members WHERE chat_id = ? AND user_id = ?",
		chatID, msg.SenderID,
	).Scan(&member)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if member == 0 {
		return nil, storage.ErrNotMember
	}

	if msg.ClientID != "" {
		existing := models.Message{ClientID: msg.ClientID, Status: models.MessageSent}
		err := tx.QueryRowContext(ctx,
			"SELECT id, sender_id, text, timestamp FROM messages WHERE chat_id = ? AND client_id = ?",
			chatID, msg.ClientID,
		).Scan(&existing.ID, &existing.SenderID, &existing.Text, &existing.Timestamp)
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to look up message: %w", err)
		}
	}

	stored := *msg
	stored.ID = uuid.New().String()
	stored.Status = models.MessageSent
	if stored.Timestamp == 0 {
		stored.Timestamp = time.Now().Unix()
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO messages (id, chat_id, client_id, sender_id, text, timestamp)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, ?)`,
		stored.ID, chatID, stored.ClientID, stored.SenderID, stored.Text, stored.Timestamp,
	); err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE chats SET updated_at = MAX(updated_at, ?) WHERE id = ?",
		stored.Timestamp, chatID,
	); err != nil {
		return nil, fmt.Errorf("failed to touch chat: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &stored, nil
}
