package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/ouge98-max/your-repo-sub000/internal/models"
	"github.com/ouge98-max/your-repo-sub000/internal/rpc"
	"github.com/ouge98-max/your-repo-sub000/internal/storage"
)

// MaxMessageLength bounds a chat message in bytes.
const MaxMessageLength = 4096

// ChatService implements chats and messages.
type ChatService struct {
	store storage.Store
}

func NewChatService(store storage.Store) *ChatService {
	return &ChatService{store: store}
}

// GetChats returns the caller's chats with their messages.
func (s *ChatService) GetChats(ctx context.Context, _ *connect.Request[rpc.Empty]) (*connect.Response[rpc.ChatsResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	chats, err := s.store.ListChats(ctx, userID)
	if err != nil {
		slog.Error("GetChats failed", "user_id", userID, "error", err)
		return nil, storeError(err)
	}
	if chats == nil {
		chats = []models.Chat{}
	}
	return connect.NewResponse(&rpc.ChatsResponse{Chats: chats}), nil
}

// CreateChat starts a chat between the caller and the given members.
func (s *ChatService) CreateChat(ctx context.Context, req *connect.Request[rpc.CreateChatRequest]) (*connect.Response[rpc.ChatResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{userID: true}
	members := []string{userID}
	for _, id := range req.Msg.Members {
		if id == "" || seen[id] {
			continue
		}
		user, err := s.store.GetUserByID(ctx, id)
		if err != nil {
			return nil, storeError(err)
		}
		if user == nil {
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("member %s: %w", id, storage.ErrNotFound))
		}
		seen[id] = true
		members = append(members, id)
	}
	if len(members) < 2 {
		return nil, invalid("a chat needs at least one other member")
	}

	chat := &models.Chat{Name: strings.TrimSpace(req.Msg.Name), Members: members, Messages: []models.Message{}}
	if err := s.store.CreateChat(ctx, chat); err != nil {
		slog.Error("CreateChat failed", "user_id", userID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Chat created", "chat_id", chat.ID, "members", len(members))
	return connect.NewResponse(&rpc.ChatResponse{Chat: chat}), nil
}

// SendMessage stores a message from the caller. Resending the same client ID
// returns the already stored message.
func (s *ChatService) SendMessage(ctx context.Context, req *connect.Request[rpc.SendMessageRequest]) (*connect.Response[rpc.MessageResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(req.Msg.Text)
	if text == "" {
		return nil, invalid("message text is required")
	}
	if len(text) > MaxMessageLength {
		return nil, invalid(fmt.Sprintf("message exceeds %d bytes", MaxMessageLength))
	}
	if req.Msg.ChatID == "" {
		return nil, invalid("chat_id is required")
	}

	msg, err := s.store.AddMessage(ctx, req.Msg.ChatID, &models.Message{
		ClientID:  req.Msg.ClientID,
		SenderID:  userID,
		Text:      text,
		Timestamp: req.Msg.Timestamp,
	})
	if err != nil {
		slog.Warn("SendMessage failed", "chat_id", req.Msg.ChatID, "user_id", userID, "error", err)
		return nil, storeError(err)
	}

	slog.Debug("Message stored", "chat_id", req.Msg.ChatID, "message_id", msg.ID, "client_id", msg.ClientID)
	return connect.NewResponse(&rpc.MessageResponse{Message: msg}), nil
}
