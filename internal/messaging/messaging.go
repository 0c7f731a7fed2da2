package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"lostfound/internal/model"
	"lostfound/internal/storage"
)

var (
	ErrEmptyMessage = errors.New("messaging: message is empty")
	ErrSelfMessage  = errors.New("messaging: cannot message yourself")
	// ErrForbidden is returned when marking someone else's message as read.
	ErrForbidden = errors.New("messaging: forbidden")
)

type Service struct {
	repo storage.MessageRepository
}

func New(repo storage.MessageRepository) *Service {
	return &Service{repo: repo}
}

// Send stores a message from sender to receiver, optionally about itemID.
func (s *Service) Send(ctx context.Context, sender, receiver, itemID, content string) (model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Message{}, ErrEmptyMessage
	}
	receiver = strings.TrimSpace(receiver)
	if receiver == "" {
		return model.Message{}, fmt.Errorf("%w: receiver is required", ErrEmptyMessage)
	}
	if sender == receiver {
		return model.Message{}, ErrSelfMessage
	}
	m, err := s.repo.CreateMessage(ctx, model.Message{
		SenderID:   sender,
		ReceiverID: receiver,
		ItemID:     strings.TrimSpace(itemID),
		Content:    content,
	})
	if err != nil {
		return model.Message{}, fmt.Errorf("create message: %w", err)
	}
	slog.Debug("messaging: sent", "id", m.ID, "from", sender, "to", receiver)
	return m, nil
}

// Inbox returns every message userID sent or received, newest first.
func (s *Service) Inbox(ctx context.Context, userID string) ([]model.Message, error) {
	return s.repo.ListMessages(ctx, storage.MessageFilter{UserID: userID})
}

// Thread returns the conversation between userID and otherID oldest first,
// and marks otherID's unread messages to userID as read.
func (s *Service) Thread(ctx context.Context, userID, otherID string) ([]model.Message, error) {
	n, err := s.repo.MarkRead(ctx, storage.MessageFilter{SenderID: otherID, ReceiverID: userID})
	if err != nil {
		return nil, fmt.Errorf("mark thread read: %w", err)
	}
	if n > 0 {
		slog.Debug("messaging: thread marked read", "user", userID, "peer", otherID, "count", n)
	}
	return s.repo.ListMessages(ctx, storage.MessageFilter{UserID: userID, PeerID: otherID, OldestFirst: true})
}

// MarkRead flags one message addressed to userID as read.
func (s *Service) MarkRead(ctx context.Context, userID, messageID string) error {
	ms, err := s.repo.ListMessages(ctx, storage.MessageFilter{ID: messageID})
	if err != nil {
		return err
	}
	if len(ms) == 0 {
		return fmt.Errorf("message %s: %w", messageID, storage.ErrNotFound)
	}
	if ms[0].ReceiverID != userID {
		return ErrForbidden
	}
	_, err = s.repo.MarkRead(ctx, storage.MessageFilter{ID: messageID})
	return err
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.CountMessages(ctx, storage.MessageFilter{ReceiverID: userID, UnreadOnly: true})
}
