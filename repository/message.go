package repository

import (
	"context"

	"github.com/safezoneph/syncd/domain"
)

// ConversationCache keeps the last successfully fetched conversation list
// so the chat screen still renders offline.
type ConversationCache interface {
	Cached(ctx context.Context) ([]domain.Conversation, error)
	Replace(ctx context.Context, conversations []domain.Conversation) error
}
