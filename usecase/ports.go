package usecase

import (
	"context"

	"github.com/safezoneph/syncd/domain"
)

// Mutation operations mirrored to the remote.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
)

// Outbox abstracts the pending-mutation queue so use cases stay
// storage-agnostic. Queueing must never fail because the remote is down;
// only a broken local store surfaces an error.
type Outbox interface {
	QueueTask(ctx context.Context, operation string, task *domain.Task) error
	QueueBuddySession(ctx context.Context, session *domain.BuddySession) error
	QueueCheckIn(ctx context.Context, sessionID string, checkIn *domain.CheckIn) error
	QueueMessage(ctx context.Context, message *domain.Message) error
}

// RemoteAuth is the slice of the remote client the session manager uses.
type RemoteAuth interface {
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Register(ctx context.Context, user *domain.User, password string) (*domain.User, string, error)
	SetToken(token string)
	ClearToken()
}

// RemoteMessaging is the slice of the remote client the messaging use case
// talks to directly.
type RemoteMessaging interface {
	SendMessage(ctx context.Context, message *domain.Message) (*domain.Message, error)
	GetConversations(ctx context.Context) ([]domain.Conversation, error)
}
