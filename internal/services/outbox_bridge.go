package services

import (
	"context"
	"encoding/json"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/internal/infrastructure/localstore"
	"github.com/safezoneph/syncd/repository"
	"github.com/safezoneph/syncd/usecase"
)

// queuedCheckIn pairs a check-in with the session it belongs to, since the
// remote endpoint is addressed by session id.
type queuedCheckIn struct {
	SessionID string         `json:"sessionId"`
	CheckIn   domain.CheckIn `json:"checkIn"`
}

// OutboxBridge adapts the persistent outbox to the queue port the use cases
// depend on. Enqueueing touches only the local store, so it succeeds whether
// or not the remote is reachable.
type OutboxBridge struct {
	outbox *localstore.Outbox
	users  repository.UserRepository
}

func NewOutboxBridge(outbox *localstore.Outbox, users repository.UserRepository) *OutboxBridge {
	return &OutboxBridge{outbox: outbox, users: users}
}

func (b *OutboxBridge) QueueTask(ctx context.Context, operation string, task *domain.Task) error {
	if b.outbox == nil || task == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return b.outbox.Enqueue(localstore.Item{
		UserID:    b.currentUserID(ctx),
		Entity:    localstore.EntityTask,
		Operation: operation,
		Data:      payload,
		Priority:  3,
	})
}

func (b *OutboxBridge) QueueBuddySession(ctx context.Context, session *domain.BuddySession) error {
	if b.outbox == nil || session == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return b.outbox.Enqueue(localstore.Item{
		UserID:    session.UserID,
		Entity:    localstore.EntityBuddySession,
		Operation: localstore.OperationCreate,
		Data:      payload,
		Priority:  2,
	})
}

func (b *OutboxBridge) QueueCheckIn(ctx context.Context, sessionID string, checkIn *domain.CheckIn) error {
	if b.outbox == nil || checkIn == nil || sessionID == "" {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(queuedCheckIn{SessionID: sessionID, CheckIn: *checkIn})
	if err != nil {
		return err
	}
	return b.outbox.Enqueue(localstore.Item{
		UserID:    b.currentUserID(ctx),
		Entity:    localstore.EntityCheckIn,
		Operation: localstore.OperationCreate,
		Data:      payload,
		Priority:  2,
	})
}

func (b *OutboxBridge) QueueMessage(ctx context.Context, message *domain.Message) error {
	if b.outbox == nil || message == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return b.outbox.Enqueue(localstore.Item{
		UserID:    message.SenderID,
		Entity:    localstore.EntityMessage,
		Operation: localstore.OperationCreate,
		Data:      payload,
		Priority:  3,
	})
}

func (b *OutboxBridge) currentUserID(ctx context.Context) string {
	if b.users == nil {
		return ""
	}
	user, err := b.users.Current(ctx)
	if err != nil {
		return ""
	}
	return user.ID
}

var _ usecase.Outbox = (*OutboxBridge)(nil)
