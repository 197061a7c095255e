package message

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/repository"
	"github.com/safezoneph/syncd/usecase"
)

// UseCase relays direct messages. Messaging is remote-first: the remote
// API owns the threads, the device only caches conversation summaries for
// offline reads and queues messages written while disconnected.
type UseCase struct {
	remote usecase.RemoteMessaging
	cache  repository.ConversationCache
	outbox usecase.Outbox
	users  repository.UserRepository
	logger *zap.Logger
}

func New(remote usecase.RemoteMessaging, cache repository.ConversationCache, outbox usecase.Outbox, users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		remote: remote,
		cache:  cache,
		outbox: outbox,
		users:  users,
		logger: logger,
	}
}

// Send relays the message immediately when the remote answers; otherwise
// it parks the message in the outbox and reports success, since the send
// will happen.
func (uc *UseCase) Send(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if message == nil || message.Content == "" || message.ReceiverID == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "message content and receiver are required")
	}
	if message.SenderID == "" {
		if user, err := uc.users.Current(ctx); err == nil {
			message.SenderID = user.ID
		}
	}
	message.Timestamp = time.Now()

	sent, err := uc.remote.SendMessage(ctx, message)
	if err == nil {
		return sent, nil
	}
	if !domain.IsRetryable(err) {
		return nil, err
	}

	message.ID = domain.LocalIDPrefix + uuid.NewString()
	if qerr := uc.outbox.QueueMessage(ctx, message); qerr != nil {
		return nil, qerr
	}
	uc.logger.Info("message queued for delivery", zap.String("message_id", message.ID))
	return message, nil
}

// Conversations returns the remote thread list, falling back to the last
// cached copy when the remote is unreachable.
func (uc *UseCase) Conversations(ctx context.Context) ([]domain.Conversation, error) {
	conversations, err := uc.remote.GetConversations(ctx)
	if err == nil {
		if cerr := uc.cache.Replace(ctx, conversations); cerr != nil {
			uc.logger.Warn("conversation cache not refreshed", zap.Error(cerr))
		}
		return conversations, nil
	}
	if !domain.IsRetryable(err) {
		return nil, err
	}

	cached, cerr := uc.cache.Cached(ctx)
	if cerr != nil {
		return nil, err
	}
	uc.logger.Debug("serving cached conversations", zap.Int("count", len(cached)))
	return cached, nil
}
