package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/internal/infrastructure/localstore"
	"github.com/safezoneph/syncd/repository"
)

const singletonKey = "current"

type notificationRepository struct {
	store *localstore.Store
}

func NewNotificationRepository(store *localstore.Store) repository.NotificationRepository {
	return &notificationRepository{store: store}
}

func (r *notificationRepository) List(ctx context.Context) ([]domain.Notification, error) {
	var notifications []domain.Notification
	err := r.store.ForEach(localstore.CollectionNotifications, func(_ string, value []byte) error {
		var n domain.Notification
		if err := json.Unmarshal(value, &n); err != nil {
			return nil
		}
		notifications = append(notifications, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(notifications)-1; i < j; i, j = i+1, j-1 {
		notifications[i], notifications[j] = notifications[j], notifications[i]
	}
	return notifications, nil
}

func (r *notificationRepository) Append(ctx context.Context, notification *domain.Notification) error {
	if notification == nil || notification.Title == "" {
		return domain.ErrInvalidPayload
	}
	if notification.ID == "" {
		notification.ID = domain.LocalIDPrefix + uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	key := fmt.Sprintf("%020d_%s", notification.CreatedAt.UnixNano(), notification.ID)
	return r.store.Put(localstore.CollectionNotifications, key, notification)
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	return r.store.Update(func(tx *bolt.Tx) error {
		bucket := localstore.Bucket(tx, localstore.CollectionNotifications)
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var n domain.Notification
			if err := json.Unmarshal(v, &n); err != nil {
				continue
			}
			if n.ID != id {
				continue
			}
			n.Read = true
			payload, err := json.Marshal(&n)
			if err != nil {
				return err
			}
			return bucket.Put(k, payload)
		}
		return nil
	})
}

func (r *notificationRepository) Clear(ctx context.Context) error {
	return r.store.Clear(localstore.CollectionNotifications)
}

type settingsRepository struct {
	store *localstore.Store
}

func NewSettingsRepository(store *localstore.Store) repository.SettingsRepository {
	return &settingsRepository{store: store}
}

func (r *settingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	var settings domain.Settings
	if err := r.store.Get(localstore.CollectionSettings, singletonKey, &settings); err != nil {
		if errors.Is(err, localstore.ErrKeyNotFound) {
			return domain.DefaultSettings(), nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *domain.Settings) error {
	if settings == nil {
		return domain.ErrInvalidPayload
	}
	return r.store.Put(localstore.CollectionSettings, singletonKey, settings)
}

type onboardingRepository struct {
	store *localstore.Store
}

func NewOnboardingRepository(store *localstore.Store) repository.OnboardingRepository {
	return &onboardingRepository{store: store}
}

func (r *onboardingRepository) Get(ctx context.Context) (*domain.Onboarding, error) {
	var onboarding domain.Onboarding
	if err := r.store.Get(localstore.CollectionOnboarding, singletonKey, &onboarding); err != nil {
		if errors.Is(err, localstore.ErrKeyNotFound) {
			return &domain.Onboarding{}, nil
		}
		return nil, err
	}
	return &onboarding, nil
}

func (r *onboardingRepository) Save(ctx context.Context, onboarding *domain.Onboarding) error {
	if onboarding == nil {
		return domain.ErrInvalidPayload
	}
	return r.store.Put(localstore.CollectionOnboarding, singletonKey, onboarding)
}

type conversationCache struct {
	store *localstore.Store
}

func NewConversationCache(store *localstore.Store) repository.ConversationCache {
	return &conversationCache{store: store}
}

func (r *conversationCache) Cached(ctx context.Context) ([]domain.Conversation, error) {
	var conversations []domain.Conversation
	if err := r.store.Get(localstore.CollectionConversations, singletonKey, &conversations); err != nil {
		if errors.Is(err, localstore.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return conversations, nil
}

func (r *conversationCache) Replace(ctx context.Context, conversations []domain.Conversation) error {
	return r.store.Put(localstore.CollectionConversations, singletonKey, conversations)
}
