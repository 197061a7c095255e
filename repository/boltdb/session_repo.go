package boltdb

import (
	"context"
	"errors"
	"time"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/internal/infrastructure/localstore"
	"github.com/safezoneph/syncd/repository"
)

type sessionRepository struct {
	store *localstore.Store
	ttl   time.Duration
}

// NewSessionRepository creates a Bolt-backed session repository. Expiry is
// enforced lazily on read since Bolt has no TTL of its own.
func NewSessionRepository(store *localstore.Store, ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionRepository{store: store, ttl: ttl}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	if err := r.store.Get(localstore.CollectionSessions, id, &session); err != nil {
		if errors.Is(err, localstore.ErrKeyNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = r.store.Delete(localstore.CollectionSessions, id)
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if session.ExpiresAt.Before(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}
	return r.store.Put(localstore.CollectionSessions, session.ID, session)
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(localstore.CollectionSessions, id)
}

func (r *sessionRepository) Extend(ctx context.Context, id string, ttlSeconds int) error {
	session, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	duration := time.Duration(ttlSeconds) * time.Second
	if duration <= 0 {
		duration = r.ttl
	}
	session.ExpiresAt = time.Now().Add(duration)
	return r.store.Put(localstore.CollectionSessions, id, session)
}
