package boltdb

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/internal/infrastructure/localstore"
	"github.com/safezoneph/syncd/repository"
)

// currentUserKey is the single slot holding the session user.
const currentUserKey = "current"

type userRepository struct {
	store *localstore.Store
}

// NewUserRepository returns a Bolt-backed user repository.
func NewUserRepository(store *localstore.Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Current(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := r.store.Get(localstore.CollectionUser, currentUserKey, &user); err != nil {
		if errors.Is(err, localstore.ErrKeyNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SaveCurrent(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	return r.store.Put(localstore.CollectionUser, currentUserKey, user)
}

func (r *userRepository) DeleteCurrent(ctx context.Context) error {
	return r.store.Delete(localstore.CollectionUser, currentUserKey)
}

func (r *userRepository) GetAccount(ctx context.Context, email string) (*domain.LocalAccount, error) {
	var account domain.LocalAccount
	if err := r.store.Get(localstore.CollectionLocalUsers, accountKey(email), &account); err != nil {
		if errors.Is(err, localstore.ErrKeyNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *userRepository) SaveAccount(ctx context.Context, account *domain.LocalAccount) error {
	if account == nil || account.Email == "" {
		return domain.ErrInvalidPayload
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	return r.store.Put(localstore.CollectionLocalUsers, accountKey(account.Email), account)
}

func accountKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
