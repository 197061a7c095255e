package repository

import (
	"context"

	"github.com/safezoneph/syncd/domain"
)

// UserRepository owns the current session user plus the local account
// registry that makes offline registration and login possible.
type UserRepository interface {
	Current(ctx context.Context) (*domain.User, error)
	SaveCurrent(ctx context.Context, user *domain.User) error
	DeleteCurrent(ctx context.Context) error

	GetAccount(ctx context.Context, email string) (*domain.LocalAccount, error)
	SaveAccount(ctx context.Context, account *domain.LocalAccount) error
}
