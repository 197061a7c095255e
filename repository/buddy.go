package repository

import (
	"context"

	"github.com/safezoneph/syncd/domain"
)

type BuddyRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Buddy, error)
	List(ctx context.Context) ([]domain.Buddy, error)
	Create(ctx context.Context, buddy *domain.Buddy) (*domain.Buddy, error)
	Update(ctx context.Context, buddy *domain.Buddy) error
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, buddies []domain.Buddy) error
}

type BuddySessionRepository interface {
	GetByID(ctx context.Context, id string) (*domain.BuddySession, error)
	ListActive(ctx context.Context) ([]domain.BuddySession, error)
	Create(ctx context.Context, session *domain.BuddySession) (*domain.BuddySession, error)
	Update(ctx context.Context, session *domain.BuddySession) error
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, sessions []domain.BuddySession) error
}

type CheckInRepository interface {
	Append(ctx context.Context, checkIn *domain.CheckIn) error
	List(ctx context.Context, limit int) ([]domain.CheckIn, error)
	ListByBuddy(ctx context.Context, buddyID string) ([]domain.CheckIn, error)
}
