package repository

import (
	"context"

	"github.com/safezoneph/syncd/domain"
)

// Local-only collections. None of these are mirrored to the remote.

type NotificationRepository interface {
	List(ctx context.Context) ([]domain.Notification, error)
	Append(ctx context.Context, notification *domain.Notification) error
	MarkRead(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

type SettingsRepository interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Save(ctx context.Context, settings *domain.Settings) error
}

type OnboardingRepository interface {
	Get(ctx context.Context) (*domain.Onboarding, error)
	Save(ctx context.Context, onboarding *domain.Onboarding) error
}
