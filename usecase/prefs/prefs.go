package prefs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/repository"
)

// UseCase owns the local-only collections: the notification inbox, user
// settings and onboarding progress. None of these ever sync.
type UseCase struct {
	notifications repository.NotificationRepository
	settings      repository.SettingsRepository
	onboarding    repository.OnboardingRepository
	logger        *zap.Logger
}

func New(
	notifications repository.NotificationRepository,
	settings repository.SettingsRepository,
	onboarding repository.OnboardingRepository,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		notifications: notifications,
		settings:      settings,
		onboarding:    onboarding,
		logger:        logger,
	}
}

func (uc *UseCase) Notifications(ctx context.Context) ([]domain.Notification, error) {
	return uc.notifications.List(ctx)
}

func (uc *UseCase) Notify(ctx context.Context, notification *domain.Notification) error {
	return uc.notifications.Append(ctx, notification)
}

func (uc *UseCase) MarkNotificationRead(ctx context.Context, id string) error {
	return uc.notifications.MarkRead(ctx, id)
}

func (uc *UseCase) ClearNotifications(ctx context.Context) error {
	return uc.notifications.Clear(ctx)
}

// Settings returns stored preferences; the repository falls back to
// first-run defaults when nothing is stored yet.
func (uc *UseCase) Settings(ctx context.Context) (*domain.Settings, error) {
	return uc.settings.Get(ctx)
}

func (uc *UseCase) SaveSettings(ctx context.Context, settings *domain.Settings) error {
	if settings == nil {
		return domain.ErrInvalidPayload
	}
	if settings.Language == "" {
		settings.Language = domain.DefaultSettings().Language
	}
	return uc.settings.Save(ctx, settings)
}

func (uc *UseCase) Onboarding(ctx context.Context) (*domain.Onboarding, error) {
	return uc.onboarding.Get(ctx)
}

func (uc *UseCase) SaveOnboarding(ctx context.Context, onboarding *domain.Onboarding) error {
	if onboarding == nil {
		return domain.ErrInvalidPayload
	}
	if onboarding.Completed && onboarding.CompletedAt == nil {
		now := time.Now()
		onboarding.CompletedAt = &now
	}
	return uc.onboarding.Save(ctx, onboarding)
}
