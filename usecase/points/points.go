package points

import (
	"context"

	"go.uber.org/zap"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/repository"
)

// Summary is the gamification snapshot the profile screen renders.
type Summary struct {
	User     *domain.User        `json:"user"`
	Progress domain.RankProgress `json:"progress"`
	Tiers    []domain.Tier       `json:"tiers"`
}

// UseCase exposes the points ledger and rank math.
type UseCase struct {
	points repository.PointsRepository
	users  repository.UserRepository
	logger *zap.Logger
}

func New(points repository.PointsRepository, users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		points: points,
		users:  users,
		logger: logger,
	}
}

// Award appends a ledger entry. The repository applies the entry and the
// balance change in one transaction, so the ledger always sums to the
// balance.
func (uc *UseCase) Award(ctx context.Context, entry *domain.PointsEntry) (*domain.User, error) {
	if entry == nil || entry.Points == 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "a non-zero points delta is required")
	}
	if entry.Type == "" {
		entry.Type = domain.PointsTypeAdjustment
	}
	return uc.points.Award(ctx, entry)
}

func (uc *UseCase) History(ctx context.Context, limit int) ([]domain.PointsEntry, error) {
	return uc.points.History(ctx, limit)
}

// Summary bundles the current user with tier progress.
func (uc *UseCase) Summary(ctx context.Context) (*Summary, error) {
	user, err := uc.users.Current(ctx)
	if err != nil {
		return nil, err
	}
	return &Summary{
		User:     user,
		Progress: domain.Progress(user.Points, user.Rank),
		Tiers:    domain.Tiers,
	}, nil
}
