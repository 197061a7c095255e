package repository

import (
	"context"

	"github.com/safezoneph/syncd/domain"
)

// PointsRepository owns the append-only ledger and keeps the user balance
// consistent with it: Award must apply the ledger append and the balance
// update atomically.
type PointsRepository interface {
	Award(ctx context.Context, entry *domain.PointsEntry) (*domain.User, error)
	History(ctx context.Context, limit int) ([]domain.PointsEntry, error)
	Sum(ctx context.Context) (int, error)
	ReplaceHistory(ctx context.Context, entries []domain.PointsEntry) error
}
