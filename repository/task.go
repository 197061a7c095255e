package repository

import (
	"context"

	"github.com/safezoneph/syncd/domain"
)

type TaskFilter struct {
	Status string
	Limit  int
	Offset int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error

	// ReplaceAll swaps the whole collection for a canonical remote copy.
	ReplaceAll(ctx context.Context, tasks []domain.Task) error
}
