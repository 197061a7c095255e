package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/repository"
	"github.com/safezoneph/syncd/usecase"
)

// UpdateInput carries a partial task mutation. Nil fields are left as-is.
type UpdateInput struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Points      *int       `json:"points,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	AssignedTo  *string    `json:"assignedTo,omitempty"`
	Location    *string    `json:"location,omitempty"`
}

// UpdateResult is a task mutation plus the user record when the mutation
// earned points.
type UpdateResult struct {
	Task *domain.Task `json:"task"`
	User *domain.User `json:"user,omitempty"`
}

// UseCase owns the task collection. Every mutation lands locally first;
// mirroring to the remote rides the outbox.
type UseCase struct {
	tasks  repository.TaskRepository
	points repository.PointsRepository
	outbox usecase.Outbox
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, points repository.PointsRepository, outbox usecase.Outbox, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		points: points,
		outbox: outbox,
		logger: logger,
	}
}

// Create persists the task locally and queues the remote mirror. A full
// outbox failure is logged, never surfaced; the local write already
// succeeded.
func (uc *UseCase) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.Title == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "task title is required")
	}
	if task.Priority == "" {
		task.Priority = domain.TaskPriorityMedium
	}
	if !domain.ValidTaskPriority(task.Priority) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown task priority")
	}
	task.Status = domain.TaskStatusPending

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	if err := uc.outbox.QueueTask(ctx, usecase.OperationCreate, created); err != nil {
		uc.logger.Warn("task create not queued for sync", zap.String("task_id", created.ID), zap.Error(err))
	}
	return created, nil
}

func (uc *UseCase) Get(ctx context.Context, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

func (uc *UseCase) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if filter.Status != "" && !domain.ValidTaskStatus(filter.Status) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown task status")
	}
	return uc.tasks.List(ctx, filter)
}

// Update applies a partial mutation. Completing a task with a reward
// appends a ledger entry, which atomically bumps the user balance and rank.
func (uc *UseCase) Update(ctx context.Context, id string, input UpdateInput) (*UpdateResult, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	wasCompleted := task.IsCompleted()
	applyUpdate(task, input)
	if !domain.ValidTaskStatus(task.Status) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown task status")
	}
	if !domain.ValidTaskPriority(task.Priority) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown task priority")
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	if err := uc.outbox.QueueTask(ctx, usecase.OperationUpdate, task); err != nil {
		uc.logger.Warn("task update not queued for sync", zap.String("task_id", task.ID), zap.Error(err))
	}

	result := &UpdateResult{Task: task}
	if task.IsCompleted() && !wasCompleted && task.Points > 0 {
		user, err := uc.points.Award(ctx, &domain.PointsEntry{
			Type:        domain.PointsTypeTask,
			Description: "Completed: " + task.Title,
			Points:      task.Points,
		})
		if err != nil {
			uc.logger.Error("task reward not credited", zap.String("task_id", task.ID), zap.Error(err))
		} else {
			result.User = user
		}
	}
	return result, nil
}

// Delete removes the task locally. The remote API has no task deletion, so
// nothing is queued.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	return uc.tasks.Delete(ctx, id)
}

// Counts is a pure projection of the collection by status, plus a total.
func (uc *UseCase) Counts(ctx context.Context) (map[string]int, error) {
	tasks, err := uc.tasks.List(ctx, repository.TaskFilter{})
	if err != nil {
		return nil, err
	}
	counts := map[string]int{
		domain.TaskStatusPending:    0,
		domain.TaskStatusInProgress: 0,
		domain.TaskStatusCompleted:  0,
	}
	for _, t := range tasks {
		counts[t.Status]++
	}
	counts["total"] = len(tasks)
	return counts, nil
}

func applyUpdate(task *domain.Task, input UpdateInput) {
	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Category != nil {
		task.Category = *input.Category
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Points != nil {
		task.Points = *input.Points
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.AssignedTo != nil {
		task.AssignedTo = *input.AssignedTo
	}
	if input.Location != nil {
		task.Location = *input.Location
	}
}
