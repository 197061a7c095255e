package task

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/internal/infrastructure/localstore"
	"github.com/safezoneph/syncd/repository"
	"github.com/safezoneph/syncd/repository/boltdb"
)

type recordingOutbox struct {
	err   error
	tasks []string
}

func (o *recordingOutbox) QueueTask(ctx context.Context, operation string, task *domain.Task) error {
	if o.err != nil {
		return o.err
	}
	o.tasks = append(o.tasks, operation+":"+task.ID)
	return nil
}

func (o *recordingOutbox) QueueBuddySession(ctx context.Context, session *domain.BuddySession) error {
	return o.err
}

func (o *recordingOutbox) QueueCheckIn(ctx context.Context, sessionID string, checkIn *domain.CheckIn) error {
	return o.err
}

func (o *recordingOutbox) QueueMessage(ctx context.Context, message *domain.Message) error {
	return o.err
}

func newTestUseCase(t *testing.T, outbox *recordingOutbox) (*UseCase, repository.UserRepository) {
	t.Helper()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "syncd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	users := boltdb.NewUserRepository(store)
	require.NoError(t, users.SaveCurrent(context.Background(), &domain.User{
		ID:    "u1",
		Email: "u1@example.ph",
		Rank:  domain.RankFor(0),
	}))

	uc := New(
		boltdb.NewTaskRepository(store),
		boltdb.NewPointsRepository(store),
		outbox,
		nil,
	)
	return uc, users
}

func TestCreatePersistsLocallyWhenQueueFails(t *testing.T) {
	outbox := &recordingOutbox{err: domain.NewError(domain.ErrCodeInternal, "store broken")}
	uc, _ := newTestUseCase(t, outbox)
	ctx := context.Background()

	created, err := uc.Create(ctx, &domain.Task{Title: "Pack relief goods", Category: "relief"})
	require.NoError(t, err, "a dead outbox must not block local creation")
	require.Equal(t, domain.TaskStatusPending, created.Status)

	stored, err := uc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Pack relief goods", stored.Title)
}

func TestCreateQueuesMirror(t *testing.T) {
	outbox := &recordingOutbox{}
	uc, _ := newTestUseCase(t, outbox)

	created, err := uc.Create(context.Background(), &domain.Task{Title: "Map flood zones", Category: "preparedness"})
	require.NoError(t, err)
	require.Equal(t, []string{"create:" + created.ID}, outbox.tasks)
}

func TestCreateValidates(t *testing.T) {
	uc, _ := newTestUseCase(t, &recordingOutbox{})
	ctx := context.Background()

	_, err := uc.Create(ctx, &domain.Task{Title: ""})
	require.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.Create(ctx, &domain.Task{Title: "x", Priority: "extreme"})
	require.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestCompletionAwardsPointsOnce(t *testing.T) {
	outbox := &recordingOutbox{}
	uc, users := newTestUseCase(t, outbox)
	ctx := context.Background()

	created, err := uc.Create(ctx, &domain.Task{Title: "Evacuation drill", Category: "training", Points: 300})
	require.NoError(t, err)

	completed := domain.TaskStatusCompleted
	result, err := uc.Update(ctx, created.ID, UpdateInput{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, result.User, "completion must return the updated balance")
	require.Equal(t, 300, result.User.Points)
	require.Equal(t, "Bantay Kaibigan", result.User.Rank)

	// Completing an already completed task must not double-credit.
	result, err = uc.Update(ctx, created.ID, UpdateInput{Status: &completed})
	require.NoError(t, err)
	require.Nil(t, result.User)

	current, err := users.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, 300, current.Points)
}

func TestUpdateUnknownTaskFails(t *testing.T) {
	uc, _ := newTestUseCase(t, &recordingOutbox{})

	status := domain.TaskStatusCompleted
	_, err := uc.Update(context.Background(), "missing", UpdateInput{Status: &status})
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestCountsGroupByStatus(t *testing.T) {
	uc, _ := newTestUseCase(t, &recordingOutbox{})
	ctx := context.Background()

	first, err := uc.Create(ctx, &domain.Task{Title: "Stock water", Category: "relief"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, &domain.Task{Title: "Check generators", Category: "preparedness"})
	require.NoError(t, err)

	completed := domain.TaskStatusCompleted
	_, err = uc.Update(ctx, first.ID, UpdateInput{Status: &completed})
	require.NoError(t, err)

	counts, err := uc.Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, counts[domain.TaskStatusPending])
	require.Equal(t, 1, counts[domain.TaskStatusCompleted])
	require.Equal(t, 0, counts[domain.TaskStatusInProgress])
	require.Equal(t, 2, counts["total"])
}

func TestDeleteIsLocalOnly(t *testing.T) {
	outbox := &recordingOutbox{}
	uc, _ := newTestUseCase(t, outbox)
	ctx := context.Background()

	created, err := uc.Create(ctx, &domain.Task{Title: "Old drive", Category: "relief"})
	require.NoError(t, err)

	queued := len(outbox.tasks)
	require.NoError(t, uc.Delete(ctx, created.ID))
	require.Len(t, outbox.tasks, queued, "deletion must not queue a remote mutation")

	_, err = uc.Get(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}
