package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/internal/infrastructure/localstore"
	"github.com/safezoneph/syncd/repository/boltdb"
)

type fakeRemote struct {
	createTaskErr error
	checkInErr    error

	createdTasks    []domain.Task
	updatedTasks    []domain.Task
	createdSessions []domain.BuddySession
	checkIns        []domain.CheckIn
	messages        []domain.Message
}

func (f *fakeRemote) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if f.createTaskErr != nil {
		return nil, f.createTaskErr
	}
	f.createdTasks = append(f.createdTasks, *task)
	canonical := *task
	canonical.ID = "srv-" + task.Title
	return &canonical, nil
}

func (f *fakeRemote) UpdateTask(ctx context.Context, id string, task *domain.Task) (*domain.Task, error) {
	f.updatedTasks = append(f.updatedTasks, *task)
	return task, nil
}

func (f *fakeRemote) CreateBuddySession(ctx context.Context, session *domain.BuddySession) (*domain.BuddySession, error) {
	f.createdSessions = append(f.createdSessions, *session)
	canonical := *session
	canonical.ID = "srv-session-1"
	return &canonical, nil
}

func (f *fakeRemote) BuddyCheckIn(ctx context.Context, sessionID string, checkIn *domain.CheckIn) error {
	if f.checkInErr != nil {
		return f.checkInErr
	}
	f.checkIns = append(f.checkIns, *checkIn)
	return nil
}

func (f *fakeRemote) SendMessage(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	f.messages = append(f.messages, *message)
	return message, nil
}

type fakeMonitor struct{ online bool }

func (m fakeMonitor) IsOnline() bool { return m.online }

func newTestProcessor(t *testing.T, remote RemoteSync, online bool) (*OutboxProcessor, *localstore.Outbox, *localstore.Store) {
	t.Helper()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "syncd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	outbox := localstore.NewOutbox(store)
	proc := NewOutboxProcessor(
		outbox,
		remote,
		fakeMonitor{online: online},
		boltdb.NewTaskRepository(store),
		boltdb.NewBuddySessionRepository(store),
		nil,
		ProcessorConfig{BatchSize: 10, MaxRetries: 3, InitialBackoff: time.Minute},
	)
	return proc, outbox, store
}

func TestDrainMirrorsTaskAndSwapsID(t *testing.T) {
	remote := &fakeRemote{}
	proc, outbox, store := newTestProcessor(t, remote, true)
	ctx := context.Background()

	tasks := boltdb.NewTaskRepository(store)
	task, err := tasks.Create(ctx, &domain.Task{Title: "relief drive", Category: "relief", Priority: "high", Status: "pending"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(task.ID, domain.LocalIDPrefix))

	bridge := NewOutboxBridge(outbox, nil)
	require.NoError(t, bridge.QueueTask(ctx, localstore.OperationCreate, task))

	require.NoError(t, proc.Drain(ctx))

	require.Len(t, remote.createdTasks, 1)
	size, err := outbox.Size()
	require.NoError(t, err)
	require.Zero(t, size, "processed item must be purged")

	// Local record now carries the id the remote assigned.
	_, err = tasks.GetByID(ctx, task.ID)
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
	canonical, err := tasks.GetByID(ctx, "srv-relief drive")
	require.NoError(t, err)
	require.Equal(t, "relief drive", canonical.Title)
}

func TestDrainSkipsWhenOffline(t *testing.T) {
	remote := &fakeRemote{}
	proc, outbox, _ := newTestProcessor(t, remote, false)
	ctx := context.Background()

	bridge := NewOutboxBridge(outbox, nil)
	require.NoError(t, bridge.QueueMessage(ctx, &domain.Message{SenderID: "u1", ReceiverID: "u2", Content: "hi"}))

	require.NoError(t, proc.Drain(ctx))

	require.Empty(t, remote.messages)
	size, err := outbox.Size()
	require.NoError(t, err)
	require.Equal(t, 1, size, "items must survive an offline drain")
}

func TestRetryableFailureRequeuesWithBackoff(t *testing.T) {
	remote := &fakeRemote{createTaskErr: domain.ErrRemoteUnavailable}
	proc, outbox, _ := newTestProcessor(t, remote, true)
	ctx := context.Background()

	bridge := NewOutboxBridge(outbox, nil)
	require.NoError(t, bridge.QueueTask(ctx, localstore.OperationCreate, &domain.Task{ID: "local-x", Title: "t"}))

	require.NoError(t, proc.Drain(ctx))

	size, err := outbox.Size()
	require.NoError(t, err)
	require.Equal(t, 1, size)

	// Inside the backoff window the item is not drainable.
	batch, err := outbox.GetBatch(10, time.Now())
	require.NoError(t, err)
	require.Empty(t, batch)

	batch, err = outbox.GetBatch(10, time.Now().Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, batch, 1)
	require.Equal(t, 1, batch[0].Retries)
}

func TestRejectedItemIsDropped(t *testing.T) {
	remote := &fakeRemote{createTaskErr: domain.NewError(domain.ErrCodeInvalid, "bad payload")}
	proc, outbox, _ := newTestProcessor(t, remote, true)
	ctx := context.Background()

	bridge := NewOutboxBridge(outbox, nil)
	require.NoError(t, bridge.QueueTask(ctx, localstore.OperationCreate, &domain.Task{ID: "local-x", Title: "t"}))

	require.NoError(t, proc.Drain(ctx))

	size, err := outbox.Size()
	require.NoError(t, err)
	require.Zero(t, size, "non-retryable failures must not loop forever")
	require.Empty(t, remote.createdTasks)
}

func TestMaxRetriesDropsItem(t *testing.T) {
	remote := &fakeRemote{checkInErr: domain.ErrRemoteUnavailable}
	proc, outbox, _ := newTestProcessor(t, remote, true)
	ctx := context.Background()

	bridge := NewOutboxBridge(outbox, nil)
	checkIn := &domain.CheckIn{BuddyID: "b1", Mood: "safe", Timestamp: time.Now()}
	require.NoError(t, bridge.QueueCheckIn(ctx, "srv-session-9", checkIn))

	// MaxRetries is 3; each pass bumps the count once the backoff elapses.
	for i := 0; i < 3; i++ {
		batch, err := outbox.GetBatch(10, time.Now().Add(24*time.Hour))
		require.NoError(t, err)
		for _, item := range batch {
			require.Error(t, proc.processItem(ctx, item))
			proc.handleFailure(item, domain.ErrRemoteUnavailable)
		}
	}

	size, err := outbox.Size()
	require.NoError(t, err)
	require.Zero(t, size)
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	proc := &OutboxProcessor{cfg: ProcessorConfig{
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     5 * time.Minute,
	}}

	require.Equal(t, 2*time.Second, proc.backoffFor(1))
	require.Equal(t, 4*time.Second, proc.backoffFor(2))
	require.Equal(t, 16*time.Second, proc.backoffFor(4))
	require.Equal(t, 5*time.Minute, proc.backoffFor(20))
}

func TestDrainMirrorsSessionThenCheckIn(t *testing.T) {
	remote := &fakeRemote{}
	proc, outbox, store := newTestProcessor(t, remote, true)
	ctx := context.Background()

	sessions := boltdb.NewBuddySessionRepository(store)
	session, err := sessions.Create(ctx, &domain.BuddySession{BuddyID: "b1", UserID: "u1"})
	require.NoError(t, err)

	bridge := NewOutboxBridge(outbox, nil)
	require.NoError(t, bridge.QueueBuddySession(ctx, session))

	require.NoError(t, proc.Drain(ctx))
	require.Len(t, remote.createdSessions, 1)

	// The local record now lives under the canonical id.
	_, err = sessions.GetByID(ctx, session.ID)
	require.ErrorIs(t, err, domain.ErrBuddySessionNotFound)
	canonical, err := sessions.GetByID(ctx, "srv-session-1")
	require.NoError(t, err)
	require.Equal(t, "b1", canonical.BuddyID)

	// A check-in against the canonical session goes straight through.
	require.NoError(t, bridge.QueueCheckIn(ctx, "srv-session-1", &domain.CheckIn{BuddyID: "b1", Mood: "safe"}))
	require.NoError(t, proc.Drain(ctx))
	require.Len(t, remote.checkIns, 1)
}
