package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/internal/infrastructure/localstore"
	"github.com/safezoneph/syncd/repository/boltdb"
)

type fakeFeed struct {
	tasks    []domain.Task
	buddies  []domain.Buddy
	sessions []domain.BuddySession
	points   []domain.PointsEntry

	taskPulls int
}

func (f *fakeFeed) Token() string { return "feed-token" }

func (f *fakeFeed) GetTasks(ctx context.Context) ([]domain.Task, error) {
	f.taskPulls++
	return f.tasks, nil
}

func (f *fakeFeed) GetBuddies(ctx context.Context) ([]domain.Buddy, error) {
	return f.buddies, nil
}

func (f *fakeFeed) GetActiveBuddySessions(ctx context.Context) ([]domain.BuddySession, error) {
	return f.sessions, nil
}

func (f *fakeFeed) GetPointsHistory(ctx context.Context) ([]domain.PointsEntry, error) {
	return f.points, nil
}

func newTestRefresher(t *testing.T, feed *fakeFeed) (*Refresher, *localstore.Outbox, *localstore.Store) {
	t.Helper()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "syncd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	outbox := localstore.NewOutbox(store)
	r := NewRefresher(
		feed,
		fakeMonitor{online: true},
		outbox,
		boltdb.NewTaskRepository(store),
		boltdb.NewBuddyRepository(store),
		boltdb.NewBuddySessionRepository(store),
		boltdb.NewPointsRepository(store),
		boltdb.NewUserRepository(store),
		time.Minute,
		nil,
	)
	return r, outbox, store
}

func TestRefreshPreservesUndrainedLocalRecords(t *testing.T) {
	feed := &fakeFeed{tasks: []domain.Task{{ID: "srv-1", Title: "Barangay cleanup", Status: "pending"}}}
	r, _, store := newTestRefresher(t, feed)
	ctx := context.Background()

	// An optimistic create whose outbox item has not drained yet. A pull
	// racing the drain must not erase it.
	tasks := boltdb.NewTaskRepository(store)
	local, err := tasks.Create(ctx, &domain.Task{Title: "Pack relief goods", Category: "relief", Status: "pending"})
	require.NoError(t, err)

	r.RefreshAll(ctx)

	kept, err := tasks.GetByID(ctx, local.ID)
	require.NoError(t, err, "a refresh must never revert an optimistic create")
	require.Equal(t, "Pack relief goods", kept.Title)

	pulled, err := tasks.GetByID(ctx, "srv-1")
	require.NoError(t, err, "canonical records merge in around the provisional one")
	require.Equal(t, "Barangay cleanup", pulled.Title)
}

func TestRefreshPreservesProvisionalBuddySession(t *testing.T) {
	feed := &fakeFeed{}
	r, _, store := newTestRefresher(t, feed)
	ctx := context.Background()

	sessions := boltdb.NewBuddySessionRepository(store)
	session, err := sessions.Create(ctx, &domain.BuddySession{BuddyID: "b1", UserID: "u1"})
	require.NoError(t, err)

	r.RefreshAll(ctx)

	kept, err := sessions.GetByID(ctx, session.ID)
	require.NoError(t, err, "an empty remote pull must not close out a local session")
	require.True(t, kept.IsActive())
}

func TestRefreshSkipsCollectionsWithQueuedMutations(t *testing.T) {
	feed := &fakeFeed{tasks: []domain.Task{{ID: "srv-1", Title: "stale copy", Status: "pending"}}}
	r, outbox, store := newTestRefresher(t, feed)
	ctx := context.Background()

	// A queued update against a canonical id: pulling the collection now
	// would revert the optimistic edit with the remote's stale copy.
	tasks := boltdb.NewTaskRepository(store)
	edited, err := tasks.Create(ctx, &domain.Task{ID: "srv-1", Title: "fresh edit", Status: "in-progress"})
	require.NoError(t, err)

	bridge := NewOutboxBridge(outbox, nil)
	require.NoError(t, bridge.QueueTask(ctx, localstore.OperationUpdate, edited))

	r.RefreshAll(ctx)

	require.Zero(t, feed.taskPulls, "tasks must not be pulled while a task mutation is queued")
	current, err := tasks.GetByID(ctx, "srv-1")
	require.NoError(t, err)
	require.Equal(t, "fresh edit", current.Title)
}

func TestRefreshPointsKeepsUnsyncedCredits(t *testing.T) {
	feed := &fakeFeed{points: []domain.PointsEntry{
		{ID: "srv-p1", Type: domain.PointsTypeTask, Points: 100, Timestamp: time.Now().Add(-time.Hour)},
	}}
	r, _, store := newTestRefresher(t, feed)
	ctx := context.Background()

	users := boltdb.NewUserRepository(store)
	require.NoError(t, users.SaveCurrent(ctx, &domain.User{ID: "u1", Email: "u1@example.ph", Rank: domain.RankFor(0)}))

	// A locally credited award the remote knows nothing about.
	points := boltdb.NewPointsRepository(store)
	_, err := points.Award(ctx, &domain.PointsEntry{Type: domain.PointsTypeCheckIn, Points: 25})
	require.NoError(t, err)

	r.RefreshAll(ctx)

	total, err := points.Sum(ctx)
	require.NoError(t, err)
	require.Equal(t, 125, total, "the merged ledger keeps the unsynced credit")

	user, err := users.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, 125, user.Points)
	require.Equal(t, domain.RankFor(125), user.Rank)
}
