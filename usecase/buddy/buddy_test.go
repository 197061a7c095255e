package buddy

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/internal/infrastructure/localstore"
	"github.com/safezoneph/syncd/repository/boltdb"
)

type recordingOutbox struct {
	sessions []string
	checkIns []string
}

func (o *recordingOutbox) QueueTask(ctx context.Context, operation string, task *domain.Task) error {
	return nil
}

func (o *recordingOutbox) QueueBuddySession(ctx context.Context, session *domain.BuddySession) error {
	o.sessions = append(o.sessions, session.ID)
	return nil
}

func (o *recordingOutbox) QueueCheckIn(ctx context.Context, sessionID string, checkIn *domain.CheckIn) error {
	o.checkIns = append(o.checkIns, sessionID)
	return nil
}

func (o *recordingOutbox) QueueMessage(ctx context.Context, message *domain.Message) error {
	return nil
}

func newTestUseCase(t *testing.T) (*UseCase, *recordingOutbox, *localstore.Store) {
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

	outbox := &recordingOutbox{}
	uc := New(
		boltdb.NewBuddyRepository(store),
		boltdb.NewBuddySessionRepository(store),
		boltdb.NewCheckInRepository(store),
		boltdb.NewPointsRepository(store),
		outbox,
		nil,
	)
	return uc, outbox, store
}

func TestStartSessionQueuesMirror(t *testing.T) {
	uc, outbox, _ := newTestUseCase(t)
	ctx := context.Background()

	buddy, err := uc.Add(ctx, &domain.Buddy{Name: "Ana", RiskLevel: "low"})
	require.NoError(t, err)

	session, err := uc.StartSession(ctx, buddy.ID, "u1")
	require.NoError(t, err)
	require.Equal(t, domain.BuddySessionActive, session.Status)
	require.Equal(t, "Ana", session.BuddyName)
	require.Equal(t, []string{session.ID}, outbox.sessions)

	active, err := uc.ActiveSessions(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
}

func TestStartSessionUnknownBuddyFails(t *testing.T) {
	uc, _, _ := newTestUseCase(t)

	_, err := uc.StartSession(context.Background(), "missing", "u1")
	require.ErrorIs(t, err, domain.ErrBuddyNotFound)
}

func TestCheckInBumpsCountersAndAwardsPoints(t *testing.T) {
	uc, outbox, store := newTestUseCase(t)
	ctx := context.Background()

	buddy, err := uc.Add(ctx, &domain.Buddy{Name: "Ana", RiskLevel: "low"})
	require.NoError(t, err)
	session, err := uc.StartSession(ctx, buddy.ID, "u1")
	require.NoError(t, err)

	checkIn, user, err := uc.CheckIn(ctx, session.ID, &domain.CheckIn{Mood: "safe", Notes: "all good"})
	require.NoError(t, err)
	require.Equal(t, session.ID, checkIn.SessionID)
	require.Equal(t, checkInPoints, user.Points)
	require.Equal(t, []string{session.ID}, outbox.checkIns)

	updated, err := uc.sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, 1, updated.CheckInCount)
	require.NotNil(t, updated.LastCheckInAt)

	pairedBuddy, err := uc.Get(ctx, buddy.ID)
	require.NoError(t, err)
	require.Equal(t, 1, pairedBuddy.CheckInCount)

	entries, err := boltdb.NewPointsRepository(store).History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, domain.PointsTypeCheckIn, entries[0].Type)
}

func TestCheckInRequiresMoodAndActiveSession(t *testing.T) {
	uc, _, _ := newTestUseCase(t)
	ctx := context.Background()

	_, _, err := uc.CheckIn(ctx, "any", &domain.CheckIn{})
	require.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, _, err = uc.CheckIn(ctx, "missing", &domain.CheckIn{Mood: "safe"})
	require.ErrorIs(t, err, domain.ErrBuddySessionNotFound)
}

func TestCompleteSessionAwardsBonus(t *testing.T) {
	uc, _, _ := newTestUseCase(t)
	ctx := context.Background()

	buddy, err := uc.Add(ctx, &domain.Buddy{Name: "Ana", RiskLevel: "low"})
	require.NoError(t, err)
	session, err := uc.StartSession(ctx, buddy.ID, "u1")
	require.NoError(t, err)

	completed, user, err := uc.CompleteSession(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, domain.BuddySessionCompleted, completed.Status)
	require.Equal(t, sessionCompletePoints, user.Points)

	// A completed session cannot be completed again.
	_, _, err = uc.CompleteSession(ctx, session.ID)
	require.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	active, err := uc.ActiveSessions(ctx)
	require.NoError(t, err)
	require.Empty(t, active)
}
