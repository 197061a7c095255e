package buddy

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/repository"
	"github.com/safezoneph/syncd/usecase"
)

// Reward amounts for the buddy system.
const (
	checkInPoints         = 5
	sessionCompletePoints = 25
)

// UseCase owns buddies, buddy sessions and check-ins. Buddy membership is
// local-only; sessions and check-ins are mirrored to the remote through
// the outbox.
type UseCase struct {
	buddies  repository.BuddyRepository
	sessions repository.BuddySessionRepository
	checkIns repository.CheckInRepository
	points   repository.PointsRepository
	outbox   usecase.Outbox
	logger   *zap.Logger
}

func New(
	buddies repository.BuddyRepository,
	sessions repository.BuddySessionRepository,
	checkIns repository.CheckInRepository,
	points repository.PointsRepository,
	outbox usecase.Outbox,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		buddies:  buddies,
		sessions: sessions,
		checkIns: checkIns,
		points:   points,
		outbox:   outbox,
		logger:   logger,
	}
}

func (uc *UseCase) List(ctx context.Context) ([]domain.Buddy, error) {
	return uc.buddies.List(ctx)
}

func (uc *UseCase) Get(ctx context.Context, id string) (*domain.Buddy, error) {
	return uc.buddies.GetByID(ctx, id)
}

// Add registers a buddy pairing on the device. The remote buddy directory
// is read-only, so nothing is queued.
func (uc *UseCase) Add(ctx context.Context, buddy *domain.Buddy) (*domain.Buddy, error) {
	return uc.buddies.Create(ctx, buddy)
}

func (uc *UseCase) Update(ctx context.Context, buddy *domain.Buddy) error {
	return uc.buddies.Update(ctx, buddy)
}

func (uc *UseCase) Remove(ctx context.Context, id string) error {
	return uc.buddies.Delete(ctx, id)
}

// StartSession opens a check-in arrangement with a buddy and queues the
// remote mirror.
func (uc *UseCase) StartSession(ctx context.Context, buddyID, userID string) (*domain.BuddySession, error) {
	buddy, err := uc.buddies.GetByID(ctx, buddyID)
	if err != nil {
		return nil, err
	}

	session, err := uc.sessions.Create(ctx, &domain.BuddySession{
		BuddyID:   buddy.ID,
		BuddyName: buddy.Name,
		UserID:    userID,
		Status:    domain.BuddySessionActive,
		StartedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := uc.outbox.QueueBuddySession(ctx, session); err != nil {
		uc.logger.Warn("buddy session not queued for sync", zap.String("session_id", session.ID), zap.Error(err))
	}
	return session, nil
}

func (uc *UseCase) ActiveSessions(ctx context.Context) ([]domain.BuddySession, error) {
	return uc.sessions.ListActive(ctx)
}

// CheckIn records a wellness report against an active session, bumps the
// counters on both the session and the buddy, credits the reward and
// queues the remote mirror.
func (uc *UseCase) CheckIn(ctx context.Context, sessionID string, checkIn *domain.CheckIn) (*domain.CheckIn, *domain.User, error) {
	if checkIn == nil || checkIn.Mood == "" {
		return nil, nil, domain.NewError(domain.ErrCodeInvalid, "check-in mood is required")
	}
	session, err := uc.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if !session.IsActive() {
		return nil, nil, domain.NewError(domain.ErrCodeInvalid, "buddy session is not active")
	}

	now := time.Now()
	checkIn.SessionID = session.ID
	checkIn.BuddyID = session.BuddyID
	checkIn.BuddyName = session.BuddyName
	checkIn.Timestamp = now
	if err := uc.checkIns.Append(ctx, checkIn); err != nil {
		return nil, nil, err
	}

	session.CheckInCount++
	session.LastCheckInAt = &now
	if err := uc.sessions.Update(ctx, session); err != nil {
		uc.logger.Warn("session counters not updated", zap.String("session_id", session.ID), zap.Error(err))
	}
	uc.bumpBuddy(ctx, session.BuddyID, now)

	user := uc.award(ctx, &domain.PointsEntry{
		Type:        domain.PointsTypeCheckIn,
		Description: "Check-in with " + session.BuddyName,
		Points:      checkInPoints,
	})

	if err := uc.outbox.QueueCheckIn(ctx, session.ID, checkIn); err != nil {
		uc.logger.Warn("check-in not queued for sync", zap.String("session_id", session.ID), zap.Error(err))
	}
	return checkIn, user, nil
}

// CompleteSession closes a session and credits the completion bonus. The
// remote has no completion endpoint; the next refresh reconciles.
func (uc *UseCase) CompleteSession(ctx context.Context, sessionID string) (*domain.BuddySession, *domain.User, error) {
	session, err := uc.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if !session.IsActive() {
		return nil, nil, domain.NewError(domain.ErrCodeInvalid, "buddy session is not active")
	}

	session.Status = domain.BuddySessionCompleted
	if err := uc.sessions.Update(ctx, session); err != nil {
		return nil, nil, err
	}

	user := uc.award(ctx, &domain.PointsEntry{
		Type:        domain.PointsTypeCheckIn,
		Description: "Completed buddy session with " + session.BuddyName,
		Points:      sessionCompletePoints,
	})
	return session, user, nil
}

func (uc *UseCase) CheckInHistory(ctx context.Context, limit int) ([]domain.CheckIn, error) {
	return uc.checkIns.List(ctx, limit)
}

func (uc *UseCase) bumpBuddy(ctx context.Context, buddyID string, at time.Time) {
	buddy, err := uc.buddies.GetByID(ctx, buddyID)
	if err != nil {
		return
	}
	buddy.CheckInCount++
	buddy.LastCheckIn = &at
	if err := uc.buddies.Update(ctx, buddy); err != nil {
		uc.logger.Warn("buddy counters not updated", zap.String("buddy_id", buddyID), zap.Error(err))
	}
}

func (uc *UseCase) award(ctx context.Context, entry *domain.PointsEntry) *domain.User {
	user, err := uc.points.Award(ctx, entry)
	if err != nil {
		uc.logger.Error("reward not credited", zap.String("type", entry.Type), zap.Error(err))
		return nil
	}
	return user
}
