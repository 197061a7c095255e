package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/internal/infrastructure/localstore"
	"github.com/safezoneph/syncd/repository"
)

// RemoteFeed is the read side of the remote client the refresher pulls from.
type RemoteFeed interface {
	Token() string
	GetTasks(ctx context.Context) ([]domain.Task, error)
	GetBuddies(ctx context.Context) ([]domain.Buddy, error)
	GetActiveBuddySessions(ctx context.Context) ([]domain.BuddySession, error)
	GetPointsHistory(ctx context.Context) ([]domain.PointsEntry, error)
}

// PendingQueue reports how much optimistic state still waits to drain,
// keyed by outbox entity.
type PendingQueue interface {
	PendingEntities() (map[string]int, error)
}

// Refresher periodically pulls canonical collections from the remote and
// replaces the local copies. Remote reads win over remote-acknowledged
// state only: a collection with undrained outbox mutations is left alone
// until the drain catches up, and provisional "local-" records survive the
// replace itself, so a pull can never revert an optimistic write.
type Refresher struct {
	remote   RemoteFeed
	monitor  ConnectionHealth
	queue    PendingQueue
	tasks    repository.TaskRepository
	buddies  repository.BuddyRepository
	sessions repository.BuddySessionRepository
	points   repository.PointsRepository
	users    repository.UserRepository

	interval time.Duration
	stopCh   chan struct{}
	logger   *zap.Logger
}

func NewRefresher(
	remote RemoteFeed,
	monitor ConnectionHealth,
	queue PendingQueue,
	tasks repository.TaskRepository,
	buddies repository.BuddyRepository,
	sessions repository.BuddySessionRepository,
	points repository.PointsRepository,
	users repository.UserRepository,
	interval time.Duration,
	logger *zap.Logger,
) *Refresher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		remote:   remote,
		monitor:  monitor,
		queue:    queue,
		tasks:    tasks,
		buddies:  buddies,
		sessions: sessions,
		points:   points,
		users:    users,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// Start launches the refresh loop. The first pull happens immediately so a
// freshly started node converges without waiting a full interval.
func (r *Refresher) Start() {
	go r.loop()
}

func (r *Refresher) Stop() {
	close(r.stopCh)
}

func (r *Refresher) loop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.RefreshAll(context.Background())
	for {
		select {
		case <-ticker.C:
			r.RefreshAll(context.Background())
		case <-r.stopCh:
			return
		}
	}
}

// RefreshAll pulls every collection concurrently. Each pull fails
// independently; one broken endpoint does not stop the others.
func (r *Refresher) RefreshAll(ctx context.Context) {
	if r.remote == nil || r.remote.Token() == "" {
		return
	}
	if r.monitor != nil && !r.monitor.IsOnline() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.interval)
	defer cancel()

	pending := r.pendingByEntity()
	mutationsInFlight := pending[localstore.EntityTask] +
		pending[localstore.EntityBuddySession] +
		pending[localstore.EntityCheckIn]

	g, gctx := errgroup.WithContext(ctx)
	if pending[localstore.EntityTask] == 0 {
		g.Go(func() error { return r.refreshTasks(gctx) })
	}
	g.Go(func() error { return r.refreshBuddies(gctx) })
	if pending[localstore.EntityBuddySession]+pending[localstore.EntityCheckIn] == 0 {
		g.Go(func() error { return r.refreshSessions(gctx) })
	}
	// Queued mutations may still earn points remotely; pulling the ledger
	// before they drain would realign the balance too early.
	if mutationsInFlight == 0 {
		g.Go(func() error { return r.refreshPoints(gctx) })
	}
	if err := g.Wait(); err != nil {
		r.logger.Debug("refresh pass incomplete", zap.Error(err))
	}
	if mutationsInFlight > 0 {
		r.logger.Debug("refresh deferred for undrained mutations",
			zap.Int("pending", mutationsInFlight))
	}
}

func (r *Refresher) pendingByEntity() map[string]int {
	if r.queue == nil {
		return nil
	}
	pending, err := r.queue.PendingEntities()
	if err != nil {
		r.logger.Warn("outbox inspection failed", zap.Error(err))
		return nil
	}
	return pending
}

func (r *Refresher) refreshTasks(ctx context.Context) error {
	tasks, err := r.remote.GetTasks(ctx)
	if err != nil {
		return err
	}
	return r.tasks.ReplaceAll(ctx, tasks)
}

func (r *Refresher) refreshBuddies(ctx context.Context) error {
	buddies, err := r.remote.GetBuddies(ctx)
	if err != nil {
		return err
	}
	return r.buddies.ReplaceAll(ctx, buddies)
}

func (r *Refresher) refreshSessions(ctx context.Context) error {
	sessions, err := r.remote.GetActiveBuddySessions(ctx)
	if err != nil {
		return err
	}
	return r.sessions.ReplaceAll(ctx, sessions)
}

// refreshPoints replaces the remote-acknowledged slice of the ledger and
// realigns the user balance with the merged ledger. Summing the merged
// ledger, not the remote payload, keeps credits the remote has not
// recorded yet in the balance.
func (r *Refresher) refreshPoints(ctx context.Context) error {
	entries, err := r.remote.GetPointsHistory(ctx)
	if err != nil {
		return err
	}
	if err := r.points.ReplaceHistory(ctx, entries); err != nil {
		return err
	}

	user, err := r.users.Current(ctx)
	if err != nil {
		return nil
	}
	total, err := r.points.Sum(ctx)
	if err != nil {
		return err
	}
	if user.Points == total {
		return nil
	}
	user.Points = total
	user.Rank = domain.RankFor(total)
	return r.users.SaveCurrent(ctx, user)
}
