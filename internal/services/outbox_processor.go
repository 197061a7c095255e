package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/internal/infrastructure/localstore"
	"github.com/safezoneph/syncd/repository"
)

// RemoteSync is the slice of the remote client the processor drains into.
type RemoteSync interface {
	CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error)
	UpdateTask(ctx context.Context, id string, task *domain.Task) (*domain.Task, error)
	CreateBuddySession(ctx context.Context, session *domain.BuddySession) (*domain.BuddySession, error)
	BuddyCheckIn(ctx context.Context, sessionID string, checkIn *domain.CheckIn) error
	SendMessage(ctx context.Context, message *domain.Message) (*domain.Message, error)
}

// ConnectionHealth abstracts the connection monitor.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls drain cadence and the retry policy.
type ProcessorConfig struct {
	Interval       time.Duration
	BatchSize      int
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Retention      time.Duration
}

// OutboxProcessor drains queued mutations to the remote API whenever the
// monitor reports it reachable. Items that fail with a retryable error go
// back into the queue with exponential backoff; items the remote rejects
// outright are dropped, since retrying a rejected payload cannot succeed.
type OutboxProcessor struct {
	outbox   *localstore.Outbox
	remote   RemoteSync
	monitor  ConnectionHealth
	tasks    repository.TaskRepository
	sessions repository.BuddySessionRepository
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      ProcessorConfig
}

func NewOutboxProcessor(
	outbox *localstore.Outbox,
	remote RemoteSync,
	monitor ConnectionHealth,
	tasks repository.TaskRepository,
	sessions repository.BuddySessionRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *OutboxProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 8
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 2 * time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Minute
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 72 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	op := &OutboxProcessor{
		outbox:   outbox,
		remote:   remote,
		monitor:  monitor,
		tasks:    tasks,
		sessions: sessions,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = op.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := op.Drain(ctx); err != nil {
			op.logger.Error("outbox drain failed", zap.Error(err))
		}
	})
	_, _ = op.cron.AddFunc("@every 1h", func() {
		if err := op.outbox.Cleanup(time.Now().Add(-cfg.Retention)); err != nil {
			op.logger.Warn("outbox cleanup failed", zap.Error(err))
		}
	})

	return op
}

// Start launches the cron scheduler.
func (op *OutboxProcessor) Start() {
	if op == nil || op.cron == nil {
		return
	}
	op.cron.Start()
	op.logger.Info("outbox processor started",
		zap.Duration("interval", op.cfg.Interval),
		zap.Int("batch_size", op.cfg.BatchSize))
}

// Stop gracefully stops the scheduler.
func (op *OutboxProcessor) Stop(ctx context.Context) {
	if op == nil || op.cron == nil {
		return
	}
	stopCtx := op.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	op.logger.Info("outbox processor stopped")
}

// Drain pushes queued mutations to the remote synchronously. Safe to call
// from tests and from a manual sync trigger.
func (op *OutboxProcessor) Drain(ctx context.Context) error {
	if op == nil || op.outbox == nil {
		return nil
	}
	if op.monitor != nil && !op.monitor.IsOnline() {
		op.logger.Debug("skipping outbox drain (offline)")
		return nil
	}

	items, err := op.outbox.GetBatch(op.cfg.BatchSize, time.Now())
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := op.processItem(ctx, item); err != nil {
			op.handleFailure(item, err)
			continue
		}
		if err := op.outbox.Remove(item); err != nil {
			op.logger.Warn("failed to purge processed outbox item", zap.Error(err))
		}
	}
	return nil
}

func (op *OutboxProcessor) handleFailure(item localstore.Item, cause error) {
	if !domain.IsRetryable(cause) {
		op.logger.Warn("dropping outbox item (remote rejected it)",
			zap.String("item_id", item.ID),
			zap.String("entity", item.Entity),
			zap.Error(cause))
		_ = op.outbox.Remove(item)
		return
	}

	item.Retries++
	if item.Retries >= op.cfg.MaxRetries {
		op.logger.Warn("dropping outbox item (max retries reached)",
			zap.String("item_id", item.ID),
			zap.String("entity", item.Entity))
		_ = op.outbox.Remove(item)
		return
	}

	op.logger.Debug("requeueing outbox item",
		zap.String("item_id", item.ID),
		zap.Int("retries", item.Retries),
		zap.Error(cause))
	if err := op.outbox.Remove(item); err != nil {
		op.logger.Warn("failed to remove outbox item before requeue", zap.Error(err))
	}
	if err := op.outbox.Requeue(item, op.backoffFor(item.Retries)); err != nil {
		op.logger.Error("failed to requeue outbox item", zap.Error(err))
	}
}

// backoffFor doubles the delay per retry, capped at MaxBackoff.
func (op *OutboxProcessor) backoffFor(retries int) time.Duration {
	backoff := op.cfg.InitialBackoff
	for i := 1; i < retries; i++ {
		backoff *= 2
		if backoff >= op.cfg.MaxBackoff {
			return op.cfg.MaxBackoff
		}
	}
	if backoff > op.cfg.MaxBackoff {
		return op.cfg.MaxBackoff
	}
	return backoff
}

func (op *OutboxProcessor) processItem(ctx context.Context, item localstore.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch item.Entity {
	case localstore.EntityTask:
		return op.processTask(ctx, item)

	case localstore.EntityBuddySession:
		var session domain.BuddySession
		if err := json.Unmarshal(item.Data, &session); err != nil {
			return err
		}
		localID := session.ID
		canonical, err := op.remote.CreateBuddySession(ctx, &session)
		if err != nil {
			return err
		}
		op.reconcileSession(ctx, localID, canonical)
		return nil

	case localstore.EntityCheckIn:
		var queued queuedCheckIn
		if err := json.Unmarshal(item.Data, &queued); err != nil {
			return err
		}
		if strings.HasPrefix(queued.SessionID, domain.LocalIDPrefix) {
			// The session create has not drained yet, or already drained and
			// swapped ids. Retry while the local record still exists; once it
			// is gone the session sync already carried the state.
			if _, err := op.sessions.GetByID(ctx, queued.SessionID); err != nil {
				op.logger.Debug("dropping check-in for reconciled session",
					zap.String("session_id", queued.SessionID))
				return nil
			}
			return domain.ErrRemoteUnavailable
		}
		return op.remote.BuddyCheckIn(ctx, queued.SessionID, &queued.CheckIn)

	case localstore.EntityMessage:
		var message domain.Message
		if err := json.Unmarshal(item.Data, &message); err != nil {
			return err
		}
		_, err := op.remote.SendMessage(ctx, &message)
		return err

	default:
		return fmt.Errorf("unsupported entity %s", item.Entity)
	}
}

func (op *OutboxProcessor) processTask(ctx context.Context, item localstore.Item) error {
	var task domain.Task
	if err := json.Unmarshal(item.Data, &task); err != nil {
		return err
	}

	// Push the freshest local state so updates made while queued fold into
	// a single remote call.
	if current, err := op.tasks.GetByID(ctx, task.ID); err == nil {
		task = *current
	}

	switch item.Operation {
	case localstore.OperationCreate:
		localID := task.ID
		canonical, err := op.remote.CreateTask(ctx, &task)
		if err != nil {
			return err
		}
		op.reconcileTask(ctx, localID, canonical)
		return nil

	case localstore.OperationUpdate:
		if strings.HasPrefix(task.ID, domain.LocalIDPrefix) {
			if _, err := op.tasks.GetByID(ctx, task.ID); err != nil {
				// Already reconciled under a canonical id; the create carried
				// this state.
				return nil
			}
			return domain.ErrRemoteUnavailable
		}
		_, err := op.remote.UpdateTask(ctx, task.ID, &task)
		return err

	default:
		return fmt.Errorf("unsupported operation %s", item.Operation)
	}
}

// reconcileTask swaps a provisional local record for the canonical one the
// remote assigned. Failures here are logged only; the next refresh pulls
// the canonical copy anyway.
func (op *OutboxProcessor) reconcileTask(ctx context.Context, localID string, canonical *domain.Task) {
	if op.tasks == nil || canonical == nil || canonical.ID == "" || localID == canonical.ID {
		return
	}
	if err := op.tasks.Delete(ctx, localID); err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		op.logger.Warn("failed to drop provisional task", zap.String("id", localID), zap.Error(err))
	}
	if _, err := op.tasks.Create(ctx, canonical); err != nil {
		op.logger.Warn("failed to store canonical task", zap.String("id", canonical.ID), zap.Error(err))
	}
}

func (op *OutboxProcessor) reconcileSession(ctx context.Context, localID string, canonical *domain.BuddySession) {
	if op.sessions == nil || canonical == nil || canonical.ID == "" || localID == canonical.ID {
		return
	}
	if err := op.sessions.Delete(ctx, localID); err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		op.logger.Warn("failed to drop provisional buddy session", zap.String("id", localID), zap.Error(err))
	}
	if _, err := op.sessions.Create(ctx, canonical); err != nil {
		op.logger.Warn("failed to store canonical buddy session", zap.String("id", canonical.ID), zap.Error(err))
	}
}
