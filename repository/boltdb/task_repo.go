package boltdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/internal/infrastructure/localstore"
	"github.com/safezoneph/syncd/repository"
)

type taskRepository struct {
	store *localstore.Store
}

// NewTaskRepository returns a Bolt-backed implementation of TaskRepository.
func NewTaskRepository(store *localstore.Store) repository.TaskRepository {
	return &taskRepository{store: store}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	if err := r.store.Get(localstore.CollectionTasks, id, &task); err != nil {
		if errors.Is(err, localstore.ErrKeyNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.store.ForEach(localstore.CollectionTasks, func(_ string, value []byte) error {
		var task domain.Task
		if err := json.Unmarshal(value, &task); err != nil {
			return nil
		}
		if filter.Status != "" && task.Status != filter.Status {
			return nil
		}
		tasks = append(tasks, task)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return paginate(tasks, filter.Offset, filter.Limit), nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = domain.LocalIDPrefix + uuid.NewString()
	}
	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	if err := r.store.Put(localstore.CollectionTasks, task.ID, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}
	if _, err := r.GetByID(ctx, task.ID); err != nil {
		return err
	}
	task.UpdatedAt = time.Now()
	return r.store.Put(localstore.CollectionTasks, task.ID, task)
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.store.Delete(localstore.CollectionTasks, id)
}

func (r *taskRepository) ReplaceAll(ctx context.Context, tasks []domain.Task) error {
	return r.store.Update(func(tx *bolt.Tx) error {
		bucket := localstore.Bucket(tx, localstore.CollectionTasks)
		if err := dropSyncedKeys(bucket); err != nil {
			return err
		}
		for i := range tasks {
			payload, err := json.Marshal(&tasks[i])
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(tasks[i].ID), payload); err != nil {
				return err
			}
		}
		return nil
	})
}

// dropSyncedKeys deletes remote-owned records and leaves provisional
// "local-" ones in place. A refresh must never erase an optimistic write
// whose create has not drained; the outbox processor retires provisional
// ids itself once the remote confirms them.
func dropSyncedKeys(bucket *bolt.Bucket) error {
	prefix := []byte(domain.LocalIDPrefix)
	c := bucket.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		if bytes.HasPrefix(k, prefix) {
			continue
		}
		if err := c.Delete(); err != nil {
			return err
		}
	}
	return nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
