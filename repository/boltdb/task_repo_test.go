package boltdb

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/repository"
)

func TestTaskCreateAssignsLocalID(t *testing.T) {
	repo := NewTaskRepository(openTestStore(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Task{
		Title:    "Distribute relief goods",
		Category: "relief",
		Priority: domain.TaskPriorityHigh,
		Status:   domain.TaskStatusPending,
		Points:   50,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(created.ID, domain.LocalIDPrefix) {
		t.Fatalf("expected local- id, got %q", created.ID)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Distribute relief goods" || got.Status != domain.TaskStatusPending {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestTaskListFiltersAndSorts(t *testing.T) {
	repo := NewTaskRepository(openTestStore(t))
	ctx := context.Background()

	older := time.Now().Add(-time.Hour)
	tasks := []domain.Task{
		{Title: "old pending", Status: domain.TaskStatusPending, CreatedAt: older},
		{Title: "new pending", Status: domain.TaskStatusPending},
		{Title: "done", Status: domain.TaskStatusCompleted},
	}
	for i := range tasks {
		if _, err := repo.Create(ctx, &tasks[i]); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	pending, err := repo.List(ctx, repository.TaskFilter{Status: domain.TaskStatusPending})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if pending[0].Title != "new pending" {
		t.Fatalf("expected newest first, got %q", pending[0].Title)
	}
}

func TestTaskUpdateMissingFails(t *testing.T) {
	repo := NewTaskRepository(openTestStore(t))
	err := repo.Update(context.Background(), &domain.Task{ID: "nope", Title: "x"})
	if err != domain.ErrTaskNotFound {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskReplaceAllKeepsProvisionalRecords(t *testing.T) {
	repo := NewTaskRepository(openTestStore(t))
	ctx := context.Background()

	// A synced record the remote no longer reports, and an optimistic
	// create still carrying its provisional id.
	if _, err := repo.Create(ctx, &domain.Task{ID: "srv-old", Title: "retired", Status: domain.TaskStatusCompleted}); err != nil {
		t.Fatalf("create: %v", err)
	}
	local, err := repo.Create(ctx, &domain.Task{Title: "undrained", Status: domain.TaskStatusPending})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	canonical := []domain.Task{
		{ID: "srv-1", Title: "from remote", Status: domain.TaskStatusInProgress, CreatedAt: time.Now()},
	}
	if err := repo.ReplaceAll(ctx, canonical); err != nil {
		t.Fatalf("replace: %v", err)
	}

	all, err := repo.List(ctx, repository.TaskFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected canonical + provisional, got %+v", all)
	}
	if _, err := repo.GetByID(ctx, "srv-old"); err != domain.ErrTaskNotFound {
		t.Fatalf("expected retired synced record to be dropped, got %v", err)
	}
	if _, err := repo.GetByID(ctx, local.ID); err != nil {
		t.Fatalf("provisional record must survive a replace: %v", err)
	}
}
