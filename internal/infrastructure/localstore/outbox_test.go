package localstore

import (
	"encoding/json"
	"testing"
	"time"
)

func TestOutboxEnqueueAndBatch(t *testing.T) {
	s := openTestStore(t)
	o := NewOutbox(s)

	for i := 0; i < 3; i++ {
		err := o.Enqueue(Item{
			Entity:    EntityTask,
			Operation: OperationCreate,
			Data:      json.RawMessage(`{"title":"x"}`),
		})
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	items, err := o.GetBatch(10, time.Now())
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("batch size = %d, want 3", len(items))
	}
	if n, _ := o.Size(); n != 3 {
		t.Fatalf("size = %d, want 3", n)
	}
}

func TestOutboxPriorityOrdering(t *testing.T) {
	s := openTestStore(t)
	o := NewOutbox(s)

	if err := o.Enqueue(Item{ID: "low", Entity: EntityMessage, Priority: 5}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := o.Enqueue(Item{ID: "high", Entity: EntityCheckIn, Priority: 1}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	items, err := o.GetBatch(10, time.Now())
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(items) != 2 || items[0].ID != "high" {
		t.Fatalf("expected high-priority item first, got %+v", items)
	}
}

func TestOutboxRequeueRespectsBackoff(t *testing.T) {
	s := openTestStore(t)
	o := NewOutbox(s)

	if err := o.Enqueue(Item{ID: "retry-me", Entity: EntityTask, Operation: OperationUpdate}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	items, _ := o.GetBatch(10, time.Now())
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	item := items[0]
	if err := o.Remove(item); err != nil {
		t.Fatalf("remove: %v", err)
	}
	item.Retries++
	if err := o.Requeue(item, time.Minute); err != nil {
		t.Fatalf("requeue: %v", err)
	}

	// Inside the backoff window the item is invisible.
	items, _ = o.GetBatch(10, time.Now())
	if len(items) != 0 {
		t.Fatalf("expected backoff to hide item, got %d", len(items))
	}

	// After the window it drains again, retry count intact.
	items, _ = o.GetBatch(10, time.Now().Add(2*time.Minute))
	if len(items) != 1 || items[0].Retries != 1 {
		t.Fatalf("expected requeued item with retries=1, got %+v", items)
	}
}

func TestOutboxPendingEntities(t *testing.T) {
	s := openTestStore(t)
	o := NewOutbox(s)

	if err := o.Enqueue(Item{Entity: EntityTask, Operation: OperationCreate}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := o.Enqueue(Item{Entity: EntityTask, Operation: OperationUpdate}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := o.Enqueue(Item{Entity: EntityCheckIn, Operation: OperationCreate}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	pending, err := o.PendingEntities()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if pending[EntityTask] != 2 || pending[EntityCheckIn] != 1 || pending[EntityBuddySession] != 0 {
		t.Fatalf("unexpected pending counts: %+v", pending)
	}
}

func TestOutboxRemoveAndCleanup(t *testing.T) {
	s := openTestStore(t)
	o := NewOutbox(s)

	if err := o.Enqueue(Item{ID: "stale", Entity: EntityBuddySession, Timestamp: time.Now().Add(-48 * time.Hour)}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := o.Enqueue(Item{ID: "fresh", Entity: EntityBuddySession}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := o.Cleanup(time.Now().Add(-24 * time.Hour)); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	items, _ := o.GetBatch(10, time.Now())
	if len(items) != 1 || items[0].ID != "fresh" {
		t.Fatalf("expected only fresh item to survive cleanup, got %+v", items)
	}

	if err := o.Remove(items[0]); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if n, _ := o.Size(); n != 0 {
		t.Fatalf("size after remove = %d, want 0", n)
	}
}
