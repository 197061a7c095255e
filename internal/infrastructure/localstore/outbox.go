package localstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// Outbox entity kinds. Only mutations the remote API can receive are
// queued; everything else stays local by design.
const (
	EntityTask         = "task"
	EntityBuddySession = "buddy_session"
	EntityCheckIn      = "checkin"
	EntityMessage      = "message"
)

// Mutation operations.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
)

// Item is one pending remote mutation. Items survive restarts; the
// processor drains them when the remote is reachable and the backoff
// window has passed.
type Item struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	NotBefore time.Time       `json:"not_before"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		i.Priority = 3
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}

// Outbox persists pending remote mutations in a priority-ordered bucket of
// the same Bolt file as the rest of the local state.
type Outbox struct {
	db     *bolt.DB
	bucket []byte
}

// NewOutbox attaches to the store's outbox bucket.
func NewOutbox(store *Store) *Outbox {
	if store == nil {
		return &Outbox{}
	}
	return &Outbox{
		db:     store.db,
		bucket: []byte(collectionOutbox),
	}
}

// Enqueue stores an item under a priority-aware key.
func (o *Outbox) Enqueue(item Item) error {
	if o == nil || o.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	item.normalize()
	item.bucketKey = []byte(buildKey(item))

	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return o.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(o.bucket).Put(item.bucketKey, payload)
	})
}

// GetBatch returns up to limit drainable items without removing them.
// Items still inside their backoff window are skipped.
func (o *Outbox) GetBatch(limit int, now time.Time) ([]Item, error) {
	if o == nil || o.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}
	if now.IsZero() {
		now = time.Now()
	}

	var items []Item
	err := o.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(o.bucket).Cursor()
		for k, v := c.First(); k != nil && len(items) < limit; k, v = c.Next() {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				continue
			}
			if item.NotBefore.After(now) {
				continue
			}
			item.bucketKey = append([]byte(nil), k...)
			items = append(items, item)
		}
		return nil
	})
	return items, err
}

// Remove deletes the provided item.
func (o *Outbox) Remove(item Item) error {
	if o == nil || o.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if len(item.bucketKey) == 0 {
		return o.removeByID(item.ID)
	}
	return o.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(o.bucket).Delete(item.bucketKey)
	})
}

// Requeue re-inserts an item with a fresh timestamp and a backoff window.
// The caller bumps Retries before requeueing.
func (o *Outbox) Requeue(item Item, backoff time.Duration) error {
	item.bucketKey = nil
	item.Timestamp = time.Now()
	item.NotBefore = item.Timestamp.Add(backoff)
	return o.Enqueue(item)
}

// Size returns the number of pending items.
func (o *Outbox) Size() (int, error) {
	if o == nil || o.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := o.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(o.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// PendingEntities counts queued items per entity kind. The refresher uses
// this to hold off pulling a collection whose optimistic mutations have not
// drained yet.
func (o *Outbox) PendingEntities() (map[string]int, error) {
	if o == nil || o.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	counts := make(map[string]int)
	err := o.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(o.bucket).ForEach(func(_, v []byte) error {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				return nil
			}
			counts[item.Entity]++
			return nil
		})
	})
	return counts, err
}

// Cleanup drops items enqueued before the cutoff, regardless of retries.
func (o *Outbox) Cleanup(olderThan time.Time) error {
	if o == nil || o.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return o.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(o.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				continue
			}
			if item.Timestamp.Before(olderThan) {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (o *Outbox) removeByID(id string) error {
	if id == "" {
		return nil
	}
	return o.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(o.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				continue
			}
			if item.ID == id {
				return c.Delete()
			}
		}
		return nil
	})
}

func buildKey(item Item) string {
	return fmt.Sprintf("%d_%020d_%s", item.Priority, item.Timestamp.UnixNano(), item.ID)
}
