package localstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Logical collection names. One Bolt bucket per collection; each repository
// owns disjoint buckets, so there is no cross-collection write contention.
const (
	CollectionUser          = "user"
	CollectionLocalUsers    = "local_users"
	CollectionSessions      = "sessions"
	CollectionTasks         = "tasks"
	CollectionBuddies       = "buddies"
	CollectionBuddySessions = "buddy_sessions"
	CollectionCheckIns      = "checkins"
	CollectionPointsHistory = "points_history"
	CollectionConversations = "conversations"
	CollectionNotifications = "notifications"
	CollectionSettings      = "settings"
	CollectionOnboarding    = "onboarding"
	collectionOutbox        = "outbox"
)

var collections = []string{
	CollectionUser,
	CollectionLocalUsers,
	CollectionSessions,
	CollectionTasks,
	CollectionBuddies,
	CollectionBuddySessions,
	CollectionCheckIns,
	CollectionPointsHistory,
	CollectionConversations,
	CollectionNotifications,
	CollectionSettings,
	CollectionOnboarding,
	collectionOutbox,
}

// ErrKeyNotFound is the sentinel for an absent key. Absence is a normal
// outcome for local-first reads, not a failure.
var ErrKeyNotFound = errors.New("localstore: key not found")

// Store is the durable local key-value layer backing every collection.
// Writes are synchronous; once Put returns, the record survives a restart.
type Store struct {
	db *bolt.DB
}

// Open initializes the Bolt file and ensures all collection buckets exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range collections {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Put serializes value and stores it under collection/key.
func (s *Store) Put(collection, key string, value interface{}) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(collection)).Put([]byte(key), payload)
	})
}

// Get deserializes the value under collection/key into out, or returns
// ErrKeyNotFound.
func (s *Store) Get(collection, key string, out interface{}) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(collection)).Get([]byte(key))
		if raw == nil {
			return ErrKeyNotFound
		}
		return json.Unmarshal(raw, out)
	})
}

// Delete removes the key. Deleting an absent key is not an error.
func (s *Store) Delete(collection, key string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(collection)).Delete([]byte(key))
	})
}

// ForEach iterates the collection in key order.
func (s *Store) ForEach(collection string, fn func(key string, value []byte) error) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(collection)).ForEach(func(k, v []byte) error {
			return fn(string(k), v)
		})
	})
}

// Clear drops every record in the collection.
func (s *Store) Clear(collection string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(collection)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(collection))
		return err
	})
}

// Count returns the number of records in the collection.
func (s *Store) Count(collection string) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket([]byte(collection)).Stats().KeyN
		return nil
	})
	return count, err
}

// Update runs fn inside a single write transaction. Repositories use this
// when two collections must change together, e.g. a ledger append plus the
// balance update.
func (s *Store) Update(fn func(tx *bolt.Tx) error) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(fn)
}

// Bucket fetches a collection bucket inside an Update callback.
func Bucket(tx *bolt.Tx, collection string) *bolt.Bucket {
	return tx.Bucket([]byte(collection))
}

// Healthy reports whether the store can serve a read transaction.
func (s *Store) Healthy() bool {
	if s == nil || s.db == nil {
		return false
	}
	return s.db.View(func(tx *bolt.Tx) error { return nil }) == nil
}

// Stats exposes Bolt statistics for the health endpoint.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
