package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/internal/infrastructure/localstore"
	"github.com/safezoneph/syncd/repository"
)

type pointsRepository struct {
	store *localstore.Store
}

// NewPointsRepository returns the Bolt-backed ledger. Awards touch the
// ledger bucket and the user bucket inside one write transaction, so
// sum(ledger) == user.points holds for every write that goes through here.
func NewPointsRepository(store *localstore.Store) repository.PointsRepository {
	return &pointsRepository{store: store}
}

func (r *pointsRepository) Award(ctx context.Context, entry *domain.PointsEntry) (*domain.User, error) {
	if entry == nil || entry.Points == 0 {
		return nil, domain.ErrInvalidPayload
	}
	if entry.ID == "" {
		entry.ID = domain.LocalIDPrefix + uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	var updated domain.User
	err := r.store.Update(func(tx *bolt.Tx) error {
		users := localstore.Bucket(tx, localstore.CollectionUser)
		raw := users.Get([]byte(currentUserKey))
		if raw == nil {
			return domain.ErrUserNotFound
		}
		if err := json.Unmarshal(raw, &updated); err != nil {
			return err
		}

		updated.Points += entry.Points
		updated.Rank = domain.RankFor(updated.Points)

		entryPayload, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		ledger := localstore.Bucket(tx, localstore.CollectionPointsHistory)
		if err := ledger.Put([]byte(ledgerKey(entry)), entryPayload); err != nil {
			return err
		}

		userPayload, err := json.Marshal(&updated)
		if err != nil {
			return err
		}
		return users.Put([]byte(currentUserKey), userPayload)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *pointsRepository) History(ctx context.Context, limit int) ([]domain.PointsEntry, error) {
	var entries []domain.PointsEntry
	err := r.store.ForEach(localstore.CollectionPointsHistory, func(_ string, value []byte) error {
		var entry domain.PointsEntry
		if err := json.Unmarshal(value, &entry); err != nil {
			return nil
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Keys are chronological; the ledger reads newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return paginate(entries, 0, limit), nil
}

func (r *pointsRepository) Sum(ctx context.Context) (int, error) {
	total := 0
	err := r.store.ForEach(localstore.CollectionPointsHistory, func(_ string, value []byte) error {
		var entry domain.PointsEntry
		if err := json.Unmarshal(value, &entry); err != nil {
			return nil
		}
		total += entry.Points
		return nil
	})
	return total, err
}

// ReplaceHistory swaps the remote-acknowledged slice of the ledger for the
// canonical copy. Provisional "local-" entries are credits the remote does
// not know about yet; erasing them would revert applied optimistic state,
// so they stay until the remote ledger supersedes the whole collection.
func (r *pointsRepository) ReplaceHistory(ctx context.Context, entries []domain.PointsEntry) error {
	return r.store.Update(func(tx *bolt.Tx) error {
		bucket := localstore.Bucket(tx, localstore.CollectionPointsHistory)
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var entry domain.PointsEntry
			if err := json.Unmarshal(v, &entry); err == nil &&
				strings.HasPrefix(entry.ID, domain.LocalIDPrefix) {
				continue
			}
			if err := c.Delete(); err != nil {
				return err
			}
		}
		for i := range entries {
			payload, err := json.Marshal(&entries[i])
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(ledgerKey(&entries[i])), payload); err != nil {
				return err
			}
		}
		return nil
	})
}

func ledgerKey(entry *domain.PointsEntry) string {
	return fmt.Sprintf("%020d_%s", entry.Timestamp.UnixNano(), entry.ID)
}
