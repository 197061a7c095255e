package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/internal/infrastructure/localstore"
	"github.com/safezoneph/syncd/repository"
)

type buddyRepository struct {
	store *localstore.Store
}

// NewBuddyRepository returns a Bolt-backed implementation of BuddyRepository.
func NewBuddyRepository(store *localstore.Store) repository.BuddyRepository {
	return &buddyRepository{store: store}
}

func (r *buddyRepository) GetByID(ctx context.Context, id string) (*domain.Buddy, error) {
	var buddy domain.Buddy
	if err := r.store.Get(localstore.CollectionBuddies, id, &buddy); err != nil {
		if errors.Is(err, localstore.ErrKeyNotFound) {
			return nil, domain.ErrBuddyNotFound
		}
		return nil, err
	}
	return &buddy, nil
}

func (r *buddyRepository) List(ctx context.Context) ([]domain.Buddy, error) {
	var buddies []domain.Buddy
	err := r.store.ForEach(localstore.CollectionBuddies, func(_ string, value []byte) error {
		var buddy domain.Buddy
		if err := json.Unmarshal(value, &buddy); err != nil {
			return nil
		}
		buddies = append(buddies, buddy)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(buddies, func(i, j int) bool { return buddies[i].Name < buddies[j].Name })
	return buddies, nil
}

func (r *buddyRepository) Create(ctx context.Context, buddy *domain.Buddy) (*domain.Buddy, error) {
	if buddy == nil || buddy.Name == "" {
		return nil, domain.ErrInvalidPayload
	}
	if buddy.ID == "" {
		buddy.ID = domain.LocalIDPrefix + uuid.NewString()
	}
	if buddy.Status == "" {
		buddy.Status = domain.BuddyStatusOffline
	}
	if err := r.store.Put(localstore.CollectionBuddies, buddy.ID, buddy); err != nil {
		return nil, err
	}
	return buddy, nil
}

func (r *buddyRepository) Update(ctx context.Context, buddy *domain.Buddy) error {
	if buddy == nil || buddy.ID == "" {
		return domain.ErrInvalidPayload
	}
	if _, err := r.GetByID(ctx, buddy.ID); err != nil {
		return err
	}
	return r.store.Put(localstore.CollectionBuddies, buddy.ID, buddy)
}

func (r *buddyRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.store.Delete(localstore.CollectionBuddies, id)
}

func (r *buddyRepository) ReplaceAll(ctx context.Context, buddies []domain.Buddy) error {
	return r.store.Update(func(tx *bolt.Tx) error {
		bucket := localstore.Bucket(tx, localstore.CollectionBuddies)
		if err := dropSyncedKeys(bucket); err != nil {
			return err
		}
		for i := range buddies {
			payload, err := json.Marshal(&buddies[i])
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(buddies[i].ID), payload); err != nil {
				return err
			}
		}
		return nil
	})
}

type buddySessionRepository struct {
	store *localstore.Store
}

// NewBuddySessionRepository returns a Bolt-backed buddy session repository.
func NewBuddySessionRepository(store *localstore.Store) repository.BuddySessionRepository {
	return &buddySessionRepository{store: store}
}

func (r *buddySessionRepository) GetByID(ctx context.Context, id string) (*domain.BuddySession, error) {
	var session domain.BuddySession
	if err := r.store.Get(localstore.CollectionBuddySessions, id, &session); err != nil {
		if errors.Is(err, localstore.ErrKeyNotFound) {
			return nil, domain.ErrBuddySessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *buddySessionRepository) ListActive(ctx context.Context) ([]domain.BuddySession, error) {
	var sessions []domain.BuddySession
	err := r.store.ForEach(localstore.CollectionBuddySessions, func(_ string, value []byte) error {
		var session domain.BuddySession
		if err := json.Unmarshal(value, &session); err != nil {
			return nil
		}
		if session.IsActive() {
			sessions = append(sessions, session)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})
	return sessions, nil
}

func (r *buddySessionRepository) Create(ctx context.Context, session *domain.BuddySession) (*domain.BuddySession, error) {
	if session == nil || session.BuddyID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if session.ID == "" {
		session.ID = domain.LocalIDPrefix + uuid.NewString()
	}
	if session.Status == "" {
		session.Status = domain.BuddySessionActive
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}
	if err := r.store.Put(localstore.CollectionBuddySessions, session.ID, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (r *buddySessionRepository) Update(ctx context.Context, session *domain.BuddySession) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	if _, err := r.GetByID(ctx, session.ID); err != nil {
		return err
	}
	return r.store.Put(localstore.CollectionBuddySessions, session.ID, session)
}

func (r *buddySessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.store.Delete(localstore.CollectionBuddySessions, id)
}

func (r *buddySessionRepository) ReplaceAll(ctx context.Context, sessions []domain.BuddySession) error {
	return r.store.Update(func(tx *bolt.Tx) error {
		bucket := localstore.Bucket(tx, localstore.CollectionBuddySessions)
		if err := dropSyncedKeys(bucket); err != nil {
			return err
		}
		for i := range sessions {
			payload, err := json.Marshal(&sessions[i])
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(sessions[i].ID), payload); err != nil {
				return err
			}
		}
		return nil
	})
}

type checkInRepository struct {
	store *localstore.Store
}

// NewCheckInRepository returns a Bolt-backed check-in repository. Check-ins
// are append-only.
func NewCheckInRepository(store *localstore.Store) repository.CheckInRepository {
	return &checkInRepository{store: store}
}

func (r *checkInRepository) Append(ctx context.Context, checkIn *domain.CheckIn) error {
	if checkIn == nil || checkIn.BuddyID == "" {
		return domain.ErrInvalidPayload
	}
	if checkIn.ID == "" {
		checkIn.ID = domain.LocalIDPrefix + uuid.NewString()
	}
	if checkIn.Timestamp.IsZero() {
		checkIn.Timestamp = time.Now()
	}
	key := fmt.Sprintf("%020d_%s", checkIn.Timestamp.UnixNano(), checkIn.ID)
	return r.store.Put(localstore.CollectionCheckIns, key, checkIn)
}

func (r *checkInRepository) List(ctx context.Context, limit int) ([]domain.CheckIn, error) {
	checkIns, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	return paginate(checkIns, 0, limit), nil
}

func (r *checkInRepository) ListByBuddy(ctx context.Context, buddyID string) ([]domain.CheckIn, error) {
	all, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	var filtered []domain.CheckIn
	for _, ci := range all {
		if ci.BuddyID == buddyID {
			filtered = append(filtered, ci)
		}
	}
	return filtered, nil
}

func (r *checkInRepository) all(ctx context.Context) ([]domain.CheckIn, error) {
	var checkIns []domain.CheckIn
	err := r.store.ForEach(localstore.CollectionCheckIns, func(_ string, value []byte) error {
		var ci domain.CheckIn
		if err := json.Unmarshal(value, &ci); err != nil {
			return nil
		}
		checkIns = append(checkIns, ci)
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Keys are chronological; newest first for callers.
	for i, j := 0, len(checkIns)-1; i < j; i, j = i+1, j-1 {
		checkIns[i], checkIns[j] = checkIns[j], checkIns[i]
	}
	return checkIns, nil
}
