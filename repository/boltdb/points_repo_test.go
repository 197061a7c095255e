package boltdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/internal/infrastructure/localstore"
)

func openTestStore(t *testing.T) *localstore.Store {
	t.Helper()
	s, err := localstore.Open(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, store *localstore.Store, points int) {
	t.Helper()
	users := NewUserRepository(store)
	err := users.SaveCurrent(context.Background(), &domain.User{
		ID:     "local-test-user",
		Email:  "maria@example.ph",
		Points: points,
		Rank:   domain.RankFor(points),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestAwardUpdatesBalanceAndLedgerAtomically(t *testing.T) {
	store := openTestStore(t)
	seedUser(t, store, 200)
	repo := NewPointsRepository(store)
	ctx := context.Background()

	user, err := repo.Award(ctx, &domain.PointsEntry{
		Type:        domain.PointsTypeTask,
		Description: "Completed supply delivery",
		Points:      100,
	})
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if user.Points != 300 {
		t.Fatalf("balance = %d, want 300", user.Points)
	}
	// Crossing the 250 floor promotes the rank.
	if user.Rank != "Bantay Kaibigan" {
		t.Fatalf("rank = %q, want Bantay Kaibigan", user.Rank)
	}

	sum, err := repo.Sum(ctx)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum != 100 {
		t.Fatalf("ledger sum = %d, want 100", sum)
	}
}

func TestAwardWithoutUserFails(t *testing.T) {
	store := openTestStore(t)
	repo := NewPointsRepository(store)

	_, err := repo.Award(context.Background(), &domain.PointsEntry{Type: domain.PointsTypeCheckIn, Points: 10})
	if err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	// A failed award must not leave a stray ledger entry behind.
	if sum, _ := repo.Sum(context.Background()); sum != 0 {
		t.Fatalf("ledger sum after failed award = %d, want 0", sum)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	store := openTestStore(t)
	seedUser(t, store, 0)
	repo := NewPointsRepository(store)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, desc := range []string{"first", "second", "third"} {
		_, err := repo.Award(ctx, &domain.PointsEntry{
			Type:        domain.PointsTypeCommunity,
			Description: desc,
			Points:      10,
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("award %s: %v", desc, err)
		}
	}

	history, err := repo.History(ctx, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Description != "third" || history[1].Description != "second" {
		t.Fatalf("unexpected order: %q, %q", history[0].Description, history[1].Description)
	}
}

func TestLedgerMatchesBalanceAfterManyAwards(t *testing.T) {
	store := openTestStore(t)
	seedUser(t, store, 0)
	repo := NewPointsRepository(store)
	users := NewUserRepository(store)
	ctx := context.Background()

	for _, delta := range []int{50, 120, 30, 400, 25} {
		if _, err := repo.Award(ctx, &domain.PointsEntry{Type: domain.PointsTypeTask, Points: delta}); err != nil {
			t.Fatalf("award %d: %v", delta, err)
		}
	}

	user, err := users.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	sum, err := repo.Sum(ctx)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if user.Points != sum {
		t.Fatalf("balance %d diverged from ledger sum %d", user.Points, sum)
	}
	if user.Rank != domain.RankFor(user.Points) {
		t.Fatalf("rank %q inconsistent with points %d", user.Rank, user.Points)
	}
}
