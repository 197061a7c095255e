package localstore

import (
	"path/filepath"
	"testing"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetDelete(t *testing.T) {
	s := openTestStore(t)

	want := record{Name: "supply run", Count: 3}
	if err := s.Put(CollectionTasks, "t1", want); err != nil {
		t.Fatalf("put: %v", err)
	}

	var got record
	if err := s.Get(CollectionTasks, "t1", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if err := s.Delete(CollectionTasks, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Get(CollectionTasks, "t1", &got); err != ErrKeyNotFound {
		t.Fatalf("expected ErrKeyNotFound after delete, got %v", err)
	}
}

func TestGetAbsentReturnsSentinel(t *testing.T) {
	s := openTestStore(t)
	var got record
	if err := s.Get(CollectionBuddies, "nope", &got); err != ErrKeyNotFound {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestWritesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Put(CollectionUser, "current", record{Name: "maria"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	var got record
	if err := reopened.Get(CollectionUser, "current", &got); err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Name != "maria" {
		t.Fatalf("got %q, want maria", got.Name)
	}
}

func TestClearAndCount(t *testing.T) {
	s := openTestStore(t)
	for _, k := range []string{"a", "b", "c"} {
		if err := s.Put(CollectionNotifications, k, record{Name: k}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	if n, _ := s.Count(CollectionNotifications); n != 3 {
		t.Fatalf("count = %d, want 3", n)
	}
	if err := s.Clear(CollectionNotifications); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n, _ := s.Count(CollectionNotifications); n != 0 {
		t.Fatalf("count after clear = %d, want 0", n)
	}
}

func TestForEachIteratesAll(t *testing.T) {
	s := openTestStore(t)
	for _, k := range []string{"x", "y"} {
		if err := s.Put(CollectionCheckIns, k, record{Name: k}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	seen := map[string]bool{}
	err := s.ForEach(CollectionCheckIns, func(key string, _ []byte) error {
		seen[key] = true
		return nil
	})
	if err != nil {
		t.Fatalf("foreach: %v", err)
	}
	if !seen["x"] || !seen["y"] {
		t.Fatalf("missing keys in iteration: %v", seen)
	}
}
