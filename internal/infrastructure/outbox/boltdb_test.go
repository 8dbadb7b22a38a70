package outbox

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "outbox.db"), "outbox")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEnqueueDrainsInReplayOrder(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Add(-time.Minute)
	for i, op := range []string{"create", "update", "delete"} {
		err := store.Enqueue(Item{
			ID:        op + "-item",
			UserID:    "u1",
			Operation: op,
			Task:      json.RawMessage(`{}`),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("enqueue %s: %v", op, err)
		}
	}

	items, err := store.GetBatch(10)
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	for i, op := range []string{"create", "update", "delete"} {
		if items[i].Operation != op {
			t.Fatalf("item %d = %q, want %q (replay order is edit order)", i, items[i].Operation, op)
		}
	}
}

func TestRemoveAndSize(t *testing.T) {
	store := openTestStore(t)

	if err := store.Enqueue(Item{ID: "a", Operation: "create", Task: json.RawMessage(`{}`)}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := store.Enqueue(Item{ID: "b", Operation: "create", Task: json.RawMessage(`{}`)}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	items, err := store.GetBatch(10)
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if err := store.Remove(items[0]); err != nil {
		t.Fatalf("remove: %v", err)
	}

	size, err := store.Size()
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if size != 1 {
		t.Fatalf("size = %d, want 1", size)
	}
}

func TestRequeueMovesItemToTail(t *testing.T) {
	store := openTestStore(t)

	old := time.Now().Add(-time.Hour)
	if err := store.Enqueue(Item{ID: "failing", Operation: "update", Task: json.RawMessage(`{}`), Timestamp: old}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := store.Enqueue(Item{ID: "pending", Operation: "create", Task: json.RawMessage(`{}`), Timestamp: old.Add(time.Second)}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	items, _ := store.GetBatch(10)
	failed := items[0]
	failed.Retries++
	if err := store.Remove(failed); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Requeue(failed); err != nil {
		t.Fatalf("requeue: %v", err)
	}

	items, _ = store.GetBatch(10)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != "pending" || items[1].ID != "failing" {
		t.Fatalf("requeued item should move behind pending work, got %q then %q", items[0].ID, items[1].ID)
	}
	if items[1].Retries != 1 {
		t.Fatalf("retries = %d, want 1", items[1].Retries)
	}
}

func TestCleanupDropsExpiredItems(t *testing.T) {
	store := openTestStore(t)

	stale := time.Now().Add(-48 * time.Hour)
	fresh := time.Now()
	store.Enqueue(Item{ID: "stale", Operation: "create", Task: json.RawMessage(`{}`), Timestamp: stale})
	store.Enqueue(Item{ID: "fresh", Operation: "create", Task: json.RawMessage(`{}`), Timestamp: fresh})

	if err := store.Cleanup(time.Now().Add(-24 * time.Hour)); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	items, _ := store.GetBatch(10)
	if len(items) != 1 || items[0].ID != "fresh" {
		t.Fatalf("cleanup kept wrong items: %+v", items)
	}
}
