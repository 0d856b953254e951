package holds

import (
	"context"
	"testing"
)

func TestMemoryStoreAddAndHeld(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	mustAdd(t, store, "warehouse", "SKU-1-M", "wf-1", 3)
	mustAdd(t, store, "warehouse", "SKU-1-M", "wf-2", 2)
	mustAdd(t, store, "store", "SKU-1-M", "cart-1", 1)

	held, err := store.Held(ctx, "warehouse", "SKU-1-M")
	if err != nil || held != 5 {
		t.Fatalf("warehouse held = %d, %v", held, err)
	}
	held, _ = store.Held(ctx, "store", "SKU-1-M")
	if held != 1 {
		t.Fatalf("store held = %d", held)
	}
}

func TestMemoryStoreNegativeAddReducesHold(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	mustAdd(t, store, "warehouse", "SKU-2-S", "wf-1", 4)
	mustAdd(t, store, "warehouse", "SKU-2-S", "wf-1", -3)

	held, _ := store.Held(ctx, "warehouse", "SKU-2-S")
	if held != 1 {
		t.Fatalf("held = %d", held)
	}
}

func TestMemoryStoreReleaseOwner(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	mustAdd(t, store, "warehouse", "SKU-1-M", "wf-1", 3)
	mustAdd(t, store, "warehouse", "SKU-3-L", "wf-1", 1)
	mustAdd(t, store, "warehouse", "SKU-1-M", "wf-2", 2)

	if err := store.ReleaseOwner(ctx, "wf-1"); err != nil {
		t.Fatalf("release: %v", err)
	}

	held, _ := store.Held(ctx, "warehouse", "SKU-1-M")
	if held != 2 {
		t.Fatalf("expected wf-2 hold to survive, held = %d", held)
	}
	held, _ = store.Held(ctx, "warehouse", "SKU-3-L")
	if held != 0 {
		t.Fatalf("expected wf-1 hold gone, held = %d", held)
	}
}

func TestMemoryStoreUnknownVariant(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	held, err := store.Held(context.Background(), "store", "missing")
	if err != nil || held != 0 {
		t.Fatalf("unknown variant held = %d, %v", held, err)
	}
}

func mustAdd(t *testing.T, store Store, location, code, owner string, qty int) {
	t.Helper()
	if err := store.Add(context.Background(), location, code, owner, qty); err != nil {
		t.Fatalf("add hold: %v", err)
	}
}
