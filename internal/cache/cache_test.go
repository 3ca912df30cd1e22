package cache

import (
	"testing"
	"time"
)

func TestTTL_GetSet(t *testing.T) {
	c := New[string](time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	c.Set("a", "one")
	got, ok := c.Get("a")
	if !ok || got != "one" {
		t.Fatalf("expected hit with \"one\", got %q (hit=%v)", got, ok)
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestTTL_Expiry(t *testing.T) {
	c := New[int](10 * time.Millisecond)
	c.Set("a", 1)
	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestTTL_CleanExpired(t *testing.T) {
	c := New[int](10 * time.Millisecond)
	c.Set("old", 1)
	c.Set("stale", 2)
	time.Sleep(25 * time.Millisecond)
	c.Set("fresh", 3)

	if removed := c.CleanExpired(); removed != 2 {
		t.Fatalf("expected 2 removals, got %d", removed)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Fatal("expected live entry to survive the sweep")
	}
}

func TestTTL_StartSweeper(t *testing.T) {
	c := New[int](5 * time.Millisecond)
	stop := c.StartSweeper(10 * time.Millisecond)
	defer stop()

	c.Set("a", 1)
	time.Sleep(50 * time.Millisecond)

	// The sweeper already dropped the expired entry, so a manual sweep
	// finds nothing left to remove.
	if removed := c.CleanExpired(); removed != 0 {
		t.Fatalf("expected sweeper to have cleaned up, manual sweep removed %d", removed)
	}
}
