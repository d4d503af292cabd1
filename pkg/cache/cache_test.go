package cache

import (
	"context"
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New()
	ctx := context.Background()
	c.Set(ctx, "key1", "value1", 1*time.Second)
	val, ok := c.Get(ctx, "key1")
	if !ok || val != "value1" {
		t.Fatalf("expected value1, got %q, exists=%v", val, ok)
	}
}

func TestExpiration(t *testing.T) {
	c := New()
	ctx := context.Background()
	c.Set(ctx, "key1", "value1", 100*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	_, ok := c.Get(ctx, "key1")
	if ok {
		t.Fatalf("expected expired key to return false")
	}
}

func TestDeleteMultiple(t *testing.T) {
	c := New()
	ctx := context.Background()
	c.Set(ctx, "reports:all", "r", 1*time.Second)
	c.Set(ctx, "reports:statistics", "s", 1*time.Second)
	c.Set(ctx, "other", "o", 1*time.Second)
	c.Delete(ctx, "reports:all", "reports:statistics")
	if _, ok := c.Get(ctx, "reports:all"); ok {
		t.Fatalf("expected reports:all to be deleted")
	}
	if _, ok := c.Get(ctx, "reports:statistics"); ok {
		t.Fatalf("expected reports:statistics to be deleted")
	}
	if _, ok := c.Get(ctx, "other"); !ok {
		t.Fatalf("expected other to still exist")
	}
}
