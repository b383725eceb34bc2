package cache

import (
	"context"
	"testing"
	"time"
)

func newMemoryTestCache(t *testing.T, size int, ttl time.Duration, onEvict EvictCallback) Cache {
	t.Helper()
	c, err := New("memory", ProviderConfig{Size: size, TTL: ttl, OnEvict: onEvict})
	if err != nil {
		t.Fatalf("New memory cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := newMemoryTestCache(t, 10, time.Hour, nil)

	if val, ok := c.Get(ctx, "the pitt"); ok || val != nil {
		t.Fatalf("Expected miss, got %q %v", val, ok)
	}

	c.Set(ctx, "the pitt", []byte(`{"title":"The Pitt"}`))
	val, ok := c.Get(ctx, "the pitt")
	if !ok {
		t.Fatal("Expected hit")
	}
	if string(val) != `{"title":"The Pitt"}` {
		t.Fatalf("Unexpected value %s", val)
	}
}

func TestMemoryCache_Overwrite(t *testing.T) {
	ctx := context.Background()
	c := newMemoryTestCache(t, 10, time.Hour, nil)

	c.Set(ctx, "k", []byte("v1"))
	c.Set(ctx, "k", []byte("v2"))

	val, _ := c.Get(ctx, "k")
	if string(val) != "v2" {
		t.Fatalf("Expected v2, got %s", val)
	}
	if c.Len() != 1 {
		t.Fatalf("Expected Len 1 after overwrite, got %d", c.Len())
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := newMemoryTestCache(t, 10, time.Hour, nil)

	c.Set(ctx, "k", []byte("v"))
	c.Delete(ctx, "k")
	c.Delete(ctx, "absent")

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("Expected deleted key to miss")
	}
	if c.Len() != 0 {
		t.Fatalf("Expected Len 0, got %d", c.Len())
	}
}

func TestMemoryCache_Eviction(t *testing.T) {
	ctx := context.Background()
	var evicted []string
	c := newMemoryTestCache(t, 2, time.Hour, func(key string, _ []byte) {
		evicted = append(evicted, key)
	})

	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))
	c.Set(ctx, "c", []byte("3"))

	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("Expected oldest entry to be evicted")
	}
	if len(evicted) != 1 || evicted[0] != "a" {
		t.Errorf("Expected eviction callback for 'a', got %v", evicted)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := newMemoryTestCache(t, 10, 20*time.Millisecond, nil)

	c.Set(ctx, "k", []byte("v"))
	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("Expected entry to expire")
	}
}
