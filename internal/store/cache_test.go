package store

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	cache := NewMemoryCache(time.Minute, 0)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	step := sampleStep(0)

	if _, ok := cache.Get(ctx, "test/run/0"); ok {
		t.Error("Expected miss on empty cache")
	}

	cache.Set(ctx, "test/run/0", step)

	got, ok := cache.Get(ctx, "test/run/0")
	if !ok {
		t.Fatal("Expected hit after Set")
	}
	if got != step {
		t.Error("Expected the cached pointer to be shared: entries are immutable")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	cache := NewMemoryCache(10*time.Millisecond, 0)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	cache.Set(ctx, "k", sampleStep(0))

	time.Sleep(20 * time.Millisecond)

	if _, ok := cache.Get(ctx, "k"); ok {
		t.Error("Expected miss after TTL expiry")
	}
}

func TestMemoryCache_MaxSteps(t *testing.T) {
	cache := NewMemoryCache(time.Minute, 3)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		cache.Set(ctx, fmt.Sprintf("k%d", i), sampleStep(i))
	}

	if got := cache.Len(); got != 3 {
		t.Errorf("Expected at most 3 entries, got %d", got)
	}

	// Overwriting an existing key must not evict anything.
	cache.Set(ctx, "k4", sampleStep(4))
	if got := cache.Len(); got != 3 {
		t.Errorf("Expected 3 entries after overwrite, got %d", got)
	}
}
