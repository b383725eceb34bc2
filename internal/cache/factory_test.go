package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Belphemur/HLSCapture/internal/config"
)

func TestFactory_New_Memory(t *testing.T) {
	c, err := New("memory", ProviderConfig{Size: 100, TTL: time.Hour})
	if err != nil {
		t.Fatalf("New memory: %v", err)
	}
	defer c.Close()

	c.Set(context.Background(), "test", []byte("data"))
	val, ok := c.Get(context.Background(), "test")
	if !ok || string(val) != "data" {
		t.Fatal("Memory cache should work after creation via factory")
	}
}

func TestFactory_New_UnknownProvider(t *testing.T) {
	if _, err := New("nonexistent", ProviderConfig{}); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestFactory_RegisteredProviders(t *testing.T) {
	names := RegisteredProviders()
	if len(names) != 2 || names[0] != "memory" || names[1] != "redis" {
		t.Fatalf("Expected [memory redis], got %v", names)
	}
}

func TestFactory_Register_Duplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Expected panic when registering a duplicate provider")
		}
	}()
	Register("memory", newMemoryCache)
}

func TestFactory_New_Redis_NoAddress(t *testing.T) {
	if _, err := New("redis", ProviderConfig{TTL: time.Hour}); err == nil {
		t.Fatal("Expected error when no Redis address is configured")
	}
}

func TestFactory_New_Redis_InvalidAddress(t *testing.T) {
	_, err := New("redis", ProviderConfig{
		TTL:          time.Hour,
		RedisAddress: "localhost:59999",
	})
	if err == nil {
		t.Fatal("Expected error when connecting to invalid Redis address")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.TTL = "not-a-duration"

	c, err := FromConfig(cfg, "test-from-config")
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	defer c.Close()

	if _, ok := c.(*instrumentedCache); !ok {
		t.Fatalf("Expected an instrumented cache, got %T", c)
	}
	c.Set(context.Background(), "k", []byte("v"))
	if c.Len() != 1 {
		t.Fatalf("Expected Len 1, got %d", c.Len())
	}
}

func TestFromConfig_UnknownProvider(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.Provider = "memcached"

	if _, err := FromConfig(cfg, "test-unknown"); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}
