package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k1", payload{Name: "a", Count: 2}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	if err := mc.Get(ctx, "k1", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "a" || got.Count != 2 {
		t.Fatalf("got %+v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var got payload
	err := mc.Get(context.Background(), "absent", &got)
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	keys := []string{"insights:u1:volatility", "insights:u1:risk", "insights:u2:risk"}
	for _, k := range keys {
		if err := mc.Set(ctx, k, payload{Name: k}, time.Minute); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}

	if err := mc.DeleteByPattern(ctx, BuildPattern(GenerateKey("insights", "u1"))); err != nil {
		t.Fatalf("delete by pattern: %v", err)
	}

	var got payload
	if err := mc.Get(ctx, "insights:u1:risk", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("u1 key survived: %v", err)
	}
	if err := mc.Get(ctx, "insights:u2:risk", &got); err != nil {
		t.Fatalf("u2 key lost: %v", err)
	}
}

func TestMemoryCacheEviction(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "a", payload{}, time.Minute); err != nil {
		t.Fatalf("set a: %v", err)
	}
	if err := mc.Set(ctx, "b", payload{}, time.Minute); err != nil {
		t.Fatalf("set b: %v", err)
	}
	if err := mc.Set(ctx, "c", payload{}, time.Minute); err != nil {
		t.Fatalf("set c: %v", err)
	}

	alive := 0
	for _, k := range []string{"a", "b", "c"} {
		ok, err := mc.Exists(ctx, k)
		if err != nil {
			t.Fatalf("exists %s: %v", k, err)
		}
		if ok {
			alive++
		}
	}
	if alive != 2 {
		t.Fatalf("alive = %d, want 2 after eviction", alive)
	}
}
