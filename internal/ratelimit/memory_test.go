package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Unix(1000, 0)

	for i := 0; i < 3; i++ {
		result, err := limiter.Allow(context.Background(), "u:1", 3, now)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !result.Allowed {
			t.Fatalf("expected request %d to be allowed", i+1)
		}
	}

	result, err := limiter.Allow(context.Background(), "u:1", 3, now)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if result.Allowed {
		t.Fatalf("expected 4th request in window to be denied")
	}

	result, err = limiter.Allow(context.Background(), "u:1", 3, now.Add(time.Second))
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !result.Allowed {
		t.Fatalf("expected request in next window to be allowed")
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Unix(2000, 0)

	if result, _ := limiter.Allow(context.Background(), "u:1", 1, now); !result.Allowed {
		t.Fatalf("expected first key to be allowed")
	}
	if result, _ := limiter.Allow(context.Background(), "u:1", 1, now); result.Allowed {
		t.Fatalf("expected first key to be exhausted")
	}
	if result, _ := limiter.Allow(context.Background(), "u:2", 1, now); !result.Allowed {
		t.Fatalf("expected second key to be unaffected")
	}
}

func TestMemoryLimiter_ZeroLimitAlwaysAllows(t *testing.T) {
	limiter := NewMemoryLimiter()
	result, err := limiter.Allow(context.Background(), "u:1", 0, time.Now())
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !result.Allowed {
		t.Fatalf("expected zero limit to disable limiting")
	}
}

func TestMemoryLimiter_PrunesStaleWindows(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Unix(3000, 0)

	for i := 0; i < memoryPruneThreshold+10; i++ {
		key := KeyForUser(uint64(i + 1))
		if _, err := limiter.Allow(context.Background(), key, 5, now); err != nil {
			t.Fatalf("allow: %v", err)
		}
	}

	if _, err := limiter.Allow(context.Background(), "u:fresh", 5, now.Add(2*time.Second)); err != nil {
		t.Fatalf("allow: %v", err)
	}

	limiter.mu.Lock()
	size := len(limiter.counters)
	limiter.mu.Unlock()
	if size > 2 {
		t.Fatalf("expected stale windows to be pruned, map still has %d entries", size)
	}
}
