//go:build !integration

package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLocal_PerKeyBudget(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(2)

	for i := 0; i < 2; i++ {
		if ok, _ := l.Allow(ctx, "a"); !ok {
			t.Fatalf("request %d for a should pass", i+1)
		}
	}
	if ok, _ := l.Allow(ctx, "a"); ok {
		t.Fatal("third request for a should be limited")
	}
	if ok, _ := l.Allow(ctx, "b"); !ok {
		t.Fatal("other clients have their own budget")
	}
}

func TestLocal_PruneKeepsBusyBuckets(t *testing.T) {
	l := NewLocal(1)
	l.getLimiter("idle")
	l.getLimiter("busy").Allow()

	l.mu.Lock()
	l.pruneLocked(time.Now())
	_, idle := l.limiters["idle"]
	_, busy := l.limiters["busy"]
	l.mu.Unlock()

	if idle {
		t.Error("expected full bucket to be pruned")
	}
	if !busy {
		t.Error("expected drained bucket to be kept")
	}
}
