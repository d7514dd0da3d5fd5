package ratelimiter

import (
	"context"
	"testing"
	"time"
)

func TestAllowWithinBurst(t *testing.T) {
	l := New(10, 5)

	allowed := 0
	for i := 0; i < 10; i++ {
		if l.Allow() {
			allowed++
		}
	}
	if allowed != 5 {
		t.Fatalf("allowed %d requests, want burst of 5", allowed)
	}
}

func TestUnlimited(t *testing.T) {
	l := New(0, 0)
	for i := 0; i < 1000; i++ {
		if !l.Allow() {
			t.Fatal("unlimited limiter rejected a request")
		}
	}
}

func TestWaitRespectsCancellation(t *testing.T) {
	l := New(1, 1)
	l.Allow() // drain the bucket

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); err == nil {
		t.Fatal("expected context error from Wait")
	}
}

func TestTokensReplenish(t *testing.T) {
	l := New(100, 1)
	l.Allow()

	time.Sleep(50 * time.Millisecond)
	if l.Tokens() <= 0 {
		t.Fatal("bucket did not replenish")
	}
}
