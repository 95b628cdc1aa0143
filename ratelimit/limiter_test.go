package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAllowUnlimited(t *testing.T) {
	l := New(0)
	for i := 0; i < 100; i++ {
		if !l.Allow("hook-1") {
			t.Fatal("a zero rate should never deny")
		}
	}
}

func TestAllowExhaustsBurst(t *testing.T) {
	l := New(2)

	if !l.Allow("hook") || !l.Allow("hook") {
		t.Fatal("first two calls should be allowed")
	}
	if l.Allow("hook") {
		t.Fatal("third call should be denied")
	}
	if !l.Allow("other-hook") {
		t.Fatal("buckets are per key")
	}
}

func TestAllowRefills(t *testing.T) {
	l := New(10)
	for i := 0; i < 10; i++ {
		l.Allow("hook")
	}
	if l.Allow("hook") {
		t.Fatal("should be denied after exhausting bucket")
	}

	time.Sleep(200 * time.Millisecond)

	if !l.Allow("hook") {
		t.Fatal("should be allowed after refill")
	}
}

func TestWaitHonoursContext(t *testing.T) {
	l := New(1)
	l.Allow("hook")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "hook"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestWaitEventuallyProceeds(t *testing.T) {
	l := New(20)
	for i := 0; i < 20; i++ {
		l.Allow("hook")
	}

	start := time.Now()
	if err := l.Wait(context.Background(), "hook"); err != nil {
		t.Fatal(err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("wait took too long")
	}
}

func TestResetRestoresBurst(t *testing.T) {
	l := New(1)
	l.Allow("hook")
	if l.Allow("hook") {
		t.Fatal("expected denial")
	}
	l.Reset("hook")
	if !l.Allow("hook") {
		t.Fatal("expected allowance after reset")
	}
}

func TestNilLimiterAllows(t *testing.T) {
	var l *Limiter
	if !l.Allow("x") {
		t.Fatal("nil limiter should allow")
	}
	if err := l.Wait(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
}
