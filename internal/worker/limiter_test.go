package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://factchecktools.googleapis.com/v1alpha1/claims:search"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "http://example.com"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_InvalidURL(t *testing.T) {
	limiter := NewLimiter(10, 1)
	if err := limiter.Wait(context.Background(), "not a url"); err == nil {
		t.Error("expected error for URL without host")
	}
	if limiter.Allow("::bad") {
		t.Error("expected Allow to reject an unparsable URL")
	}
}

func TestLimiter_PerHost(t *testing.T) {
	limiter := NewLimiter(0.001, 1)

	if !limiter.Allow("http://a.example.com/x") {
		t.Error("first request to host a should be allowed")
	}
	if limiter.Allow("http://a.example.com/y") {
		t.Error("second request to host a should be limited")
	}
	if !limiter.Allow("http://b.example.com/x") {
		t.Error("host b has its own bucket")
	}
}

func TestLimiter_ContextCancel(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	url := "http://example.com"

	_ = limiter.Wait(context.Background(), url)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, url); err == nil {
		t.Error("expected wait to fail when the context expires first")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 50; i++ {
		if !limiter.Allow("http://example.com") {
			t.Fatalf("request %d limited with rate disabled", i)
		}
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	limiter.SetHostRate("fast.example.com", 1000, 10)

	for i := 0; i < 10; i++ {
		if !limiter.Allow("http://fast.example.com") {
			t.Fatalf("request %d should fit the custom burst", i)
		}
	}
}
