package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/aquario/identity-service/internal/core/domain"
)

// fakeCounters is a fixed-window counter store driven by a manual clock.
type fakeCounters struct {
	mu      sync.Mutex
	now     time.Time
	counts  map[string]int64
	resetAt map[string]time.Time
	err     error
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{
		now:     time.Unix(1_700_000_000, 0),
		counts:  make(map[string]int64),
		resetAt: make(map[string]time.Time),
	}
}

func (f *fakeCounters) Increment(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, 0, f.err
	}
	if r, ok := f.resetAt[key]; !ok || !f.now.Before(r) {
		f.counts[key] = 0
		f.resetAt[key] = f.now.Add(window)
	}
	f.counts[key]++
	return f.counts[key], f.resetAt[key].Sub(f.now), nil
}

func (f *fakeCounters) advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func serveLimited(t *testing.T, mw echo.MiddlewareFunc, ip string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = ip + ":5555"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, err
}

func TestRateLimit_RejectsAfterMax(t *testing.T) {
	store := newFakeCounters()
	mw := RateLimit(RateLimitConfig{Name: "auth", Max: 5, Window: 15 * time.Minute, Store: store, Log: zerolog.Nop()})

	for i := 1; i <= 5; i++ {
		rec, err := serveLimited(t, mw, "10.0.0.1")
		if err != nil {
			t.Fatalf("request %d: unexpected error %v", i, err)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "5" {
			t.Fatalf("missing limit header")
		}
	}

	rec, err := serveLimited(t, mw, "10.0.0.1")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited on request 6, got %v", err)
	}
	if rec.Header().Get("Retry-After") != "900" {
		t.Fatalf("expected Retry-After 900, got %q", rec.Header().Get("Retry-After"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("expected remaining 0, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimit_WindowReset(t *testing.T) {
	store := newFakeCounters()
	mw := RateLimit(RateLimitConfig{Name: "auth", Max: 2, Window: time.Minute, Store: store, Log: zerolog.Nop()})

	for i := 0; i < 2; i++ {
		if _, err := serveLimited(t, mw, "10.0.0.1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := serveLimited(t, mw, "10.0.0.1"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected limit, got %v", err)
	}

	store.advance(time.Minute)

	if _, err := serveLimited(t, mw, "10.0.0.1"); err != nil {
		t.Fatalf("expected fresh window, got %v", err)
	}
}

func TestRateLimit_PerClientAndPerInstance(t *testing.T) {
	store := newFakeCounters()
	auth := RateLimit(RateLimitConfig{Name: "auth", Max: 1, Window: time.Minute, Store: store, Log: zerolog.Nop()})
	general := RateLimit(RateLimitConfig{Name: "general", Max: 1, Window: time.Minute, Store: store, Log: zerolog.Nop()})

	if _, err := serveLimited(t, auth, "10.0.0.1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := serveLimited(t, auth, "10.0.0.2"); err != nil {
		t.Fatalf("other client must have its own counter: %v", err)
	}
	if _, err := serveLimited(t, general, "10.0.0.1"); err != nil {
		t.Fatalf("other limiter must have its own counter: %v", err)
	}
	if _, err := serveLimited(t, auth, "10.0.0.1"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected limit, got %v", err)
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	store := newFakeCounters()
	store.err = errors.New("redis: connection refused")
	mw := RateLimit(RateLimitConfig{Name: "general", Max: 1, Window: time.Minute, Store: store, Log: zerolog.Nop()})

	for i := 0; i < 3; i++ {
		rec, err := serveLimited(t, mw, "10.0.0.1")
		if err != nil {
			t.Fatalf("store failure must not reject: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}
}

func TestRateLimit_Skipper(t *testing.T) {
	store := newFakeCounters()
	mw := RateLimit(RateLimitConfig{
		Name: "general", Max: 1, Window: time.Minute, Store: store, Log: zerolog.Nop(),
		Skipper: func(echo.Context) bool { return true },
	})

	for i := 0; i < 3; i++ {
		if _, err := serveLimited(t, mw, "10.0.0.1"); err != nil {
			t.Fatalf("skipped request must pass: %v", err)
		}
	}
	if len(store.counts) != 0 {
		t.Fatalf("skipped requests must not be counted")
	}
}
