// Package memory holds in-process implementations of core ports, used for
// single-instance deployments and tests.
package memory

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	resetAt time.Time
}

// CounterStore keeps fixed-window counters in a mutex-guarded map. Counters
// are per process: replicas behind a load balancer each count separately.
type CounterStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewCounterStore() *CounterStore {
	return &CounterStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (s *CounterStore) Increment(_ context.Context, key string, length time.Duration) (int64, time.Duration, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(length)}
		s.windows[key] = w
	}
	w.count++

	return w.count, w.resetAt.Sub(now), nil
}

// StartJanitor evicts elapsed windows every interval until ctx is done.
func (s *CounterStore) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.evict()
			}
		}
	}()
}

func (s *CounterStore) evict() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
		}
	}
}

// Len reports how many windows are tracked.
func (s *CounterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}
