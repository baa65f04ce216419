package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// incrWindow increments the counter and opens the window on first hit in a
// single round trip, so concurrent requests from one client never undercount.
var incrWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {n, ttl}
`)

// CounterStore keeps fixed-window rate limit counters in Redis, shared by
// every replica of the service.
// Key format: ratelimit:<limiter>:<client>
type CounterStore struct {
	client *redis.Client
}

// NewCounterStore creates a CounterStore wrapping the given Redis client.
func NewCounterStore(client *redis.Client) *CounterStore {
	return &CounterStore{client: client}
}

func (s *CounterStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	vals, err := incrWindow.Run(ctx, s.client, []string{keyPrefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit incr: %w", err)
	}
	if len(vals) != 2 {
		return 0, 0, fmt.Errorf("rate limit incr: unexpected reply %v", vals)
	}
	return vals[0], time.Duration(vals[1]) * time.Millisecond, nil
}
