package redisadapter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"pollsbot/contexts/identity-access/rate-limit-service/ports"
)

// reserveScript prunes, checks, and conditionally records in one atomic
// round trip. Scores are unix milliseconds; nanoseconds would overflow the
// double precision redis uses for sorted-set scores.
var reserveScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', '(' .. ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
local allowed = 0
if count < tonumber(ARGV[3]) then
    redis.call('ZADD', KEYS[1], ARGV[2], ARGV[4])
    redis.call('PEXPIRE', KEYS[1], ARGV[5])
    allowed = 1
    count = count + 1
end
local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
local oldestScore = '0'
if oldest[2] then
    oldestScore = oldest[2]
end
return {allowed, count, oldestScore}
`)

// Store keeps sliding windows in redis sorted sets, one set per
// (user, action) key. Shared across instances, unlike the memory adapter.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Reserve(ctx context.Context, key string, windowStart, now time.Time, cap int) (ports.Reservation, error) {
	member := fmt.Sprintf("%d-%d", now.UnixNano(), cap)
	ttl := now.Sub(windowStart).Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}

	raw, err := reserveScript.Run(ctx, s.client, []string{key},
		windowStart.UnixMilli(),
		now.UnixMilli(),
		cap,
		member,
		ttl,
	).Result()
	if err != nil {
		return ports.Reservation{}, fmt.Errorf("reserve window slot: %w", err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 3 {
		return ports.Reservation{}, fmt.Errorf("reserve window slot: unexpected reply %v", raw)
	}

	allowed, _ := values[0].(int64)
	count, _ := values[1].(int64)
	reservation := ports.Reservation{
		Allowed: allowed == 1,
		Count:   int(count),
	}
	if scoreRaw, ok := values[2].(string); ok && scoreRaw != "0" {
		score, err := strconv.ParseFloat(scoreRaw, 64)
		if err != nil {
			return ports.Reservation{}, fmt.Errorf("reserve window slot: parse oldest score: %w", err)
		}
		reservation.OldestAt = time.UnixMilli(int64(score))
	}
	return reservation, nil
}

func (s *Store) Count(ctx context.Context, key string, windowStart time.Time) (int, error) {
	count, err := s.client.ZCount(ctx, key,
		strconv.FormatInt(windowStart.UnixMilli(), 10),
		"+inf",
	).Result()
	if err != nil {
		return 0, fmt.Errorf("count window events: %w", err)
	}
	return int(count), nil
}
