package quota

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyUsage = "incdrops:usage:%s"

	// records outlive their period by a month so a late read still sees a stale period
	usageTTL = 62 * 24 * time.Hour
)

// resets the hash when the stored month differs, then applies the delta with a floor of zero
var incrementScript = redis.NewScript(`
local month = redis.call('HGET', KEYS[1], 'month')
local count = 0
if month == ARGV[1] then
	count = tonumber(redis.call('HGET', KEYS[1], 'count')) or 0
end
count = count + tonumber(ARGV[2])
if count < 0 then
	count = 0
end
redis.call('HSET', KEYS[1], 'month', ARGV[1], 'count', count)
redis.call('EXPIRE', KEYS[1], ARGV[3])
return count
`)

// implements Store and Incrementer using a Redis hash per account
type RedisStore struct {
	client *redis.Client
}

// creates a new Redis-backed usage store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// creates a new Redis-backed usage store from a URL
func NewRedisStoreFromURL(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, accountID string) (UsageRecord, bool, error) {
	fields, err := s.client.HGetAll(ctx, fmt.Sprintf(keyUsage, accountID)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && len(fields) == 0) {
		return UsageRecord{}, false, nil
	}

	if err != nil {
		return UsageRecord{}, false, fmt.Errorf("failed to read usage: %w", err)
	}

	count, err := strconv.ParseInt(fields["count"], 10, 64)
	if err != nil {
		return UsageRecord{}, false, ErrMalformedRecord
	}

	rec := UsageRecord{PeriodKey: PeriodKey(fields["month"]), Count: count}
	if !rec.Valid() {
		return UsageRecord{}, false, ErrMalformedRecord
	}

	return rec, true, nil
}

func (s *RedisStore) Set(ctx context.Context, accountID string, rec UsageRecord) error {
	key := fmt.Sprintf(keyUsage, accountID)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, "month", string(rec.PeriodKey), "count", rec.Count)
	pipe.Expire(ctx, key, usageTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write usage: %w", err)
	}

	return nil
}

func (s *RedisStore) Increment(ctx context.Context, accountID string, period PeriodKey, delta int64) (UsageRecord, error) {
	key := fmt.Sprintf(keyUsage, accountID)

	count, err := incrementScript.Run(ctx, s.client, []string{key},
		string(period), delta, int64(usageTTL.Seconds()),
	).Int64()
	if err != nil {
		return UsageRecord{}, fmt.Errorf("failed to increment usage: %w", err)
	}

	return UsageRecord{PeriodKey: period, Count: count}, nil
}

// closes the redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
