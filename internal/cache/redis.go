package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	unreadKeyPrefix     = "notifications:unread:"
	generationKeyPrefix = "notifications:unread:gen:"

	// generations outlive any count written under them
	generationTTL = 24 * time.Hour
)

// setIfGeneration writes the count only while the user's generation still
// matches the one read before counting. A missing generation key reads as 0.
var setIfGeneration = redis.NewScript(`
local gen = redis.call("GET", KEYS[2])
if gen == false then gen = "0" end
if gen ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

type Redis struct {
	cli *redis.Client
	ttl time.Duration
}

// NewRedis connects to the server at url (redis://...). The connection is
// lazy; a bad address surfaces as errors from Get/Set.
func NewRedis(url string, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisWithClient(redis.NewClient(opt), ttl), nil
}

func NewRedisWithClient(cli *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Redis{cli: cli, ttl: ttl}
}

func UnreadKey(userID string) string {
	return unreadKeyPrefix + userID
}

func GenerationKey(userID string) string {
	return generationKeyPrefix + userID
}

func (r *Redis) Get(ctx context.Context, userID string) (int64, error) {
	n, err := r.cli.Get(ctx, UnreadKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, ErrMiss
	}
	return n, err
}

func (r *Redis) Generation(ctx context.Context, userID string) (int64, error) {
	n, err := r.cli.Get(ctx, GenerationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (r *Redis) Set(ctx context.Context, userID string, generation, count int64) error {
	keys := []string{UnreadKey(userID), GenerationKey(userID)}
	return setIfGeneration.Run(ctx, r.cli, keys, generation, count, r.ttl.Milliseconds()).Err()
}

// Invalidate drops the cached count and bumps the generation in one
// transaction, so an in-flight reader cannot store its older count.
func (r *Redis) Invalidate(ctx context.Context, userID string) error {
	_, err := r.cli.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey(userID))
		pipe.Expire(ctx, GenerationKey(userID), generationTTL)
		pipe.Del(ctx, UnreadKey(userID))
		return nil
	})
	return err
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.cli.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.cli.Close()
}
