package assistant

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.SetEx(ctx, key, value, ttl).Err()
}

// Cached serves repeated upstream questions from a cache. The key covers the user, the
// normalised question and the data summary, so any change to the records misses. Cache
// failures fall through to the wrapped responder.
type Cached struct {
	next  Responder
	cache Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewCached(next Responder, cache Cache, ttl time.Duration, log *zap.Logger) *Cached {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cached{next: next, cache: cache, ttl: ttl, log: log}
}

func (c *Cached) Respond(ctx context.Context, req Request) (Reply, error) {
	key := cacheKey(req)
	if text, ok, err := c.cache.Get(ctx, key); err != nil {
		c.log.Warn("assistant cache read failed", zap.Error(err))
	} else if ok {
		return Reply{Intent: Match(req.Question), Reply: text, Source: SourceCache}, nil
	}

	reply, err := c.next.Respond(ctx, req)
	if err != nil {
		return Reply{}, err
	}
	if err := c.cache.Set(ctx, key, reply.Reply, c.ttl); err != nil {
		c.log.Warn("assistant cache write failed", zap.Error(err))
	}
	return reply, nil
}

func cacheKey(req Request) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d\n%s\n%s", req.UserID, strings.ToLower(strings.Join(strings.Fields(req.Question), " ")), summary(req.Snapshot))
	return "assistant:" + hex.EncodeToString(h.Sum(nil))
}
