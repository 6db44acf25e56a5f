package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/phambaophuc/face-detection/internal/config"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "face_verdict:"

const (
	verdictFace   = "1"
	verdictNoFace = "0"
)

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// VerdictCache stores face/no-face answers keyed by image content and strategy.
// Image bytes themselves are never written.
type VerdictCache struct {
	redisClient   *redis.Client
	cacheDuration time.Duration
}

func New(client *redis.Client, ttl time.Duration) *VerdictCache {
	return &VerdictCache{
		redisClient:   client,
		cacheDuration: ttl,
	}
}

// Key hashes the strategy name together with the image bytes.
func Key(strategy string, data []byte) string {
	hash := sha256.New()
	hash.Write([]byte(strategy))
	hash.Write([]byte{0})
	hash.Write(data)
	return keyPrefix + hex.EncodeToString(hash.Sum(nil))
}

func (c *VerdictCache) Get(ctx context.Context, key string) (bool, bool, error) {
	val, err := c.redisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("cache get error: %w", err)
	}

	switch val {
	case verdictFace:
		return true, true, nil
	case verdictNoFace:
		return false, true, nil
	default:
		return false, false, fmt.Errorf("corrupt cache entry %s: %q", key, val)
	}
}

func (c *VerdictCache) Set(ctx context.Context, key string, verdict bool) error {
	val := verdictNoFace
	if verdict {
		val = verdictFace
	}
	if err := c.redisClient.Set(ctx, key, val, c.cacheDuration).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

func (c *VerdictCache) Ping(ctx context.Context) error {
	return c.redisClient.Ping(ctx).Err()
}

// Stats reads server stats and the key count in a single round trip.
func (c *VerdictCache) Stats(ctx context.Context) (map[string]interface{}, error) {
	pipe := c.redisClient.Pipeline()
	info := pipe.Info(ctx, "stats")
	dbSize := pipe.DBSize(ctx)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("cache stats error: %w", err)
	}

	return map[string]interface{}{
		"db_keys": dbSize.Val(),
		"info":    info.Val(),
	}, nil
}
