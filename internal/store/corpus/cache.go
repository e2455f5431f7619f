// internal/store/corpus/cache.go

// Package corpus caches the spell-correction vocabulary in Redis. The cache
// is versioned: every listing write bumps a counter and subsequent reads key
// on the new value, so stale term sets are never served and simply expire.
package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"listing-assistant/internal/common/database"
	cerrors "listing-assistant/internal/common/errors"
	"listing-assistant/internal/common/logger"
)

const (
	versionKey     = "corpus:version"
	termsKeyFormat = "corpus:terms:%d"
)

// Source is the ground-truth vocabulary provider (the listings store).
type Source interface {
	CorpusTerms(ctx context.Context) ([]string, error)
}

type Cache struct {
	redis  *database.RedisClient
	source Source
	ttl    time.Duration
	logger logger.Logger
}

func NewCache(redis *database.RedisClient, source Source, ttl time.Duration, log logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{
		redis:  redis,
		source: source,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "corpus-cache"}),
	}
}

// Terms returns the current vocabulary, from Redis when the cached copy
// matches the live version, otherwise rebuilt from the source. A Redis
// outage degrades to a source read per call rather than an error.
func (c *Cache) Terms(ctx context.Context) ([]string, error) {
	version := c.currentVersion(ctx)
	key := fmt.Sprintf(termsKeyFormat, version)

	if val, err := c.redis.Get(ctx, key); err == nil {
		var terms []string
		if err := json.Unmarshal([]byte(val), &terms); err == nil {
			return terms, nil
		}
		c.logger.Warn("cached corpus is corrupt, rebuilding", map[string]interface{}{
			"key": key,
		})
	}

	terms, err := c.source.CorpusTerms(ctx)
	if err != nil {
		if stdErr, ok := err.(*cerrors.StandardError); ok {
			return nil, stdErr
		}
		return nil, cerrors.NewCorpusLoadFailedError(err)
	}

	if data, err := json.Marshal(terms); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("corpus cache write failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	c.logger.Debug("corpus rebuilt", map[string]interface{}{
		"version":   version,
		"termCount": len(terms),
	})
	return terms, nil
}

// Invalidate bumps the version counter so the next read rebuilds. Old
// entries are left to expire.
func (c *Cache) Invalidate(ctx context.Context) error {
	version, err := c.redis.Incr(ctx, versionKey)
	if err != nil {
		return err
	}
	c.logger.Debug("corpus invalidated", map[string]interface{}{
		"version": version,
	})
	return nil
}

func (c *Cache) currentVersion(ctx context.Context) int64 {
	val, err := c.redis.Get(ctx, versionKey)
	if err != nil {
		return 0
	}
	version, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}
	return version
}
