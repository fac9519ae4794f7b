package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cardfolio/cardfolio-api/internal/metrics"
	"github.com/cardfolio/cardfolio-api/internal/core/ports"
)

const profileTTL = 5 * time.Minute

// ProfileCache stores rendered public profiles in Redis.
// Key format: profile:<lowercase username>
type ProfileCache struct {
	client *redis.Client
}

// NewProfileCache creates a ProfileCache wrapping the given Redis client.
func NewProfileCache(client *redis.Client) *ProfileCache {
	return &ProfileCache{client: client}
}

// Get returns the cached profile, or (nil, nil) on a miss.
func (c *ProfileCache) Get(ctx context.Context, username string) (*ports.PublicProfile, error) {
	raw, err := c.client.Get(ctx, c.key(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ProfileCacheTotal.WithLabelValues("miss").Inc()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("profile cache get: %w", err)
	}

	var profile ports.PublicProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("profile cache decode: %w", err)
	}

	metrics.ProfileCacheTotal.WithLabelValues("hit").Inc()
	return &profile, nil
}

// Set stores the profile with a fixed TTL.
func (c *ProfileCache) Set(ctx context.Context, username string, profile *ports.PublicProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("profile cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(username), raw, profileTTL).Err()
}

// Invalidate drops the cached profile after a card mutation.
func (c *ProfileCache) Invalidate(ctx context.Context, username string) error {
	return c.client.Del(ctx, c.key(username)).Err()
}

func (c *ProfileCache) key(username string) string {
	return "profile:" + strings.ToLower(username)
}
