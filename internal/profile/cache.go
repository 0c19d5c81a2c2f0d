// Package profile shares the current user's profile between views so that
// it is fetched once per token instead of once per view.
package profile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/blog-client/internal/domain"
	"github.com/openkcm/blog-client/internal/session"
)

const cleanupIntervalFactor = 2

// Fetcher loads the profile of the token owner.
type Fetcher interface {
	CurrentUser(ctx context.Context, token string) (domain.User, error)
}

// Cache keeps profiles keyed by a hash of the token.
type Cache struct {
	fetcher Fetcher
	cache   *cache.Cache
}

func NewCache(fetcher Fetcher, ttl time.Duration) *Cache {
	return &Cache{
		fetcher: fetcher,
		cache:   cache.New(ttl, ttl*cleanupIntervalFactor),
	}
}

// Get returns the cached profile or fetches it. Failed fetches are not cached.
func (c *Cache) Get(ctx context.Context, token string) (domain.User, error) {
	key := cacheKey(token)

	if v, ok := c.cache.Get(key); ok {
		if user, ok := v.(domain.User); ok {
			return user, nil
		}
	}

	user, err := c.fetcher.CurrentUser(ctx, token)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetching profile: %w", err)
	}

	c.cache.SetDefault(key, user)

	return user, nil
}

// Flush drops every cached profile.
func (c *Cache) Flush() {
	c.cache.Flush()
}

// OnTransition flushes the cache whenever the session is logged in or out.
// It is meant to be registered with session.WithTransitionListener.
func (c *Cache) OnTransition(ctx context.Context, from, to session.State) {
	if to != session.StateAuthenticated && to != session.StateUnauthenticated {
		return
	}

	slogctx.Debug(ctx, "Flushing profile cache", "from", from.String(), "to", to.String())
	c.Flush()
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
