// Package cache wraps the login store with a Redis read-through cache
// keyed by token value. Only the login row is cached; user roles are
// still read live on every validation, so a role change keeps its
// next-request effect. Deletes evict through to Redis before the row
// is removed, and every Redis failure falls back to the database.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskstack/todo-service/internal/auth"
	"github.com/taskstack/todo-service/internal/model"
)

// maxEntryTTL caps how long a cached login row may outlive a delete
// issued by another instance that could not reach Redis.
const maxEntryTTL = 5 * time.Minute

// Client is the slice of the go-redis API the cache needs.
// *redis.Client satisfies it; tests plug an in-memory version.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// LoginCache decorates an auth.LoginStore. The nil client case is not
// handled here; callers wire the cache only when a client is
// available (see config.NewRedisClient).
type LoginCache struct {
	Store  auth.LoginStore
	Client Client
	Prefix string
}

func NewLoginCache(store auth.LoginStore, client Client) *LoginCache {
	return &LoginCache{Store: store, Client: client, Prefix: "login"}
}

func (c *LoginCache) key(token string) string { return c.Prefix + ":" + token }

// FindByToken serves the hot validation path. Cache hits skip the
// database entirely; misses fall through and populate the cache with
// a TTL bounded by the token's own remaining life.
func (c *LoginCache) FindByToken(ctx context.Context, token string) (model.Login, error) {
	if raw, err := c.Client.Get(ctx, c.key(token)).Bytes(); err == nil {
		var l model.Login
		if json.Unmarshal(raw, &l) == nil {
			return l, nil
		}
	}
	l, err := c.Store.FindByToken(ctx, token)
	if err != nil {
		return model.Login{}, err
	}
	c.store(ctx, l)
	return l, nil
}

func (c *LoginCache) store(ctx context.Context, l model.Login) {
	ttl := time.Until(l.ExpiresOn)
	if ttl <= 0 {
		return
	}
	if ttl > maxEntryTTL {
		ttl = maxEntryTTL
	}
	raw, err := json.Marshal(l)
	if err != nil {
		return
	}
	// Best effort; a failed SET only costs a later cache miss.
	c.Client.Set(ctx, c.key(l.AuthToken), raw, ttl)
}

func (c *LoginCache) FindByID(ctx context.Context, id uint64) (model.Login, error) {
	return c.Store.FindByID(ctx, id)
}

func (c *LoginCache) FindAll(ctx context.Context) ([]model.Login, error) {
	return c.Store.FindAll(ctx)
}

func (c *LoginCache) FindAllForUser(ctx context.Context, userID uint64) ([]model.Login, error) {
	return c.Store.FindAllForUser(ctx, userID)
}

func (c *LoginCache) Insert(ctx context.Context, login model.Login) (model.Login, error) {
	return c.Store.Insert(ctx, login)
}

// Delete removes the row from the database first and only then
// evicts the key. Evicting first would leave a window where a
// concurrent validation misses, reads the still-present row and puts
// it back, letting the dead token keep validating from the cache.
// With the row gone before the eviction any later miss finds nothing
// to re-cache.
func (c *LoginCache) Delete(ctx context.Context, id uint64) error {
	l, lookupErr := c.Store.FindByID(ctx, id)
	if err := c.Store.Delete(ctx, id); err != nil {
		return err
	}
	if lookupErr == nil {
		c.Client.Del(ctx, c.key(l.AuthToken))
	}
	return nil
}

// DeleteAllForUser deletes the user's rows, then evicts their keys.
// Same ordering rule as Delete.
func (c *LoginCache) DeleteAllForUser(ctx context.Context, userID uint64) (int64, error) {
	logins, lookupErr := c.Store.FindAllForUser(ctx, userID)
	n, err := c.Store.DeleteAllForUser(ctx, userID)
	if err != nil {
		return n, err
	}
	if lookupErr == nil {
		for _, l := range logins {
			c.Client.Del(ctx, c.key(l.AuthToken))
		}
	}
	return n, nil
}

var _ auth.LoginStore = (*LoginCache)(nil)
