// Package presence mirrors "who is online" and "which table are they seated
// at" into Redis, best-effort. It is never a source of truth — the in-memory
// user registry and table manager always are — so every operation here
// degrades to a logged warning on error rather than propagating a failure
// into game logic.
package presence

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const ttl = 90 * time.Second

// Cache wraps an optional Redis client. A nil *Cache (or one built with a
// nil client) is a valid, inert no-op — this is how the server runs when no
// -redis-addr was configured.
type Cache struct {
	client *redis.Client
}

// New connects to addr/db. Returns a Cache wrapping a nil client (i.e. an
// inert cache) if addr is empty.
func New(addr string, db int) *Cache {
	if addr == "" {
		return &Cache{}
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[presence] redis at %s unreachable, continuing without presence cache: %v", addr, err)
		return &Cache{}
	}
	return &Cache{client: client}
}

func (c *Cache) enabled() bool { return c != nil && c.client != nil }

// MarkOnline records that username is online, optionally seated at tableID
// ("" if in a menu, not at a table).
func (c *Cache) MarkOnline(ctx context.Context, username, tableID string) {
	if !c.enabled() {
		return
	}
	if err := c.client.Set(ctx, key(username), tableID, ttl).Err(); err != nil {
		log.Printf("[presence] failed to mark %s online: %v", username, err)
	}
}

// MarkOffline removes username from the presence set.
func (c *Cache) MarkOffline(ctx context.Context, username string) {
	if !c.enabled() {
		return
	}
	if err := c.client.Del(ctx, key(username)).Err(); err != nil {
		log.Printf("[presence] failed to mark %s offline: %v", username, err)
	}
}

// Close releases the underlying connection, if any.
func (c *Cache) Close() error {
	if !c.enabled() {
		return nil
	}
	return c.client.Close()
}

func key(username string) string {
	return "presence:" + username
}
