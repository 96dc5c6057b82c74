// Package inbox remembers which event ids were already handled.
package inbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 72 * time.Hour

// RedisInbox claims ids with SET NX EX so every replica shares the same view.
type RedisInbox struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedis(rdb redis.Cmdable, prefix string, ttl time.Duration) *RedisInbox {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisInbox{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (i *RedisInbox) key(eventID string) string {
	return i.prefix + ":" + eventID
}

func (i *RedisInbox) Claim(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("inbox: empty event id")
	}
	return i.rdb.SetNX(ctx, i.key(eventID), time.Now().UTC().Format(time.RFC3339), i.ttl).Result()
}

func (i *RedisInbox) Release(ctx context.Context, eventID string) error {
	return i.rdb.Del(ctx, i.key(eventID)).Err()
}

// MemoryInbox is the single-process fallback used without Redis.
type MemoryInbox struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
	now  func() time.Time
}

func NewMemory(ttl time.Duration) *MemoryInbox {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryInbox{ttl: ttl, seen: make(map[string]time.Time), now: time.Now}
}

func (i *MemoryInbox) Claim(_ context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("inbox: empty event id")
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	for id, exp := range i.seen {
		if now.After(exp) {
			delete(i.seen, id)
		}
	}
	if _, ok := i.seen[eventID]; ok {
		return false, nil
	}
	i.seen[eventID] = now.Add(i.ttl)
	return true, nil
}

func (i *MemoryInbox) Release(_ context.Context, eventID string) error {
	i.mu.Lock()
	delete(i.seen, eventID)
	i.mu.Unlock()
	return nil
}
