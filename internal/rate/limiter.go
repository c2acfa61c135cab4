package rate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter is a fixed window counter (INCR + EXPIRE).
type RedisLimiter struct {
	Client *rdb.Client
	Prefix string
	Max    int64
	Window time.Duration
	Now    func() time.Time
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{Client: client, Prefix: prefix, Max: int64(max), Window: window, Now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.Now().UTC()
	winStart := now.Truncate(l.Window)
	redisKey := fmt.Sprintf("%s%s:%d", l.Prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	hits, err := l.Client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Result{}, err
	}
	// first hit in the window sets the expiry
	if hits == 1 {
		if err := l.Client.Expire(ctx, redisKey, l.Window).Err(); err != nil {
			return Result{}, err
		}
	}

	return decide(hits, l.Max, winStart.Add(l.Window).Sub(now)), nil
}

// MemoryLimiter keeps fixed window counters in process. Used when no
// Redis address is configured.
type MemoryLimiter struct {
	Max    int64
	Window time.Duration
	Now    func() time.Time

	mu sync.Mutex
	c  *gocache.Cache
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		Max:    int64(max),
		Window: window,
		Now:    time.Now,
		c:      gocache.New(window, 2*window),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.Now().UTC()
	winStart := now.Truncate(l.Window)
	k := fmt.Sprintf("%s:%d", key, winStart.Unix())

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.c.Add(k, int64(1), l.Window); err == nil {
		return decide(1, l.Max, winStart.Add(l.Window).Sub(now)), nil
	}
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		return Result{}, err
	}
	return decide(hits, l.Max, winStart.Add(l.Window).Sub(now)), nil
}

func decide(hits, max int64, left time.Duration) Result {
	res := Result{Allowed: hits <= max, Remaining: max - hits}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !res.Allowed {
		res.RetryAfter = left
	}
	return res
}

// Key builds the login bucket key from the account and the client address.
func Key(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}
