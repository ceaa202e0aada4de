package runlock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/smarthousehold/inventory-service/internal/domain"
)

// Locker guards a named run so only one replica executes it.
type Locker interface {
	// Acquire returns domain.ErrRunLocked when another holder owns key.
	Acquire(ctx context.Context, key string) error
	// Release frees key if this Locker still owns it.
	Release(ctx context.Context, key string) error
}

// releaseScript deletes the key only when it still carries our owner value.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX and a TTL. The TTL bounds how long
// a crashed holder can block the next attempt.
type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	owner  string
}

func NewRedisLocker(client *redis.Client, prefix string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		owner:  uuid.NewString(),
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) error {
	ok, err := l.client.SetNX(ctx, l.prefix+key, l.owner, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return domain.ErrRunLocked
	}
	return nil
}

func (l *RedisLocker) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.prefix + key}, l.owner).Err(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}

// NopLocker always grants the lock. Used when Redis is not configured.
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, string) error { return nil }
func (NopLocker) Release(context.Context, string) error { return nil }

var (
	_ Locker = (*RedisLocker)(nil)
	_ Locker = NopLocker{}
)
