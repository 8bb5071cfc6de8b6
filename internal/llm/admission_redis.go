package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/logger"
)

// acquireScript admits a lease when fewer than ARGV[3] unexpired leases exist.
// Leases are members of a sorted set scored by their expiry in unix millis.
var acquireScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if redis.call('ZCARD', KEYS[1]) < tonumber(ARGV[3]) then
	redis.call('ZADD', KEYS[1], ARGV[4], ARGV[2])
	redis.call('PEXPIRE', KEYS[1], ARGV[5])
	return 1
end
return 0
`)

type redisLimiter struct {
	client       redis.Cmdable
	key          string
	limit        int
	leaseTTL     time.Duration
	pollInterval time.Duration
	now          func() time.Time
	logger       logger.Logger
}

// NewRedisLimiter returns a limiter shared by every process using the same key.
// A lease that is never released expires after leaseTTL.
func NewRedisLimiter(client redis.Cmdable, key string, n int, leaseTTL, pollInterval time.Duration, log logger.Logger) Limiter {
	if n < 1 {
		n = 1
	}
	if leaseTTL <= 0 {
		leaseTTL = 2 * time.Minute
	}
	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}
	return &redisLimiter{
		client:       client,
		key:          key,
		limit:        n,
		leaseTTL:     leaseTTL,
		pollInterval: pollInterval,
		now:          time.Now,
		logger:       log.WithFields(map[string]interface{}{"component": "admission", "key": key}),
	}
}

func (l *redisLimiter) Acquire(ctx context.Context) (func(), error) {
	lease := uuid.NewString()

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.tryAcquire(ctx, lease)
		if err != nil {
			return nil, err
		}
		if ok {
			return l.releaseFunc(lease), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *redisLimiter) tryAcquire(ctx context.Context, lease string) (bool, error) {
	now := l.now()
	expiry := now.Add(l.leaseTTL)

	admitted, err := acquireScript.Run(ctx, l.client, []string{l.key},
		now.UnixMilli(),
		lease,
		l.limit,
		expiry.UnixMilli(),
		(2 * l.leaseTTL).Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis admission: %w", err)
	}
	return admitted == 1, nil
}

func (l *redisLimiter) releaseFunc(lease string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			// the caller's context may already be cancelled
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := l.client.ZRem(ctx, l.key, lease).Err(); err != nil {
				l.logger.WithError(err).Warn("failed to release admission lease, it will expire on its own", map[string]interface{}{
					"lease":    lease,
					"leaseTTL": l.leaseTTL.String(),
				})
			}
		})
	}
}

func (l *redisLimiter) Backend() string {
	return "redis"
}
