package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

const defaultLockTTL = 10 * time.Minute

// releaseScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by another process is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript pushes the expiry forward only while the key holds our token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

var errLockLost = errors.New("sync lock lost")

// SyncLock serialises directory sync passes across processes.
// Key format: sync:lock:<directory>
type SyncLock struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewSyncLock creates a SyncLock wrapping the given Redis client. The TTL
// bounds how long a crashed holder can block other passes; a live holder
// keeps extending it every ttl/3 until release.
func NewSyncLock(client *redis.Client, ttl time.Duration, log zerolog.Logger) *SyncLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &SyncLock{client: client, ttl: ttl, log: log}
}

// Acquire takes the lock for name or returns domain.ErrSyncInProgress.
func (l *SyncLock) Acquire(ctx context.Context, name string) (func(context.Context), error) {
	key := l.key(name)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("sync lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrSyncInProgress
	}

	log := l.log.With().Str("directory", name).Logger()
	extend := func(ctx context.Context) (bool, error) {
		n, err := extendScript.Run(ctx, l.client, []string{key}, token, l.ttl.Milliseconds()).Int()
		return n == 1, err
	}
	stop := keepAlive(l.ttl/3, extend, log)

	release := func(ctx context.Context) {
		stop()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			log.Warn().Err(err).Msg("failed to release sync lock")
		}
	}
	return release, nil
}

// keepAlive calls extend every interval until the returned stop func is
// called or extend reports the lock is no longer ours. A failed call is
// retried on the next tick.
func keepAlive(every time.Duration, extend func(context.Context) (bool, error), log zerolog.Logger) (stop func()) {
	if every < time.Millisecond {
		every = time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				callCtx, callCancel := context.WithTimeout(ctx, every)
				held, err := extend(callCtx)
				callCancel()
				switch {
				case err != nil:
					if ctx.Err() == nil {
						log.Warn().Err(err).Msg("failed to extend sync lock")
					}
				case !held:
					log.Error().Err(errLockLost).Msg("sync lock expired while held")
					return
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func (l *SyncLock) key(name string) string {
	return fmt.Sprintf("sync:lock:%s", name)
}
