package job

import (
	"LeaveAMark/internal/pkg/redis"
	"LeaveAMark/internal/service"
	"context"
	"errors"
	log "log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// jobLockTTL 任务锁的最长持有时间，防止实例崩溃后锁无法释放
const jobLockTTL = 30 * time.Minute

// guard 进程内防止同一任务重叠执行，启用 Redis 时再加分布式锁
type guard struct {
	key     string
	running atomic.Bool
}

func (g *guard) Running() bool {
	return g.running.Load()
}

func (g *guard) do(ctx context.Context, fn func(ctx context.Context) error) error {
	if !g.running.CompareAndSwap(false, true) {
		return service.ErrJobRunning
	}
	defer g.running.Store(false)

	token := uuid.NewString()
	ok, err := redis.TryLock(ctx, g.key, token, jobLockTTL, 0)
	switch {
	case errors.Is(err, redis.ErrDisabled):
	case err != nil:
		log.WarnContext(ctx, "acquire job lock error, run without lock", "key", g.key, "err", err)
	case !ok:
		return service.ErrJobRunning
	default:
		defer redis.UnLock(context.WithoutCancel(ctx), g.key, token)
	}

	return fn(ctx)
}
