package logger

import (
	"context"
	"errors"
	log "log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSlowThreshold = 100 * time.Millisecond

// RedisLoggerHook 记录 Redis 错误与慢命令，只输出命令名与 key，不输出写入的值
type RedisLoggerHook struct{}

func NewRedisLogger() *RedisLoggerHook {
	return &RedisLoggerHook{}
}

func (s *RedisLoggerHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		start := time.Now()
		conn, err := next(ctx, network, addr)
		if err != nil {
			log.ErrorContext(ctx, "Redis Dial Error",
				log.String("addr", addr),
				log.Duration("latency", time.Since(start)),
				log.Any("err", err),
			)
		}
		return conn, err
	}
}

func (s *RedisLoggerHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		report(ctx, []redis.Cmder{cmd}, time.Since(start), err)
		return err
	}
}

func (s *RedisLoggerHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		report(ctx, cmds, time.Since(start), err)
		return err
	}
}

func report(ctx context.Context, cmds []redis.Cmder, elapsed time.Duration, err error) {
	if err != nil && ignorable(cmds, err) {
		return
	}
	if err == nil && elapsed < redisSlowThreshold {
		return
	}

	fields := []any{
		log.String("command", commandNames(cmds)),
		log.String("key", firstKey(cmds)),
		log.Int("cmd_count", len(cmds)),
		log.Duration("latency", elapsed),
	}
	if err != nil {
		log.ErrorContext(ctx, "Redis Error", append(fields, log.Any("err", err))...)
		return
	}
	log.WarnContext(ctx, "Redis Slow", fields...)
}

// ignorable key 不存在以及旧版本服务端不支持 CLIENT SETINFO 不算错误
func ignorable(cmds []redis.Cmder, err error) bool {
	if errors.Is(err, redis.Nil) {
		return true
	}
	return len(cmds) == 1 && cmds[0].Name() == "client" && strings.Contains(err.Error(), "setinfo")
}

func commandNames(cmds []redis.Cmder) string {
	names := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		names = append(names, cmd.Name())
	}
	return strings.Join(names, ",")
}

// firstKey 只记录首个命令的 key，auth/hello 之类的命令不带 key
func firstKey(cmds []redis.Cmder) string {
	if len(cmds) == 0 {
		return ""
	}
	switch cmds[0].Name() {
	case "auth", "hello", "client", "ping":
		return ""
	}
	args := cmds[0].Args()
	if len(args) < 2 {
		return ""
	}
	key, _ := args[1].(string)
	return key
}
