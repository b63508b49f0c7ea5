package redis

import (
	"LeaveAMark/internal/api/config"
	"LeaveAMark/internal/pkg/logger"
	"context"
	log "log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

var Rdb *redis.Client

// InitRedis 初始化 Redis 客户端连接，未配置地址时缓存与去重降级为直接访问数据库
func InitRedis(cfg config.RedisConfig) error {
	if cfg.Addr == "" {
		log.Warn("Redis address not configured, cache disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,

		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	})
	rdb.AddHook(logger.NewRedisLogger())

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return err
	}

	Rdb = rdb
	return nil
}

// Enabled 是否启用了 Redis
func Enabled() bool {
	return Rdb != nil
}

// Close 关闭连接
func Close() error {
	if Rdb == nil {
		return nil
	}
	return Rdb.Close()
}
