// Package redis 本文件包含 Redis 连接初始化逻辑
// 使用 github.com/redis/go-redis/v9 作为底层客户端
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"equb_server/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	cacheWorkerNum  = 8
	cacheBufferSize = 1000
)

// Init 初始化 Redis 连接与缓存 Worker Pool
// 启动时 Ping 一次，连接失败直接返回错误
func Init(conf *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         conf.Host + ":" + strconv.Itoa(conf.Port),
		Password:     conf.Password,
		DB:           conf.Db,
		PoolSize:     50,
		MinIdleConns: cacheWorkerNum,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", client.Options().Addr, err)
	}

	return NewRedisCache(client, cacheWorkerNum, cacheBufferSize), nil
}
