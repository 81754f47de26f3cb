package group

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	myredis "equb_server/internal/dao/redis"
	"equb_server/pkg/constants"
)

// InvalidateGroup 异步删除与群组相关的读缓存
// 成员变动、开奖、设置修改后调用；userIds 为受影响用户，用于清理“我的群组”缓存
func InvalidateGroup(cache myredis.AsyncCacheService, groupId string, userIds ...string) {
	if cache == nil {
		return
	}
	cache.SubmitTask(func() {
		ctx := context.Background()
		if err := cache.Delete(ctx, constants.GROUP_INFO_KEY_PREFIX+groupId); err != nil {
			zap.L().Error("Delete group info cache error", zap.String("group_id", groupId), zap.Error(err))
		}
		if err := cache.DeleteByPattern(ctx, constants.ACTIVE_GROUP_LIST_KEY+"*"); err != nil {
			zap.L().Error("Delete group list cache error", zap.Error(err))
		}
		for _, userId := range userIds {
			if err := cache.Delete(ctx, constants.MY_GROUP_KEY_PREFIX+userId); err != nil {
				zap.L().Error("Delete my group cache error", zap.String("user_id", userId), zap.Error(err))
			}
		}
	})
}

// getCached 读取缓存并反序列化；未命中、读失败或数据损坏都返回 false
func getCached(ctx context.Context, cache myredis.CacheService, key string, dst any) bool {
	rspString, err := cache.Get(ctx, key)
	if err != nil {
		// Redis 连接错误等不中断业务，回源数据库
		zap.L().Error("Redis get error", zap.String("key", key), zap.Error(err))
		return false
	}
	if rspString == "" {
		return false
	}
	if err := json.Unmarshal([]byte(rspString), dst); err != nil {
		zap.L().Warn("Unmarshal cache failed, fallback to DB", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// setCachedAsync 异步回写缓存
func setCachedAsync(cache myredis.AsyncCacheService, key string, value any, ttl time.Duration) {
	cache.SubmitTask(func() {
		rspBytes, err := json.Marshal(value)
		if err != nil {
			zap.L().Error("Marshal cache value error", zap.String("key", key), zap.Error(err))
			return
		}
		if err := cache.Set(context.Background(), key, string(rspBytes), ttl); err != nil {
			zap.L().Error("Set cache error", zap.String("key", key), zap.Error(err))
		}
	})
}
