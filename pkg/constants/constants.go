package constants

import "time"

const (
	DRAW_MAX_ATTEMPTS          = 3                // 乐观开奖冲突时的最大重试次数
	DEFAULT_PLATFORM_FEE       = "2"              // 默认平台服务费百分比
	DEFAULT_GATEWAY_TIMEOUT    = 15 * time.Second // 支付网关调用超时
	GROUP_INFO_CACHE_TTL       = 30 * time.Minute // 群信息缓存有效期
	GROUP_LIST_CACHE_TTL       = 5 * time.Minute  // 群列表缓存有效期
	REFRESH_TOKEN_EXPIRY_HOURS = 168              // Refresh Token 有效期（小时），168小时 = 7天
	DEFAULT_PAGE_SIZE          = 10
	MAX_PAGE_SIZE              = 100
)

// 缓存 key 前缀
const (
	GROUP_INFO_KEY_PREFIX = "equb_group_info_"
	ACTIVE_GROUP_LIST_KEY = "equb_group_active_list"
	MY_GROUP_KEY_PREFIX   = "equb_my_groups_"
	USER_TOKEN_KEY_PREFIX = "user_token:"
)
