// Package auth 提供认证相关的业务逻辑
// 处理双 Token 签发、Refresh Token 校验与单点互踢
package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	myredis "equb_server/internal/dao/redis"
	"equb_server/pkg/constants"
	"equb_server/pkg/errorx"
	"equb_server/pkg/util/jwt"
)

// Service 认证服务实现
type Service struct {
	cache myredis.CacheService
}

// NewAuthService 创建认证服务实例
func NewAuthService(cache myredis.CacheService) *Service {
	return &Service{cache: cache}
}

// IssueTokens 签发 Access/Refresh Token，并把 Refresh Token ID 写入 Redis
// 新登录会覆盖旧的 tokenID，使旧 Refresh Token 失效
func (s *Service) IssueTokens(ctx context.Context, userID string) (accessToken, refreshToken string, err error) {
	accessToken, err = jwt.GenerateAccessToken(userID)
	if err != nil {
		zap.L().Error("生成 Access Token 失败", zap.Error(err))
		return "", "", errorx.ErrServerBusy
	}

	refreshToken, tokenID, err := jwt.GenerateRefreshToken(userID)
	if err != nil {
		zap.L().Error("生成 Refresh Token 失败", zap.Error(err))
		return "", "", errorx.ErrServerBusy
	}

	ttl := time.Duration(constants.REFRESH_TOKEN_EXPIRY_HOURS) * time.Hour
	if err := s.cache.Set(ctx, constants.USER_TOKEN_KEY_PREFIX+userID, tokenID, ttl); err != nil {
		// 不阻塞登录流程，仅记录日志
		zap.L().Error("存储 Token ID 到 Redis 失败", zap.String("user_id", userID), zap.Error(err))
	}
	return accessToken, refreshToken, nil
}

// ValidateTokenID 验证用户的 Token ID 是否仍是最新一次登录签发的
func (s *Service) ValidateTokenID(ctx context.Context, userID, tokenID string) (bool, error) {
	validTokenID, err := s.cache.Get(ctx, constants.USER_TOKEN_KEY_PREFIX+userID)
	if err != nil {
		return false, err
	}
	if validTokenID == "" {
		return false, nil
	}
	return tokenID == validTokenID, nil
}

// Refresh 用 Refresh Token 换取新的双 Token
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := jwt.ParseToken(refreshToken)
	if err != nil || claims.Subject != jwt.SubjectRefreshToken || claims.TokenID == "" {
		return "", "", errorx.New(errorx.CodeUnauthorized, "refresh token 无效或已过期")
	}

	ok, err := s.ValidateTokenID(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		zap.L().Error("校验 Token ID 失败", zap.String("user_id", claims.UserID), zap.Error(err))
		return "", "", errorx.ErrServerBusy
	}
	if !ok {
		return "", "", errorx.New(errorx.CodeUnauthorized, "账号已在其他设备登录")
	}
	return s.IssueTokens(ctx, claims.UserID)
}
