// Package handler 提供 HTTP 请求处理器
// 本文件处理注册、登录与 Token 刷新
package handler

import (
	"equb_server/internal/dto/request"
	"equb_server/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证相关请求处理器
type AuthHandler struct {
	userSvc service.UserService
	authSvc service.AuthService
}

// NewAuthHandler 创建认证处理器实例
func NewAuthHandler(userSvc service.UserService, authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{userSvc: userSvc, authSvc: authSvc}
}

// Register 用户注册
// POST /register
// 请求体: request.RegisterRequest
// 响应: respond.LoginRespond（注册成功即登录）
func (h *AuthHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	data, err := h.userSvc.Register(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Login 邮箱密码登录
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	data, err := h.userSvc.Login(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Refresh 刷新 Access Token
// POST /auth/refresh
// 旧 Refresh Token 在其他设备登录后失效（单点互踢）
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	accessToken, refreshToken, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}
