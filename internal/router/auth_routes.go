// Package router 提供 HTTP 路由注册
// 本文件定义注册、登录与 Token 刷新路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册认证相关路由（无需认证）
func (rt *Router) RegisterAuthRoutes(r *gin.Engine) {
	r.POST("/register", rt.handlers.Auth.Register)
	r.POST("/login", rt.handlers.Auth.Login)

	authGroup := r.Group("/auth")
	{
		// 使用 Refresh Token 换取新的 Token 对
		authGroup.POST("/refresh", rt.handlers.Auth.Refresh)
	}
}
