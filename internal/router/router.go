// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"equb_server/internal/handler"
	"equb_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 持有 Handler 聚合，各子模块路由通过它取到处理函数
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 公开接口直接挂在 engine 上，其余挂在 JWT 认证分组下
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	rt.RegisterAuthRoutes(r)
	rt.RegisterWebhookRoutes(r)

	authed := r.Group("/")
	authed.Use(middleware.JWTAuth())
	{
		rt.RegisterUserRoutes(authed)
		rt.RegisterEqubRoutes(authed)
		rt.RegisterPaymentRoutes(authed)
	}
}
