package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes 注册当前用户相关路由（需要认证）
func (rt *Router) RegisterUserRoutes(rg *gin.RouterGroup) {
	userGroup := rg.Group("/user")
	{
		userGroup.GET("/me", rt.handlers.User.Me)
		userGroup.PUT("/account", rt.handlers.User.UpdateAccount) // 放款收款账户
	}
}
