// Package router 提供 HTTP 路由注册
// 本文件定义 equb 群组、成员与轮转相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterEqubRoutes 注册 equb 相关路由（需要认证）
func (rt *Router) RegisterEqubRoutes(rg *gin.RouterGroup) {
	equbGroup := rg.Group("/equb")
	{
		// ===== 群组 =====
		equbGroup.GET("/list", rt.handlers.Group.List)
		equbGroup.GET("/search", rt.handlers.Group.Search)
		equbGroup.GET("/my-groups", rt.handlers.Group.MyGroups)
		equbGroup.POST("/create", rt.handlers.Group.CreateGroup)
		equbGroup.GET("/:groupId/detail", rt.handlers.Group.Detail)
		equbGroup.PUT("/:groupId/settings", rt.handlers.Group.UpdateSettings) // 管理员

		// ===== 成员 =====
		equbGroup.POST("/:groupId/request-join", rt.handlers.Member.RequestJoin)
		equbGroup.GET("/:groupId/pending-requests", rt.handlers.Member.PendingRequests) // 管理员
		equbGroup.PATCH("/:groupId/manage-request", rt.handlers.Member.ManageRequest)   // 管理员
		equbGroup.DELETE("/:groupId/members/:userId", rt.handlers.Member.Kick)          // 管理员

		// ===== 轮转 =====
		equbGroup.GET("/:groupId/status/:round", rt.handlers.Rotation.RoundStatus)
		equbGroup.POST("/:groupId/draw/:round", rt.handlers.Rotation.Draw)     // 管理员
		equbGroup.POST("/:groupId/new-cycle", rt.handlers.Rotation.NewCycle)   // 管理员
		equbGroup.GET("/:groupId/winners", rt.handlers.Rotation.Winners)
		equbGroup.POST("/:groupId/payout/:userId", rt.handlers.Rotation.Payout) // 管理员
	}
}
