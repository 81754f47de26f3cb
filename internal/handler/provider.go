// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	"equb_server/internal/service"
)

// Handlers 聚合所有 Handler 实例
// Router 层通过此结构访问各个 Handler
type Handlers struct {
	Auth     *AuthHandler
	User     *UserHandler
	Group    *GroupHandler
	Member   *MemberHandler
	Rotation *RotationHandler
	Payment  *PaymentHandler
}

// NewHandlers 创建并注入所有 Handler 实例
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(svc.User, svc.Auth),
		User:     NewUserHandler(svc.User),
		Group:    NewGroupHandler(svc.Group),
		Member:   NewMemberHandler(svc.Membership),
		Rotation: NewRotationHandler(svc.Round, svc.Draw, svc.Payout),
		Payment:  NewPaymentHandler(svc.Payment),
	}
}
