// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
package service

import (
	"context"

	"equb_server/internal/dto/request"
	"equb_server/internal/dto/respond"
	"equb_server/internal/model"
)

// AuthService 双 Token 认证
type AuthService interface {
	// Refresh 使用 Refresh Token 换取新的 Token 对
	Refresh(ctx context.Context, refreshToken string) (accessToken, newRefreshToken string, err error)
}

// UserService 用户注册、登录与收款账户
type UserService interface {
	Register(ctx context.Context, req request.RegisterRequest) (*respond.LoginRespond, error)
	Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error)
	GetUserInfo(ctx context.Context, userId string) (*respond.UserRespond, error)
	// UpdateAccount 设置放款收款账户
	UpdateAccount(ctx context.Context, userId string, req request.UpdateAccountRequest) error
}

// GroupService 群组创建、设置与查询
type GroupService interface {
	CreateGroup(ctx context.Context, adminId string, req request.CreateGroupRequest) (*respond.GroupRespond, error)
	UpdateSettings(ctx context.Context, adminId, groupId string, req request.UpdateSettingsRequest) (*respond.GroupRespond, error)
	ListActive(ctx context.Context, page, limit int) (*respond.GroupListRespond, error)
	Search(ctx context.Context, req request.SearchGroupRequest) (*respond.GroupListRespond, error)
	MyGroups(ctx context.Context, userId string) ([]model.MyGroup, error)
	GetDetail(ctx context.Context, groupId string) (*respond.GroupDetailRespond, error)
}

// MembershipService 入群申请、审批与移除
type MembershipService interface {
	RequestJoin(ctx context.Context, userId, groupId string) error
	// Decide decision 只能是 approved 或 rejected
	Decide(ctx context.Context, adminId, groupId, targetUserId, decision string) error
	Kick(ctx context.Context, adminId, groupId, targetUserId string) error
	PendingRequests(ctx context.Context, adminId, groupId string) ([]model.MemberWithUser, error)
}

// RoundService 每轮缴款账本
type RoundService interface {
	IsRoundFullyPaid(ctx context.Context, groupId string, round int) (bool, error)
	InitiateContribution(ctx context.Context, userId, groupId string, round int) (*model.RoundPayment, error)
	RoundStatus(ctx context.Context, groupId string, round int) (*respond.RoundStatusRespond, error)
}

// PaymentService 发起收款与处理网关回调
type PaymentService interface {
	Checkout(ctx context.Context, userId, groupId string, round int) (*respond.CheckoutRespond, error)
	// HandleWebhook raw 为未解析的回调报文，signature 取自请求头
	HandleWebhook(ctx context.Context, raw []byte, signature string) error
}

// DrawService 开奖与周期管理
type DrawService interface {
	Draw(ctx context.Context, adminId, groupId string, round int) (*respond.DrawRespond, error)
	StartNewCycle(ctx context.Context, adminId, groupId string) (*respond.CycleRespond, error)
	Winners(ctx context.Context, groupId string) ([]respond.WinnerRespond, error)
}

// PayoutService 中签放款
type PayoutService interface {
	Settle(ctx context.Context, groupId, winnerUserId string) (*respond.PayoutRespond, error)
	SettleAsAdmin(ctx context.Context, adminId, groupId, winnerUserId string) (*respond.PayoutRespond, error)
}
