// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"equb_server/internal/config"
	"equb_server/internal/dao/mysql/repository"
	myredis "equb_server/internal/dao/redis"
	"equb_server/internal/infrastructure/gateway"
	"equb_server/internal/infrastructure/mq"
	"equb_server/internal/service/auth"
	"equb_server/internal/service/draw"
	"equb_server/internal/service/group"
	"equb_server/internal/service/membership"
	"equb_server/internal/service/payout"
	"equb_server/internal/service/reconcile"
	"equb_server/internal/service/rotation"
	"equb_server/internal/service/round"
	"equb_server/internal/service/user"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过此结构访问各个 Service
type Services struct {
	Auth       AuthService
	User       UserService
	Group      GroupService
	Membership MembershipService
	Round      RoundService
	Payment    PaymentService
	Draw       DrawService
	Payout     PayoutService
	// Rotation 需要在事件代理启动前注册订阅
	Rotation *rotation.Coordinator
}

// NewServices 创建并注入所有 Service 实例
// 依赖注入流程：
//  1. 基础服务：认证、用户、群组、成员关系、缴款账本
//  2. 依赖账本的服务：回调对账、开奖、放款
//  3. 依赖开奖与放款的轮转协调器
func NewServices(
	repos *repository.Repositories,
	cache myredis.AsyncCacheService,
	publisher mq.EventPublisher,
	gw gateway.PaymentGateway,
	conf *config.Config,
) *Services {
	authSvc := auth.NewAuthService(cache)
	roundSvc := round.NewRoundService(repos)
	reconciler := reconcile.NewReconcileService(repos, publisher, conf.GatewayConfig.WebhookSecret)
	drawSvc := draw.NewDrawService(repos, cache, publisher)
	payoutSvc := payout.NewPayoutService(repos, gw, publisher, conf.EqubConfig.PlatformFeePercent)

	return &Services{
		Auth:       authSvc,
		User:       user.NewUserService(repos, authSvc),
		Group:      group.NewGroupService(repos, cache),
		Membership: membership.NewMembershipService(repos, cache),
		Round:      roundSvc,
		Payment:    reconcile.NewCheckoutService(reconciler, roundSvc, gw),
		Draw:       drawSvc,
		Payout:     payoutSvc,
		Rotation:   rotation.NewCoordinator(repos, drawSvc, payoutSvc, conf.EqubConfig),
	}
}
