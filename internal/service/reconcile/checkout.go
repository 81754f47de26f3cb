package reconcile

import (
	"context"

	"go.uber.org/zap"

	"equb_server/internal/dto/respond"
	"equb_server/internal/infrastructure/gateway"
	"equb_server/internal/infrastructure/logger"
	"equb_server/internal/model"
	"equb_server/pkg/enum/payment/payment_status_enum"
	"equb_server/pkg/errorx"
)

// contributionInitiator 由 round 包实现
type contributionInitiator interface {
	InitiateContribution(ctx context.Context, userId, groupId string, round int) (*model.RoundPayment, error)
}

// checkoutService 发起缴款并向网关申请收款链接
type checkoutService struct {
	*reconcileService
	rounds  contributionInitiator
	gateway gateway.PaymentGateway
}

// NewCheckoutService 构造函数
func NewCheckoutService(reconciler *reconcileService, rounds contributionInitiator, gw gateway.PaymentGateway) *checkoutService {
	return &checkoutService{
		reconcileService: reconciler,
		rounds:           rounds,
		gateway:          gw,
	}
}

// Checkout 创建 pending 缴款并调用网关 initialize
// 网关失败时该记录经 Apply 置为 failed，错误返回给调用方
func (s *checkoutService) Checkout(ctx context.Context, userId, groupId string, round int) (*respond.CheckoutRespond, error) {
	payment, err := s.rounds.InitiateContribution(ctx, userId, groupId, round)
	if err != nil {
		return nil, err
	}

	req := gateway.InitializeRequest{
		TxRef:  payment.TxRef,
		Amount: payment.Amount,
	}
	if u, err := s.repos.User.FindByUuid(ctx, userId); err == nil {
		req.Email = u.Email
		req.FirstName = u.Name
	}
	if g, err := s.repos.Group.FindByUuid(ctx, groupId); err == nil {
		req.Title = g.Title
	}

	result, err := s.gateway.Initialize(ctx, req)
	if err != nil {
		zap.L().Error("网关创建收款失败", logger.Op("checkout", groupId, payment.RoundNumber,
			zap.String("tx_ref", payment.TxRef), zap.Error(err))...)
		if _, _, applyErr := s.Apply(ctx, payment.TxRef, payment_status_enum.OUTCOME_FAILURE); applyErr != nil {
			zap.L().Error("收款失败后回写状态失败", logger.Op("checkout", groupId, payment.RoundNumber,
				zap.String("tx_ref", payment.TxRef), zap.Error(applyErr))...)
		}
		if errorx.HasCode(err, errorx.CodeGatewayError) {
			return nil, err
		}
		return nil, errorx.Wrap(err, errorx.CodeGatewayError, "支付网关暂不可用")
	}

	return &respond.CheckoutRespond{
		TxRef:       payment.TxRef,
		Round:       payment.RoundNumber,
		Amount:      payment.Amount,
		CheckoutURL: result.CheckoutURL,
	}, nil
}
