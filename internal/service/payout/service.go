// Package payout 将每轮奖池转给中签者
// 转账失败只记录为 failed 并交由人工处理，不做自动重试
package payout

import (
	"context"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"equb_server/internal/dao/mysql/repository"
	"equb_server/internal/dto/respond"
	"equb_server/internal/infrastructure/gateway"
	"equb_server/internal/infrastructure/logger"
	"equb_server/internal/infrastructure/mq"
	"equb_server/internal/model"
	"equb_server/pkg/constants"
	"equb_server/pkg/enum/member/member_status_enum"
	"equb_server/pkg/enum/payout/payout_status_enum"
	"equb_server/pkg/errorx"
	"equb_server/pkg/util/random"
	"equb_server/pkg/util/snowflake"
)

var hundred = decimal.NewFromInt(100)

type payoutService struct {
	repos      *repository.Repositories
	gateway    gateway.PaymentGateway
	publisher  mq.EventPublisher
	feePercent decimal.Decimal
}

// NewPayoutService feePercent 为平台服务费百分比，非法值回退到默认值
func NewPayoutService(repos *repository.Repositories, gw gateway.PaymentGateway, publisher mq.EventPublisher, feePercent string) *payoutService {
	fee, err := decimal.NewFromString(feePercent)
	if err != nil || fee.IsNegative() || fee.GreaterThanOrEqual(hundred) {
		zap.L().Warn("Invalid platformFeePercent, using default",
			zap.String("value", feePercent), zap.String("default", constants.DEFAULT_PLATFORM_FEE))
		fee = decimal.RequireFromString(constants.DEFAULT_PLATFORM_FEE)
	}
	return &payoutService{
		repos:      repos,
		gateway:    gw,
		publisher:  publisher,
		feePercent: fee,
	}
}

// Pot 奖池 = 每轮金额 × 已批准人数 × (1 - 服务费%)，保留两位小数
func Pot(amount decimal.Decimal, approved int64, feePercent decimal.Decimal) decimal.Decimal {
	gross := amount.Mul(decimal.NewFromInt(approved))
	fee := gross.Mul(feePercent).Div(hundred)
	return gross.Sub(fee).Round(2)
}

// Settle 为中签者发起放款
// 同一群组同一轮只允许一条放款记录
func (s *payoutService) Settle(ctx context.Context, groupId, winnerUserId string) (*respond.PayoutRespond, error) {
	g, err := s.repos.Group.FindByUuid(ctx, groupId)
	if err != nil {
		return nil, s.lookupError(err, "群组不存在", groupId, 0)
	}
	u, err := s.repos.User.FindByUuid(ctx, winnerUserId)
	if err != nil {
		return nil, s.lookupError(err, "中签用户不存在", groupId, 0)
	}
	winner, err := s.repos.Winner.FindLatestUnsettled(ctx, groupId, winnerUserId)
	if err != nil {
		if !errorx.IsNotFound(err) {
			return nil, s.lookupError(err, "该用户没有中签记录", groupId, 0)
		}
		// 有中签但都已放款时报 Conflict
		latest, lerr := s.repos.Winner.FindLatestByUser(ctx, groupId, winnerUserId)
		if lerr != nil {
			return nil, s.lookupError(lerr, "该用户没有中签记录", groupId, 0)
		}
		return nil, errorx.Newf(errorx.CodeConflict, "第 %d 轮已放款", latest.RoundNumber)
	}
	if u.AccountNumber == "" || u.BankCode == "" {
		return nil, errorx.New(errorx.CodePrecondition, "中签者尚未设置收款账户")
	}

	var record *model.EqubPayout
	err = s.repos.Transaction(ctx, func(txRepos *repository.Repositories) error {
		existing, err := txRepos.Payout.FindByGroupAndRound(ctx, groupId, winner.RoundNumber)
		if err == nil {
			return errorx.Newf(errorx.CodeConflict, "第 %d 轮已有放款记录（%s）", winner.RoundNumber, existing.Status)
		}
		if !errorx.IsNotFound(err) {
			return err
		}
		approved, err := txRepos.Member.CountByStatus(ctx, groupId, member_status_enum.APPROVED)
		if err != nil {
			return err
		}

		record = &model.EqubPayout{
			Uuid:        random.NewUuid('O'),
			GroupUuid:   groupId,
			WinnerId:    winnerUserId,
			RoundNumber: winner.RoundNumber,
			Amount:      Pot(g.Amount, approved, s.feePercent),
			Status:      payout_status_enum.PENDING,
			TransferRef: snowflake.TransferRef(),
		}
		return txRepos.Payout.Create(ctx, record)
	})
	if err != nil {
		if errorx.HasCode(err, errorx.CodeConflict) {
			return nil, errorx.Wrapf(err, errorx.CodeConflict, "第 %d 轮已放款", winner.RoundNumber)
		}
		zap.L().Error("创建放款记录失败", logger.Op("settle", groupId, winner.RoundNumber, zap.Error(err))...)
		return nil, errorx.ErrServerBusy
	}

	_, err = s.gateway.Transfer(ctx, gateway.TransferRequest{
		Reference:     record.TransferRef,
		Amount:        record.Amount,
		AccountName:   u.PayoutAccountName(),
		AccountNumber: u.AccountNumber,
		BankCode:      u.BankCode,
	})
	if err != nil {
		record.Status = payout_status_enum.FAILED
		record.FailReason = truncate(err.Error(), 255)
		if uerr := s.repos.Payout.UpdateResult(ctx, record.Uuid, record.Status, record.FailReason); uerr != nil {
			zap.L().Error("回写放款失败状态失败", logger.Op("settle", groupId, record.RoundNumber,
				zap.String("transfer_ref", record.TransferRef), zap.Error(uerr))...)
		}
		zap.L().Error("放款失败，需要人工处理", logger.Op("settle", groupId, record.RoundNumber,
			zap.String("transfer_ref", record.TransferRef),
			zap.String("winner", winnerUserId),
			zap.String("amount", record.Amount.StringFixed(2)),
			zap.Error(err))...)
		s.publish(ctx, mq.EventPayoutFailed, record)
		return nil, errorx.Wrapf(err, errorx.CodePayoutFailed, "第 %d 轮放款失败，需要人工处理", record.RoundNumber)
	}

	record.Status = payout_status_enum.SUCCESS
	if err := s.repos.Payout.UpdateResult(ctx, record.Uuid, record.Status, ""); err != nil {
		// 转账已受理，状态以网关为准，需人工对账
		zap.L().Error("回写放款成功状态失败", logger.Op("settle", groupId, record.RoundNumber,
			zap.String("transfer_ref", record.TransferRef), zap.Error(err))...)
	}
	zap.L().Info("放款成功", logger.Op("settle", groupId, record.RoundNumber,
		zap.String("transfer_ref", record.TransferRef), zap.String("amount", record.Amount.StringFixed(2)))...)
	s.publish(ctx, mq.EventPayoutSettled, record)

	return &respond.PayoutRespond{
		PayoutId:    record.Uuid,
		GroupId:     groupId,
		WinnerId:    winnerUserId,
		Round:       record.RoundNumber,
		Amount:      record.Amount,
		Status:      record.Status,
		TransferRef: record.TransferRef,
	}, nil
}

// SettleAsAdmin HTTP 入口，只有群管理员可以手动放款
func (s *payoutService) SettleAsAdmin(ctx context.Context, adminId, groupId, winnerUserId string) (*respond.PayoutRespond, error) {
	g, err := s.repos.Group.FindByUuid(ctx, groupId)
	if err != nil {
		return nil, s.lookupError(err, "群组不存在", groupId, 0)
	}
	if !g.IsAdmin(adminId) {
		return nil, errorx.New(errorx.CodeForbidden, "只有群管理员可以放款")
	}
	return s.Settle(ctx, groupId, winnerUserId)
}

func (s *payoutService) lookupError(err error, msg, groupId string, round int) error {
	if errorx.IsNotFound(err) {
		return errorx.New(errorx.CodeNotFound, msg)
	}
	zap.L().Error("放款前置查询失败", logger.Op("settle", groupId, round, zap.Error(err))...)
	return errorx.ErrServerBusy
}

func (s *payoutService) publish(ctx context.Context, eventType string, record *model.EqubPayout) {
	if s.publisher == nil {
		return
	}
	event := mq.NewEvent(eventType, record.GroupUuid, record.RoundNumber)
	event.UserId = record.WinnerId
	event.Ref = record.TransferRef
	event.Amount = record.Amount.StringFixed(2)
	if err := s.publisher.Publish(ctx, event); err != nil {
		zap.L().Error("发布放款事件失败", logger.Op("settle", record.GroupUuid, record.RoundNumber, zap.Error(err))...)
	}
}

// truncate 按字节上限截断，不拆开多字节字符
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
