// Package round 维护每轮缴款账本：发起缴款、判断本轮是否缴清、查询缴款情况
package round

import (
	"context"

	"go.uber.org/zap"

	"equb_server/internal/dao/mysql/repository"
	"equb_server/internal/dto/respond"
	"equb_server/internal/infrastructure/logger"
	"equb_server/internal/model"
	"equb_server/pkg/enum/member/member_status_enum"
	"equb_server/pkg/enum/payment/payment_status_enum"
	"equb_server/pkg/errorx"
	"equb_server/pkg/util/random"
	"equb_server/pkg/util/snowflake"
)

type roundService struct {
	repos *repository.Repositories
}

// NewRoundService 构造函数
func NewRoundService(repos *repository.Repositories) *roundService {
	return &roundService{repos: repos}
}

// FullyPaid 已批准成员数大于 0，且每位已批准成员在该轮都有 completed 缴款
// 调用方负责提供事务内的 repos
func FullyPaid(ctx context.Context, repos *repository.Repositories, groupId string, round int) (bool, error) {
	approved, err := repos.Member.CountByStatus(ctx, groupId, member_status_enum.APPROVED)
	if err != nil {
		return false, err
	}
	if approved == 0 {
		return false, nil
	}
	paid, err := repos.Payment.CountPaidApproved(ctx, groupId, round)
	if err != nil {
		return false, err
	}
	return paid == approved, nil
}

// IsRoundFullyPaid 在同一事务内读取成员数与缴款数
func (s *roundService) IsRoundFullyPaid(ctx context.Context, groupId string, round int) (bool, error) {
	var fully bool
	err := s.repos.Transaction(ctx, func(txRepos *repository.Repositories) error {
		var err error
		fully, err = FullyPaid(ctx, txRepos, groupId, round)
		return err
	})
	if err != nil {
		zap.L().Error("判断本轮缴款失败", logger.Op("is_round_fully_paid", groupId, round, zap.Error(err))...)
		return false, errorx.ErrServerBusy
	}
	return fully, nil
}

// InitiateContribution 为成员创建一条 pending 缴款记录
// round 为 0 表示群组当前轮次；每次调用生成新的 tx_ref
func (s *roundService) InitiateContribution(ctx context.Context, userId, groupId string, round int) (*model.RoundPayment, error) {
	g, err := s.repos.Group.FindByUuid(ctx, groupId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "群组不存在")
		}
		zap.L().Error("查询群组失败", logger.Op("initiate_contribution", groupId, round, zap.Error(err))...)
		return nil, errorx.ErrServerBusy
	}
	if !g.IsActive {
		return nil, errorx.New(errorx.CodeInvalidParam, "群组已停用")
	}
	if round == 0 {
		round = g.CurrentRound
	}
	if round < 1 {
		return nil, errorx.New(errorx.CodeInvalidParam, "轮次必须大于 0")
	}

	m, err := s.repos.Member.FindByGroupAndUser(ctx, groupId, userId)
	if err != nil && !errorx.IsNotFound(err) {
		zap.L().Error("查询成员关系失败", logger.Op("initiate_contribution", groupId, round, zap.Error(err))...)
		return nil, errorx.ErrServerBusy
	}
	if err != nil || m.Status != member_status_enum.APPROVED {
		return nil, errorx.New(errorx.CodeForbidden, "只有已批准的成员可以缴款")
	}

	done, err := s.repos.Payment.HasCompleted(ctx, groupId, userId, round, "")
	if err != nil {
		zap.L().Error("查询已完成缴款失败", logger.Op("initiate_contribution", groupId, round, zap.Error(err))...)
		return nil, errorx.ErrServerBusy
	}
	if done {
		return nil, errorx.Newf(errorx.CodeConflict, "第 %d 轮已缴款", round)
	}

	payment := &model.RoundPayment{
		Uuid:        random.NewUuid('P'),
		MemberUuid:  userId,
		GroupUuid:   groupId,
		RoundNumber: round,
		Amount:      g.Amount,
		Status:      payment_status_enum.PENDING,
		TxRef:       snowflake.TxRef(),
	}
	if err := s.repos.Payment.Create(ctx, payment); err != nil {
		zap.L().Error("创建缴款记录失败", logger.Op("initiate_contribution", groupId, round, zap.Error(err))...)
		return nil, errorx.ErrServerBusy
	}

	zap.L().Info("发起缴款", logger.Op("initiate_contribution", groupId, round,
		zap.String("user_id", userId), zap.String("tx_ref", payment.TxRef))...)
	return payment, nil
}

// RoundStatus 查询该轮每位已批准成员是否已缴款；round 为 0 表示当前轮次
func (s *roundService) RoundStatus(ctx context.Context, groupId string, round int) (*respond.RoundStatusRespond, error) {
	g, err := s.repos.Group.FindByUuid(ctx, groupId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "群组不存在")
		}
		zap.L().Error("查询群组失败", logger.Op("round_status", groupId, round, zap.Error(err))...)
		return nil, errorx.ErrServerBusy
	}
	if round == 0 {
		round = g.CurrentRound
	}
	if round < 1 {
		return nil, errorx.New(errorx.CodeInvalidParam, "轮次必须大于 0")
	}

	members, err := s.repos.Payment.FindRoundStatus(ctx, groupId, round)
	if err != nil {
		zap.L().Error("查询本轮缴款情况失败", logger.Op("round_status", groupId, round, zap.Error(err))...)
		return nil, errorx.ErrServerBusy
	}
	if members == nil {
		members = make([]model.MemberPaidStatus, 0)
	}

	fully := len(members) > 0
	for _, m := range members {
		if !m.HasPaid {
			fully = false
			break
		}
	}
	return &respond.RoundStatusRespond{
		GroupId:   groupId,
		Round:     round,
		FullyPaid: fully,
		Members:   members,
	}, nil
}
