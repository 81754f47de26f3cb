// Package membership 维护群成员关系：入群申请、管理员审批与移除成员
// 状态迁移只允许 pending -> approved | rejected，由条件更新保证并发下只生效一次
package membership

import (
	"context"

	"go.uber.org/zap"

	"equb_server/internal/dao/mysql/repository"
	myredis "equb_server/internal/dao/redis"
	"equb_server/internal/infrastructure/logger"
	"equb_server/internal/model"
	"equb_server/internal/service/group"
	"equb_server/pkg/enum/member/member_status_enum"
	"equb_server/pkg/errorx"
	"equb_server/pkg/util/random"
)

// membershipService 成员关系业务实现
type membershipService struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService
}

// NewMembershipService 构造函数
func NewMembershipService(repos *repository.Repositories, cache myredis.AsyncCacheService) *membershipService {
	return &membershipService{repos: repos, cache: cache}
}

// loadGroupAsAdmin 读取群组并校验管理员身份
func loadGroupAsAdmin(ctx context.Context, repos *repository.Repositories, op, adminId, groupId string) (*model.EqubGroup, error) {
	g, err := repos.Group.FindByUuid(ctx, groupId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "群组不存在")
		}
		zap.L().Error("查询群组失败", logger.Op(op, groupId, 0, zap.Error(err))...)
		return nil, errorx.ErrServerBusy
	}
	if !g.IsAdmin(adminId) {
		return nil, errorx.New(errorx.CodeForbidden, "只有群管理员可以执行该操作")
	}
	return g, nil
}

// RequestJoin 申请入群，创建 pending 记录
// 同一用户在同一群只能有一条记录，无论状态
func (s *membershipService) RequestJoin(ctx context.Context, userId, groupId string) error {
	g, err := s.repos.Group.FindByUuid(ctx, groupId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "群组不存在或已停用")
		}
		zap.L().Error("查询群组失败", logger.Op("request_join", groupId, 0, zap.Error(err))...)
		return errorx.ErrServerBusy
	}
	if !g.IsActive {
		return errorx.New(errorx.CodeNotFound, "群组不存在或已停用")
	}

	if _, err := s.repos.Member.FindByGroupAndUser(ctx, groupId, userId); err == nil {
		return errorx.New(errorx.CodeConflict, "已提交申请或已是群成员")
	} else if !errorx.IsNotFound(err) {
		zap.L().Error("查询成员关系失败", logger.Op("request_join", groupId, 0, zap.Error(err))...)
		return errorx.ErrServerBusy
	}

	err = s.repos.Member.Create(ctx, &model.EqubMember{
		Uuid:      random.NewUuid('M'),
		GroupUuid: groupId,
		UserUuid:  userId,
		Status:    member_status_enum.PENDING,
	})
	if err != nil {
		// 并发申请时由唯一索引兜底
		if errorx.HasCode(err, errorx.CodeConflict) {
			return errorx.New(errorx.CodeConflict, "已提交申请或已是群成员")
		}
		zap.L().Error("创建入群申请失败", logger.Op("request_join", groupId, 0, zap.Error(err))...)
		return errorx.ErrServerBusy
	}

	group.InvalidateGroup(s.cache, groupId, userId)
	return nil
}

// Decide 管理员审批入群申请
func (s *membershipService) Decide(ctx context.Context, adminId, groupId, targetUserId, decision string) error {
	if _, err := loadGroupAsAdmin(ctx, s.repos, "decide", adminId, groupId); err != nil {
		return err
	}
	if !member_status_enum.IsDecision(decision) {
		return errorx.New(errorx.CodeInvalidParam, "action 只能是 approved 或 rejected")
	}

	err := s.repos.Transaction(ctx, func(txRepos *repository.Repositories) error {
		g, err := txRepos.Group.FindByUuidForUpdate(ctx, groupId)
		if err != nil {
			return err
		}
		m, err := txRepos.Member.FindByGroupAndUserForUpdate(ctx, groupId, targetUserId)
		if err != nil {
			return err
		}
		if m.Status != member_status_enum.PENDING {
			return errorx.New(errorx.CodeNotFound, "待审核的申请不存在")
		}
		if decision == member_status_enum.APPROVED {
			approved, err := txRepos.Member.CountByStatus(ctx, groupId, member_status_enum.APPROVED)
			if err != nil {
				return err
			}
			if approved >= int64(g.MaxMembers) {
				return errorx.New(errorx.CodeConflict, "群成员已满")
			}
		}

		affected, err := txRepos.Member.UpdateStatusIfPending(ctx, groupId, targetUserId, decision)
		if err != nil {
			return err
		}
		if affected == 0 {
			return errorx.New(errorx.CodeNotFound, "待审核的申请不存在")
		}
		if decision != member_status_enum.APPROVED {
			return nil
		}
		// 本周期已中签后被移除又重新入群的用户，恢复中签标记
		if _, err := txRepos.Winner.FindByUserAndCycle(ctx, groupId, targetUserId, g.CurrentCycle); err == nil {
			if _, err := txRepos.Member.MarkWonIfNotWon(ctx, groupId, targetUserId); err != nil {
				return err
			}
		} else if !errorx.IsNotFound(err) {
			return err
		}
		return nil
	})
	if err != nil {
		switch {
		case errorx.HasCode(err, errorx.CodeConflict):
			return err
		case errorx.IsNotFound(err):
			return errorx.New(errorx.CodeNotFound, "待审核的申请不存在")
		}
		zap.L().Error("审批入群申请失败", logger.Op("decide", groupId, 0, zap.String("target", targetUserId), zap.Error(err))...)
		return errorx.ErrServerBusy
	}

	zap.L().Info("入群申请已处理", logger.Op("decide", groupId, 0, zap.String("target", targetUserId), zap.String("decision", decision))...)
	group.InvalidateGroup(s.cache, groupId, targetUserId)
	return nil
}

// Kick 管理员移除成员，物理删除成员记录
// 历史缴款与中签记录保留，被移除的用户之后可以重新申请
func (s *membershipService) Kick(ctx context.Context, adminId, groupId, targetUserId string) error {
	g, err := loadGroupAsAdmin(ctx, s.repos, "kick", adminId, groupId)
	if err != nil {
		return err
	}
	if g.IsAdmin(targetUserId) {
		return errorx.New(errorx.CodeInvalidParam, "不能移除群管理员")
	}

	affected, err := s.repos.Member.Delete(ctx, groupId, targetUserId)
	if err != nil {
		zap.L().Error("移除成员失败", logger.Op("kick", groupId, 0, zap.String("target", targetUserId), zap.Error(err))...)
		return errorx.ErrServerBusy
	}
	if affected == 0 {
		return errorx.New(errorx.CodeNotFound, "该用户不是群成员")
	}

	zap.L().Info("成员已移除", logger.Op("kick", groupId, 0, zap.String("target", targetUserId))...)
	group.InvalidateGroup(s.cache, groupId, targetUserId)
	return nil
}

// PendingRequests 管理员查看待审核申请
func (s *membershipService) PendingRequests(ctx context.Context, adminId, groupId string) ([]model.MemberWithUser, error) {
	if _, err := loadGroupAsAdmin(ctx, s.repos, "pending_requests", adminId, groupId); err != nil {
		return nil, err
	}
	members, err := s.repos.Member.FindWithUser(ctx, groupId, member_status_enum.PENDING)
	if err != nil {
		zap.L().Error("查询待审核申请失败", logger.Op("pending_requests", groupId, 0, zap.Error(err))...)
		return nil, errorx.ErrServerBusy
	}
	if members == nil {
		members = make([]model.MemberWithUser, 0)
	}
	return members, nil
}
