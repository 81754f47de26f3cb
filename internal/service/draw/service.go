// Package draw 开奖引擎：每轮从本周期未中签的已批准成员中等概率抽取一人
// 抽签、标记中签、写入开奖记录、推进轮次在同一事务内完成
package draw

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"equb_server/internal/dao/mysql/repository"
	myredis "equb_server/internal/dao/redis"
	"equb_server/internal/dto/respond"
	"equb_server/internal/infrastructure/logger"
	"equb_server/internal/infrastructure/mq"
	"equb_server/internal/model"
	"equb_server/internal/service/group"
	"equb_server/internal/service/round"
	"equb_server/pkg/constants"
	"equb_server/pkg/enum/member/member_status_enum"
	"equb_server/pkg/errorx"
	"equb_server/pkg/util/random"
)

// errLostRace 条件更新未命中或唯一索引冲突，换人重试
var errLostRace = errors.New("draw: lost race")

type drawService struct {
	repos     *repository.Repositories
	cache     myredis.AsyncCacheService
	publisher mq.EventPublisher
}

// NewDrawService 构造函数
func NewDrawService(repos *repository.Repositories, cache myredis.AsyncCacheService, publisher mq.EventPublisher) *drawService {
	return &drawService{repos: repos, cache: cache, publisher: publisher}
}

// Draw 为 round 开奖，round 必须等于群组当前轮次
func (s *drawService) Draw(ctx context.Context, adminId, groupId string, roundNumber int) (*respond.DrawRespond, error) {
	excluded := make(map[string]bool)
	for attempt := 1; attempt <= constants.DRAW_MAX_ATTEMPTS; attempt++ {
		res, err := s.drawOnce(ctx, adminId, groupId, roundNumber, excluded)
		if err == nil {
			zap.L().Info("开奖完成", logger.Op("draw", groupId, roundNumber,
				zap.String("winner", res.WinnerId), zap.Int("attempt", attempt))...)
			group.InvalidateGroup(s.cache, groupId, res.WinnerId)

			event := mq.NewEvent(mq.EventRoundDrawn, groupId, roundNumber)
			event.UserId = res.WinnerId
			if s.publisher != nil {
				if err := s.publisher.Publish(ctx, event); err != nil {
					zap.L().Error("发布开奖事件失败", logger.Op("draw", groupId, roundNumber, zap.Error(err))...)
				}
			}
			return res, nil
		}
		if !errors.Is(err, errLostRace) {
			return nil, err
		}
		zap.L().Warn("开奖冲突，重试", logger.Op("draw", groupId, roundNumber, zap.Int("attempt", attempt))...)
	}
	return nil, errorx.New(errorx.CodeConflict, "开奖冲突，请稍后重试")
}

func (s *drawService) drawOnce(ctx context.Context, adminId, groupId string, roundNumber int, excluded map[string]bool) (*respond.DrawRespond, error) {
	var res *respond.DrawRespond
	err := s.repos.Transaction(ctx, func(txRepos *repository.Repositories) error {
		g, err := txRepos.Group.FindByUuidForUpdate(ctx, groupId)
		if err != nil {
			if errorx.IsNotFound(err) {
				return errorx.New(errorx.CodeNotFound, "群组不存在")
			}
			return err
		}
		if !g.IsAdmin(adminId) {
			return errorx.New(errorx.CodeForbidden, "只有群管理员可以开奖")
		}
		if !g.IsActive {
			return errorx.New(errorx.CodeInvalidParam, "群组已停用")
		}
		// 重复开奖先于轮次校验，使并发的重复请求得到 Conflict
		drawn, err := txRepos.Winner.ExistsForRound(ctx, groupId, roundNumber)
		if err != nil {
			return err
		}
		if drawn {
			return errorx.Newf(errorx.CodeConflict, "第 %d 轮已开奖", roundNumber)
		}
		if roundNumber != g.CurrentRound {
			return errorx.Newf(errorx.CodeInvalidParam, "只能为当前轮次（第 %d 轮）开奖", g.CurrentRound)
		}

		fully, err := round.FullyPaid(ctx, txRepos, groupId, roundNumber)
		if err != nil {
			return err
		}
		if !fully {
			return errorx.Newf(errorx.CodePrecondition, "第 %d 轮尚未缴清", roundNumber)
		}

		eligible, err := txRepos.Member.FindEligible(ctx, groupId, g.CurrentCycle)
		if err != nil {
			return err
		}
		candidates := make([]model.EqubMember, 0, len(eligible))
		for _, m := range eligible {
			if !excluded[m.UserUuid] {
				candidates = append(candidates, m)
			}
		}
		if len(candidates) == 0 {
			if len(eligible) > 0 {
				return errLostRace
			}
			return errorx.New(errorx.CodeConflict, "本周期所有成员均已中签，请开始新周期")
		}

		idx, err := random.Intn(len(candidates))
		if err != nil {
			return err
		}
		winner := candidates[idx]

		affected, err := txRepos.Member.MarkWonIfNotWon(ctx, groupId, winner.UserUuid)
		if err != nil {
			return err
		}
		if affected == 0 {
			excluded[winner.UserUuid] = true
			return errLostRace
		}

		now := time.Now()
		if err := txRepos.Winner.Create(ctx, &model.EqubWinner{
			Uuid:        random.NewUuid('W'),
			GroupUuid:   groupId,
			UserUuid:    winner.UserUuid,
			RoundNumber: roundNumber,
			Cycle:       g.CurrentCycle,
			DrawDate:    now,
		}); err != nil {
			if errorx.HasCode(err, errorx.CodeConflict) {
				excluded[winner.UserUuid] = true
				return errLostRace
			}
			return err
		}

		ok, err := txRepos.Group.AdvanceRound(ctx, groupId, roundNumber)
		if err != nil {
			return err
		}
		if !ok {
			return errLostRace
		}

		res = &respond.DrawRespond{
			GroupId:   groupId,
			Round:     roundNumber,
			Cycle:     g.CurrentCycle,
			WinnerId:  winner.UserUuid,
			NextRound: roundNumber + 1,
			DrawDate:  now,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errLostRace) || isBusinessError(err) {
			return nil, err
		}
		zap.L().Error("开奖失败", logger.Op("draw", groupId, roundNumber, zap.Error(err))...)
		return nil, errorx.ErrServerBusy
	}
	return res, nil
}

// StartNewCycle 本周期所有已批准成员均已中签后，清空中签标记并进入下一周期
// 轮次编号跨周期连续递增
func (s *drawService) StartNewCycle(ctx context.Context, adminId, groupId string) (*respond.CycleRespond, error) {
	var res *respond.CycleRespond
	err := s.repos.Transaction(ctx, func(txRepos *repository.Repositories) error {
		g, err := txRepos.Group.FindByUuidForUpdate(ctx, groupId)
		if err != nil {
			if errorx.IsNotFound(err) {
				return errorx.New(errorx.CodeNotFound, "群组不存在")
			}
			return err
		}
		if !g.IsAdmin(adminId) {
			return errorx.New(errorx.CodeForbidden, "只有群管理员可以开始新周期")
		}

		remaining, err := txRepos.Member.CountApprovedNotWon(ctx, groupId, g.CurrentCycle)
		if err != nil {
			return err
		}
		if remaining > 0 {
			return errorx.Newf(errorx.CodeConflict, "本周期还有 %d 名成员未中签", remaining)
		}

		if err := txRepos.Member.ResetWon(ctx, groupId); err != nil {
			return err
		}
		ok, err := txRepos.Group.AdvanceCycle(ctx, groupId, g.CurrentCycle)
		if err != nil {
			return err
		}
		if !ok {
			return errorx.New(errorx.CodeConflict, "周期已变更，请刷新后重试")
		}

		members, err := txRepos.Member.CountByStatus(ctx, groupId, member_status_enum.APPROVED)
		if err != nil {
			return err
		}
		res = &respond.CycleRespond{GroupId: groupId, Cycle: g.CurrentCycle + 1, Members: members}
		return nil
	})
	if err != nil {
		if isBusinessError(err) {
			return nil, err
		}
		zap.L().Error("开始新周期失败", logger.Op("start_new_cycle", groupId, 0, zap.Error(err))...)
		return nil, errorx.ErrServerBusy
	}

	zap.L().Info("进入新周期", logger.Op("start_new_cycle", groupId, 0, zap.Int("cycle", res.Cycle))...)
	group.InvalidateGroup(s.cache, groupId)
	return res, nil
}

// Winners 开奖历史，按轮次升序
func (s *drawService) Winners(ctx context.Context, groupId string) ([]respond.WinnerRespond, error) {
	if _, err := s.repos.Group.FindByUuid(ctx, groupId); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "群组不存在")
		}
		zap.L().Error("查询群组失败", logger.Op("winners", groupId, 0, zap.Error(err))...)
		return nil, errorx.ErrServerBusy
	}
	winners, err := s.repos.Winner.FindByGroup(ctx, groupId)
	if err != nil {
		zap.L().Error("查询开奖历史失败", logger.Op("winners", groupId, 0, zap.Error(err))...)
		return nil, errorx.ErrServerBusy
	}
	list := make([]respond.WinnerRespond, 0, len(winners))
	for _, w := range winners {
		list = append(list, respond.WinnerRespond{
			UserId:   w.UserUuid,
			Round:    w.RoundNumber,
			Cycle:    w.Cycle,
			DrawDate: w.DrawDate,
		})
	}
	return list, nil
}

// isBusinessError 可直接返回给调用方的业务错误
func isBusinessError(err error) bool {
	switch errorx.GetCode(err) {
	case errorx.CodeNotFound, errorx.CodeForbidden, errorx.CodeInvalidParam,
		errorx.CodeConflict, errorx.CodePrecondition:
		return true
	}
	return false
}
