// Package rotation 消费 round.ready 事件，按配置自动开奖与放款
// 重复事件由开奖引擎的 Conflict 吸收
package rotation

import (
	"context"

	"go.uber.org/zap"

	"equb_server/internal/config"
	"equb_server/internal/dao/mysql/repository"
	"equb_server/internal/dto/respond"
	"equb_server/internal/infrastructure/logger"
	"equb_server/internal/infrastructure/mq"
	"equb_server/pkg/errorx"
)

type drawer interface {
	Draw(ctx context.Context, adminId, groupId string, round int) (*respond.DrawRespond, error)
}

type settler interface {
	Settle(ctx context.Context, groupId, winnerUserId string) (*respond.PayoutRespond, error)
}

type subscriber interface {
	Subscribe(eventType string, handler mq.EventHandler)
}

// Coordinator 轮转协调器
type Coordinator struct {
	repos      *repository.Repositories
	drawer     drawer
	settler    settler
	autoDraw   bool
	autoPayout bool
}

// NewCoordinator 构造函数
func NewCoordinator(repos *repository.Repositories, d drawer, s settler, conf config.EqubConfig) *Coordinator {
	return &Coordinator{
		repos:      repos,
		drawer:     d,
		settler:    s,
		autoDraw:   conf.AutoDraw,
		autoPayout: conf.AutoPayout,
	}
}

// Register 订阅 round.ready，需在 broker.Start 之前调用
func (c *Coordinator) Register(broker subscriber) {
	broker.Subscribe(mq.EventRoundReady, c.HandleRoundReady)
}

// HandleRoundReady 以群管理员身份开奖；开奖成功且开启自动放款时继续放款
func (c *Coordinator) HandleRoundReady(ctx context.Context, event mq.Event) error {
	if !c.autoDraw {
		return nil
	}

	g, err := c.repos.Group.FindByUuid(ctx, event.GroupId)
	if err != nil {
		if errorx.IsNotFound(err) {
			zap.L().Warn("round.ready 对应的群组不存在", logger.Op("auto_draw", event.GroupId, event.Round)...)
			return nil
		}
		return err
	}

	res, err := c.drawer.Draw(ctx, g.AdminId, g.Uuid, event.Round)
	if err != nil {
		switch errorx.GetCode(err) {
		case errorx.CodeConflict, errorx.CodePrecondition, errorx.CodeInvalidParam:
			// 已开奖、周期已满或事件过期
			zap.L().Info("跳过自动开奖", logger.Op("auto_draw", event.GroupId, event.Round, zap.String("reason", err.Error()))...)
			return nil
		}
		return err
	}

	if !c.autoPayout {
		return nil
	}
	if _, err := c.settler.Settle(ctx, res.GroupId, res.WinnerId); err != nil {
		if errorx.HasCode(err, errorx.CodePayoutFailed) || errorx.HasCode(err, errorx.CodeConflict) {
			return nil
		}
		return err
	}
	return nil
}
