// Package reconcile 处理支付网关回调：验签、幂等落账、发布领域事件
// 同一 tx_ref 的重复回调只会生效一次
package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"equb_server/internal/dao/mysql/repository"
	"equb_server/internal/dto/request"
	"equb_server/internal/infrastructure/logger"
	"equb_server/internal/infrastructure/mq"
	"equb_server/internal/model"
	"equb_server/internal/service/round"
	"equb_server/pkg/enum/payment/payment_status_enum"
	"equb_server/pkg/errorx"
	"equb_server/pkg/signature"
)

type reconcileService struct {
	repos         *repository.Repositories
	publisher     mq.EventPublisher
	webhookSecret string
}

// NewReconcileService 构造函数
func NewReconcileService(repos *repository.Repositories, publisher mq.EventPublisher, webhookSecret string) *reconcileService {
	return &reconcileService{
		repos:         repos,
		publisher:     publisher,
		webhookSecret: webhookSecret,
	}
}

// Verify 校验回调签名，必须在解析报文之前调用
func Verify(raw []byte, provided, secret string) error {
	if !signature.Verify(raw, provided, secret) {
		return errorx.New(errorx.CodeUnauthorized, "回调签名校验失败")
	}
	return nil
}

// parseOutcome 网关状态归一为 success / failed
func parseOutcome(status string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "success", "successful", "completed":
		return payment_status_enum.OUTCOME_SUCCESS, true
	case "failed", "failure", "cancelled":
		return payment_status_enum.OUTCOME_FAILURE, true
	default:
		return "", false
	}
}

// Apply 将网关结果落到 tx_ref 对应的缴款记录上
// 已 completed 的记录保持不变并返回 changed=false
// 同成员同轮已有其他 completed 记录时，本次成功结果记为 failed，等待人工退款
func (s *reconcileService) Apply(ctx context.Context, txRef, outcome string) (*model.RoundPayment, bool, error) {
	if outcome != payment_status_enum.OUTCOME_SUCCESS && outcome != payment_status_enum.OUTCOME_FAILURE {
		return nil, false, errorx.Newf(errorx.CodeInvalidParam, "未知的支付结果 %s", outcome)
	}

	var (
		payment *model.RoundPayment
		changed bool
		groupId string
		roundNo int
	)
	err := s.repos.Transaction(ctx, func(txRepos *repository.Repositories) error {
		ref, err := txRepos.Payment.FindByTxRef(ctx, txRef)
		if err != nil {
			return err
		}
		groupId, roundNo = ref.GroupUuid, ref.RoundNumber

		// 先锁群组行，同成员同轮的不同 tx_ref 在此排队，保证最多一条 completed
		// 加锁顺序与开奖、审批一致：群组 -> 明细
		if _, err := txRepos.Group.FindByUuidForUpdate(ctx, ref.GroupUuid); err != nil {
			return err
		}
		p, err := txRepos.Payment.FindByTxRefForUpdate(ctx, txRef)
		if err != nil {
			return err
		}
		payment = p
		if p.Status == payment_status_enum.COMPLETED {
			return nil
		}

		target := payment_status_enum.FAILED
		if outcome == payment_status_enum.OUTCOME_SUCCESS {
			dup, err := txRepos.Payment.HasCompleted(ctx, p.GroupUuid, p.MemberUuid, p.RoundNumber, p.TxRef)
			if err != nil {
				return err
			}
			if dup {
				zap.L().Warn("重复缴款，需要退款", logger.Op("apply", p.GroupUuid, p.RoundNumber,
					zap.String("tx_ref", p.TxRef), zap.String("user_id", p.MemberUuid))...)
			} else {
				target = payment_status_enum.COMPLETED
			}
		}
		if target == p.Status {
			return nil
		}

		paid := target == payment_status_enum.COMPLETED
		if err := txRepos.Payment.UpdateStatus(ctx, p.TxRef, target, paid); err != nil {
			return err
		}
		p.Status = target
		if paid {
			now := time.Now()
			p.PaidAt = &now
		}
		changed = true
		return nil
	})
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, false, errorx.New(errorx.CodeNotFound, "缴款记录不存在")
		}
		zap.L().Error("回调落账失败", logger.Op("apply", groupId, roundNo, zap.String("tx_ref", txRef), zap.Error(err))...)
		return nil, false, errorx.ErrServerBusy
	}
	return payment, changed, nil
}

// HandleWebhook 处理一次网关回调
// 记录首次变为 completed 时发布 contribution.completed，本轮缴清时再发布 round.ready
func (s *reconcileService) HandleWebhook(ctx context.Context, raw []byte, provided string) error {
	if err := Verify(raw, provided, s.webhookSecret); err != nil {
		zap.L().Warn("回调签名无效", zap.Int("size", len(raw)))
		return err
	}

	var payload request.WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return errorx.Wrap(err, errorx.CodeInvalidParam, "回调报文格式错误")
	}
	if payload.TxRef == "" {
		return errorx.New(errorx.CodeInvalidParam, "缺少 tx_ref")
	}
	outcome, ok := parseOutcome(payload.Status)
	if !ok {
		return errorx.Newf(errorx.CodeInvalidParam, "未知的支付状态 %s", payload.Status)
	}

	payment, changed, err := s.Apply(ctx, payload.TxRef, outcome)
	if err != nil {
		return err
	}
	zap.L().Info("支付回调已处理", logger.Op("webhook", payment.GroupUuid, payment.RoundNumber,
		zap.String("tx_ref", payment.TxRef),
		zap.String("status", payment.Status),
		zap.Bool("changed", changed),
		zap.String("reported_amount", fmt.Sprint(payload.Amount)))...)

	if !changed || payment.Status != payment_status_enum.COMPLETED {
		return nil
	}

	event := mq.NewEvent(mq.EventContributionCompleted, payment.GroupUuid, payment.RoundNumber)
	event.UserId = payment.MemberUuid
	event.Ref = payment.TxRef
	event.Amount = payment.Amount.StringFixed(2)
	s.publish(ctx, event)

	// 提交之后再读取，保证能看到并发回调已落账的记录
	var fully bool
	err = s.repos.Transaction(ctx, func(txRepos *repository.Repositories) error {
		var err error
		fully, err = round.FullyPaid(ctx, txRepos, payment.GroupUuid, payment.RoundNumber)
		return err
	})
	if err != nil {
		// 缴款已落账，事件缺失可由管理员手动开奖补救
		zap.L().Error("判断本轮缴款失败", logger.Op("webhook", payment.GroupUuid, payment.RoundNumber, zap.Error(err))...)
		return nil
	}
	if fully {
		s.publish(ctx, mq.NewEvent(mq.EventRoundReady, payment.GroupUuid, payment.RoundNumber))
	}
	return nil
}

func (s *reconcileService) publish(ctx context.Context, event mq.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		zap.L().Error("发布领域事件失败", logger.Op("publish", event.GroupId, event.Round,
			zap.String("type", event.Type), zap.Error(err))...)
	}
}
