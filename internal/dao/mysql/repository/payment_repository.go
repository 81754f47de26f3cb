// Package repository 提供数据访问层的具体实现
// 本文件实现 PaymentRepository 接口，处理每轮缴款记录
// member_uuid 存放缴款成员的用户 uuid
package repository

import (
	"context"
	"time"

	"equb_server/internal/model"
	"equb_server/pkg/enum/member/member_status_enum"
	"equb_server/pkg/enum/payment/payment_status_enum"

	"gorm.io/gorm"
)

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建 PaymentRepository 实例
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.RoundPayment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return wrapDBErrorf(err, "创建缴款记录 tx_ref=%s", payment.TxRef)
	}
	return nil
}

func (r *paymentRepository) FindByTxRef(ctx context.Context, txRef string) (*model.RoundPayment, error) {
	var payment model.RoundPayment
	if err := r.db.WithContext(ctx).First(&payment, "tx_ref = ?", txRef).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询缴款记录 tx_ref=%s", txRef)
	}
	return &payment, nil
}

func (r *paymentRepository) FindByTxRefForUpdate(ctx context.Context, txRef string) (*model.RoundPayment, error) {
	var payment model.RoundPayment
	if err := forUpdate(r.db.WithContext(ctx)).First(&payment, "tx_ref = ?", txRef).Error; err != nil {
		return nil, wrapDBErrorf(err, "锁定缴款记录 tx_ref=%s", txRef)
	}
	return &payment, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, txRef, status string, paid bool) error {
	fields := map[string]any{"status": status}
	if paid {
		fields["paid_at"] = time.Now()
	}
	if err := r.db.WithContext(ctx).Model(&model.RoundPayment{}).
		Where("tx_ref = ?", txRef).
		Updates(fields).Error; err != nil {
		return wrapDBErrorf(err, "更新缴款状态 tx_ref=%s", txRef)
	}
	return nil
}

func (r *paymentRepository) HasCompleted(ctx context.Context, groupUuid, memberUuid string, round int, exceptTxRef string) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&model.RoundPayment{}).
		Where("group_uuid = ? AND member_uuid = ? AND round_number = ? AND status = ?",
			groupUuid, memberUuid, round, payment_status_enum.COMPLETED)
	if exceptTxRef != "" {
		q = q.Where("tx_ref <> ?", exceptTxRef)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, wrapDBErrorf(err, "查询已完成缴款 group_uuid=%s round=%d", groupUuid, round)
	}
	return n > 0, nil
}

func (r *paymentRepository) CountPaidApproved(ctx context.Context, groupUuid string, round int) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Table("round_payment AS p").
		Joins("JOIN equb_member m ON m.group_uuid = p.group_uuid AND m.user_uuid = p.member_uuid").
		Where("p.group_uuid = ? AND p.round_number = ? AND p.status = ? AND m.status = ?",
			groupUuid, round, payment_status_enum.COMPLETED, member_status_enum.APPROVED).
		Distinct("p.member_uuid").
		Count(&n).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计已缴款成员 group_uuid=%s round=%d", groupUuid, round)
	}
	return n, nil
}

func (r *paymentRepository) FindRoundStatus(ctx context.Context, groupUuid string, round int) ([]model.MemberPaidStatus, error) {
	var rows []model.MemberPaidStatus
	paid := r.db.Table("round_payment AS p").
		Select("1").
		Where("p.group_uuid = m.group_uuid AND p.member_uuid = m.user_uuid AND p.round_number = ? AND p.status = ?",
			round, payment_status_enum.COMPLETED)
	if err := r.db.WithContext(ctx).Table("equb_member AS m").
		Select("m.user_uuid, u.name, EXISTS (?) AS has_paid", paid).
		Joins("JOIN user_info u ON u.uuid = m.user_uuid").
		Where("m.group_uuid = ? AND m.status = ?", groupUuid, member_status_enum.APPROVED).
		Order("m.joined_at").
		Scan(&rows).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询本轮缴款情况 group_uuid=%s round=%d", groupUuid, round)
	}
	return rows, nil
}
