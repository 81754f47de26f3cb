package repository

import (
	"context"

	"equb_server/internal/model"

	"gorm.io/gorm"
)

type payoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository 创建 PayoutRepository 实例
func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &payoutRepository{db: db}
}

func (r *payoutRepository) Create(ctx context.Context, payout *model.EqubPayout) error {
	if err := r.db.WithContext(ctx).Create(payout).Error; err != nil {
		return wrapDBErrorf(err, "创建放款记录 group_uuid=%s round=%d", payout.GroupUuid, payout.RoundNumber)
	}
	return nil
}

func (r *payoutRepository) FindByGroupAndRound(ctx context.Context, groupUuid string, round int) (*model.EqubPayout, error) {
	var payout model.EqubPayout
	if err := r.db.WithContext(ctx).
		Where("group_uuid = ? AND round_number = ?", groupUuid, round).
		First(&payout).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询放款记录 group_uuid=%s round=%d", groupUuid, round)
	}
	return &payout, nil
}

func (r *payoutRepository) UpdateResult(ctx context.Context, uuid, status, reason string) error {
	if err := r.db.WithContext(ctx).Model(&model.EqubPayout{}).
		Where("uuid = ?", uuid).
		Updates(map[string]any{"status": status, "fail_reason": reason}).Error; err != nil {
		return wrapDBErrorf(err, "更新放款状态 uuid=%s", uuid)
	}
	return nil
}

func (r *payoutRepository) FindByUuid(ctx context.Context, uuid string) (*model.EqubPayout, error) {
	var payout model.EqubPayout
	if err := r.db.WithContext(ctx).First(&payout, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询放款记录 uuid=%s", uuid)
	}
	return &payout, nil
}
