package repository

import (
	"context"

	"equb_server/internal/model"

	"gorm.io/gorm"
)

type winnerRepository struct {
	db *gorm.DB
}

// NewWinnerRepository 创建 WinnerRepository 实例
func NewWinnerRepository(db *gorm.DB) WinnerRepository {
	return &winnerRepository{db: db}
}

func (r *winnerRepository) Create(ctx context.Context, winner *model.EqubWinner) error {
	if err := r.db.WithContext(ctx).Create(winner).Error; err != nil {
		return wrapDBErrorf(err, "写入开奖记录 group_uuid=%s round=%d", winner.GroupUuid, winner.RoundNumber)
	}
	return nil
}

func (r *winnerRepository) ExistsForRound(ctx context.Context, groupUuid string, round int) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.EqubWinner{}).
		Where("group_uuid = ? AND round_number = ?", groupUuid, round).
		Count(&n).Error; err != nil {
		return false, wrapDBErrorf(err, "查询开奖记录 group_uuid=%s round=%d", groupUuid, round)
	}
	return n > 0, nil
}

func (r *winnerRepository) FindByUserAndCycle(ctx context.Context, groupUuid, userUuid string, cycle int) (*model.EqubWinner, error) {
	var winner model.EqubWinner
	if err := r.db.WithContext(ctx).
		Where("group_uuid = ? AND user_uuid = ? AND cycle = ?", groupUuid, userUuid, cycle).
		First(&winner).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询中签记录 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return &winner, nil
}

// FindLatestUnsettled 该用户最近一次尚无放款记录的中签，不限周期
func (r *winnerRepository) FindLatestUnsettled(ctx context.Context, groupUuid, userUuid string) (*model.EqubWinner, error) {
	var winner model.EqubWinner
	if err := r.db.WithContext(ctx).
		Where("group_uuid = ? AND user_uuid = ?", groupUuid, userUuid).
		Where("NOT EXISTS (SELECT 1 FROM equb_payout p WHERE p.group_uuid = equb_winner.group_uuid AND p.round_number = equb_winner.round_number)").
		Order("round_number DESC").
		First(&winner).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询待放款中签记录 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return &winner, nil
}

// FindLatestByUser 该用户最近一次中签，不限周期
func (r *winnerRepository) FindLatestByUser(ctx context.Context, groupUuid, userUuid string) (*model.EqubWinner, error) {
	var winner model.EqubWinner
	if err := r.db.WithContext(ctx).
		Where("group_uuid = ? AND user_uuid = ?", groupUuid, userUuid).
		Order("round_number DESC").
		First(&winner).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询中签记录 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return &winner, nil
}

func (r *winnerRepository) FindByGroup(ctx context.Context, groupUuid string) ([]model.EqubWinner, error) {
	var winners []model.EqubWinner
	if err := r.db.WithContext(ctx).
		Where("group_uuid = ?", groupUuid).
		Order("round_number").
		Find(&winners).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询开奖历史 group_uuid=%s", groupUuid)
	}
	return winners, nil
}
