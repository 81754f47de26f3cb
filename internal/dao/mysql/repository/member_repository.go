// Package repository 提供数据访问层的具体实现
// 本文件实现 MemberRepository 接口，处理 equb 群成员相关的数据库操作
package repository

import (
	"context"

	"equb_server/internal/model"
	"equb_server/pkg/enum/member/member_status_enum"

	"gorm.io/gorm"
)

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository 创建 MemberRepository 实例
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *model.EqubMember) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return wrapDBErrorf(err, "创建群成员 group_uuid=%s user_uuid=%s", member.GroupUuid, member.UserUuid)
	}
	return nil
}

func (r *memberRepository) FindByGroupAndUser(ctx context.Context, groupUuid, userUuid string) (*model.EqubMember, error) {
	var member model.EqubMember
	if err := r.db.WithContext(ctx).
		Where("group_uuid = ? AND user_uuid = ?", groupUuid, userUuid).
		First(&member).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群成员 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return &member, nil
}

func (r *memberRepository) FindByGroupAndUserForUpdate(ctx context.Context, groupUuid, userUuid string) (*model.EqubMember, error) {
	var member model.EqubMember
	if err := forUpdate(r.db.WithContext(ctx)).
		Where("group_uuid = ? AND user_uuid = ?", groupUuid, userUuid).
		First(&member).Error; err != nil {
		return nil, wrapDBErrorf(err, "锁定群成员 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return &member, nil
}

func (r *memberRepository) UpdateStatusIfPending(ctx context.Context, groupUuid, userUuid, status string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.EqubMember{}).
		Where("group_uuid = ? AND user_uuid = ? AND status = ?", groupUuid, userUuid, member_status_enum.PENDING).
		Update("status", status)
	if res.Error != nil {
		return 0, wrapDBErrorf(res.Error, "审批群成员 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return res.RowsAffected, nil
}

func (r *memberRepository) MarkWonIfNotWon(ctx context.Context, groupUuid, userUuid string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.EqubMember{}).
		Where("group_uuid = ? AND user_uuid = ? AND status = ? AND has_won = ?",
			groupUuid, userUuid, member_status_enum.APPROVED, false).
		Update("has_won", true)
	if res.Error != nil {
		return 0, wrapDBErrorf(res.Error, "标记中签 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return res.RowsAffected, nil
}

func (r *memberRepository) ResetWon(ctx context.Context, groupUuid string) error {
	if err := r.db.WithContext(ctx).Model(&model.EqubMember{}).
		Where("group_uuid = ? AND status = ?", groupUuid, member_status_enum.APPROVED).
		Update("has_won", false).Error; err != nil {
		return wrapDBErrorf(err, "重置中签标记 group_uuid=%s", groupUuid)
	}
	return nil
}

// Delete 物理删除成员记录，历史缴款与开奖记录保留
func (r *memberRepository) Delete(ctx context.Context, groupUuid, userUuid string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("group_uuid = ? AND user_uuid = ?", groupUuid, userUuid).
		Delete(&model.EqubMember{})
	if res.Error != nil {
		return 0, wrapDBErrorf(res.Error, "删除群成员 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return res.RowsAffected, nil
}

func (r *memberRepository) CountByStatus(ctx context.Context, groupUuid, status string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.EqubMember{}).
		Where("group_uuid = ? AND status = ?", groupUuid, status).
		Count(&n).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计群成员 group_uuid=%s status=%s", groupUuid, status)
	}
	return n, nil
}

// notWonInCycle 本周期未中签：has_won 为 false 且没有本周期的开奖记录
// 被移除后重新入群的成员 has_won 会被重置，开奖记录才是准绳
func notWonInCycle(db *gorm.DB, groupUuid string, cycle int) *gorm.DB {
	return db.Where("equb_member.group_uuid = ? AND equb_member.status = ? AND equb_member.has_won = ?",
		groupUuid, member_status_enum.APPROVED, false).
		Where("NOT EXISTS (SELECT 1 FROM equb_winner w WHERE w.group_uuid = equb_member.group_uuid AND w.user_uuid = equb_member.user_uuid AND w.cycle = ?)", cycle)
}

func (r *memberRepository) CountApprovedNotWon(ctx context.Context, groupUuid string, cycle int) (int64, error) {
	var n int64
	if err := notWonInCycle(r.db.WithContext(ctx).Model(&model.EqubMember{}), groupUuid, cycle).
		Count(&n).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计未中签成员 group_uuid=%s", groupUuid)
	}
	return n, nil
}

func (r *memberRepository) FindEligible(ctx context.Context, groupUuid string, cycle int) ([]model.EqubMember, error) {
	var members []model.EqubMember
	if err := notWonInCycle(r.db.WithContext(ctx).Model(&model.EqubMember{}), groupUuid, cycle).
		Order("equb_member.id").
		Find(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询候选成员 group_uuid=%s", groupUuid)
	}
	return members, nil
}

// FindWithUser 查询群成员及用户资料；status 为空时返回全部状态
func (r *memberRepository) FindWithUser(ctx context.Context, groupUuid string, status string) ([]model.MemberWithUser, error) {
	var members []model.MemberWithUser
	q := r.db.WithContext(ctx).Table("equb_member AS m").
		Select("m.user_uuid, u.name, m.status, m.has_won, m.joined_at").
		Joins("JOIN user_info u ON u.uuid = m.user_uuid AND u.deleted_at IS NULL").
		Where("m.group_uuid = ?", groupUuid)
	if status != "" {
		q = q.Where("m.status = ?", status)
	}
	if err := q.Order("m.joined_at").Scan(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群成员详情 group_uuid=%s", groupUuid)
	}
	return members, nil
}

func (r *memberRepository) FindGroupsOfUser(ctx context.Context, userUuid string) ([]model.MyGroup, error) {
	var groups []model.MyGroup
	if err := r.db.WithContext(ctx).Table("equb_member AS m").
		Select("m.group_uuid, g.title, g.amount, g.admin_id, m.status, m.joined_at").
		Joins("JOIN equb_group g ON g.uuid = m.group_uuid AND g.deleted_at IS NULL").
		Where("m.user_uuid = ?", userUuid).
		Order("m.joined_at DESC").
		Scan(&groups).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户所在群 user_uuid=%s", userUuid)
	}
	for i := range groups {
		groups[i].IsAdmin = groups[i].AdminId == userUuid
	}
	return groups, nil
}
