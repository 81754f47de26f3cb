// Package repository 提供数据访问层的具体实现
// 本文件实现 GroupRepository 接口，处理 equb 群组相关的数据库操作
package repository

import (
	"context"
	"strings"

	"equb_server/internal/model"
	"equb_server/pkg/enum/member/member_status_enum"

	"gorm.io/gorm"
)

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository 创建 GroupRepository 实例
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *model.EqubGroup) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return wrapDBError(err, "创建群组")
	}
	return nil
}

func (r *groupRepository) FindByUuid(ctx context.Context, uuid string) (*model.EqubGroup, error) {
	var group model.EqubGroup
	if err := r.db.WithContext(ctx).First(&group, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群组 uuid=%s", uuid)
	}
	return &group, nil
}

func (r *groupRepository) FindByUuidForUpdate(ctx context.Context, uuid string) (*model.EqubGroup, error) {
	var group model.EqubGroup
	if err := forUpdate(r.db.WithContext(ctx)).First(&group, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "锁定群组 uuid=%s", uuid)
	}
	return &group, nil
}

func (r *groupRepository) UpdateFields(ctx context.Context, uuid string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.EqubGroup{}).Where("uuid = ?", uuid).Updates(fields)
	if res.Error != nil {
		return wrapDBErrorf(res.Error, "更新群组 uuid=%s", uuid)
	}
	return nil
}

func (r *groupRepository) AdvanceRound(ctx context.Context, uuid string, fromRound int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.EqubGroup{}).
		Where("uuid = ? AND current_round = ?", uuid, fromRound).
		Update("current_round", fromRound+1)
	if res.Error != nil {
		return false, wrapDBErrorf(res.Error, "推进轮次 uuid=%s round=%d", uuid, fromRound)
	}
	return res.RowsAffected == 1, nil
}

func (r *groupRepository) AdvanceCycle(ctx context.Context, uuid string, fromCycle int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.EqubGroup{}).
		Where("uuid = ? AND current_cycle = ?", uuid, fromCycle).
		Update("current_cycle", fromCycle+1)
	if res.Error != nil {
		return false, wrapDBErrorf(res.Error, "推进周期 uuid=%s cycle=%d", uuid, fromCycle)
	}
	return res.RowsAffected == 1, nil
}

// summaryQuery 群组列表基础查询，附带已批准成员数
func (r *groupRepository) summaryQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("equb_group AS g").
		Select("g.uuid, g.title, g.amount, g.frequency, g.max_members, g.is_active, COUNT(m.id) AS current_members").
		Joins("LEFT JOIN equb_member m ON m.group_uuid = g.uuid AND m.status = ?", member_status_enum.APPROVED).
		Where("g.is_active = ? AND g.deleted_at IS NULL", true).
		Group("g.id, g.uuid, g.title, g.amount, g.frequency, g.max_members, g.is_active, g.created_at").
		Order("g.created_at DESC")
}

func (r *groupRepository) ListActive(ctx context.Context, page, pageSize int) ([]model.GroupSummary, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.EqubGroup{}).
		Where("is_active = ?", true).Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "统计群组数量")
	}

	var groups []model.GroupSummary
	if err := r.summaryQuery(ctx).
		Offset(pageOffset(page, pageSize)).Limit(pageSize).
		Scan(&groups).Error; err != nil {
		return nil, 0, wrapDBError(err, "分页查询群组")
	}
	return groups, total, nil
}

func (r *groupRepository) Search(ctx context.Context, keyword string, page, pageSize int) ([]model.GroupSummary, int64, error) {
	pattern := "%" + strings.ToLower(keyword) + "%"

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.EqubGroup{}).
		Where("is_active = ? AND LOWER(title) LIKE ?", true, pattern).
		Count(&total).Error; err != nil {
		return nil, 0, wrapDBErrorf(err, "统计搜索结果 keyword=%s", keyword)
	}

	var groups []model.GroupSummary
	if err := r.summaryQuery(ctx).
		Where("LOWER(g.title) LIKE ?", pattern).
		Offset(pageOffset(page, pageSize)).Limit(pageSize).
		Scan(&groups).Error; err != nil {
		return nil, 0, wrapDBErrorf(err, "搜索群组 keyword=%s", keyword)
	}
	return groups, total, nil
}
