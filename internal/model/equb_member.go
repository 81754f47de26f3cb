package model

import "time"

// EqubMember 群成员关系
// (user_uuid, group_uuid) 唯一：每个用户在每个群最多一条记录，无论状态
// 被管理员移除时物理删除
type EqubMember struct {
	ID        uint      `gorm:"primarykey"`
	Uuid      string    `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:成员记录id"`
	GroupUuid string    `gorm:"column:group_uuid;type:char(20);not null;uniqueIndex:uk_member_user_group,priority:2;index:idx_member_group_status,priority:1;comment:群组ID"`
	UserUuid  string    `gorm:"column:user_uuid;type:char(20);not null;uniqueIndex:uk_member_user_group,priority:1;comment:用户ID"`
	Status    string    `gorm:"column:status;type:varchar(10);not null;default:pending;index:idx_member_group_status,priority:2;comment:pending/approved/rejected"`
	HasWon    bool      `gorm:"column:has_won;not null;default:false;comment:本周期是否已中签"`
	JoinedAt  time.Time `gorm:"column:joined_at;autoCreateTime;comment:申请时间"`
}

func (EqubMember) TableName() string {
	return "equb_member"
}
