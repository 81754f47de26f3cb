package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EqubGroup 轮转储蓄群
// 对应数据库 equb_group 表。只做停用，不物理删除
type EqubGroup struct {
	gorm.Model
	Uuid       string          `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:群组唯一id"`
	Title      string          `gorm:"column:title;type:varchar(100);not null;comment:群名称"`
	Amount     decimal.Decimal `gorm:"column:amount;type:decimal(10,2);not null;comment:每轮缴款金额"`
	Frequency  string          `gorm:"column:frequency;type:varchar(10);not null;comment:缴款频率 daily/weekly/monthly"`
	MaxMembers int             `gorm:"column:max_members;not null;comment:成员上限"`
	AdminId    string          `gorm:"column:admin_id;index;type:char(20);not null;comment:管理员uuid"`
	IsActive   bool            `gorm:"column:is_active;not null;default:true;comment:是否启用"`

	// CurrentRound 下一次开奖的轮次，从 1 开始，每次开奖成功后 +1，跨周期累加
	CurrentRound int `gorm:"column:current_round;not null;default:1;comment:当前轮次"`
	// CurrentCycle 当前周期，所有成员各中一次后由管理员开启新周期
	CurrentCycle int `gorm:"column:current_cycle;not null;default:1;comment:当前周期"`
}

func (EqubGroup) TableName() string {
	return "equb_group"
}

// IsAdmin 判断 userId 是否为群管理员
func (g *EqubGroup) IsAdmin(userId string) bool {
	return userId != "" && g.AdminId == userId
}
