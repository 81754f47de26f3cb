package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoundPayment 每轮缴款记录
// tx_ref 是发起缴款时生成的幂等键，网关回调据此定位记录
// 只有对账模块可以修改状态，completed 之后不可变
type RoundPayment struct {
	ID          uint            `gorm:"primarykey"`
	Uuid        string          `gorm:"column:uuid;uniqueIndex;type:char(20);not null"`
	MemberUuid  string          `gorm:"column:member_uuid;type:char(20);not null;index:idx_payment_member_round,priority:1"`
	GroupUuid   string          `gorm:"column:group_uuid;type:char(20);not null;index:idx_payment_group_round,priority:1"`
	RoundNumber int             `gorm:"column:round_number;not null;index:idx_payment_group_round,priority:2;index:idx_payment_member_round,priority:2"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(10,2);not null"`
	Status      string          `gorm:"column:status;type:varchar(10);not null;default:pending;comment:pending/completed/failed"`
	TxRef       string          `gorm:"column:tx_ref;uniqueIndex;type:varchar(64);not null;comment:网关交易流水号"`
	PaidAt      *time.Time      `gorm:"column:paid_at;comment:到账时间"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (RoundPayment) TableName() string {
	return "round_payment"
}
