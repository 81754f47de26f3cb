package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EqubPayout 放款记录
// 每轮最多一条；失败后不会自动重试，需要人工处理
type EqubPayout struct {
	ID          uint            `gorm:"primarykey"`
	Uuid        string          `gorm:"column:uuid;uniqueIndex;type:char(20);not null"`
	GroupUuid   string          `gorm:"column:group_uuid;type:char(20);not null;uniqueIndex:uk_payout_group_round,priority:1"`
	WinnerId    string          `gorm:"column:winner_id;type:char(20);not null;index;comment:中签用户uuid"`
	RoundNumber int             `gorm:"column:round_number;not null;uniqueIndex:uk_payout_group_round,priority:2"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(10,2);not null"`
	Status      string          `gorm:"column:status;type:varchar(10);not null;default:pending;comment:pending/success/failed"`
	TransferRef string          `gorm:"column:transfer_ref;uniqueIndex;type:varchar(64);not null"`
	FailReason  string          `gorm:"column:fail_reason;type:varchar(255)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (EqubPayout) TableName() string {
	return "equb_payout"
}
