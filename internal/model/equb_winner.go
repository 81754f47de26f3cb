package model

import "time"

// EqubWinner 开奖历史，只追加
// (group_uuid, round_number) 唯一保证每轮最多一位中签者
// (group_uuid, user_uuid, cycle) 唯一保证一个周期内不重复中签
type EqubWinner struct {
	ID          uint      `gorm:"primarykey"`
	Uuid        string    `gorm:"column:uuid;uniqueIndex;type:char(20);not null"`
	GroupUuid   string    `gorm:"column:group_uuid;type:char(20);not null;uniqueIndex:uk_winner_group_round,priority:1;uniqueIndex:uk_winner_group_user_cycle,priority:1"`
	UserUuid    string    `gorm:"column:user_uuid;type:char(20);not null;uniqueIndex:uk_winner_group_user_cycle,priority:2"`
	RoundNumber int       `gorm:"column:round_number;not null;uniqueIndex:uk_winner_group_round,priority:2"`
	Cycle       int       `gorm:"column:cycle;not null;uniqueIndex:uk_winner_group_user_cycle,priority:3"`
	DrawDate    time.Time `gorm:"column:draw_date;autoCreateTime"`
}

func (EqubWinner) TableName() string {
	return "equb_winner"
}
