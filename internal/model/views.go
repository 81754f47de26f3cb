package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// GroupSummary 群列表查询结果（含当前成员数）
type GroupSummary struct {
	Uuid           string          `json:"id"`
	Title          string          `json:"title"`
	Amount         decimal.Decimal `json:"amount"`
	Frequency      string          `json:"frequency"`
	MaxMembers     int             `json:"maxMembers"`
	IsActive       bool            `json:"isActive"`
	CurrentMembers int64           `json:"currentMembers"`
}

// MyGroup 我加入的群
type MyGroup struct {
	GroupUuid string          `json:"groupId"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	AdminId   string          `json:"-"`
	Status    string          `json:"status"`
	JoinedAt  time.Time       `json:"joinedAt"`
	IsAdmin   bool            `json:"isAdmin" gorm:"-"`
}

// MemberWithUser 成员及其用户资料
type MemberWithUser struct {
	UserUuid string    `json:"userId"`
	Name     string    `json:"name"`
	Status   string    `json:"status"`
	HasWon   bool      `json:"hasWon"`
	JoinedAt time.Time `json:"joinedAt"`
}

// MemberPaidStatus 某轮每位成员的缴款情况
type MemberPaidStatus struct {
	UserUuid string `json:"userId"`
	Name     string `json:"userName"`
	HasPaid  bool   `json:"hasPaid"`
}
