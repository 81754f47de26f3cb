package respond

import (
	"time"

	"github.com/shopspring/decimal"

	"equb_server/internal/model"
)

// GroupRespond 群组基本信息
type GroupRespond struct {
	Id           string          `json:"id"`
	Title        string          `json:"title"`
	Amount       decimal.Decimal `json:"amount"`
	Frequency    string          `json:"frequency"`
	MaxMembers   int             `json:"maxMembers"`
	AdminId      string          `json:"adminId"`
	IsActive     bool            `json:"isActive"`
	CurrentRound int             `json:"currentRound"`
	CurrentCycle int             `json:"currentCycle"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// NewGroupRespond 由模型构造响应
func NewGroupRespond(g *model.EqubGroup) GroupRespond {
	return GroupRespond{
		Id:           g.Uuid,
		Title:        g.Title,
		Amount:       g.Amount,
		Frequency:    g.Frequency,
		MaxMembers:   g.MaxMembers,
		AdminId:      g.AdminId,
		IsActive:     g.IsActive,
		CurrentRound: g.CurrentRound,
		CurrentCycle: g.CurrentCycle,
		CreatedAt:    g.CreatedAt,
	}
}

// GroupListRespond 分页列表
type GroupListRespond struct {
	List  []model.GroupSummary `json:"list"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// GroupDetailRespond 群详情，含管理员姓名和成员列表
type GroupDetailRespond struct {
	GroupRespond
	AdminName   string                 `json:"adminName"`
	Members     []model.MemberWithUser `json:"members"`
	MemberCount int                    `json:"memberCount"`
}
