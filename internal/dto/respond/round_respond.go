package respond

import (
	"time"

	"github.com/shopspring/decimal"

	"equb_server/internal/model"
)

// RoundStatusRespond 某轮缴款情况
type RoundStatusRespond struct {
	GroupId   string                   `json:"groupId"`
	Round     int                      `json:"round"`
	FullyPaid bool                     `json:"fullyPaid"`
	Members   []model.MemberPaidStatus `json:"members"`
}

// CheckoutRespond 发起缴款响应
type CheckoutRespond struct {
	TxRef       string          `json:"txRef"`
	Round       int             `json:"round"`
	Amount      decimal.Decimal `json:"amount"`
	CheckoutURL string          `json:"checkoutUrl"`
}

// DrawRespond 开奖结果
type DrawRespond struct {
	GroupId   string    `json:"groupId"`
	Round     int       `json:"round"`
	Cycle     int       `json:"cycle"`
	WinnerId  string    `json:"winnerId"`
	NextRound int       `json:"nextRound"`
	DrawDate  time.Time `json:"drawDate"`
}

// CycleRespond 新周期
type CycleRespond struct {
	GroupId string `json:"groupId"`
	Cycle   int    `json:"cycle"`
	Members int64  `json:"members"`
}

// WinnerRespond 开奖历史条目
type WinnerRespond struct {
	UserId   string    `json:"userId"`
	Round    int       `json:"round"`
	Cycle    int       `json:"cycle"`
	DrawDate time.Time `json:"drawDate"`
}

// PayoutRespond 放款结果
type PayoutRespond struct {
	PayoutId    string          `json:"payoutId"`
	GroupId     string          `json:"groupId"`
	WinnerId    string          `json:"winnerId"`
	Round       int             `json:"round"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	TransferRef string          `json:"transferRef"`
}
