package repository

import (
	"context"

	"equb_server/internal/model"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.UserInfo) error
	FindByUuid(ctx context.Context, uuid string) (*model.UserInfo, error)
	FindByEmail(ctx context.Context, email string) (*model.UserInfo, error)
	// UpdateAccount 更新放款收款账户
	UpdateAccount(ctx context.Context, uuid, accountName, accountNumber, bankCode string) error
}

// GroupRepository 群组数据访问接口
type GroupRepository interface {
	Create(ctx context.Context, group *model.EqubGroup) error
	FindByUuid(ctx context.Context, uuid string) (*model.EqubGroup, error)
	// FindByUuidForUpdate 加行锁读取，仅在事务内使用
	FindByUuidForUpdate(ctx context.Context, uuid string) (*model.EqubGroup, error)
	// UpdateFields 按列更新；map 形式保证 false/0 也会写入
	UpdateFields(ctx context.Context, uuid string, fields map[string]any) error
	// AdvanceRound current_round 从 fromRound 推进到 fromRound+1，返回是否命中
	AdvanceRound(ctx context.Context, uuid string, fromRound int) (bool, error)
	// AdvanceCycle current_cycle 从 fromCycle 推进到 fromCycle+1，返回是否命中
	AdvanceCycle(ctx context.Context, uuid string, fromCycle int) (bool, error)
	// ListActive 分页获取启用中的群组（含成员数）
	ListActive(ctx context.Context, page, pageSize int) ([]model.GroupSummary, int64, error)
	// Search 按标题模糊搜索启用中的群组
	Search(ctx context.Context, keyword string, page, pageSize int) ([]model.GroupSummary, int64, error)
}

// MemberRepository 群成员数据访问接口
type MemberRepository interface {
	Create(ctx context.Context, member *model.EqubMember) error
	FindByGroupAndUser(ctx context.Context, groupUuid, userUuid string) (*model.EqubMember, error)
	FindByGroupAndUserForUpdate(ctx context.Context, groupUuid, userUuid string) (*model.EqubMember, error)
	// UpdateStatusIfPending 条件更新 status，仅当当前为 pending，返回影响行数
	UpdateStatusIfPending(ctx context.Context, groupUuid, userUuid, status string) (int64, error)
	// MarkWonIfNotWon 条件更新 has_won，仅当当前未中签，返回影响行数
	MarkWonIfNotWon(ctx context.Context, groupUuid, userUuid string) (int64, error)
	// ResetWon 新周期开始时清空所有已批准成员的中签标记
	ResetWon(ctx context.Context, groupUuid string) error
	Delete(ctx context.Context, groupUuid, userUuid string) (int64, error)
	CountByStatus(ctx context.Context, groupUuid, status string) (int64, error)
	// CountApprovedNotWon 本周期尚未中签的已批准成员数，以 cycle 的开奖记录为准
	CountApprovedNotWon(ctx context.Context, groupUuid string, cycle int) (int64, error)
	// FindEligible 本周期尚未中签的已批准成员
	FindEligible(ctx context.Context, groupUuid string, cycle int) ([]model.EqubMember, error)
	FindWithUser(ctx context.Context, groupUuid string, status string) ([]model.MemberWithUser, error)
	FindGroupsOfUser(ctx context.Context, userUuid string) ([]model.MyGroup, error)
}

// PaymentRepository 缴款记录数据访问接口
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.RoundPayment) error
	FindByTxRef(ctx context.Context, txRef string) (*model.RoundPayment, error)
	FindByTxRefForUpdate(ctx context.Context, txRef string) (*model.RoundPayment, error)
	// UpdateStatus 更新状态；paid 为 true 时同时写入 paid_at
	UpdateStatus(ctx context.Context, txRef, status string, paid bool) error
	// HasCompleted 成员在该轮是否已有 completed 记录（排除 exceptTxRef）
	HasCompleted(ctx context.Context, groupUuid, memberUuid string, round int, exceptTxRef string) (bool, error)
	// CountPaidApproved 该轮已完成缴款的不同已批准成员数
	CountPaidApproved(ctx context.Context, groupUuid string, round int) (int64, error)
	// FindRoundStatus 该轮每位已批准成员的缴款情况
	FindRoundStatus(ctx context.Context, groupUuid string, round int) ([]model.MemberPaidStatus, error)
}

// WinnerRepository 开奖历史数据访问接口
type WinnerRepository interface {
	Create(ctx context.Context, winner *model.EqubWinner) error
	ExistsForRound(ctx context.Context, groupUuid string, round int) (bool, error)
	FindByUserAndCycle(ctx context.Context, groupUuid, userUuid string, cycle int) (*model.EqubWinner, error)
	// FindLatestUnsettled 最近一次尚无放款记录的中签，上个周期未放款的中签也能找到
	FindLatestUnsettled(ctx context.Context, groupUuid, userUuid string) (*model.EqubWinner, error)
	FindLatestByUser(ctx context.Context, groupUuid, userUuid string) (*model.EqubWinner, error)
	FindByGroup(ctx context.Context, groupUuid string) ([]model.EqubWinner, error)
}

// PayoutRepository 放款记录数据访问接口
type PayoutRepository interface {
	Create(ctx context.Context, payout *model.EqubPayout) error
	// FindByGroupAndRound 查询某轮的放款记录，不存在时返回 NotFound
	FindByGroupAndRound(ctx context.Context, groupUuid string, round int) (*model.EqubPayout, error)
	UpdateResult(ctx context.Context, uuid, status, reason string) error
	FindByUuid(ctx context.Context, uuid string) (*model.EqubPayout, error)
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db      *gorm.DB
	User    UserRepository
	Group   GroupRepository
	Member  MemberRepository
	Payment PaymentRepository
	Winner  WinnerRepository
	Payout  PayoutRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:      db,
		User:    NewUserRepository(db),
		Group:   NewGroupRepository(db),
		Member:  NewMemberRepository(db),
		Payment: NewPaymentRepository(db),
		Winner:  NewWinnerRepository(db),
		Payout:  NewPayoutRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
func (r *Repositories) Transaction(ctx context.Context, fn func(txRepos *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
