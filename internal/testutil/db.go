// Package testutil 提供 Service 层测试使用的内存数据库、夹具与替身实现
package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"equb_server/internal/dao/mysql"
	"equb_server/internal/dao/mysql/repository"
	"equb_server/internal/model"
	"equb_server/pkg/enum/group/group_frequency_enum"
	"equb_server/pkg/enum/member/member_status_enum"
	"equb_server/pkg/enum/payment/payment_status_enum"
	"equb_server/pkg/util/random"
	"equb_server/pkg/util/snowflake"
)

// NewDB 为每个测试打开独立的内存 SQLite，并执行与生产一致的 AutoMigrate
// 只保留一个连接：并发事务在连接池上排队，效果等同于行锁串行化
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), mysql.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, mysql.Migrate(db))
	return db
}

// NewRepos 返回基于内存数据库的 Repository 聚合
func NewRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	return repository.NewRepositories(NewDB(t))
}

// CreateUser 写入一个带收款账户的用户
func CreateUser(t *testing.T, repos *repository.Repositories, name string) *model.UserInfo {
	t.Helper()
	u := &model.UserInfo{
		Uuid:          random.NewUuid('U'),
		Name:          name,
		Email:         strings.ToLower(name) + "-" + random.GetNowAndLenRandomString(4) + "@example.com",
		Password:      "not-a-real-hash",
		AccountName:   name,
		AccountNumber: "1000" + random.GetNowAndLenRandomString(2),
		BankCode:      "656",
	}
	require.NoError(t, repos.User.Create(context.Background(), u))
	return u
}

// CreateGroup 创建启用中的群组，并把管理员加入为已批准成员
func CreateGroup(t *testing.T, repos *repository.Repositories, admin *model.UserInfo, amount string, maxMembers int) *model.EqubGroup {
	t.Helper()
	g := &model.EqubGroup{
		Uuid:         random.NewUuid('G'),
		Title:        "Test Equb " + admin.Name,
		Amount:       decimal.RequireFromString(amount),
		Frequency:    group_frequency_enum.MONTHLY,
		MaxMembers:   maxMembers,
		AdminId:      admin.Uuid,
		IsActive:     true,
		CurrentRound: 1,
		CurrentCycle: 1,
	}
	require.NoError(t, repos.Group.Create(context.Background(), g))
	AddMember(t, repos, g, admin, member_status_enum.APPROVED)
	return g
}

// AddMember 直接写入指定状态的成员记录
func AddMember(t *testing.T, repos *repository.Repositories, g *model.EqubGroup, u *model.UserInfo, status string) *model.EqubMember {
	t.Helper()
	m := &model.EqubMember{
		Uuid:      random.NewUuid('M'),
		GroupUuid: g.Uuid,
		UserUuid:  u.Uuid,
		Status:    status,
	}
	require.NoError(t, repos.Member.Create(context.Background(), m))
	return m
}

// AddPayment 直接写入一条指定状态的缴款记录
func AddPayment(t *testing.T, repos *repository.Repositories, g *model.EqubGroup, u *model.UserInfo, round int, status string) *model.RoundPayment {
	t.Helper()
	p := &model.RoundPayment{
		Uuid:        random.NewUuid('P'),
		MemberUuid:  u.Uuid,
		GroupUuid:   g.Uuid,
		RoundNumber: round,
		Amount:      g.Amount,
		Status:      status,
		TxRef:       snowflake.TxRef(),
	}
	if status == payment_status_enum.COMPLETED {
		now := time.Now()
		p.PaidAt = &now
	}
	require.NoError(t, repos.Payment.Create(context.Background(), p))
	return p
}

// PayAll 为群内所有已批准成员写入该轮的已完成缴款
func PayAll(t *testing.T, repos *repository.Repositories, g *model.EqubGroup, round int, users ...*model.UserInfo) {
	t.Helper()
	for _, u := range users {
		AddPayment(t, repos, g, u, round, payment_status_enum.COMPLETED)
	}
}

// ReloadGroup 重新读取群组
func ReloadGroup(t *testing.T, repos *repository.Repositories, groupId string) *model.EqubGroup {
	t.Helper()
	g, err := repos.Group.FindByUuid(context.Background(), groupId)
	require.NoError(t, err)
	return g
}
