package draw

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"equb_server/internal/dao/mysql/repository"
	"equb_server/internal/infrastructure/mq"
	"equb_server/internal/model"
	"equb_server/internal/testutil"
	"equb_server/pkg/enum/member/member_status_enum"
	"equb_server/pkg/enum/payment/payment_status_enum"
	"equb_server/pkg/errorx"
)

type fixture struct {
	db    *gorm.DB
	repos *repository.Repositories
	pub   *testutil.RecordingPublisher
	svc   *drawService
	admin *model.UserInfo
	users []*model.UserInfo // 含管理员
	group *model.EqubGroup
}

// newFixture 群内共 n 名已批准成员（含管理员）
func newFixture(t *testing.T, n int) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	repos := repository.NewRepositories(db)
	pub := &testutil.RecordingPublisher{}
	admin := testutil.CreateUser(t, repos, "Admin")
	g := testutil.CreateGroup(t, repos, admin, "100", 10)
	users := []*model.UserInfo{admin}
	for i := 1; i < n; i++ {
		u := testutil.CreateUser(t, repos, "Member")
		testutil.AddMember(t, repos, g, u, member_status_enum.APPROVED)
		users = append(users, u)
	}
	return &fixture{
		db:    db,
		repos: repos,
		pub:   pub,
		svc:   NewDrawService(repos, testutil.NewMemoryCache(), pub),
		admin: admin,
		users: users,
		group: g,
	}
}

func (f *fixture) payRound(t *testing.T, round int) {
	t.Helper()
	testutil.PayAll(t, f.repos, f.group, round, f.users...)
}

func TestDraw(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	f.payRound(t, 1)

	res, err := f.svc.Draw(ctx, f.admin.Uuid, f.group.Uuid, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Round)
	assert.Equal(t, 1, res.Cycle)
	assert.Equal(t, 2, res.NextRound)

	m, err := f.repos.Member.FindByGroupAndUser(ctx, f.group.Uuid, res.WinnerId)
	require.NoError(t, err)
	assert.True(t, m.HasWon)
	assert.Equal(t, 2, testutil.ReloadGroup(t, f.repos, f.group.Uuid).CurrentRound)

	winners, err := f.svc.Winners(ctx, f.group.Uuid)
	require.NoError(t, err)
	require.Len(t, winners, 1)
	assert.Equal(t, res.WinnerId, winners[0].UserId)

	drawn := f.pub.OfType(mq.EventRoundDrawn)
	require.Len(t, drawn, 1)
	assert.Equal(t, res.WinnerId, drawn[0].UserId)
}

func TestDrawRejections(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	other := f.users[1]

	_, err := f.svc.Draw(ctx, f.admin.Uuid, "G-missing", 1)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	_, err = f.svc.Draw(ctx, other.Uuid, f.group.Uuid, 1)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	_, err = f.svc.Draw(ctx, f.admin.Uuid, f.group.Uuid, 2)
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	// 只缴了一半
	testutil.AddPayment(t, f.repos, f.group, f.admin, 1, payment_status_enum.COMPLETED)
	_, err = f.svc.Draw(ctx, f.admin.Uuid, f.group.Uuid, 1)
	assert.Equal(t, errorx.CodePrecondition, errorx.GetCode(err))

	testutil.AddPayment(t, f.repos, f.group, other, 1, payment_status_enum.COMPLETED)
	require.NoError(t, f.repos.Group.UpdateFields(ctx, f.group.Uuid, map[string]any{"is_active": false}))
	_, err = f.svc.Draw(ctx, f.admin.Uuid, f.group.Uuid, 1)
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	winners, err := f.svc.Winners(ctx, f.group.Uuid)
	require.NoError(t, err)
	assert.Empty(t, winners)
}

func TestDrawTwiceReportsConflict(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	f.payRound(t, 1)

	_, err := f.svc.Draw(ctx, f.admin.Uuid, f.group.Uuid, 1)
	require.NoError(t, err)
	_, err = f.svc.Draw(ctx, f.admin.Uuid, f.group.Uuid, 1)
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))
}

func TestNewApprovedMemberBlocksDraw(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	f.payRound(t, 1)

	late := testutil.CreateUser(t, f.repos, "Late")
	testutil.AddMember(t, f.repos, f.group, late, member_status_enum.APPROVED)
	_, err := f.svc.Draw(ctx, f.admin.Uuid, f.group.Uuid, 1)
	assert.Equal(t, errorx.CodePrecondition, errorx.GetCode(err))
}

func TestConcurrentDrawProducesOneWinner(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	f.payRound(t, 1)

	const n = 6
	results := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.svc.Draw(ctx, f.admin.Uuid, f.group.Uuid, 1)
			errs[i] = err
			if err == nil {
				results[i] = res.WinnerId
			}
		}(i)
	}
	wg.Wait()

	ok := 0
	for i := range errs {
		if errs[i] == nil {
			ok++
		} else {
			assert.Equal(t, errorx.CodeConflict, errorx.GetCode(errs[i]))
		}
	}
	assert.Equal(t, 1, ok)

	winners, err := f.svc.Winners(ctx, f.group.Uuid)
	require.NoError(t, err)
	assert.Len(t, winners, 1)
	won, err := f.repos.Member.CountApprovedNotWon(ctx, f.group.Uuid, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), won)
}

func TestFullCycleAndNewCycle(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	seen := map[string]bool{}
	for round := 1; round <= 3; round++ {
		f.payRound(t, round)
		res, err := f.svc.Draw(ctx, f.admin.Uuid, f.group.Uuid, round)
		require.NoError(t, err)
		assert.False(t, seen[res.WinnerId], "user won twice in one cycle")
		seen[res.WinnerId] = true
	}
	assert.Len(t, seen, 3)

	// 所有人都已中签
	f.payRound(t, 4)
	_, err := f.svc.Draw(ctx, f.admin.Uuid, f.group.Uuid, 4)
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))

	_, err = f.svc.StartNewCycle(ctx, f.users[1].Uuid, f.group.Uuid)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	cycle, err := f.svc.StartNewCycle(ctx, f.admin.Uuid, f.group.Uuid)
	require.NoError(t, err)
	assert.Equal(t, 2, cycle.Cycle)
	assert.Equal(t, int64(3), cycle.Members)

	res, err := f.svc.Draw(ctx, f.admin.Uuid, f.group.Uuid, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Cycle)

	winners, err := f.svc.Winners(ctx, f.group.Uuid)
	require.NoError(t, err)
	require.Len(t, winners, 4)
	assert.Equal(t, 4, winners[3].Round)
	assert.Equal(t, 2, winners[3].Cycle)
}

func TestStartNewCycleRequiresEveryoneToHaveWon(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	f.payRound(t, 1)
	_, err := f.svc.Draw(ctx, f.admin.Uuid, f.group.Uuid, 1)
	require.NoError(t, err)

	_, err = f.svc.StartNewCycle(ctx, f.admin.Uuid, f.group.Uuid)
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))
	assert.Equal(t, 1, testutil.ReloadGroup(t, f.repos, f.group.Uuid).CurrentCycle)

	_, err = f.svc.StartNewCycle(ctx, f.admin.Uuid, "G-missing")
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestDrawIsRoughlyUniform(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}
	counts := map[int]int{}
	const trials = 60
	for i := 0; i < trials; i++ {
		idx := pickIndex(t, 3)
		counts[idx]++
	}
	for idx := 0; idx < 3; idx++ {
		assert.Greater(t, counts[idx], 0, "index %d never drawn", idx)
	}
}

// pickIndex 在新群组上开一次奖，返回中签者在成员列表中的位置
func pickIndex(t *testing.T, n int) int {
	t.Helper()
	f := newFixture(t, n)
	f.payRound(t, 1)
	res, err := f.svc.Draw(context.Background(), f.admin.Uuid, f.group.Uuid, 1)
	require.NoError(t, err)
	for i, u := range f.users {
		if u.Uuid == res.WinnerId {
			return i
		}
	}
	t.Fatalf("winner %s not in group", res.WinnerId)
	return -1
}
