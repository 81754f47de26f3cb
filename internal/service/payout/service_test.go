package payout

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equb_server/internal/dao/mysql/repository"
	"equb_server/internal/infrastructure/mq"
	"equb_server/internal/model"
	"equb_server/internal/testutil"
	"equb_server/pkg/enum/member/member_status_enum"
	"equb_server/pkg/enum/payout/payout_status_enum"
	"equb_server/pkg/errorx"
	"equb_server/pkg/util/random"
)

func TestPot(t *testing.T) {
	cases := []struct {
		amount   string
		approved int64
		fee      string
		want     string
	}{
		{"100", 3, "2", "294"},
		{"250.50", 7, "2", "1718.43"},
		{"33.33", 3, "2", "97.99"},
		{"100", 5, "0", "500"},
	}
	for _, c := range cases {
		got := Pot(decimal.RequireFromString(c.amount), c.approved, decimal.RequireFromString(c.fee))
		assert.True(t, got.Equal(decimal.RequireFromString(c.want)), "%s x %d: got %s", c.amount, c.approved, got)
	}
}

func TestNewPayoutServiceFallsBackToDefaultFee(t *testing.T) {
	for _, v := range []string{"", "abc", "-1", "100"} {
		svc := NewPayoutService(nil, nil, nil, v)
		assert.True(t, svc.feePercent.Equal(decimal.NewFromInt(2)), v)
	}
	svc := NewPayoutService(nil, nil, nil, "3.5")
	assert.True(t, svc.feePercent.Equal(decimal.RequireFromString("3.5")))
}

type fixture struct {
	repos  *repository.Repositories
	gw     *testutil.FakeGateway
	pub    *testutil.RecordingPublisher
	svc    *payoutService
	admin  *model.UserInfo
	winner *model.UserInfo
	group  *model.EqubGroup
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := testutil.NewRepos(t)
	gw := &testutil.FakeGateway{}
	pub := &testutil.RecordingPublisher{}
	admin := testutil.CreateUser(t, repos, "Admin")
	winner := testutil.CreateUser(t, repos, "Winner")
	other := testutil.CreateUser(t, repos, "Other")
	g := testutil.CreateGroup(t, repos, admin, "100", 5)
	testutil.AddMember(t, repos, g, winner, member_status_enum.APPROVED)
	testutil.AddMember(t, repos, g, other, member_status_enum.APPROVED)
	return &fixture{
		repos:  repos,
		gw:     gw,
		pub:    pub,
		svc:    NewPayoutService(repos, gw, pub, "2"),
		admin:  admin,
		winner: winner,
		group:  g,
	}
}

func (f *fixture) recordWin(t *testing.T, u *model.UserInfo, round, cycle int) {
	t.Helper()
	require.NoError(t, f.repos.Winner.Create(context.Background(), &model.EqubWinner{
		Uuid:        random.NewUuid('W'),
		GroupUuid:   f.group.Uuid,
		UserUuid:    u.Uuid,
		RoundNumber: round,
		Cycle:       cycle,
		DrawDate:    time.Now(),
	}))
}

func TestSettle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.recordWin(t, f.winner, 1, 1)

	res, err := f.svc.Settle(ctx, f.group.Uuid, f.winner.Uuid)
	require.NoError(t, err)
	assert.Equal(t, payout_status_enum.SUCCESS, res.Status)
	assert.Equal(t, 1, res.Round)
	assert.True(t, res.Amount.Equal(decimal.RequireFromString("294")))
	assert.True(t, strings.HasPrefix(res.TransferRef, "payout-"))

	require.Equal(t, 1, f.gw.TransferCount())
	assert.Equal(t, f.winner.AccountNumber, f.gw.Transfers[0].AccountNumber)
	assert.Equal(t, res.TransferRef, f.gw.Transfers[0].Reference)

	stored, err := f.repos.Payout.FindByUuid(ctx, res.PayoutId)
	require.NoError(t, err)
	assert.Equal(t, payout_status_enum.SUCCESS, stored.Status)
	assert.Len(t, f.pub.OfType(mq.EventPayoutSettled), 1)

	_, err = f.svc.Settle(ctx, f.group.Uuid, f.winner.Uuid)
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))
	assert.Equal(t, 1, f.gw.TransferCount())
}

func TestSettleNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Settle(ctx, "G-missing", f.winner.Uuid)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	_, err = f.svc.Settle(ctx, f.group.Uuid, "U-missing")
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	// 没有中签记录
	_, err = f.svc.Settle(ctx, f.group.Uuid, f.winner.Uuid)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	assert.Zero(t, f.gw.TransferCount())
}

func TestSettlePreviousCycleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.recordWin(t, f.winner, 1, 1)
	// 放款前已进入新周期
	require.NoError(t, f.repos.Group.UpdateFields(ctx, f.group.Uuid, map[string]any{"current_cycle": 2, "current_round": 4}))

	res, err := f.svc.Settle(ctx, f.group.Uuid, f.winner.Uuid)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Round)
	assert.Equal(t, 1, f.gw.TransferCount())

	// 新周期再次中签，只结算尚未放款的那一轮
	f.recordWin(t, f.winner, 5, 2)
	res, err = f.svc.Settle(ctx, f.group.Uuid, f.winner.Uuid)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Round)

	// 全部已放款
	_, err = f.svc.Settle(ctx, f.group.Uuid, f.winner.Uuid)
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))
	assert.Equal(t, 2, f.gw.TransferCount())
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))

	// "转" 占 3 字节，上限落在字符中间时整个丢弃
	assert.Equal(t, "a", truncate("a转账", 2))
	assert.Equal(t, "a转", truncate("a转账", 5))

	long := strings.Repeat("失败", 100)
	got := truncate(long, 255)
	assert.LessOrEqual(t, len(got), 255)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 255, len(got)) // 255 恰好是 3 的倍数
}

func TestSettleGatewayFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.recordWin(t, f.winner, 1, 1)
	f.gw.TransferErr = testutil.ErrGatewayDown

	_, err := f.svc.Settle(ctx, f.group.Uuid, f.winner.Uuid)
	assert.Equal(t, errorx.CodePayoutFailed, errorx.GetCode(err))
	assert.Equal(t, 1, f.gw.TransferCount())
	assert.Len(t, f.pub.OfType(mq.EventPayoutFailed), 1)

	stored, err := f.repos.Payout.FindByGroupAndRound(ctx, f.group.Uuid, 1)
	require.NoError(t, err)
	assert.Equal(t, payout_status_enum.FAILED, stored.Status)
	assert.Contains(t, stored.FailReason, "gateway unavailable")

	// 失败不自动重试，再次结算得到 Conflict
	f.gw.TransferErr = nil
	_, err = f.svc.Settle(ctx, f.group.Uuid, f.winner.Uuid)
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))
	assert.Equal(t, 1, f.gw.TransferCount())
}

func TestSettleRequiresPayoutAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.recordWin(t, f.winner, 1, 1)
	require.NoError(t, f.repos.User.UpdateAccount(ctx, f.winner.Uuid, "", "", ""))

	_, err := f.svc.Settle(ctx, f.group.Uuid, f.winner.Uuid)
	assert.Equal(t, errorx.CodePrecondition, errorx.GetCode(err))
	assert.Zero(t, f.gw.TransferCount())
}

func TestConcurrentSettleTransfersOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.recordWin(t, f.winner, 1, 1)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.Settle(ctx, f.group.Uuid, f.winner.Uuid)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, f.gw.TransferCount())
}

func TestSettleAsAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.recordWin(t, f.winner, 1, 1)

	_, err := f.svc.SettleAsAdmin(ctx, f.winner.Uuid, f.group.Uuid, f.winner.Uuid)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
	assert.Zero(t, f.gw.TransferCount())

	_, err = f.svc.SettleAsAdmin(ctx, f.admin.Uuid, f.group.Uuid, f.winner.Uuid)
	require.NoError(t, err)
}
