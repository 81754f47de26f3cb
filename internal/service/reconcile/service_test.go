package reconcile

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"equb_server/internal/dao/mysql/repository"
	"equb_server/internal/infrastructure/mq"
	"equb_server/internal/model"
	"equb_server/internal/service/round"
	"equb_server/internal/testutil"
	"equb_server/pkg/enum/member/member_status_enum"
	"equb_server/pkg/enum/payment/payment_status_enum"
	"equb_server/pkg/errorx"
	"equb_server/pkg/signature"
)

const testSecret = "whsec-test"

type fixture struct {
	db     *gorm.DB
	repos  *repository.Repositories
	pub    *testutil.RecordingPublisher
	svc    *reconcileService
	admin  *model.UserInfo
	member *model.UserInfo
	group  *model.EqubGroup
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	repos := repository.NewRepositories(db)
	pub := &testutil.RecordingPublisher{}
	admin := testutil.CreateUser(t, repos, "Admin")
	member := testutil.CreateUser(t, repos, "M")
	g := testutil.CreateGroup(t, repos, admin, "100", 5)
	testutil.AddMember(t, repos, g, member, member_status_enum.APPROVED)
	return &fixture{
		db:     db,
		repos:  repos,
		pub:    pub,
		svc:    NewReconcileService(repos, pub, testSecret),
		admin:  admin,
		member: member,
		group:  g,
	}
}

func webhookBody(txRef, status string) []byte {
	return []byte(fmt.Sprintf(`{"tx_ref":%q,"status":%q,"amount":"100.00"}`, txRef, status))
}

func TestVerify(t *testing.T) {
	raw := webhookBody("tx-1", "success")
	assert.NoError(t, Verify(raw, signature.Sign(raw, testSecret), testSecret))

	err := Verify(raw, "", testSecret)
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	err = Verify(raw, signature.Sign(raw, "other"), testSecret)
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	tampered := webhookBody("tx-1", "failed")
	err = Verify(tampered, signature.Sign(raw, testSecret), testSecret)
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}

func TestApply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.AddPayment(t, f.repos, f.group, f.member, 1, payment_status_enum.PENDING)

	got, changed, err := f.svc.Apply(ctx, p.TxRef, payment_status_enum.OUTCOME_SUCCESS)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, payment_status_enum.COMPLETED, got.Status)
	assert.NotNil(t, got.PaidAt)

	// completed 为终态
	got, changed, err = f.svc.Apply(ctx, p.TxRef, payment_status_enum.OUTCOME_FAILURE)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, payment_status_enum.COMPLETED, got.Status)

	_, _, err = f.svc.Apply(ctx, "tx-unknown", payment_status_enum.OUTCOME_SUCCESS)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestApplyFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.AddPayment(t, f.repos, f.group, f.member, 1, payment_status_enum.PENDING)

	got, changed, err := f.svc.Apply(ctx, p.TxRef, payment_status_enum.OUTCOME_FAILURE)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, payment_status_enum.FAILED, got.Status)

	_, changed, err = f.svc.Apply(ctx, p.TxRef, payment_status_enum.OUTCOME_FAILURE)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestApplyKeepsOneCompletedPerMemberRound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := testutil.AddPayment(t, f.repos, f.group, f.member, 1, payment_status_enum.PENDING)
	second := testutil.AddPayment(t, f.repos, f.group, f.member, 1, payment_status_enum.PENDING)

	_, _, err := f.svc.Apply(ctx, first.TxRef, payment_status_enum.OUTCOME_SUCCESS)
	require.NoError(t, err)
	got, changed, err := f.svc.Apply(ctx, second.TxRef, payment_status_enum.OUTCOME_SUCCESS)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, payment_status_enum.FAILED, got.Status)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.AddPayment(t, f.repos, f.group, f.member, 1, payment_status_enum.PENDING)
	raw := webhookBody(p.TxRef, "success")

	err := f.svc.HandleWebhook(ctx, raw, "deadbeef")
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	stored, err := f.repos.Payment.FindByTxRef(ctx, p.TxRef)
	require.NoError(t, err)
	assert.Equal(t, payment_status_enum.PENDING, stored.Status)
}

func TestHandleWebhookRejectsMalformedPayload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, raw := range [][]byte{
		[]byte(`not json`),
		[]byte(`{"status":"success"}`),
		webhookBody("tx-1", "pending"),
	} {
		err := f.svc.HandleWebhook(ctx, raw, signature.Sign(raw, testSecret))
		assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err), string(raw))
	}

	raw := webhookBody("tx-unknown", "success")
	err := f.svc.HandleWebhook(ctx, raw, signature.Sign(raw, testSecret))
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestHandleWebhookPublishesRoundReadyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.AddPayment(t, f.repos, f.group, f.admin, 1, payment_status_enum.COMPLETED)
	p := testutil.AddPayment(t, f.repos, f.group, f.member, 1, payment_status_enum.PENDING)
	raw := webhookBody(p.TxRef, "success")
	sig := signature.Sign(raw, testSecret)

	require.NoError(t, f.svc.HandleWebhook(ctx, raw, sig))
	require.NoError(t, f.svc.HandleWebhook(ctx, raw, sig))
	require.NoError(t, f.svc.HandleWebhook(ctx, raw, sig))

	completed := f.pub.OfType(mq.EventContributionCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, f.member.Uuid, completed[0].UserId)
	assert.Equal(t, p.TxRef, completed[0].Ref)
	assert.Equal(t, "100.00", completed[0].Amount)

	ready := f.pub.OfType(mq.EventRoundReady)
	require.Len(t, ready, 1)
	assert.Equal(t, f.group.Uuid, ready[0].GroupId)
	assert.Equal(t, 1, ready[0].Round)

	fully, err := round.NewRoundService(f.repos).IsRoundFullyPaid(ctx, f.group.Uuid, 1)
	require.NoError(t, err)
	assert.True(t, fully)
}

func TestHandleWebhookConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.AddPayment(t, f.repos, f.group, f.member, 1, payment_status_enum.PENDING)
	raw := webhookBody(p.TxRef, "success")
	sig := signature.Sign(raw, testSecret)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.svc.HandleWebhook(ctx, raw, sig))
		}()
	}
	wg.Wait()

	assert.Len(t, f.pub.OfType(mq.EventContributionCompleted), 1)
	// 管理员尚未缴款
	assert.Empty(t, f.pub.OfType(mq.EventRoundReady))
}

func TestHandleWebhookFailureDoesNotPublish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.AddPayment(t, f.repos, f.group, f.member, 1, payment_status_enum.PENDING)
	raw := webhookBody(p.TxRef, "failed")

	require.NoError(t, f.svc.HandleWebhook(ctx, raw, signature.Sign(raw, testSecret)))
	assert.Empty(t, f.pub.OfType(mq.EventContributionCompleted))

	stored, err := f.repos.Payment.FindByTxRef(ctx, p.TxRef)
	require.NoError(t, err)
	assert.Equal(t, payment_status_enum.FAILED, stored.Status)
}
