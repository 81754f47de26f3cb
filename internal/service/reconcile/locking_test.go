package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"equb_server/internal/testutil"
	"equb_server/pkg/enum/payment/payment_status_enum"
	"equb_server/pkg/errorx"
)

// recordQueries 记录每条查询的表名，加行锁的查询带 ":lock" 后缀
func recordQueries(t *testing.T, db *gorm.DB) *[]string {
	t.Helper()
	var seen []string
	name := "test:" + t.Name()
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register(name, func(tx *gorm.DB) {
		entry := tx.Statement.Table
		if _, ok := tx.Statement.Clauses["FOR"]; ok {
			entry += ":lock"
		}
		seen = append(seen, entry)
	}))
	t.Cleanup(func() { _ = db.Callback().Query().Remove(name) })
	return &seen
}

// 同成员同轮的多条 tx_ref 并发成功时，必须先持有群组行锁再检查兄弟记录
func TestApplyLocksGroupBeforeSiblingCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.AddPayment(t, f.repos, f.group, f.member, 1, payment_status_enum.PENDING)
	p := testutil.AddPayment(t, f.repos, f.group, f.member, 1, payment_status_enum.PENDING)

	seen := recordQueries(t, f.db)
	_, changed, err := f.svc.Apply(ctx, p.TxRef, payment_status_enum.OUTCOME_SUCCESS)
	require.NoError(t, err)
	assert.True(t, changed)

	require.GreaterOrEqual(t, len(*seen), 4)
	assert.Equal(t, []string{"round_payment", "equb_group:lock", "round_payment:lock", "round_payment"}, (*seen)[:4])
}

func TestApplyUnknownTxRefTakesNoLocks(t *testing.T) {
	f := newFixture(t)
	seen := recordQueries(t, f.db)

	_, _, err := f.svc.Apply(context.Background(), "tx-missing", payment_status_enum.OUTCOME_SUCCESS)
	require.Error(t, err)
	for _, q := range *seen {
		assert.NotContains(t, q, ":lock")
	}
}

func TestApplyStorageFailureLogsGroupAndRound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.AddPayment(t, f.repos, f.group, f.member, 3, payment_status_enum.PENDING)

	core, logs := observer.New(zapcore.ErrorLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	name := "test:" + t.Name()
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == "round_payment" {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))
	t.Cleanup(func() { _ = f.db.Callback().Update().Remove(name) })

	_, _, err := f.svc.Apply(ctx, p.TxRef, payment_status_enum.OUTCOME_SUCCESS)
	assert.Equal(t, errorx.CodeServerBusy, errorx.GetCode(err))
	assert.NotContains(t, err.Error(), "disk full")

	entries := logs.FilterField(zap.String("op", "apply")).All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, f.group.Uuid, fields["group_id"])
	assert.EqualValues(t, 3, fields["round"])
	assert.Equal(t, p.TxRef, fields["tx_ref"])
}
