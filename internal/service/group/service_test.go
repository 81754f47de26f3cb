package group

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equb_server/internal/dto/request"
	"equb_server/internal/testutil"
	"equb_server/pkg/constants"
	"equb_server/pkg/enum/member/member_status_enum"
	"equb_server/pkg/errorx"
)

func TestCreateGroupAddsAdminAsApprovedMember(t *testing.T) {
	repos := testutil.NewRepos(t)
	svc := NewGroupService(repos, testutil.NewMemoryCache())
	ctx := context.Background()
	admin := testutil.CreateUser(t, repos, "Admin")

	rsp, err := svc.CreateGroup(ctx, admin.Uuid, request.CreateGroupRequest{
		Title: "Office Equb", Amount: "500.00", Frequency: "monthly", MaxMembers: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rsp.CurrentRound)
	assert.Equal(t, admin.Uuid, rsp.AdminId)

	m, err := repos.Member.FindByGroupAndUser(ctx, rsp.Id, admin.Uuid)
	require.NoError(t, err)
	assert.Equal(t, member_status_enum.APPROVED, m.Status)
}

func TestCreateGroupRejectsBadAmount(t *testing.T) {
	repos := testutil.NewRepos(t)
	svc := NewGroupService(repos, testutil.NewMemoryCache())
	admin := testutil.CreateUser(t, repos, "Admin")

	for _, amount := range []string{"0", "-5", "abc", "10.001"} {
		_, err := svc.CreateGroup(context.Background(), admin.Uuid, request.CreateGroupRequest{
			Title: "x", Amount: amount, Frequency: "weekly", MaxMembers: 3,
		})
		assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err), amount)
	}
}

func TestUpdateSettingsAdminOnly(t *testing.T) {
	repos := testutil.NewRepos(t)
	cache := testutil.NewMemoryCache()
	svc := NewGroupService(repos, cache)
	ctx := context.Background()
	admin := testutil.CreateUser(t, repos, "Admin")
	other := testutil.CreateUser(t, repos, "Other")
	g := testutil.CreateGroup(t, repos, admin, "100", 5)

	off := false
	_, err := svc.UpdateSettings(ctx, other.Uuid, g.Uuid, request.UpdateSettingsRequest{IsActive: &off})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	_, err = svc.UpdateSettings(ctx, admin.Uuid, "G-missing", request.UpdateSettingsRequest{IsActive: &off})
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	// 先读一次详情写入缓存，修改后缓存应被清理
	_, err = svc.GetDetail(ctx, g.Uuid)
	require.NoError(t, err)
	require.True(t, cache.Has(constants.GROUP_INFO_KEY_PREFIX+g.Uuid))

	rsp, err := svc.UpdateSettings(ctx, admin.Uuid, g.Uuid, request.UpdateSettingsRequest{IsActive: &off})
	require.NoError(t, err)
	assert.False(t, rsp.IsActive)
	assert.False(t, cache.Has(constants.GROUP_INFO_KEY_PREFIX+g.Uuid))
	assert.False(t, testutil.ReloadGroup(t, repos, g.Uuid).IsActive)
}

func TestListAndSearchCountApprovedMembers(t *testing.T) {
	repos := testutil.NewRepos(t)
	svc := NewGroupService(repos, testutil.NewMemoryCache())
	ctx := context.Background()
	admin := testutil.CreateUser(t, repos, "Admin")
	u1 := testutil.CreateUser(t, repos, "U1")
	u2 := testutil.CreateUser(t, repos, "U2")

	g := testutil.CreateGroup(t, repos, admin, "100", 5)
	testutil.AddMember(t, repos, g, u1, member_status_enum.APPROVED)
	testutil.AddMember(t, repos, g, u2, member_status_enum.PENDING)

	inactive := testutil.CreateGroup(t, repos, u1, "50", 5)
	require.NoError(t, repos.Group.UpdateFields(ctx, inactive.Uuid, map[string]any{"is_active": false}))

	list, err := svc.ListActive(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, list.List, 1)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, g.Uuid, list.List[0].Uuid)
	assert.Equal(t, int64(2), list.List[0].CurrentMembers)

	found, err := svc.Search(ctx, request.SearchGroupRequest{Q: "test EQUB"})
	require.NoError(t, err)
	assert.Len(t, found.List, 1)

	none, err := svc.Search(ctx, request.SearchGroupRequest{Q: "nothing-like-this"})
	require.NoError(t, err)
	assert.Empty(t, none.List)
	assert.NotNil(t, none.List)
}

func TestMyGroupsMarksAdmin(t *testing.T) {
	repos := testutil.NewRepos(t)
	svc := NewGroupService(repos, testutil.NewMemoryCache())
	admin := testutil.CreateUser(t, repos, "Admin")
	member := testutil.CreateUser(t, repos, "Member")
	g := testutil.CreateGroup(t, repos, admin, "100", 5)
	testutil.AddMember(t, repos, g, member, member_status_enum.PENDING)

	mine, err := svc.MyGroups(context.Background(), admin.Uuid)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.True(t, mine[0].IsAdmin)

	theirs, err := svc.MyGroups(context.Background(), member.Uuid)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.False(t, theirs[0].IsAdmin)
	assert.Equal(t, member_status_enum.PENDING, theirs[0].Status)
}

func TestGetDetail(t *testing.T) {
	repos := testutil.NewRepos(t)
	svc := NewGroupService(repos, testutil.NewMemoryCache())
	admin := testutil.CreateUser(t, repos, "Admin")
	g := testutil.CreateGroup(t, repos, admin, "100", 5)

	d, err := svc.GetDetail(context.Background(), g.Uuid)
	require.NoError(t, err)
	assert.Equal(t, "Admin", d.AdminName)
	assert.Equal(t, 1, d.MemberCount)

	_, err = svc.GetDetail(context.Background(), "G-missing")
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}
