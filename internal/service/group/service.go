// Package group 提供 equb 群组的创建、设置与查询
// 查询结果经 Redis 缓存，写操作后异步失效
package group

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"equb_server/internal/dao/mysql/repository"
	myredis "equb_server/internal/dao/redis"
	"equb_server/internal/dto/request"
	"equb_server/internal/dto/respond"
	"equb_server/internal/infrastructure/logger"
	"equb_server/internal/model"
	"equb_server/pkg/constants"
	"equb_server/pkg/enum/member/member_status_enum"
	"equb_server/pkg/errorx"
	"equb_server/pkg/util/random"
)

// groupInfoService 群组业务逻辑实现
// 通过构造函数注入 Repository 和 Cache 依赖
type groupInfoService struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService
}

// NewGroupService 构造函数，注入所有依赖
func NewGroupService(repos *repository.Repositories, cacheService myredis.AsyncCacheService) *groupInfoService {
	return &groupInfoService{
		repos: repos,
		cache: cacheService,
	}
}

// parseAmount 每轮金额必须为正数，最多两位小数
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !amount.IsPositive() || amount.Exponent() < -2 {
		return decimal.Zero, errorx.New(errorx.CodeInvalidParam, "amount 必须为正数且最多两位小数")
	}
	return amount, nil
}

// CreateGroup 创建 equb 群，创建者自动成为已批准成员
func (g *groupInfoService) CreateGroup(ctx context.Context, adminId string, req request.CreateGroupRequest) (*respond.GroupRespond, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	group := model.EqubGroup{
		Uuid:         random.NewUuid('G'),
		Title:        strings.TrimSpace(req.Title),
		Amount:       amount,
		Frequency:    req.Frequency,
		MaxMembers:   req.MaxMembers,
		AdminId:      adminId,
		IsActive:     true,
		CurrentRound: 1,
		CurrentCycle: 1,
	}

	err = g.repos.Transaction(ctx, func(txRepos *repository.Repositories) error {
		if err := txRepos.Group.Create(ctx, &group); err != nil {
			return err
		}
		return txRepos.Member.Create(ctx, &model.EqubMember{
			Uuid:      random.NewUuid('M'),
			GroupUuid: group.Uuid,
			UserUuid:  adminId,
			Status:    member_status_enum.APPROVED,
		})
	})
	if err != nil {
		zap.L().Error("创建群组失败", logger.Op("create_group", group.Uuid, 0, zap.Error(err))...)
		return nil, errorx.ErrServerBusy
	}

	InvalidateGroup(g.cache, group.Uuid, adminId)

	rsp := respond.NewGroupRespond(&group)
	return &rsp, nil
}

// UpdateSettings 修改群名称或启用状态，仅管理员可操作
func (g *groupInfoService) UpdateSettings(ctx context.Context, adminId, groupId string, req request.UpdateSettingsRequest) (*respond.GroupRespond, error) {
	group, err := g.repos.Group.FindByUuid(ctx, groupId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "群组不存在")
		}
		zap.L().Error("查询群组失败", logger.Op("update_settings", groupId, 0, zap.Error(err))...)
		return nil, errorx.ErrServerBusy
	}
	if !group.IsAdmin(adminId) {
		return nil, errorx.New(errorx.CodeForbidden, "只有群管理员可以修改设置")
	}

	fields := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, errorx.New(errorx.CodeInvalidParam, "title 不能为空")
		}
		fields["title"] = title
		group.Title = title
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
		group.IsActive = *req.IsActive
	}
	if len(fields) > 0 {
		if err := g.repos.Group.UpdateFields(ctx, groupId, fields); err != nil {
			zap.L().Error("更新群设置失败", logger.Op("update_settings", groupId, 0, zap.Error(err))...)
			return nil, errorx.ErrServerBusy
		}
		InvalidateGroup(g.cache, groupId)
	}

	rsp := respond.NewGroupRespond(group)
	return &rsp, nil
}

// normalizePage 页码从 1 开始，每页条数限制在 [1, MAX_PAGE_SIZE]
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = constants.DEFAULT_PAGE_SIZE
	}
	if limit > constants.MAX_PAGE_SIZE {
		limit = constants.MAX_PAGE_SIZE
	}
	return page, limit
}

// ListActive 分页获取启用中的群组
func (g *groupInfoService) ListActive(ctx context.Context, page, limit int) (*respond.GroupListRespond, error) {
	page, limit = normalizePage(page, limit)
	cacheKey := fmt.Sprintf("%s_%d_%d", constants.ACTIVE_GROUP_LIST_KEY, page, limit)

	var cached respond.GroupListRespond
	if getCached(ctx, g.cache, cacheKey, &cached) {
		return &cached, nil
	}

	groups, total, err := g.repos.Group.ListActive(ctx, page, limit)
	if err != nil {
		zap.L().Error("查询群组列表失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	rsp := &respond.GroupListRespond{List: nonNil(groups), Total: total, Page: page, Limit: limit}
	setCachedAsync(g.cache, cacheKey, rsp, constants.GROUP_LIST_CACHE_TTL)
	return rsp, nil
}

// Search 按标题模糊搜索，关键字为空时等同于 ListActive
func (g *groupInfoService) Search(ctx context.Context, req request.SearchGroupRequest) (*respond.GroupListRespond, error) {
	keyword := strings.TrimSpace(req.Q)
	if keyword == "" {
		return g.ListActive(ctx, req.Page, req.Limit)
	}
	page, limit := normalizePage(req.Page, req.Limit)

	groups, total, err := g.repos.Group.Search(ctx, keyword, page, limit)
	if err != nil {
		zap.L().Error("搜索群组失败", zap.String("keyword", keyword), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &respond.GroupListRespond{List: nonNil(groups), Total: total, Page: page, Limit: limit}, nil
}

// MyGroups 我加入（含待审核）的群组
func (g *groupInfoService) MyGroups(ctx context.Context, userId string) ([]model.MyGroup, error) {
	cacheKey := constants.MY_GROUP_KEY_PREFIX + userId

	var cached []model.MyGroup
	if getCached(ctx, g.cache, cacheKey, &cached) {
		return cached, nil
	}

	groups, err := g.repos.Member.FindGroupsOfUser(ctx, userId)
	if err != nil {
		zap.L().Error("查询我的群组失败", zap.String("user_id", userId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if groups == nil {
		// 确保序列化后是 [] 而不是 null
		groups = make([]model.MyGroup, 0)
	}

	setCachedAsync(g.cache, cacheKey, groups, constants.GROUP_INFO_CACHE_TTL)
	return groups, nil
}

// GetDetail 群详情：基本信息、管理员姓名与成员列表
func (g *groupInfoService) GetDetail(ctx context.Context, groupId string) (*respond.GroupDetailRespond, error) {
	cacheKey := constants.GROUP_INFO_KEY_PREFIX + groupId

	var cached respond.GroupDetailRespond
	if getCached(ctx, g.cache, cacheKey, &cached) {
		return &cached, nil
	}

	group, err := g.repos.Group.FindByUuid(ctx, groupId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "群组不存在")
		}
		zap.L().Error("查询群组失败", logger.Op("group_detail", groupId, 0, zap.Error(err))...)
		return nil, errorx.ErrServerBusy
	}

	members, err := g.repos.Member.FindWithUser(ctx, groupId, "")
	if err != nil {
		zap.L().Error("查询群成员失败", logger.Op("group_detail", groupId, 0, zap.Error(err))...)
		return nil, errorx.ErrServerBusy
	}
	if members == nil {
		members = make([]model.MemberWithUser, 0)
	}

	var adminName string
	if admin, err := g.repos.User.FindByUuid(ctx, group.AdminId); err == nil {
		adminName = admin.Name
	} else if !errorx.IsNotFound(err) {
		zap.L().Error("查询群管理员失败", logger.Op("group_detail", groupId, 0, zap.Error(err))...)
		return nil, errorx.ErrServerBusy
	}

	rsp := &respond.GroupDetailRespond{
		GroupRespond: respond.NewGroupRespond(group),
		AdminName:    adminName,
		Members:      members,
		MemberCount:  len(members),
	}
	setCachedAsync(g.cache, cacheKey, rsp, constants.GROUP_INFO_CACHE_TTL)
	return rsp, nil
}

func nonNil(groups []model.GroupSummary) []model.GroupSummary {
	if groups == nil {
		return make([]model.GroupSummary, 0)
	}
	return groups
}
