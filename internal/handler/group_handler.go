// Package handler 提供 HTTP 请求处理器
// 本文件处理 equb 群组的创建、设置与查询
package handler

import (
	"equb_server/internal/dto/request"
	"equb_server/internal/service"

	"github.com/gin-gonic/gin"
)

// GroupHandler 群组请求处理器
type GroupHandler struct {
	groupSvc service.GroupService
}

// NewGroupHandler 创建群组处理器实例
func NewGroupHandler(groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// CreateGroup 创建 equb 群，创建者成为管理员和第一位成员
// POST /equb/create
// 请求体: request.CreateGroupRequest
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req request.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	data, err := h.groupSvc.CreateGroup(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// List 分页获取启用中的群组
// GET /equb/list?page=&limit=
func (h *GroupHandler) List(c *gin.Context) {
	var req request.SearchGroupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	data, err := h.groupSvc.ListActive(c.Request.Context(), req.Page, req.Limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Search 按标题搜索群组
// GET /equb/search?q=&page=&limit=
func (h *GroupHandler) Search(c *gin.Context) {
	var req request.SearchGroupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	data, err := h.groupSvc.Search(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// MyGroups 当前用户加入或申请中的群组
// GET /equb/my-groups
func (h *GroupHandler) MyGroups(c *gin.Context) {
	data, err := h.groupSvc.MyGroups(c.Request.Context(), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Detail 群详情
// GET /equb/:groupId/detail
func (h *GroupHandler) Detail(c *gin.Context) {
	data, err := h.groupSvc.GetDetail(c.Request.Context(), c.Param("groupId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateSettings 修改群标题或启用状态（管理员）
// PUT /equb/:groupId/settings
func (h *GroupHandler) UpdateSettings(c *gin.Context) {
	var req request.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	data, err := h.groupSvc.UpdateSettings(c.Request.Context(), currentUserID(c), c.Param("groupId"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
