// Package handler 提供 HTTP 请求处理器
// 本文件处理入群申请、审批与移除成员
package handler

import (
	"equb_server/internal/dto/request"
	"equb_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MemberHandler 成员关系请求处理器
type MemberHandler struct {
	memberSvc service.MembershipService
}

// NewMemberHandler 创建成员关系处理器实例
func NewMemberHandler(memberSvc service.MembershipService) *MemberHandler {
	return &MemberHandler{memberSvc: memberSvc}
}

// RequestJoin 申请入群
// POST /equb/:groupId/request-join
func (h *MemberHandler) RequestJoin(c *gin.Context) {
	if err := h.memberSvc.RequestJoin(c.Request.Context(), currentUserID(c), c.Param("groupId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// PendingRequests 待审核申请列表（管理员）
// GET /equb/:groupId/pending-requests
func (h *MemberHandler) PendingRequests(c *gin.Context) {
	data, err := h.memberSvc.PendingRequests(c.Request.Context(), currentUserID(c), c.Param("groupId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ManageRequest 审批入群申请（管理员）
// PATCH /equb/:groupId/manage-request
// 请求体: request.ManageRequestRequest，action 为 approved 或 rejected
func (h *MemberHandler) ManageRequest(c *gin.Context) {
	var req request.ManageRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	err := h.memberSvc.Decide(c.Request.Context(), currentUserID(c), c.Param("groupId"), req.TargetUserId, req.Action)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"userId": req.TargetUserId, "status": req.Action})
}

// Kick 移除成员（管理员）
// DELETE /equb/:groupId/members/:userId
func (h *MemberHandler) Kick(c *gin.Context) {
	if err := h.memberSvc.Kick(c.Request.Context(), currentUserID(c), c.Param("groupId"), c.Param("userId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
