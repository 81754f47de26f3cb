// Package handler 提供 HTTP 请求处理器
// 本文件处理缴款情况查询、开奖、新周期与放款
package handler

import (
	"equb_server/internal/service"

	"github.com/gin-gonic/gin"
)

// RotationHandler 轮转相关请求处理器
type RotationHandler struct {
	roundSvc  service.RoundService
	drawSvc   service.DrawService
	payoutSvc service.PayoutService
}

// NewRotationHandler 创建轮转处理器实例
func NewRotationHandler(roundSvc service.RoundService, drawSvc service.DrawService, payoutSvc service.PayoutService) *RotationHandler {
	return &RotationHandler{roundSvc: roundSvc, drawSvc: drawSvc, payoutSvc: payoutSvc}
}

// RoundStatus 某轮每位成员的缴款情况
// GET /equb/:groupId/status/:round
func (h *RotationHandler) RoundStatus(c *gin.Context) {
	round, err := roundParam(c.Param("round"))
	if err != nil {
		HandleError(c, err)
		return
	}

	data, err := h.roundSvc.RoundStatus(c.Request.Context(), c.Param("groupId"), round)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Draw 开奖（管理员）
// POST /equb/:groupId/draw/:round
func (h *RotationHandler) Draw(c *gin.Context) {
	round, err := roundParam(c.Param("round"))
	if err != nil {
		HandleError(c, err)
		return
	}

	data, err := h.drawSvc.Draw(c.Request.Context(), currentUserID(c), c.Param("groupId"), round)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// NewCycle 开始新周期（管理员）
// POST /equb/:groupId/new-cycle
func (h *RotationHandler) NewCycle(c *gin.Context) {
	data, err := h.drawSvc.StartNewCycle(c.Request.Context(), currentUserID(c), c.Param("groupId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Winners 开奖历史
// GET /equb/:groupId/winners
func (h *RotationHandler) Winners(c *gin.Context) {
	data, err := h.drawSvc.Winners(c.Request.Context(), c.Param("groupId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Payout 为中签者放款（管理员）
// POST /equb/:groupId/payout/:userId
// 失败返回 502，放款记录保留为 failed 等待人工处理
func (h *RotationHandler) Payout(c *gin.Context) {
	data, err := h.payoutSvc.SettleAsAdmin(c.Request.Context(), currentUserID(c), c.Param("groupId"), c.Param("userId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
