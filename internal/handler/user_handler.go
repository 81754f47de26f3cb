// Package handler 提供 HTTP 请求处理器
// 本文件处理当前用户资料与收款账户
package handler

import (
	"equb_server/internal/dto/request"
	"equb_server/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户请求处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建用户处理器实例
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// Me 当前登录用户资料
// GET /user/me
func (h *UserHandler) Me(c *gin.Context) {
	data, err := h.userSvc.GetUserInfo(c.Request.Context(), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateAccount 设置放款收款账户
// PUT /user/account
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	var req request.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.userSvc.UpdateAccount(c.Request.Context(), currentUserID(c), req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
