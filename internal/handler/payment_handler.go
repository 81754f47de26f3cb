// Package handler 提供 HTTP 请求处理器
// 本文件处理发起缴款与支付网关回调
package handler

import (
	"io"
	"net/http"

	"equb_server/internal/service"
	"equb_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBody 回调报文上限
const maxWebhookBody = 64 << 10

// PaymentHandler 支付请求处理器
type PaymentHandler struct {
	paymentSvc service.PaymentService
}

// NewPaymentHandler 创建支付处理器实例
func NewPaymentHandler(paymentSvc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// Initialize 发起本轮缴款，返回网关付款链接
// POST /payments/initialize/:groupId?round=
func (h *PaymentHandler) Initialize(c *gin.Context) {
	round, err := roundParam(c.Query("round"))
	if err != nil {
		HandleError(c, err)
		return
	}

	data, err := h.paymentSvc.Checkout(c.Request.Context(), currentUserID(c), c.Param("groupId"), round)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Webhook 支付网关回调
// POST /payments/webhook
// 签名基于原始报文计算，必须在解析前读取完整 body
// 未知 tx_ref 仍返回 200，避免网关无限重投
func (h *PaymentHandler) Webhook(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		HandleError(c, errorx.Wrap(err, errorx.CodeInvalidParam, "读取回调报文失败"))
		return
	}

	sig := c.GetHeader("Chapa-Signature")
	if sig == "" {
		sig = c.GetHeader("x-chapa-signature")
	}

	err = h.paymentSvc.HandleWebhook(c.Request.Context(), raw, sig)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"code": errorx.CodeSuccess, "msg": "ok"})
	case errorx.IsNotFound(err):
		zap.L().Warn("webhook for unknown tx_ref acknowledged", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"code": errorx.CodeSuccess, "msg": "ignored"})
	default:
		HandleError(c, err)
	}
}
