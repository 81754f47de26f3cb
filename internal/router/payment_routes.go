package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterPaymentRoutes 注册发起缴款路由（需要认证）
func (rt *Router) RegisterPaymentRoutes(rg *gin.RouterGroup) {
	paymentGroup := rg.Group("/payments")
	{
		paymentGroup.POST("/initialize/:groupId", rt.handlers.Payment.Initialize) // ?round= 可选
	}
}

// RegisterWebhookRoutes 支付网关回调，不走 JWT，依靠签名校验
func (rt *Router) RegisterWebhookRoutes(r *gin.Engine) {
	r.POST("/payments/webhook", rt.handlers.Payment.Webhook)
}
