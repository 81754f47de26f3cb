// Package payment_status_enum 定义每轮缴款记录状态
package payment_status_enum

const (
	PENDING   = "pending"   // 已发起，等待网关回调
	COMPLETED = "completed" // 已到账，终态
	FAILED    = "failed"    // 支付失败
)

// 网关回调中的结果
const (
	OUTCOME_SUCCESS = "success"
	OUTCOME_FAILURE = "failed"
)
