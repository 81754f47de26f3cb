// Package payout_status_enum 定义放款记录状态
package payout_status_enum

const (
	PENDING = "pending" // 已创建，转账请求进行中
	SUCCESS = "success" // 网关受理成功
	FAILED  = "failed"  // 转账失败，需要人工介入
)
