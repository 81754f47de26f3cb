// Package member_status_enum 定义群成员审核状态
package member_status_enum

const (
	PENDING  = "pending"  // 待审核
	APPROVED = "approved" // 已通过
	REJECTED = "rejected" // 已拒绝
)

// IsDecision 是否为管理员可下达的审核结果
func IsDecision(status string) bool {
	return status == APPROVED || status == REJECTED
}
