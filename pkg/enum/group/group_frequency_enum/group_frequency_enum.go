// Package group_frequency_enum 定义 equb 缴款频率
package group_frequency_enum

const (
	DAILY   = "daily"
	WEEKLY  = "weekly"
	MONTHLY = "monthly"
)
