package request

// CreateGroupRequest 创建 equb 群请求
// Amount 以字符串传入，避免浮点误差，在 Service 层解析为 decimal
type CreateGroupRequest struct {
	Title      string `json:"title" binding:"required,max=100"`
	Amount     string `json:"amount" binding:"required"`
	Frequency  string `json:"frequency" binding:"required,oneof=daily weekly monthly"`
	MaxMembers int    `json:"maxMembers" binding:"required,min=2,max=500"`
}
