package request

// ManageRequestRequest 管理员审批入群申请
type ManageRequestRequest struct {
	TargetUserId string `json:"targetUserId" binding:"required"`
	Action       string `json:"action" binding:"required"`
}
