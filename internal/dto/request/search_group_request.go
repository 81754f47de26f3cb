package request

// SearchGroupRequest 群组搜索/分页查询参数
type SearchGroupRequest struct {
	Q     string `form:"q" binding:"max=100"`
	Page  int    `form:"page" binding:"omitempty,min=1"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}
