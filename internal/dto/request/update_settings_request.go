package request

// UpdateSettingsRequest 群设置，字段为空表示不修改
type UpdateSettingsRequest struct {
	Title    *string `json:"title" binding:"omitempty,min=1,max=100"`
	IsActive *bool   `json:"isActive"`
}
