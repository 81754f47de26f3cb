package request

// UpdateAccountRequest 设置放款收款账户
// 使用位置:
//   - internal/handler/user_handler.go: UpdateAccount
type UpdateAccountRequest struct {
	AccountName   string `json:"accountName" binding:"required,max=100"`
	AccountNumber string `json:"accountNumber" binding:"required,max=50"`
	BankCode      string `json:"bankCode" binding:"required,max=20"`
}
