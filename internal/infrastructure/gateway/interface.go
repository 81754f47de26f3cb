// Package gateway 提供支付网关客户端（Chapa 兼容）
// Service 层依赖 PaymentGateway 接口，不关心具体实现
package gateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// PaymentGateway 支付网关接口
type PaymentGateway interface {
	// Initialize 创建收款会话，返回付款跳转链接
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error)
	// Transfer 向中签者账户发起转账
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
}

// InitializeRequest 收款请求
type InitializeRequest struct {
	TxRef     string
	Amount    decimal.Decimal
	Email     string
	FirstName string
	Title     string
}

// InitializeResult 收款会话
type InitializeResult struct {
	CheckoutURL string `json:"checkoutUrl"`
}

// TransferRequest 放款请求
type TransferRequest struct {
	Reference     string
	Amount        decimal.Decimal
	AccountName   string
	AccountNumber string
	BankCode      string
}

// TransferResult 放款结果
type TransferResult struct {
	Reference string `json:"reference"`
	Message   string `json:"message"`
}

var (
	_ PaymentGateway = (*chapaClient)(nil)
	_ PaymentGateway = (*localGateway)(nil)
)
