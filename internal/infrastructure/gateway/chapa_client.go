package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"equb_server/internal/config"
	"equb_server/pkg/errorx"
)

// chapaClient 调用 Chapa REST 接口
// 每次调用同时受 ctx 超时和 http.Client.Timeout 约束
type chapaClient struct {
	baseURL     string
	secretKey   string
	callbackURL string
	returnURL   string
	currency    string
	timeout     time.Duration
	httpClient  *http.Client
}

// New 根据配置创建网关客户端
// 未配置密钥或使用占位密钥时退化为本地模拟实现，便于本机跑通流程
func New(conf *config.GatewayConfig) PaymentGateway {
	if shouldUseMock(conf) {
		zap.L().Warn("payment gateway: secretKey not configured, using local mock")
		return &localGateway{}
	}
	timeout := time.Duration(conf.TimeoutSeconds) * time.Second
	return &chapaClient{
		baseURL:     strings.TrimRight(conf.BaseURL, "/"),
		secretKey:   conf.SecretKey,
		callbackURL: conf.CallbackURL,
		returnURL:   conf.ReturnURL,
		currency:    conf.Currency,
		timeout:     timeout,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func shouldUseMock(conf *config.GatewayConfig) bool {
	key := strings.ToLower(strings.TrimSpace(conf.SecretKey))
	return key == "" || strings.Contains(key, "your secret") || conf.BaseURL == ""
}

// chapaResponse 网关统一响应
type chapaResponse struct {
	Message json.RawMessage `json:"message"`
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
}

func (r *chapaResponse) messageText() string {
	var s string
	if err := json.Unmarshal(r.Message, &s); err == nil {
		return s
	}
	return string(r.Message)
}

func (c *chapaClient) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	body := map[string]any{
		"amount":       req.Amount.StringFixed(2),
		"currency":     c.currency,
		"email":        req.Email,
		"first_name":   req.FirstName,
		"tx_ref":       req.TxRef,
		"callback_url": c.callbackURL,
		"return_url":   c.returnURL,
		"customization": map[string]string{
			"title": req.Title,
		},
	}

	resp, err := c.post(ctx, "/transaction/initialize", body)
	if err != nil {
		return nil, err
	}

	var data struct {
		CheckoutURL string `json:"checkout_url"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil || data.CheckoutURL == "" {
		return nil, errorx.Newf(errorx.CodeGatewayError, "gateway initialize: missing checkout_url for %s", req.TxRef)
	}
	return &InitializeResult{CheckoutURL: data.CheckoutURL}, nil
}

func (c *chapaClient) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	body := map[string]any{
		"account_name":   req.AccountName,
		"account_number": req.AccountNumber,
		"amount":         req.Amount.StringFixed(2),
		"currency":       c.currency,
		"bank_code":      req.BankCode,
		"reference":      req.Reference,
	}

	resp, err := c.post(ctx, "/transfers", body)
	if err != nil {
		return nil, err
	}
	return &TransferResult{Reference: req.Reference, Message: resp.messageText()}, nil
}

// post 发送 JSON 请求；非 2xx 或 status != success 都视为失败
func (c *chapaClient) post(ctx context.Context, path string, body any) (*chapaResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeGatewayError, "gateway encode request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeGatewayError, "gateway build request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeGatewayError, "gateway call %s", path)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeGatewayError, "gateway read %s", path)
	}

	var resp chapaResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeGatewayError, "gateway decode %s (http %d)", path, httpResp.StatusCode)
	}
	if httpResp.StatusCode/100 != 2 || resp.Status != "success" {
		return nil, errorx.Newf(errorx.CodeGatewayError, "gateway %s rejected (http %d): %s",
			path, httpResp.StatusCode, resp.messageText())
	}
	return &resp, nil
}

// localGateway 本地模拟网关，不发起任何网络请求
type localGateway struct{}

func (localGateway) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	zap.L().Info("【MockGateway】initialize", zap.String("tx_ref", req.TxRef), zap.String("amount", req.Amount.StringFixed(2)))
	return &InitializeResult{CheckoutURL: fmt.Sprintf("http://localhost/mock-checkout/%s", req.TxRef)}, nil
}

func (localGateway) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	zap.L().Info("【MockGateway】transfer", zap.String("reference", req.Reference), zap.String("amount", req.Amount.StringFixed(2)))
	return &TransferResult{Reference: req.Reference, Message: "mock transfer queued"}, nil
}
