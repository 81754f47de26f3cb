package request

// WebhookPayload 支付网关回调报文
// Amount 只用于日志，金额以发起缴款时记录的为准
type WebhookPayload struct {
	TxRef  string `json:"tx_ref"`
	Status string `json:"status"`
	Amount any    `json:"amount"`
}
