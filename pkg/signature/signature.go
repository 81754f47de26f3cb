// Package signature 提供支付网关回调的 HMAC-SHA256 签名计算与校验
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sign 计算 payload 的十六进制 HMAC-SHA256 签名
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify 以常数时间比较 provided 与重新计算的签名
// provided 允许大小写混用，空签名一律视为不匹配
func Verify(payload []byte, provided, secret string) bool {
	provided = strings.TrimSpace(provided)
	if provided == "" || secret == "" {
		return false
	}
	expected := Sign(payload, secret)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(provided)))
}
