package random

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"
)

// Intn 返回 [0, n) 区间内均匀分布的安全随机数
// 开奖时用于从候选成员中抽取一人，结果不受调用方输入影响
func Intn(n int) (int, error) {
	if n <= 0 {
		return 0, errors.New("random: n must be positive")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// GetNowAndLenRandomString 生成带日期前缀的随机字符串（用于实体 Uuid）
// 格式: YYMMDD + 字母数字混合
// 示例: 241230AbCdE12345
func GetNowAndLenRandomString(length int) string {
	result := make([]byte, length)
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	charsetLen := big.NewInt(int64(len(charset)))
	for i := range result {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			result[i] = 'x'
			continue
		}
		result[i] = charset[n.Int64()]
	}
	return time.Now().Format("060102") + string(result)
}

// NewUuid 生成带单字母类型前缀的实体 ID，如 G241230AbCdE12345
func NewUuid(prefix byte) string {
	return string(prefix) + GetNowAndLenRandomString(11)
}
