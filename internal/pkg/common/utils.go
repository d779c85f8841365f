package common

import (
	"github.com/google/uuid"
)

// GenerateUUID 生成唯一識別碼
func GenerateUUID() string {
	return uuid.New().String()
}

// Truncate 將字串截斷到最多 n 個 rune，超出時以省略號結尾
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
