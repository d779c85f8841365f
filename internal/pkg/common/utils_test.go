package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{"短字串原樣返回", "hello", 10, "hello"},
		{"剛好等於上限", "hello", 5, "hello"},
		{"超長字串加省略號", "hello world", 8, "hello..."},
		{"上限過小時直接截斷", "hello", 3, "hel"},
		{"多位元組字元按 rune 計算", "番茄炒蛋超級好吃", 5, "番茄..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.input, tt.limit))
		})
	}
}

func TestGenerateUUIDIsUnique(t *testing.T) {
	a := GenerateUUID()
	b := GenerateUUID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
