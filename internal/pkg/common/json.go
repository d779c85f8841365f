package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ParseJSON 解析 JSON 字符串到指定結構，容忍模型輸出包裹的 markdown 代碼塊
func ParseJSON(data string, v interface{}) error {
	cleaned := CleanMarkdownJSON(data)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("JSON 解析失敗: %w", err)
	}
	return nil
}

// ParseJSONBytes 解析 JSON 字節數組到指定結構
func ParseJSONBytes(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("JSON 解析失敗: %w", err)
	}
	return nil
}

// DecodeJSON 從 Reader 解碼 JSON
func DecodeJSON(r io.Reader, v interface{}) error {
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("JSON 解碼失敗: %w", err)
	}
	return nil
}

// ToJSON 將結構轉換為 JSON 字符串
func ToJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return "", fmt.Errorf("JSON 編碼失敗: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// CleanMarkdownJSON 去除模型輸出中包裹 JSON 的 ```json ... ``` 代碼塊
func CleanMarkdownJSON(s string) string {
	out := strings.TrimSpace(s)
	if strings.HasPrefix(out, "```") {
		out = strings.TrimPrefix(out, "```json")
		out = strings.TrimPrefix(out, "```")
		if idx := strings.LastIndex(out, "```"); idx >= 0 {
			out = out[:idx]
		}
	}
	return strings.TrimSpace(out)
}
