package conversation

import (
	"regexp"
	"strings"
)

// LLM 輸出契約的後置強制：只允許 [RESPONSE] 區塊抵達使用者

const fallbackResponse = "I'm here and ready to help—what would you like to cook or clarify?"

var (
	responseMarkerPattern    = regexp.MustCompile(`(?i)\[RESPONSE\]\s*:?`)
	searchTagPattern         = regexp.MustCompile(`\[SEARCH_RECIPES\]`)
	lookingForPattern        = regexp.MustCompile(`Looking for:[^\n]*`)
	reasoningSnapshotPattern = regexp.MustCompile(`\[REASONING SNAPSHOT\][\s\S]*`)
	assistantIntentPattern   = regexp.MustCompile(`(?i)\[ASSISTANT_INTENT\]\s*:?[^\n]*`)
	goalSummaryPattern       = regexp.MustCompile(`(?i)\[USER_GOAL_SUMMARY\]\s*:?[^\n]*`)
	excessBlankLines         = regexp.MustCompile(`\n{3,}`)
)

// cleanForDisplay 移除內部標籤但保留 markdown 格式
func cleanForDisplay(response string) string {
	response = searchTagPattern.ReplaceAllString(response, "")
	response = lookingForPattern.ReplaceAllString(response, "")
	return strings.TrimSpace(response)
}

// StripStructuredTags 只放行 [RESPONSE] 區塊，其餘一律丟棄。
// 找不到標記時退而清除所有已知內部標籤；結果為空時回傳固定安全文案。
func StripStructuredTags(response string) string {
	loc := responseMarkerPattern.FindStringIndex(response)
	if loc == nil {
		// 模型略過了標記：清理整段回覆
		cleaned := cleanForDisplay(response)
		cleaned = assistantIntentPattern.ReplaceAllString(cleaned, "")
		cleaned = goalSummaryPattern.ReplaceAllString(cleaned, "")
		// 丟棄洩漏的推理區塊，避免暴露系統提示詞
		cleaned = strings.TrimSpace(reasoningSnapshotPattern.ReplaceAllString(cleaned, ""))
		cleaned = excessBlankLines.ReplaceAllString(cleaned, "\n\n")
		cleaned = strings.TrimSpace(cleaned)
		if cleaned == "" {
			return fallbackResponse
		}
		return cleaned
	}

	// 取標記之後的所有內容
	responseOnly := strings.TrimLeft(response[loc[1]:], " \t\n\r")

	// 標記之後若洩漏了推理快照，從其起點截斷
	responseOnly = reasoningSnapshotPattern.ReplaceAllString(responseOnly, "")
	responseOnly = excessBlankLines.ReplaceAllString(responseOnly, "\n\n")

	if strings.TrimSpace(responseOnly) == "" {
		return fallbackResponse
	}

	return cleanForDisplay(responseOnly)
}
