// Package ai 封裝經 OpenRouter 的 LLM chat-completion 呼叫。
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"feast-assistant/internal/core/conversation"
	"feast-assistant/internal/infrastructure/config"
	"feast-assistant/internal/pkg/common"
	"feast-assistant/internal/pkg/httpcall"
)

// chatCompletionRequest OpenRouter chat-completion 請求體
type chatCompletionRequest struct {
	Model       string                 `json:"model"`
	Messages    []conversation.Message `json:"messages"`
	Temperature float64                `json:"temperature"`
	MaxTokens   int                    `json:"max_tokens"`
}

// chatCompletionResponse OpenRouter chat-completion 回應體
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client OpenRouter LLM 客戶端
type Client struct {
	http        *resty.Client
	model       string
	temperature float64
	maxTokens   int
	maxRetries  int
}

// NewClient 創建 LLM 客戶端；缺少憑證時立即失敗
func NewClient(cfg *config.OpenRouterConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, common.NewConfigurationError("OPENROUTER_API_KEY",
			"OpenRouter API key not found. Please set OPENROUTER_API_KEY in your .env file.")
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("HTTP-Referer", "https://feast-recipe-assistant.app").
		SetHeader("X-Title", "FEAST Recipe Assistant")

	return &Client{
		http:        client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		maxRetries:  cfg.MaxRetries,
	}, nil
}

// Chat 發送有序消息列表，回傳單段文字補全
func (c *Client) Chat(ctx context.Context, messages []conversation.Message) (string, error) {
	payload := chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	start := time.Now()
	requestID := common.GenerateUUID()

	resp, err := httpcall.Do(ctx, httpcall.Options{Service: "openrouter", MaxAttempts: c.maxRetries}, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetBody(payload).
			Post("/chat/completions")
	})
	common.LogAICall(time.Since(start), err, requestID)
	if err != nil {
		return "", common.NewAIServiceError("LLM 請求失敗", err)
	}

	var result chatCompletionResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return "", common.NewAIServiceError("LLM 回應解析失敗", err)
	}

	if result.Error != nil && result.Error.Message != "" {
		return "", common.NewAIServiceError(fmt.Sprintf("LLM API 錯誤: %s", result.Error.Message), nil)
	}
	if len(result.Choices) == 0 {
		return "", common.NewAIServiceError("Invalid API response: no choices returned", nil)
	}

	content := result.Choices[0].Message.Content
	if content == "" {
		return "", common.NewAIServiceError("Empty response from API", nil)
	}

	common.LogDebug("LLM 回應",
		zap.Int("message_count", len(messages)),
		zap.Int("content_length", len(content)),
		zap.String("preview", common.Truncate(content, 120)),
	)
	return content, nil
}
