package common

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// 錯誤碼定義
const (
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeAIService       = "AI_SERVICE_ERROR"
	ErrCodeSearchService   = "SEARCH_SERVICE_ERROR"
	ErrCodeRateLimit       = "RATE_LIMIT"
	ErrCodeNetwork         = "NETWORK_ERROR"
	ErrCodeConfiguration   = "CONFIGURATION_ERROR"
	ErrCodeInternalService = "INTERNAL_SERVICE_ERROR"
)

// CustomError 自定義錯誤類型
type CustomError struct {
	Code    string
	Message string
	Err     error
	Status  int
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewInvalidRequestError 無效請求錯誤
func NewInvalidRequestError(message string, err error) *CustomError {
	return &CustomError{
		Code:    ErrCodeInvalidRequest,
		Message: message,
		Err:     err,
		Status:  http.StatusBadRequest,
	}
}

// NewAIServiceError AI 服務錯誤
func NewAIServiceError(message string, err error) *CustomError {
	return &CustomError{
		Code:    ErrCodeAIService,
		Message: message,
		Err:     err,
		Status:  http.StatusBadGateway,
	}
}

// NewSearchServiceError 食譜搜尋服務錯誤
func NewSearchServiceError(message string, err error) *CustomError {
	return &CustomError{
		Code:    ErrCodeSearchService,
		Message: message,
		Err:     err,
		Status:  http.StatusBadGateway,
	}
}

// NewInternalServiceError 內部服務錯誤
func NewInternalServiceError(message string, err error) *CustomError {
	return &CustomError{
		Code:    ErrCodeInternalService,
		Message: message,
		Err:     err,
		Status:  http.StatusInternalServerError,
	}
}

// ConfigurationError 啟動配置錯誤（缺少 API key 等），應在啟動時立即失敗
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

// NewConfigurationError 創建配置錯誤
func NewConfigurationError(field, message string) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: message}
}

// RateLimitError 上游回傳 429 且重試耗盡
type RateLimitError struct {
	Service    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limited, retry after %s", e.Service, e.RetryAfter)
	}
	return fmt.Sprintf("%s rate limited", e.Service)
}

// APIError 上游回傳非 2xx（且非 429/402）狀態碼
type APIError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
}

// NetworkError 傳輸層失敗（連線、超時）且重試耗盡
type NetworkError struct {
	Service string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s network error: %v", e.Service, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ErrQuotaExhausted 上游回傳 402：當日配額用盡。呼叫方應降級而非失敗。
var ErrQuotaExhausted = errors.New("api quota exhausted")
