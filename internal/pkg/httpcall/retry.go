// Package httpcall 提供帶重試與退避的外部 API 呼叫包裝。
package httpcall

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"feast-assistant/internal/pkg/common"
)

// RetryBaseDelay 退避基準延遲。測試可覆寫以加速。
var RetryBaseDelay = 1 * time.Second

// Options 單次呼叫的重試設定
type Options struct {
	Service     string // 日誌與錯誤中的服務名稱
	MaxAttempts int    // 總嘗試次數（含第一次），<=0 時視為 3
}

// Do 執行 fn 並在瞬時失敗時重試。
//
// 重試規則：
//   - 網路錯誤：指數退避（base × 2^attempt）後重試
//   - 429：優先讀取 Retry-After 標頭，否則指數退避
//   - 5xx：指數退避後重試
//   - 402：不重試，直接回傳 ErrQuotaExhausted，呼叫方應降級處理
//   - 其他非 2xx：不重試，回傳 APIError
//
// 重試耗盡後回傳對應的類型化錯誤（NetworkError / RateLimitError / APIError）。
func Do(ctx context.Context, opts Options, fn func() (*resty.Response, error)) (*resty.Response, error) {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		// 最後一次嘗試之後不再退避等待
		lastAttempt := attempt == maxAttempts-1

		resp, err := fn()
		if err != nil {
			lastErr = &common.NetworkError{Service: opts.Service, Err: err}
			common.LogWarn("外部請求失敗，準備重試",
				zap.String("service", opts.Service),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			if !lastAttempt && !sleepBackoff(ctx, attempt, 0) {
				return nil, ctx.Err()
			}
			continue
		}

		status := resp.StatusCode()
		switch {
		case status >= 200 && status < 300:
			return resp, nil

		case status == http.StatusPaymentRequired:
			// 配額用盡：不可重試，交由呼叫方降級
			common.LogWarn("API 配額已用盡",
				zap.String("service", opts.Service),
			)
			return resp, common.ErrQuotaExhausted

		case status == http.StatusTooManyRequests:
			retryAfter := parseRetryAfter(resp)
			lastErr = &common.RateLimitError{Service: opts.Service, RetryAfter: retryAfter}
			common.LogWarn("外部請求被限流",
				zap.String("service", opts.Service),
				zap.Int("attempt", attempt+1),
				zap.Duration("retry_after", retryAfter),
			)
			if !lastAttempt && !sleepBackoff(ctx, attempt, retryAfter) {
				return nil, ctx.Err()
			}

		case status >= 500:
			lastErr = &common.APIError{Service: opts.Service, StatusCode: status, Body: resp.String()}
			common.LogWarn("外部服務錯誤，準備重試",
				zap.String("service", opts.Service),
				zap.Int("attempt", attempt+1),
				zap.Int("status", status),
			)
			if !lastAttempt && !sleepBackoff(ctx, attempt, 0) {
				return nil, ctx.Err()
			}

		default:
			// 4xx（非 429/402）不重試
			return resp, &common.APIError{Service: opts.Service, StatusCode: status, Body: resp.String()}
		}
	}

	return nil, lastErr
}

// sleepBackoff 依指數退避等待；explicit > 0 時優先使用。回傳 false 表示 context 已取消。
func sleepBackoff(ctx context.Context, attempt int, explicit time.Duration) bool {
	delay := explicit
	if delay <= 0 {
		delay = time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}

func parseRetryAfter(resp *resty.Response) time.Duration {
	raw := resp.Header().Get("Retry-After")
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
