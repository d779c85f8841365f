package recipe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feast-assistant/internal/core/search"
	"feast-assistant/internal/infrastructure/config"
)

func newQuotaRouter(t *testing.T, upstreamURL string) (*gin.Engine, *search.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	client, err := search.NewClient(&config.SpoonacularConfig{
		APIKey:     "test-key",
		BaseURL:    upstreamURL,
		Timeout:    5 * time.Second,
		MaxRetries: 1,
	}, nil)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/quota", NewHandler(client).HandleQuota)
	return router, client
}

func getQuota(t *testing.T, router *gin.Engine) map[string]interface{} {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quota", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleQuotaReportsOK(t *testing.T) {
	router, _ := newQuotaRouter(t, "http://localhost")

	body := getQuota(t, router)

	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["quota_exhausted"])
}

func TestHandleQuotaReportsExhaustedAfter402(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer upstream.Close()

	router, client := newQuotaRouter(t, upstream.URL)

	// 觸發一次 402 降級
	_, err := client.ComplexSearch(context.Background(), search.Query{Text: "anything"})
	require.NoError(t, err)

	body := getQuota(t, router)

	assert.Equal(t, "exhausted", body["status"])
	assert.Equal(t, true, body["quota_exhausted"])
}
