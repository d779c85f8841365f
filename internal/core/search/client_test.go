package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feast-assistant/internal/infrastructure/config"
)

func newTestClient(t *testing.T, serverURL string, cache ResponseCache) *Client {
	t.Helper()
	client, err := NewClient(&config.SpoonacularConfig{
		APIKey:     "test-key",
		BaseURL:    serverURL,
		Timeout:    5 * time.Second,
		MaxRetries: 1,
	}, cache)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(&config.SpoonacularConfig{BaseURL: "http://localhost"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SPOONACULAR_API_KEY")
}

func TestComplexSearchParsesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/complexSearch", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "carbonara", r.URL.Query().Get("query"))
		assert.Equal(t, "dairy", r.URL.Query().Get("intolerances"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"id":42,"title":"Spaghetti Carbonara","readyInMinutes":30,"cuisines":["Italian"]}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	results, err := client.ComplexSearch(context.Background(), Query{
		Text:      "carbonara",
		Allergies: []string{"milk"},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "spoonacular_42", results[0].Recipe.ID)
	assert.Equal(t, "Spaghetti Carbonara", results[0].Recipe.Title)
}

func TestRequestReadThroughCache(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"results":[{"id":7,"title":"Pad Thai"}]}`))
	}))
	defer server.Close()

	cache := NewMemoryCache(100, 5*time.Minute)
	client := newTestClient(t, server.URL, cache)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		results, err := client.ComplexSearch(ctx, Query{Text: "pad thai"})
		require.NoError(t, err)
		require.Len(t, results, 1)
	}

	// TTL 內的相同查詢只應打一次網路
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRequestCacheKeyExcludesAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	cache := NewMemoryCache(100, 5*time.Minute)
	client := newTestClient(t, server.URL, cache)
	_, err := client.ComplexSearch(context.Background(), Query{Text: "soup"})
	require.NoError(t, err)

	key := CacheKey("/recipes/complexSearch", map[string]string{
		"number": "5", "addRecipeInformation": "true", "fillIngredients": "false",
		"addRecipeNutrition": "false", "instructionsRequired": "true", "query": "soup",
	})
	_, ok := cache.Get(context.Background(), key)
	assert.True(t, ok, "快取鍵不含 API key")
	assert.NotContains(t, key, "test-key")
}

func TestQuotaExhaustedDegradesToNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	results, err := client.ComplexSearch(context.Background(), Query{Text: "anything"})

	require.NoError(t, err, "配額用盡應降級而非硬失敗")
	assert.Nil(t, results)
}

func TestQuotaExhaustedNotCached(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer server.Close()

	cache := NewMemoryCache(100, 5*time.Minute)
	client := newTestClient(t, server.URL, cache)
	ctx := context.Background()

	_, _ = client.ComplexSearch(ctx, Query{Text: "anything"})
	_, _ = client.ComplexSearch(ctx, Query{Text: "anything"})

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "失敗回應不應寫入快取")
	assert.Equal(t, 0, cache.Len())
}

func TestQuotaStatusTracksExhaustionAndRecovery(t *testing.T) {
	var status int32 = http.StatusPaymentRequired
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := int(atomic.LoadInt32(&status))
		w.WriteHeader(code)
		if code == http.StatusOK {
			_, _ = w.Write([]byte(`{"results":[]}`))
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	ctx := context.Background()

	assert.False(t, client.QuotaExhausted(), "初始狀態為可用")

	_, err := client.ComplexSearch(ctx, Query{Text: "anything"})
	require.NoError(t, err)
	assert.True(t, client.QuotaExhausted(), "402 後回報配額用盡")

	// 配額每日重置，成功呼叫後恢復
	atomic.StoreInt32(&status, http.StatusOK)
	_, err = client.ComplexSearch(ctx, Query{Text: "anything else"})
	require.NoError(t, err)
	assert.False(t, client.QuotaExhausted())
}

func TestFindByIngredients(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/findByIngredients", r.URL.Path)
		assert.Equal(t, "chicken,broccoli", r.URL.Query().Get("ingredients"))
		assert.Equal(t, "1", r.URL.Query().Get("ranking"))
		_, _ = w.Write([]byte(`[{"id":9,"title":"Chicken Broccoli Stir Fry","usedIngredients":[{"name":"chicken"},{"name":"broccoli"}],"missedIngredients":[{"name":"soy sauce"}]}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	results, err := client.FindByIngredients(context.Background(), []string{"chicken", "broccoli"}, 5)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 66.67, results[0].Score, 0.1)
	assert.Equal(t, []string{"soy sauce"}, results[0].MissingIngredients)
}

func TestGetRecipeDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/123/information", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("includeNutrition"))
		_, _ = w.Write([]byte(`{"id":123,"title":"Ramen","extendedIngredients":[{"name":"noodles","original":"200g fresh ramen noodles"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	recipe, err := client.GetRecipeDetails(context.Background(), "spoonacular_123")

	require.NoError(t, err)
	require.NotNil(t, recipe)
	assert.Equal(t, "Ramen", recipe.Title)
	assert.Equal(t, "200g fresh ramen noodles", recipe.Ingredients[0].Original)
}

func TestGetRecipeDetailsRejectsMalformedID(t *testing.T) {
	client := newTestClient(t, "http://localhost", nil)
	_, err := client.GetRecipeDetails(context.Background(), "not-a-recipe-id")
	require.Error(t, err)
}
