package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"feast-assistant/internal/infrastructure/config"
	"feast-assistant/internal/pkg/common"
	"feast-assistant/internal/pkg/httpcall"
)

// Client Spoonacular API 客戶端，帶讀穿式快取與重試
type Client struct {
	http       *resty.Client
	apiKey     string
	maxRetries int
	cache      ResponseCache

	// 最近一次網路呼叫是否因 402 配額用盡而降級
	quotaExhausted atomic.Bool
}

// NewClient 創建搜尋客戶端；缺少憑證時立即失敗
func NewClient(cfg *config.SpoonacularConfig, cache ResponseCache) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, common.NewConfigurationError("SPOONACULAR_API_KEY",
			"Spoonacular API key not found. Please set SPOONACULAR_API_KEY in your .env file.")
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)

	return &Client{
		http:       client,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		cache:      cache,
	}, nil
}

// request 發送 GET 請求：先查快取，未命中才走網路，成功才回填。
// 402 配額用盡時回傳 (nil, nil)，由呼叫方走無硬失敗的降級路徑。
func (c *Client) request(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	cacheKey := CacheKey(endpoint, params)
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, cacheKey); ok {
			common.LogCacheHit("spoonacular", cacheKey)
			return cached, nil
		}
		common.LogCacheMiss("spoonacular", cacheKey)
	}

	// API key 不參與快取鍵
	query := make(map[string]string, len(params)+1)
	for k, v := range params {
		query[k] = v
	}
	query["apiKey"] = c.apiKey

	resp, err := httpcall.Do(ctx, httpcall.Options{Service: "spoonacular", MaxAttempts: c.maxRetries}, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetQueryParams(query).
			Get(endpoint)
	})
	if err != nil {
		if errors.Is(err, common.ErrQuotaExhausted) {
			c.quotaExhausted.Store(true)
			return nil, nil
		}
		return nil, err
	}

	// 成功呼叫表示配額已恢復（每日重置）
	c.quotaExhausted.Store(false)

	body := resp.Body()
	if c.cache != nil {
		c.cache.Set(ctx, cacheKey, body)
	}
	return body, nil
}

// QuotaExhausted 回報最近觀測到的配額狀態，供 /quota 端點使用
func (c *Client) QuotaExhausted() bool {
	return c.quotaExhausted.Load()
}

// ComplexSearch 按菜名/菜系/飲食/不耐條件搜尋食譜預覽
func (c *Client) ComplexSearch(ctx context.Context, q Query) ([]ScoredRecipe, error) {
	limit := q.Limit
	if limit <= 0 || limit > 10 {
		limit = 5
	}

	params := map[string]string{
		"number":               strconv.Itoa(limit),
		"addRecipeInformation": "true",
		"fillIngredients":      "false",
		"addRecipeNutrition":   "false",
		"instructionsRequired": "true",
	}
	if q.Text != "" {
		params["query"] = q.Text
	}
	if q.Cuisine != "" {
		params["cuisine"] = strings.ToLower(q.Cuisine)
	}
	if len(q.DietaryRestrictions) > 0 {
		params["diet"] = strings.ToLower(q.DietaryRestrictions[0])
	}
	if intolerances := MapIntolerances(q.Allergies); intolerances != "" {
		params["intolerances"] = intolerances
	}
	if q.MealType != "" {
		params["type"] = strings.ToLower(q.MealType)
	}
	if q.MaxReadyTime > 0 {
		params["maxReadyTime"] = strconv.Itoa(q.MaxReadyTime)
	}

	body, err := c.request(ctx, "/recipes/complexSearch", params)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var result complexSearchResponse
	if err := common.ParseJSONBytes(body, &result); err != nil {
		return nil, common.NewSearchServiceError("搜尋回應解析失敗", err)
	}

	scored := make([]ScoredRecipe, 0, len(result.Results))
	for i := range result.Results {
		scored = append(scored, result.Results[i].toScoredRecipe())
	}
	common.LogInfo("食譜搜尋完成",
		zap.String("query", q.Text),
		zap.Int("count", len(scored)),
	)
	return scored, nil
}

// FindByIngredients 按手邊食材搜尋食譜
func (c *Client) FindByIngredients(ctx context.Context, ingredients []string, limit int) ([]ScoredRecipe, error) {
	if limit <= 0 || limit > 10 {
		limit = 5
	}

	params := map[string]string{
		"ingredients":  strings.Join(ingredients, ","),
		"number":       strconv.Itoa(limit),
		"ranking":      "1",
		"ignorePantry": "true",
	}

	body, err := c.request(ctx, "/recipes/findByIngredients", params)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var results []spoonacularRecipe
	if err := common.ParseJSONBytes(body, &results); err != nil {
		return nil, common.NewSearchServiceError("搜尋回應解析失敗", err)
	}

	scored := make([]ScoredRecipe, 0, len(results))
	for i := range results {
		scored = append(scored, results[i].toScoredRecipe())
	}
	return scored, nil
}

// GetRecipeDetails 取得完整食譜細節（含食材、步驟、營養），只在使用者選定後呼叫
func (c *Client) GetRecipeDetails(ctx context.Context, recipeID string) (*Recipe, error) {
	numericID := strings.TrimPrefix(recipeID, "spoonacular_")
	if _, err := strconv.Atoi(numericID); err != nil {
		return nil, common.NewInvalidRequestError("食譜 ID 格式錯誤: "+recipeID, err)
	}

	params := map[string]string{"includeNutrition": "true"}
	body, err := c.request(ctx, fmt.Sprintf("/recipes/%s/information", numericID), params)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var raw spoonacularRecipe
	if err := common.ParseJSONBytes(body, &raw); err != nil {
		return nil, common.NewSearchServiceError("食譜細節解析失敗", err)
	}

	recipe := raw.toRecipe()
	return &recipe, nil
}

// Random 隨機食譜，用於靈感/探索
func (c *Client) Random(ctx context.Context, number int, tags string) ([]ScoredRecipe, error) {
	if number <= 0 || number > 5 {
		number = 3
	}
	params := map[string]string{"number": strconv.Itoa(number)}
	if tags != "" {
		params["tags"] = tags
	}

	body, err := c.request(ctx, "/recipes/random", params)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var result randomResponse
	if err := common.ParseJSONBytes(body, &result); err != nil {
		return nil, common.NewSearchServiceError("搜尋回應解析失敗", err)
	}

	scored := make([]ScoredRecipe, 0, len(result.Recipes))
	for i := range result.Recipes {
		scored = append(scored, result.Recipes[i].toScoredRecipe())
	}
	return scored, nil
}

// SearchByName 按菜名搜尋，給直接點名特定菜色的情況
func (c *Client) SearchByName(ctx context.Context, dishName, cuisine string, limit int) ([]ScoredRecipe, error) {
	return c.ComplexSearch(ctx, Query{Text: dishName, Cuisine: cuisine, Limit: limit})
}
