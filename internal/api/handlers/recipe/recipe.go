// Package recipe 食譜查詢端點：細節、展開、搜尋與隨機探索。
package recipe

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"feast-assistant/internal/core/search"
	"feast-assistant/internal/pkg/common"
)

// Handler 食譜處理器
type Handler struct {
	searcher *search.Client
}

// NewHandler 創建食譜處理器
func NewHandler(searcher *search.Client) *Handler {
	return &Handler{searcher: searcher}
}

// HandleGetRecipe 按 ID 取得完整食譜
func (h *Handler) HandleGetRecipe(c *gin.Context) {
	recipeID := c.Param("id")

	recipe, err := h.searcher.GetRecipeDetails(c.Request.Context(), recipeID)
	if err != nil {
		common.LogError("食譜查詢失敗", zap.Error(err), zap.String("recipe_id", recipeID))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Recipe lookup failed", "code": common.ErrCodeSearchService})
		return
	}
	if recipe == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// HandleExpandRecipe 使用者在預覽卡片上點「查看完整食譜」時呼叫，
// 這是主要的配額消耗點，只在使用者選定後觸發
func (h *Handler) HandleExpandRecipe(c *gin.Context) {
	recipeID := c.Param("id")

	recipe, err := h.searcher.GetRecipeDetails(c.Request.Context(), recipeID)
	if err != nil {
		common.LogError("食譜展開失敗", zap.Error(err), zap.String("recipe_id", recipeID))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Recipe expand failed", "code": common.ErrCodeSearchService})
		return
	}
	if recipe == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipe":              recipe,
		"match_score":         80.0,
		"matched_ingredients": []string{},
		"missing_ingredients": []string{},
	})
}

// HandleSearch 直接搜尋食譜
func (h *Handler) HandleSearch(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	maxTime, _ := strconv.Atoi(c.DefaultQuery("maxTime", "0"))

	q := search.Query{
		Text:         c.Query("query"),
		Cuisine:      c.Query("cuisine"),
		MealType:     c.Query("type"),
		MaxReadyTime: maxTime,
		Limit:        limit,
	}
	if raw := c.Query("ingredients"); raw != "" {
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				q.Ingredients = append(q.Ingredients, item)
			}
		}
	}
	if raw := c.Query("intolerances"); raw != "" {
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				q.Allergies = append(q.Allergies, item)
			}
		}
	}
	if diet := c.Query("diet"); diet != "" {
		q.DietaryRestrictions = []string{diet}
	}

	var (
		results []search.ScoredRecipe
		err     error
	)
	if len(q.Ingredients) > 0 && q.Text == "" {
		results, err = h.searcher.FindByIngredients(c.Request.Context(), q.Ingredients, limit)
	} else {
		results, err = h.searcher.ComplexSearch(c.Request.Context(), q)
	}
	if err != nil {
		common.LogError("食譜搜尋失敗", zap.Error(err), zap.String("query", q.Text))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Recipe search failed", "code": common.ErrCodeSearchService})
		return
	}
	if results == nil {
		results = []search.ScoredRecipe{}
	}

	c.JSON(http.StatusOK, results)
}

// HandleQuota 回報外部搜尋 API 的配額狀態；402 降級後回報 exhausted
func (h *Handler) HandleQuota(c *gin.Context) {
	status := "ok"
	if h.searcher.QuotaExhausted() {
		status = "exhausted"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          status,
		"quota_exhausted": h.searcher.QuotaExhausted(),
		"backend":         "Spoonacular",
	})
}

// HandleRandom 隨機食譜探索
func (h *Handler) HandleRandom(c *gin.Context) {
	count, _ := strconv.Atoi(c.DefaultQuery("count", "5"))
	tags := c.Query("tags")

	results, err := h.searcher.Random(c.Request.Context(), count, tags)
	if err != nil {
		common.LogError("隨機食譜失敗", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Random recipes failed", "code": common.ErrCodeSearchService})
		return
	}
	if results == nil {
		results = []search.ScoredRecipe{}
	}

	c.JSON(http.StatusOK, results)
}
