// Package retrieval 依策略協調外部食譜搜尋，並保證零結果不會成為終端失敗。
package retrieval

import (
	"context"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"feast-assistant/internal/core/conversation"
	"feast-assistant/internal/core/search"
	"feast-assistant/internal/pkg/common"
)

// 模糊標題匹配的接受閾值（0-100 相似度）
const titleMatchThreshold = 60

// 細節抓取失敗時的友善重試文案
const detailFetchRetryMessage = "I'm having trouble getting the full recipe details right now. Please try again!"

// LLMClient 檢索層需要的 LLM 能力
type LLMClient interface {
	Chat(ctx context.Context, messages []conversation.Message) (string, error)
}

// SearchClient 檢索層需要的搜尋能力
type SearchClient interface {
	ComplexSearch(ctx context.Context, q search.Query) ([]search.ScoredRecipe, error)
	FindByIngredients(ctx context.Context, ingredients []string, limit int) ([]search.ScoredRecipe, error)
	GetRecipeDetails(ctx context.Context, recipeID string) (*search.Recipe, error)
	SearchByName(ctx context.Context, dishName, cuisine string, limit int) ([]search.ScoredRecipe, error)
}

// Orchestrator 食譜檢索協調器
type Orchestrator struct {
	searcher SearchClient
	llm      LLMClient
}

// NewOrchestrator 創建檢索協調器
func NewOrchestrator(searcher SearchClient, llm LLMClient) *Orchestrator {
	return &Orchestrator{searcher: searcher, llm: llm}
}

// 提示使用者想看特定食譜完整細節的引號標題
var recipeDetailPattern = regexp.MustCompile(`(?i)(?:i'?d like to make|tell me (?:more )?about|how (?:do i make|to make)|show me|details? (?:for|about)|make) ['"]([^'"]+)['"]`)

// DetectRecipeDetailRequest 偵測使用者是否點名要看特定食譜的完整細節
func DetectRecipeDetailRequest(userMessage string) (string, bool) {
	if m := recipeDetailPattern.FindStringSubmatch(userMessage); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

// 直接點菜的多種措辭
var (
	directDishPattern = regexp.MustCompile(`(?i)(?:how (?:to|do i|can i) (?:make|cook|prepare)|i want to (?:make|cook|prepare)|i(?:'d| would) like to (?:make|cook|prepare)|recipe for|show me (?:a|an|the)?|make me|cook|i want|give me) (?:some |a |an |the )?([\w\s'-]+)`)
	trailingWords     = regexp.MustCompile(`(?i)\s+(recipe|recipes|please|thanks|how do i make them)[\?,!]*$`)
	trailingPunct     = regexp.MustCompile(`[,\?!]+$`)
	leadingRequest    = regexp.MustCompile(`(?i)^(make|cook|recipe for|show me|i want|give me|how to make)\s+`)
)

// ExtractDishName 從使用者輸入抓取菜名：先匹配祈使句式，
// 短句（≤5 詞）退回剝除固定前後綴後的剩餘部分
func ExtractDishName(userMessage string) string {
	if m := directDishPattern.FindStringSubmatch(userMessage); m != nil {
		dish := strings.TrimSpace(m[1])
		dish = trailingWords.ReplaceAllString(dish, "")
		dish = strings.TrimSpace(trailingPunct.ReplaceAllString(dish, ""))
		if dish != "" {
			return dish
		}
	}

	if len(strings.Fields(userMessage)) <= 5 {
		potential := leadingRequest.ReplaceAllString(userMessage, "")
		potential = trailingWords.ReplaceAllString(potential, "")
		potential = strings.TrimSpace(potential)
		if len(potential) > 2 {
			return potential
		}
	}
	return ""
}

// Retrieve 依策略決定是否/如何呼叫搜尋。零結果回傳空切片，不是錯誤。
// INGREDIENT_REASONING 與 NO_SEARCH 不走網路，交由 LLM 自行推理。
func (o *Orchestrator) Retrieve(ctx context.Context, strategy conversation.Strategy, dishName string, convCtx *conversation.Context) ([]search.ScoredRecipe, error) {
	switch strategy {
	case conversation.StrategyExactSearch:
		if dishName != "" {
			return o.searcher.SearchByName(ctx, dishName, convCtx.CuisinePreference, 5)
		}
		return o.looseSearch(ctx, "", convCtx)
	case conversation.StrategyLooseSearch:
		if dishName != "" {
			return o.searcher.SearchByName(ctx, dishName, convCtx.CuisinePreference, 5)
		}
		return o.looseSearch(ctx, "", convCtx)
	}
	return nil, nil
}

// looseSearch 以完整約束集搜尋；沒有文字線索時改用食材搜尋
func (o *Orchestrator) looseSearch(ctx context.Context, text string, convCtx *conversation.Context) ([]search.ScoredRecipe, error) {
	if text == "" && len(convCtx.Ingredients) > 0 {
		return o.searcher.FindByIngredients(ctx, convCtx.Ingredients, 5)
	}
	return o.searcher.ComplexSearch(ctx, search.Query{
		Text:                text,
		Cuisine:             convCtx.CuisinePreference,
		Allergies:           convCtx.Allergies,
		DietaryRestrictions: convCtx.DietaryRestrictions,
		MealType:            convCtx.MealType,
		Limit:               5,
	})
}

// Recover 搜尋零結果時的恢復路徑：觸發第二次 LLM 呼叫，
// 要求提出替代方案並以一個具體的下一步收尾。不得以「找不到」收場。
func (o *Orchestrator) Recover(ctx context.Context, userMessage string, convCtx *conversation.Context) (string, error) {
	messages := conversation.BuildRecoveryPrompt(userMessage, convCtx)
	raw, err := o.llm.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	return conversation.StripStructuredTags(raw), nil
}

// titleSimilarity 0-100 的標題相似度（基於編輯距離）
func titleSimilarity(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return (maxLen - dist) * 100 / maxLen
}

// DetailResult 細節抓取路徑的結果
type DetailResult struct {
	Text         string
	ActiveRecipe *conversation.ActiveRecipe
}

// FetchRecipeDetail 使用者點名特定食譜時：模糊匹配候選標題，通過閾值才抓完整記錄，
// 再以嚴格呈現提示詞請 LLM 輸出。匹配不到或抓取失敗時回傳友善重試文案而非錯誤。
func (o *Orchestrator) FetchRecipeDetail(ctx context.Context, userMessage, recipeTitle string) (*DetailResult, error) {
	candidates, err := o.searcher.SearchByName(ctx, recipeTitle, "", 5)
	if err != nil {
		return nil, err
	}

	var bestMatch *search.ScoredRecipe
	bestScore := 0
	for i := range candidates {
		score := titleSimilarity(recipeTitle, candidates[i].Recipe.Title)
		if score > bestScore {
			bestScore = score
			bestMatch = &candidates[i]
		}
	}

	if bestMatch == nil || bestScore <= titleMatchThreshold {
		common.LogInfo("食譜標題匹配未過閾值",
			zap.String("title", recipeTitle),
			zap.Int("best_score", bestScore),
		)
		return &DetailResult{Text: detailFetchRetryMessage}, nil
	}

	fullRecipe, err := o.searcher.GetRecipeDetails(ctx, bestMatch.Recipe.ID)
	if err != nil || fullRecipe == nil || len(fullRecipe.Ingredients) == 0 {
		return &DetailResult{Text: detailFetchRetryMessage}, nil
	}

	messages := conversation.BuildRecipePresentationPrompt(userMessage, fullRecipe)
	raw, err := o.llm.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}

	return &DetailResult{
		Text: conversation.StripStructuredTags(raw),
		ActiveRecipe: &conversation.ActiveRecipe{
			RecipeID:   fullRecipe.SourceID,
			RecipeName: fullRecipe.Title,
			Source:     "spoonacular",
		},
	}, nil
}
