// Package turn 將提取、階段推斷、提示詞組裝、LLM 呼叫與檢索組合為完整的一輪對話。
package turn

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"feast-assistant/internal/core/conversation"
	"feast-assistant/internal/core/retrieval"
	"feast-assistant/internal/core/search"
	"feast-assistant/internal/pkg/common"
)

// 重試耗盡後呈現給使用者的致歉文案，原始錯誤只記錄於日誌
const apologyMessage = "I'm so sorry—my kitchen brain hiccuped for a moment there. Could you try that again in a few seconds?"

// LLMClient 回合控制器需要的 LLM 能力
type LLMClient interface {
	Chat(ctx context.Context, messages []conversation.Message) (string, error)
}

// Result 一輪對話的輸出
type Result struct {
	Text    string
	Recipes []search.ScoredRecipe
	Context *conversation.Context
	State   *conversation.State
}

// Manager 回合控制器
type Manager struct {
	llm          LLMClient
	orchestrator *retrieval.Orchestrator
}

// NewManager 創建回合控制器
func NewManager(llm LLMClient, orchestrator *retrieval.Orchestrator) *Manager {
	return &Manager{llm: llm, orchestrator: orchestrator}
}

// ProcessTurn 處理一輪對話。網路/LLM 層錯誤在此邊界轉為致歉文案，
// 原始錯誤記錄於日誌，永不向使用者暴露。
func (m *Manager) ProcessTurn(ctx context.Context, userMessage string, history []conversation.Message, convCtx *conversation.Context) (*Result, error) {
	// 使用者點名要看特定食譜的完整細節
	recipeTitle, recipeDetailRequested := retrieval.DetectRecipeDetailRequest(userMessage)
	if recipeDetailRequested {
		detail, err := m.orchestrator.FetchRecipeDetail(ctx, userMessage, recipeTitle)
		if err != nil {
			common.LogError("食譜細節回合失敗", zap.Error(err))
			return &Result{Text: apologyMessage, Context: convCtx}, nil
		}
		state := &conversation.State{
			Phase:           conversation.PhaseExecution,
			AssistantIntent: conversation.IntentProvideGuidance,
			ActiveRecipe:    detail.ActiveRecipe,
			RecipeExpanded:  detail.ActiveRecipe != nil,

			AllowRecipeIdentityClarification: false,
		}
		// 細節已完整呈現，不再附食譜卡片
		return &Result{Text: detail.Text, Context: convCtx, State: state}, nil
	}

	// 任何檢索之前先做意圖/約束分析與策略選擇
	analysis := conversation.Analyze(userMessage, convCtx)
	strategy := conversation.DecideStrategy(analysis)
	needsClarification := conversation.ShouldAskClarifyingQuestion(analysis, convCtx)
	phase := conversation.DeterminePhase(userMessage, history, convCtx, analysis, recipeDetailRequested)
	assistantIntent := conversation.ChooseAssistantIntent(phase, analysis, needsClarification)
	userGoalSummary := conversation.SummarizeUserGoal(analysis, convCtx)

	state := &conversation.State{
		Phase:           phase,
		AssistantIntent: assistantIntent,
		UserGoalSummary: userGoalSummary,
		Allergies:       append([]string(nil), convCtx.Allergies...),
		Cuisine:         convCtx.CuisinePreference,
		MealType:        convCtx.MealType,
		RecipesShown:    len(convCtx.LastRecommendedRecipes) > 0,

		AllowRecipeIdentityClarification: true,
	}
	if len(convCtx.DietaryRestrictions) > 0 {
		state.Diet = convCtx.DietaryRestrictions[0]
	}

	// 已過承諾階段但缺少活躍食譜時，從最近推薦中恢復
	if (state.Phase == conversation.PhaseCommitment || state.Phase == conversation.PhaseExecution || state.Phase == conversation.PhaseAdaptation) &&
		state.ActiveRecipe == nil && len(convCtx.LastRecommendedRecipes) > 0 {
		lastID := convCtx.LastRecommendedRecipes[len(convCtx.LastRecommendedRecipes)-1]
		state.ActiveRecipe = &conversation.ActiveRecipe{RecipeID: lastID, RecipeName: "selected recipe", Source: "spoonacular"}
		state.AllowRecipeIdentityClarification = false
	}

	// 承諾/執行/調整階段一律鎖定食譜身份澄清
	if state.Phase == conversation.PhaseCommitment || state.Phase == conversation.PhaseExecution || state.Phase == conversation.PhaseAdaptation {
		state.AllowRecipeIdentityClarification = false
	}

	// 澄清被禁止時，把澄清意圖換成該階段合法的非澄清選項
	if !state.AllowRecipeIdentityClarification && state.AssistantIntent == conversation.IntentAskClarifyingQuestion {
		state.AssistantIntent = conversation.SubstituteNonClarifyingIntent(state.Phase)
	}

	reasoningNote := conversation.SnapshotForPrompt(analysis, strategy, state.Phase, state.AssistantIntent, state.UserGoalSummary)
	messages := conversation.BuildConversationPrompt(userMessage, history, convCtx, reasoningNote)

	rawResponse, err := m.llm.Chat(ctx, messages)
	if err != nil {
		common.LogError("對話回合 LLM 失敗", zap.Error(err))
		return &Result{Text: apologyMessage, Context: convCtx, State: state}, nil
	}
	cleanResponse := conversation.StripStructuredTags(rawResponse)

	convCtx = conversation.UpdateContext(convCtx, userMessage)

	// 策略驅動檢索；模型的顯式搜尋標籤可把非搜尋策略升級為寬鬆搜尋
	dishName := retrieval.ExtractDishName(userMessage)
	searchStrategy := strategy
	if searchStrategy != conversation.StrategyExactSearch &&
		searchStrategy != conversation.StrategyLooseSearch &&
		strings.Contains(rawResponse, "[SEARCH_RECIPES]") {
		searchStrategy = conversation.StrategyLooseSearch
	}

	var recipes []search.ScoredRecipe
	searched := false
	if searchStrategy == conversation.StrategyExactSearch || searchStrategy == conversation.StrategyLooseSearch {
		searched = true
		recipes, err = m.orchestrator.Retrieve(ctx, searchStrategy, dishName, convCtx)
		if err != nil {
			common.LogError("食譜檢索失敗", zap.Error(err))
			recipes = nil
		}

		// 零結果不是終端失敗：觸發恢復提示詞的第二次 LLM 呼叫
		if len(recipes) == 0 {
			recovered, recErr := m.orchestrator.Recover(ctx, userMessage, convCtx)
			if recErr != nil {
				common.LogError("恢復回合 LLM 失敗", zap.Error(recErr))
			} else {
				cleanResponse = recovered
			}
		}
	}

	// 記錄已展示的選項供後續階段推斷
	if searched {
		convCtx.LastRecommendedRecipes = convCtx.LastRecommendedRecipes[:0]
		for _, r := range recipes {
			convCtx.LastRecommendedRecipes = append(convCtx.LastRecommendedRecipes, r.Recipe.Title)
		}
		state.RecipesShown = len(recipes) > 0
	}

	return &Result{
		Text:    cleanResponse,
		Recipes: recipes,
		Context: convCtx,
		State:   state,
	}, nil
}
