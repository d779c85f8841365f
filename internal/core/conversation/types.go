// Package conversation 實現對話狀態推理層：意圖/約束提取、階段推斷、策略選擇與提示詞組裝。
package conversation

import "strings"

// IntentClass 使用者意圖分類
type IntentClass string

const (
	IntentSpecificDish    IntentClass = "specific_dish"
	IntentIngredientBased IntentClass = "ingredient_based"
	IntentConstraintBased IntentClass = "constraint_based"
	IntentLearning        IntentClass = "learning"
	IntentBrowsing        IntentClass = "browsing"
)

// Strategy 本輪檢索策略
type Strategy string

const (
	StrategyExactSearch         Strategy = "exact_search"
	StrategyLooseSearch         Strategy = "loose_search"
	StrategyIngredientReasoning Strategy = "ingredient_reasoning"
	StrategyNoSearch            Strategy = "no_search"
)

// Phase 對話宏觀階段
type Phase string

const (
	PhaseDiscovery  Phase = "discovery"
	PhaseNarrowing  Phase = "narrowing"
	PhaseCommitment Phase = "commitment"
	PhaseExecution  Phase = "execution"
	PhaseAdaptation Phase = "adaptation"
)

// AssistantIntent 助手本輪回覆的單一目的
type AssistantIntent string

const (
	IntentAskClarifyingQuestion AssistantIntent = "ask_clarifying_question"
	IntentSuggestOptions        AssistantIntent = "suggest_options"
	IntentConfirmChoice         AssistantIntent = "confirm_choice"
	IntentProvideGuidance       AssistantIntent = "provide_guidance"
	IntentAdaptRecipe           AssistantIntent = "adapt_recipe"
	IntentTeachConcept          AssistantIntent = "teach_concept"
)

// AllowedIntentsByPhase 各階段允許的助手意圖（資料化的合法性表，非分支邏輯）
var AllowedIntentsByPhase = map[Phase][]AssistantIntent{
	PhaseDiscovery:  {IntentAskClarifyingQuestion, IntentSuggestOptions},
	PhaseNarrowing:  {IntentSuggestOptions, IntentConfirmChoice},
	PhaseCommitment: {IntentConfirmChoice},
	PhaseExecution:  {IntentProvideGuidance, IntentTeachConcept},
	PhaseAdaptation: {IntentAdaptRecipe, IntentProvideGuidance},
}

// IntentAllowedInPhase 查詢意圖在指定階段是否合法
func IntentAllowedInPhase(phase Phase, intent AssistantIntent) bool {
	for _, allowed := range AllowedIntentsByPhase[phase] {
		if allowed == intent {
			return true
		}
	}
	return false
}

// Message 一條對話消息（chat-completion 角色格式）
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Context 跨輪累積的使用者偏好，由呼叫方持有並每輪往返
type Context struct {
	Ingredients            []string `json:"ingredients"`
	Allergies              []string `json:"allergies"`
	CuisinePreference      string   `json:"cuisine_preference"`
	DietaryRestrictions    []string `json:"dietary_restrictions"`
	MealType               string   `json:"meal_type"`
	CookingTime            string   `json:"cooking_time"` // quick / long / 空
	Dislikes               []string `json:"dislikes"`
	HasEnoughContext       bool     `json:"has_enough_context"`
	LastRecommendedRecipes []string `json:"last_recommended_recipes"`
}

// Summary 生成已知偏好的摘要，用於附加到系統提示詞
func (c *Context) Summary() string {
	var parts []string
	if len(c.Ingredients) > 0 {
		parts = append(parts, "Ingredients: "+strings.Join(c.Ingredients, ", "))
	}
	if len(c.Allergies) > 0 {
		parts = append(parts, "Allergies/Avoid: "+strings.Join(c.Allergies, ", "))
	}
	if c.CuisinePreference != "" {
		parts = append(parts, "Cuisine: "+c.CuisinePreference)
	}
	if len(c.DietaryRestrictions) > 0 {
		parts = append(parts, "Diet: "+strings.Join(c.DietaryRestrictions, ", "))
	}
	if c.MealType != "" {
		parts = append(parts, "Meal type: "+c.MealType)
	}
	if c.CookingTime != "" {
		parts = append(parts, "Time: "+c.CookingTime)
	}
	if len(c.Dislikes) > 0 {
		parts = append(parts, "Dislikes: "+strings.Join(c.Dislikes, ", "))
	}
	if len(parts) == 0 {
		return "No preferences specified yet"
	}
	return strings.Join(parts, "\n")
}

// IntentAnalysis 單輪意圖/約束分析結果，不跨輪保存
type IntentAnalysis struct {
	Intent              IntentClass
	RequiredIngredients []string
	OptionalIngredients []string
	HardConstraints     []string
	SoftConstraints     []string
	DishName            string
}

// ActiveRecipe 使用者已選定/展開的食譜引用
type ActiveRecipe struct {
	RecipeID   string `json:"recipe_id"`
	RecipeName string `json:"recipe_name"`
	Source     string `json:"source"`
}

// State 單輪對話狀態
type State struct {
	Phase           Phase
	AssistantIntent AssistantIntent
	UserGoalSummary string

	ActiveRecipe *ActiveRecipe

	Diet      string
	Allergies []string
	Cuisine   string
	MealType  string

	RecipesShown   bool
	RecipeExpanded bool

	// 一旦食譜鎖定，除非使用者明確換菜，否則不得再詢問「哪道食譜」
	AllowRecipeIdentityClarification bool
}
