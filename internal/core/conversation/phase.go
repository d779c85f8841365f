package conversation

import "strings"

// 階段推斷的訊號詞。優先序：adaptation > execution > commitment > narrowing > discovery，
// 其中 adaptation 訊號可以打斷任何階段。
var (
	adaptationKeywords = []string{"swap", "substitute", "instead", "without", "ran out", "out of", "can't have", "allergic", "replace"}
	executionKeywords  = []string{"next step", "what's next", "temperature", "preheat", "bake", "simmer", "timer", "cook it", "how long", "step"}
	commitmentKeywords = []string{"i'll take", "i'll go with", "let's make", "let's do", "choose", "pick", "the first one", "the second one", "go with"}
)

// DeterminePhase 從輸入、歷史與已知上下文推斷對話階段。
// 階段每輪重算，不沿嚴格序列推進。
// adaptation/execution 訊號只在會話已有進展（有歷史或已展示過選項）時生效：
// 全新會話裡提到 allergic 是在陳述約束，不是在要求調整食譜。
func DeterminePhase(userMessage string, history []Message, ctx *Context, analysis IntentAnalysis, recipeDetailRequested bool) Phase {
	text := strings.ToLower(userMessage)

	hasPriorSignal := len(history) > 0 || len(ctx.LastRecommendedRecipes) > 0

	if hasPriorSignal && containsAny(text, adaptationKeywords) {
		return PhaseAdaptation
	}

	if hasPriorSignal && containsAny(text, executionKeywords) {
		return PhaseExecution
	}

	// 使用者要求特定食譜細節或已解析出菜名，視為承諾
	if recipeDetailRequested || analysis.DishName != "" {
		return PhaseCommitment
	}

	if containsAny(text, commitmentKeywords) {
		return PhaseCommitment
	}

	// 已經展示過選項，在做出選擇前視為收斂階段
	if len(ctx.LastRecommendedRecipes) > 0 {
		return PhaseNarrowing
	}

	if analysis.Intent == IntentLearning || analysis.Intent == IntentBrowsing {
		return PhaseDiscovery
	}

	if analysis.Intent == IntentIngredientBased || analysis.Intent == IntentConstraintBased {
		if len(ctx.Ingredients) > 0 || len(ctx.DietaryRestrictions) > 0 {
			return PhaseNarrowing
		}
		return PhaseDiscovery
	}

	return PhaseDiscovery
}

// DecideStrategy 檢索策略僅由意圖分類決定
func DecideStrategy(analysis IntentAnalysis) Strategy {
	switch analysis.Intent {
	case IntentSpecificDish:
		return StrategyExactSearch
	case IntentIngredientBased:
		return StrategyIngredientReasoning
	case IntentConstraintBased:
		return StrategyLooseSearch
	case IntentLearning:
		return StrategyNoSearch
	}
	// 瀏覽/靈感的預設值
	return StrategyLooseSearch
}

// ShouldAskClarifyingQuestion 判斷澄清性問題是否有實質幫助
func ShouldAskClarifyingQuestion(analysis IntentAnalysis, ctx *Context) bool {
	if analysis.Intent == IntentLearning {
		return false
	}
	if analysis.DishName != "" {
		return false
	}
	if len(analysis.OptionalIngredients) > 0 || len(ctx.Ingredients) > 0 {
		return false
	}
	// 幾乎沒有訊號時，一個澄清問題是有幫助的
	return true
}

// ChooseAssistantIntent 將階段 + 分析映射為單一助手意圖
func ChooseAssistantIntent(phase Phase, analysis IntentAnalysis, needsClarification bool) AssistantIntent {
	switch phase {
	case PhaseAdaptation:
		return IntentAdaptRecipe
	case PhaseExecution:
		if analysis.Intent == IntentLearning {
			return IntentTeachConcept
		}
		return IntentProvideGuidance
	case PhaseCommitment:
		return IntentConfirmChoice
	case PhaseNarrowing:
		return IntentSuggestOptions
	case PhaseDiscovery:
		if needsClarification {
			return IntentAskClarifyingQuestion
		}
		return IntentSuggestOptions
	}
	return IntentSuggestOptions
}

// SubstituteNonClarifyingIntent 當澄清被禁止但選到了澄清意圖時，換成該階段合法的非澄清選項
func SubstituteNonClarifyingIntent(phase Phase) AssistantIntent {
	switch phase {
	case PhaseNarrowing:
		return IntentSuggestOptions
	case PhaseCommitment:
		return IntentConfirmChoice
	case PhaseExecution:
		return IntentProvideGuidance
	case PhaseAdaptation:
		return IntentAdaptRecipe
	}
	return IntentSuggestOptions
}

// SummarizeUserGoal 產生一句話的目標摘要供 LLM 使用，最長 240 字元
func SummarizeUserGoal(analysis IntentAnalysis, ctx *Context) string {
	var parts []string

	switch {
	case analysis.DishName != "":
		parts = append(parts, "Cook "+analysis.DishName)
	case analysis.Intent == IntentIngredientBased && (len(analysis.OptionalIngredients) > 0 || len(ctx.Ingredients) > 0):
		ings := analysis.OptionalIngredients
		if len(ings) == 0 {
			ings = ctx.Ingredients
		}
		parts = append(parts, "Find recipes using "+strings.Join(ings, ", "))
	case analysis.Intent == IntentConstraintBased:
		parts = append(parts, "Find recipes matching their constraints")
	case analysis.Intent == IntentLearning:
		parts = append(parts, "Teach a cooking concept or technique")
	default:
		parts = append(parts, "Suggest good meal ideas")
	}

	if len(ctx.Allergies) > 0 {
		parts = append(parts, "avoid "+strings.Join(ctx.Allergies, ", "))
	}
	if len(ctx.DietaryRestrictions) > 0 {
		parts = append(parts, "dietary prefs: "+strings.Join(ctx.DietaryRestrictions, ", "))
	}
	if ctx.CuisinePreference != "" {
		parts = append(parts, "cuisine: "+ctx.CuisinePreference)
	}

	summary := strings.Join(parts, "; ")
	if len(summary) > 240 {
		summary = summary[:240]
	}
	return summary
}
