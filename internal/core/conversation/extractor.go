package conversation

import (
	"regexp"
	"strings"
)

// 確定性的關鍵詞/正則提取器，無 I/O、無隨機性

var (
	dishNamePattern = regexp.MustCompile(`(?:recipe for|how to make|make|cook|prepare)\s+([\w\s'-]{3,})`)

	dietFlags    = []string{"vegan", "vegetarian", "keto", "paleo", "gluten-free", "dairy-free", "low carb", "low-carb", "healthy"}
	timeFlags    = []string{"15 min", "20 min", "30 min", "quick", "fast", "under 20", "under 30"}
	allergyFlags = []string{"allergic", "avoid", "can't eat", "no ", "without"}

	learningKeywords = []string{"how to", "difference between", "what is", "technique", "why"}
	browsingKeywords = []string{"anything", "ideas", "bored", "inspire", "inspiration", "suggest"}

	ingredientSeparator = regexp.MustCompile(`[,/]| with | using | and `)
)

// 上下文更新用的固定詞彙表
var (
	commonIngredients = []string{
		"chicken", "beef", "pork", "fish", "salmon", "shrimp", "tofu", "eggs",
		"rice", "pasta", "noodles", "bread", "potato", "potatoes",
		"tomato", "tomatoes", "onion", "garlic", "carrot", "broccoli", "spinach",
		"cheese", "milk", "cream", "butter", "yogurt",
		"beans", "lentils", "chickpeas",
	}

	allergyKeywords = []string{"allergic to", "allergy", "intolerant", "can't eat", "don't eat", "avoid", "no ", "without"}
	knownAllergens  = []string{"nuts", "peanuts", "dairy", "gluten", "shellfish", "eggs", "soy", "wheat", "fish"}

	knownCuisines = []string{
		"italian", "mexican", "chinese", "japanese", "indian", "thai",
		"french", "greek", "korean", "vietnamese", "american", "mediterranean",
	}

	mealTypeKeywords = []struct{ keyword, meal string }{
		{"breakfast", "breakfast"}, {"lunch", "lunch"}, {"dinner", "dinner"},
		{"snack", "snack"}, {"dessert", "dessert"}, {"brunch", "breakfast"},
	}

	quickTimeWords = []string{"quick", "fast", "15 min", "20 min", "30 min", "hurry"}
	longTimeWords  = []string{"slow", "hour", "hours", "time"}

	knownDiets = []string{"vegetarian", "vegan", "keto", "low-carb", "gluten-free", "dairy-free", "healthy", "low-fat"}
)

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func appendUnique(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}

// Analyze 對使用者輸入做輕量的意圖/約束分析，供策略選擇使用。
// 上下文中已有的過敏/飲食限制無條件合併進硬/軟約束（上下文永遠優先）。
func Analyze(userMessage string, ctx *Context) IntentAnalysis {
	text := strings.ToLower(userMessage)
	analysis := IntentAnalysis{}

	// 菜名偵測（保持簡單，用於精確搜尋）
	if m := dishNamePattern.FindStringSubmatch(text); m != nil {
		analysis.DishName = strings.TrimSpace(m[1])
	}

	// 食材線索（逗號或 with/using 列表）
	if strings.Contains(text, ",") || strings.Contains(text, " with ") || strings.Contains(text, " using ") {
		for _, tok := range ingredientSeparator.Split(text, -1) {
			tok = strings.TrimSpace(tok)
			if tok == "" || isNumeric(tok) {
				continue
			}
			if len(strings.Fields(tok)) <= 3 {
				analysis.OptionalIngredients = append(analysis.OptionalIngredients, tok)
			}
		}
	}

	// 約束分類
	if containsAny(text, dietFlags) {
		analysis.SoftConstraints = append(analysis.SoftConstraints, "dietary preference")
	}
	if containsAny(text, timeFlags) {
		analysis.SoftConstraints = append(analysis.SoftConstraints, "time: quick")
	}
	if containsAny(text, allergyFlags) {
		analysis.HardConstraints = append(analysis.HardConstraints, "allergy/avoid")
	}
	for _, a := range ctx.Allergies {
		analysis.HardConstraints = appendUnique(analysis.HardConstraints, "avoid: "+a)
	}
	for _, d := range ctx.DietaryRestrictions {
		analysis.SoftConstraints = appendUnique(analysis.SoftConstraints, "diet: "+d)
	}

	// 意圖分類：固定優先序，不使用信心分數
	switch {
	case containsAny(text, learningKeywords):
		analysis.Intent = IntentLearning
	case analysis.DishName != "":
		analysis.Intent = IntentSpecificDish
	case len(analysis.OptionalIngredients) > 0:
		analysis.Intent = IntentIngredientBased
	case len(analysis.SoftConstraints) > 0 || len(analysis.HardConstraints) > 0:
		analysis.Intent = IntentConstraintBased
	case containsAny(text, browsingKeywords):
		analysis.Intent = IntentBrowsing
	default:
		analysis.Intent = IntentBrowsing
	}

	return analysis
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// UpdateContext 根據本輪對話更新使用者偏好（只增量/覆寫，永不清除）
func UpdateContext(ctx *Context, userMessage string) *Context {
	text := strings.ToLower(userMessage)

	for _, ing := range commonIngredients {
		if strings.Contains(text, ing) {
			ctx.Ingredients = appendUnique(ctx.Ingredients, ing)
		}
	}

	// 過敏原必須與迴避語氣詞同時出現才記錄
	for _, allergen := range knownAllergens {
		if !strings.Contains(text, allergen) {
			continue
		}
		if containsAny(text, allergyKeywords) {
			ctx.Allergies = appendUnique(ctx.Allergies, allergen)
		}
	}

	for _, cuisine := range knownCuisines {
		if strings.Contains(text, cuisine) {
			ctx.CuisinePreference = cuisine
			break
		}
	}

	for _, mt := range mealTypeKeywords {
		if strings.Contains(text, mt.keyword) {
			ctx.MealType = mt.meal
			break
		}
	}

	if containsAny(text, quickTimeWords) {
		ctx.CookingTime = "quick"
	} else if containsAny(text, longTimeWords) {
		ctx.CookingTime = "long"
	}

	for _, diet := range knownDiets {
		if strings.Contains(text, diet) {
			ctx.DietaryRestrictions = appendUnique(ctx.DietaryRestrictions, diet)
		}
	}

	ctx.HasEnoughContext = len(ctx.Ingredients) > 0 || len(ctx.Allergies) > 0 ||
		ctx.CuisinePreference != "" || len(ctx.DietaryRestrictions) > 0

	return ctx
}
