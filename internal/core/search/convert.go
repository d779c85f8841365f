package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Spoonacular API 回應到內部資料模型的轉換

// IntoleranceMap 內部過敏詞彙到 Spoonacular intolerance 詞彙的固定查表
var IntoleranceMap = map[string]string{
	"dairy": "dairy", "milk": "dairy", "lactose": "dairy",
	"egg": "egg", "eggs": "egg",
	"gluten": "gluten", "wheat": "gluten",
	"peanut": "peanut", "peanuts": "peanut",
	"tree nut": "tree nut", "nuts": "tree nut",
	"shellfish": "shellfish", "shrimp": "shellfish",
	"fish": "seafood", "seafood": "seafood",
	"soy": "soy", "sesame": "sesame",
}

// MapIntolerances 將過敏原列表映射並去重為逗號分隔的 intolerances 參數
func MapIntolerances(allergies []string) string {
	if len(allergies) == 0 {
		return ""
	}
	seen := make(map[string]bool)
	var mapped []string
	for _, a := range allergies {
		key := strings.ToLower(a)
		value, ok := IntoleranceMap[key]
		if !ok {
			value = key
		}
		if !seen[value] {
			seen[value] = true
			mapped = append(mapped, value)
		}
	}
	return strings.Join(mapped, ",")
}

// estimateDifficulty 依備餐時間估算難度
func estimateDifficulty(readyInMinutes int) string {
	switch {
	case readyInMinutes <= 20:
		return "easy"
	case readyInMinutes <= 45:
		return "medium"
	default:
		return "hard"
	}
}

// spoonacularRecipe complexSearch / information 回應中的單個食譜
type spoonacularRecipe struct {
	ID                  int                      `json:"id"`
	Title               string                   `json:"title"`
	Image               string                   `json:"image"`
	SourceURL           string                   `json:"sourceUrl"`
	ReadyInMinutes      int                      `json:"readyInMinutes"`
	Servings            int                      `json:"servings"`
	Cuisines            []string                 `json:"cuisines"`
	Diets               []string                 `json:"diets"`
	DishTypes           []string                 `json:"dishTypes"`
	Instructions        string                   `json:"instructions"`
	ExtendedIngredients []spoonacularIngredient  `json:"extendedIngredients"`
	AnalyzedInstruction []spoonacularInstruction `json:"analyzedInstructions"`
	Nutrition           *spoonacularNutrition    `json:"nutrition"`
	UsedIngredients     []spoonacularIngredient  `json:"usedIngredients"`
	MissedIngredients   []spoonacularIngredient  `json:"missedIngredients"`
	UsedIngredientCount int                      `json:"usedIngredientCount"`
	MissedIngredCount   int                      `json:"missedIngredientCount"`
}

type spoonacularIngredient struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Original string  `json:"original"`
}

type spoonacularInstruction struct {
	Steps []struct {
		Number int    `json:"number"`
		Step   string `json:"step"`
	} `json:"steps"`
}

type spoonacularNutrition struct {
	Nutrients []struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
	} `json:"nutrients"`
}

type complexSearchResponse struct {
	Results []spoonacularRecipe `json:"results"`
}

type randomResponse struct {
	Recipes []spoonacularRecipe `json:"recipes"`
}

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
var stepSplitPattern = regexp.MustCompile(`\n+|\d+\.`)

// toRecipe 將 Spoonacular 回應轉為完整 Recipe 模型
func (s *spoonacularRecipe) toRecipe() Recipe {
	ingredients := make([]Ingredient, 0, len(s.ExtendedIngredients))
	for _, ing := range s.ExtendedIngredients {
		quantity := ""
		if ing.Amount != 0 {
			quantity = strconv.FormatFloat(ing.Amount, 'f', -1, 64)
		}
		ingredients = append(ingredients, Ingredient{
			Name:     ing.Name,
			Quantity: quantity,
			Unit:     ing.Unit,
			Original: ing.Original,
		})
	}

	var instructions []string
	for _, section := range s.AnalyzedInstruction {
		for _, step := range section.Steps {
			if text := strings.TrimSpace(step.Step); text != "" {
				instructions = append(instructions, text)
			}
		}
	}
	// 退回純文字 instructions 欄位
	if len(instructions) == 0 && s.Instructions != "" {
		raw := htmlTagPattern.ReplaceAllString(s.Instructions, "\n")
		for _, step := range stepSplitPattern.Split(raw, -1) {
			if text := strings.TrimSpace(step); text != "" {
				instructions = append(instructions, text)
			}
		}
	}

	var nutrition *Nutrition
	if s.Nutrition != nil && len(s.Nutrition.Nutrients) > 0 {
		nutrients := make(map[string]float64, len(s.Nutrition.Nutrients))
		for _, n := range s.Nutrition.Nutrients {
			nutrients[strings.ToLower(n.Name)] = n.Amount
		}
		nutrition = &Nutrition{
			Calories: nutrients["calories"],
			Protein:  nutrients["protein"],
			Carbs:    nutrients["carbohydrates"],
			Fat:      nutrients["fat"],
			Fiber:    nutrients["fiber"],
			Sugar:    nutrients["sugar"],
			Sodium:   nutrients["sodium"],
		}
	}

	var tags []string
	tags = append(tags, s.Cuisines...)
	tags = append(tags, s.Diets...)
	tags = append(tags, s.DishTypes...)

	cuisine := "International"
	if len(s.Cuisines) > 0 {
		cuisine = s.Cuisines[0]
	}
	category := ""
	if len(s.DishTypes) > 0 {
		category = s.DishTypes[0]
	}

	return Recipe{
		ID:             fmt.Sprintf("spoonacular_%d", s.ID),
		Title:          s.Title,
		Ingredients:    ingredients,
		Instructions:   instructions,
		Cuisine:        cuisine,
		Source:         "Spoonacular",
		SourceID:       fmt.Sprintf("%d", s.ID),
		Category:       category,
		Tags:           tags,
		ImageURL:       s.Image,
		SourceURL:      s.SourceURL,
		ReadyInMinutes: s.ReadyInMinutes,
		Servings:       s.Servings,
		Difficulty:     estimateDifficulty(s.ReadyInMinutes),
		Nutrition:      nutrition,
	}
}

// toScoredRecipe 轉為帶匹配分數的預覽結果
func (s *spoonacularRecipe) toScoredRecipe() ScoredRecipe {
	recipe := s.toRecipe()

	used := make([]string, 0, len(s.UsedIngredients))
	for _, ing := range s.UsedIngredients {
		used = append(used, ing.Name)
	}
	missing := make([]string, 0, len(s.MissedIngredients))
	for _, ing := range s.MissedIngredients {
		missing = append(missing, ing.Name)
	}

	usedCount := len(used)
	if usedCount == 0 {
		usedCount = s.UsedIngredientCount
	}
	missedCount := len(missing)
	if missedCount == 0 {
		missedCount = s.MissedIngredCount
	}

	score := 50.0
	if total := usedCount + missedCount; total > 0 {
		score = float64(usedCount) / float64(total) * 100
	}

	return ScoredRecipe{
		Recipe:             recipe,
		Score:              score,
		IngredientMatches:  used,
		MissingIngredients: missing,
	}
}
