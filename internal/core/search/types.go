// Package search 提供 Spoonacular 食譜搜尋客戶端與讀穿式回應快取。
package search

// Ingredient 食材行：name/quantity/unit 之外，original 保留 API 原文，呈現時逐字保留
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Original string `json:"original"`
}

// Nutrition 營養資訊（可選）
type Nutrition struct {
	Calories float64 `json:"calories,omitempty"`
	Protein  float64 `json:"protein,omitempty"`
	Carbs    float64 `json:"carbs,omitempty"`
	Fat      float64 `json:"fat,omitempty"`
	Fiber    float64 `json:"fiber,omitempty"`
	Sugar    float64 `json:"sugar,omitempty"`
	Sodium   float64 `json:"sodium,omitempty"`
}

// Recipe 食譜實體，身份為 source + source_id
type Recipe struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Ingredients    []Ingredient `json:"ingredients"`
	Instructions   []string     `json:"instructions"`
	Cuisine        string       `json:"cuisine"`
	Source         string       `json:"source"`
	SourceID       string       `json:"source_id"`
	Category       string       `json:"category"`
	Tags           []string     `json:"tags"`
	ImageURL       string       `json:"image_url"`
	SourceURL      string       `json:"source_url"`
	ReadyInMinutes int          `json:"ready_in_minutes"`
	Servings       int          `json:"servings"`
	Difficulty     string       `json:"difficulty"`
	Nutrition      *Nutrition   `json:"nutrition,omitempty"`
}

// ScoredRecipe 帶相關性分數（0-100）的食譜，單輪使用後丟棄
type ScoredRecipe struct {
	Recipe             Recipe   `json:"recipe"`
	Score              float64  `json:"score"`
	IngredientMatches  []string `json:"ingredient_matches"`
	MissingIngredients []string `json:"missing_ingredients"`
}

// Query 搜尋條件，由檢索協調器依策略組裝
type Query struct {
	Text                string
	Ingredients         []string
	Cuisine             string
	Allergies           []string
	DietaryRestrictions []string
	MealType            string
	MaxReadyTime        int
	Limit               int
}
