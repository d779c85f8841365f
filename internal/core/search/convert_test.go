package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapIntolerances(t *testing.T) {
	tests := []struct {
		name      string
		allergies []string
		expected  string
	}{
		{"空列表", nil, ""},
		{"milk 映射到 dairy", []string{"milk"}, "dairy"},
		{"wheat 映射到 gluten", []string{"wheat"}, "gluten"},
		{"nuts 映射到 tree nut", []string{"nuts"}, "tree nut"},
		{"fish 映射到 seafood", []string{"fish"}, "seafood"},
		{"同義詞去重", []string{"milk", "dairy", "lactose"}, "dairy"},
		{"未知詞彙原樣保留", []string{"celery"}, "celery"},
		{"大小寫不敏感", []string{"Peanuts"}, "peanut"},
		{"多個過敏原逗號連接", []string{"gluten", "shrimp"}, "gluten,shellfish"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapIntolerances(tt.allergies))
		})
	}
}

func TestEstimateDifficulty(t *testing.T) {
	assert.Equal(t, "easy", estimateDifficulty(15))
	assert.Equal(t, "easy", estimateDifficulty(20))
	assert.Equal(t, "medium", estimateDifficulty(30))
	assert.Equal(t, "medium", estimateDifficulty(45))
	assert.Equal(t, "hard", estimateDifficulty(90))
}

func TestToRecipePreservesOriginalIngredientText(t *testing.T) {
	raw := spoonacularRecipe{
		ID:    715538,
		Title: "Bruschetta",
		ExtendedIngredients: []spoonacularIngredient{
			{Name: "tomato", Amount: 1.5, Unit: "cups", Original: "1½ cups diced tomatoes"},
		},
		AnalyzedInstruction: []spoonacularInstruction{
			{Steps: []struct {
				Number int    `json:"number"`
				Step   string `json:"step"`
			}{{Number: 1, Step: "Dice the tomatoes."}}},
		},
		Cuisines:       []string{"Italian", "Mediterranean"},
		ReadyInMinutes: 15,
	}

	recipe := raw.toRecipe()

	assert.Equal(t, "spoonacular_715538", recipe.ID)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, "1½ cups diced tomatoes", recipe.Ingredients[0].Original)
	assert.Equal(t, "1.5", recipe.Ingredients[0].Quantity)
	assert.Equal(t, []string{"Dice the tomatoes."}, recipe.Instructions)
	assert.Equal(t, "Italian", recipe.Cuisine)
	assert.Equal(t, "Spoonacular", recipe.Source)
	assert.Equal(t, "easy", recipe.Difficulty)
}

func TestToRecipeInstructionsFallback(t *testing.T) {
	raw := spoonacularRecipe{
		ID:           1,
		Title:        "Toast",
		Instructions: "<ol><li>Slice the bread.</li><li>Toast until golden.</li></ol>",
	}

	recipe := raw.toRecipe()

	require.Len(t, recipe.Instructions, 2)
	assert.Equal(t, "Slice the bread.", recipe.Instructions[0])
	assert.Equal(t, "Toast until golden.", recipe.Instructions[1])
}

func TestToRecipeDefaultsCuisine(t *testing.T) {
	raw := spoonacularRecipe{ID: 2, Title: "Mystery Dish"}
	recipe := raw.toRecipe()
	assert.Equal(t, "International", recipe.Cuisine)
}

func TestToScoredRecipeMatchScore(t *testing.T) {
	raw := spoonacularRecipe{
		ID:    3,
		Title: "Stir Fry",
		UsedIngredients: []spoonacularIngredient{
			{Name: "chicken"}, {Name: "broccoli"}, {Name: "garlic"},
		},
		MissedIngredients: []spoonacularIngredient{{Name: "oyster sauce"}},
	}

	scored := raw.toScoredRecipe()

	assert.InDelta(t, 75.0, scored.Score, 0.01)
	assert.Equal(t, []string{"chicken", "broccoli", "garlic"}, scored.IngredientMatches)
	assert.Equal(t, []string{"oyster sauce"}, scored.MissingIngredients)
}

func TestToScoredRecipeDefaultScore(t *testing.T) {
	raw := spoonacularRecipe{ID: 4, Title: "Plain Search Hit"}
	scored := raw.toScoredRecipe()
	assert.Equal(t, 50.0, scored.Score)
}

func TestToRecipeNutrition(t *testing.T) {
	raw := spoonacularRecipe{
		ID:    5,
		Title: "Salad",
		Nutrition: &spoonacularNutrition{
			Nutrients: []struct {
				Name   string  `json:"name"`
				Amount float64 `json:"amount"`
			}{
				{Name: "Calories", Amount: 320},
				{Name: "Protein", Amount: 12.5},
			},
		},
	}

	recipe := raw.toRecipe()

	require.NotNil(t, recipe.Nutrition)
	assert.Equal(t, 320.0, recipe.Nutrition.Calories)
	assert.Equal(t, 12.5, recipe.Nutrition.Protein)
}
