package conversation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feast-assistant/internal/core/search"
)

func TestBuildConversationPromptStructure(t *testing.T) {
	ctx := &Context{Ingredients: []string{"chicken"}}
	history := []Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}

	messages := BuildConversationPrompt("what can I cook?", history, ctx, "[REASONING SNAPSHOT]\nIntent: browsing")

	require.Len(t, messages, 5)
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, "You are FEAST")
	assert.Contains(t, messages[0].Content, "[CONVERSATION CONTEXT]")
	assert.Contains(t, messages[0].Content, "Ingredients: chicken")
	assert.Equal(t, "system", messages[1].Role)
	assert.Contains(t, messages[1].Content, "[REASONING SNAPSHOT]")
	assert.Equal(t, "user", messages[len(messages)-1].Role)
	assert.Equal(t, "what can I cook?", messages[len(messages)-1].Content)
}

func TestBuildConversationPromptHistoryWindow(t *testing.T) {
	var history []Message
	for i := 0; i < 25; i++ {
		history = append(history, Message{Role: "user", Content: fmt.Sprintf("message %d", i)})
	}

	messages := BuildConversationPrompt("latest", history, &Context{}, "")

	// 系統消息 + 最近 10 條歷史 + 本輪輸入
	require.Len(t, messages, 12)
	assert.Equal(t, "message 15", messages[1].Content)
	assert.Equal(t, "message 24", messages[10].Content)
}

func TestBuildConversationPromptNoContextSummaryWhenEmpty(t *testing.T) {
	messages := BuildConversationPrompt("hello", nil, &Context{}, "")
	assert.NotContains(t, messages[0].Content, "[CONVERSATION CONTEXT]")
}

func TestSnapshotForPrompt(t *testing.T) {
	analysis := IntentAnalysis{
		Intent:          IntentSpecificDish,
		DishName:        "pad thai",
		HardConstraints: []string{"avoid: peanuts"},
	}

	snapshot := SnapshotForPrompt(analysis, StrategyExactSearch, PhaseCommitment, IntentConfirmChoice, "Cook pad thai")

	assert.Contains(t, snapshot, "[REASONING SNAPSHOT]")
	assert.Contains(t, snapshot, "Intent: specific_dish")
	assert.Contains(t, snapshot, "Strategy: exact_search")
	assert.Contains(t, snapshot, "Phase: commitment")
	assert.Contains(t, snapshot, "AssistantIntent: confirm_choice")
	assert.Contains(t, snapshot, "Dish: pad thai")
	assert.Contains(t, snapshot, "Hard constraints: avoid: peanuts")
	assert.Contains(t, snapshot, "AllowRecipeIdentityClarification: false")
	assert.Contains(t, snapshot, "Required ingredients: n/a")
	// 活躍食譜規則只陳述一次
	assert.Equal(t, 1, strings.Count(snapshot, "assume the active recipe"))
}

func TestSnapshotAllowsClarificationEarlyPhases(t *testing.T) {
	snapshot := SnapshotForPrompt(IntentAnalysis{Intent: IntentBrowsing}, StrategyLooseSearch, PhaseDiscovery, IntentSuggestOptions, "")
	assert.Contains(t, snapshot, "AllowRecipeIdentityClarification: true")
}

func TestFormatRecipeForPromptPreservesOriginalText(t *testing.T) {
	recipe := &search.Recipe{
		Title:   "Carbonara",
		Cuisine: "Italian",
		Source:  "Spoonacular",
		Ingredients: []search.Ingredient{
			{Name: "spaghetti", Original: "400g spaghetti"},
			{Name: "egg yolk", Original: "1½ tsp egg yolk"},
		},
		Instructions: []string{"Boil the pasta.", "Mix eggs and cheese."},
	}

	formatted := FormatRecipeForPrompt(recipe)

	// original 欄位逐字保留
	assert.Contains(t, formatted, "1. 400g spaghetti")
	assert.Contains(t, formatted, "2. 1½ tsp egg yolk")
	assert.Contains(t, formatted, "1. Boil the pasta.")
	assert.Contains(t, formatted, "USE EXACTLY AS PROVIDED")
}

func TestBuildRecipePresentationPromptAntiParaphrase(t *testing.T) {
	recipe := &search.Recipe{Title: "Ramen", Ingredients: []search.Ingredient{{Original: "200g noodles"}}}
	messages := BuildRecipePresentationPrompt("show me 'Ramen'", recipe)

	require.Len(t, messages, 2)
	assert.Contains(t, messages[0].Content, "EXTRA WARNING FOR THIS REQUEST")
	assert.Contains(t, messages[0].Content, "copy it word-for-word")
	assert.Contains(t, messages[1].Content, "200g noodles")
	assert.Contains(t, messages[1].Content, "CRITICAL INSTRUCTION")
}

func TestBuildRecoveryPromptForbidsHardFailure(t *testing.T) {
	ctx := &Context{Allergies: []string{"gluten"}}
	messages := BuildRecoveryPrompt("vegan keto tiramisu", ctx)

	require.Len(t, messages, 2)
	assert.Contains(t, messages[1].Content, `You must NOT say "I couldn't find anything"`)
	assert.Contains(t, messages[1].Content, "vegan keto tiramisu")
	assert.Contains(t, messages[1].Content, "Allergies/Avoid: gluten")
	assert.True(t, strings.Contains(messages[1].Content, "Suggest similar dishes"))
}
