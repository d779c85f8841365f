package conversation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripStructuredTagsRoundTrip(t *testing.T) {
	raw := "[ASSISTANT_INTENT]: suggest_options\n" +
		"[USER_GOAL_SUMMARY]: Find a quick dinner.\n" +
		"[RESPONSE]:\n" +
		"How about a **stir-fry**? It comes together in 15 minutes. Want the recipe?"

	got := StripStructuredTags(raw)

	assert.Equal(t, "How about a **stir-fry**? It comes together in 15 minutes. Want the recipe?", got)
	assert.NotContains(t, got, "[ASSISTANT_INTENT]")
	assert.NotContains(t, got, "[USER_GOAL_SUMMARY]")
	assert.NotContains(t, got, "[RESPONSE]")
}

func TestStripStructuredTagsCaseInsensitiveMarker(t *testing.T) {
	got := StripStructuredTags("[response]\nHere you go!")
	assert.Equal(t, "Here you go!", got)
}

func TestStripStructuredTagsPreservesMarkdown(t *testing.T) {
	raw := "[RESPONSE]:\n# Pad Thai\n\n- **noodles**\n- *lime*"
	got := StripStructuredTags(raw)
	assert.Contains(t, got, "**noodles**")
	assert.Contains(t, got, "*lime*")
}

func TestStripStructuredTagsDiscardsSnapshotLeak(t *testing.T) {
	raw := "[RESPONSE]:\nHere is a suggestion.\n\n[REASONING SNAPSHOT]\nIntent: browsing\nStrategy: loose_search"
	got := StripStructuredTags(raw)

	assert.Contains(t, got, "Here is a suggestion.")
	assert.NotContains(t, got, "REASONING SNAPSHOT")
	assert.NotContains(t, got, "loose_search")
}

func TestStripStructuredTagsNoMarkerCleansAll(t *testing.T) {
	raw := "[ASSISTANT_INTENT]: suggest_options\nLet me help you out.\n[SEARCH_RECIPES]\nLooking for: pasta"
	got := StripStructuredTags(raw)

	assert.Contains(t, got, "Let me help you out.")
	assert.NotContains(t, got, "SEARCH_RECIPES")
	assert.NotContains(t, got, "Looking for:")
	assert.NotContains(t, got, "suggest_options")
}

func TestStripStructuredTagsEmptyFallsBack(t *testing.T) {
	tests := []string{
		"",
		"[RESPONSE]:",
		"[RESPONSE]:\n   \n",
		"[REASONING SNAPSHOT]\nIntent: browsing",
	}
	for _, raw := range tests {
		got := StripStructuredTags(raw)
		assert.Equal(t, "I'm here and ready to help—what would you like to cook or clarify?", got)
	}
}

func TestStripStructuredTagsCollapsesBlankLines(t *testing.T) {
	raw := "[RESPONSE]:\nFirst paragraph.\n\n\n\n\nSecond paragraph."
	got := StripStructuredTags(raw)
	assert.NotContains(t, got, "\n\n\n")
	assert.True(t, strings.Contains(got, "First paragraph.") && strings.Contains(got, "Second paragraph."))
}
