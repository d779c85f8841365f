package conversation

import (
	"fmt"
	"strings"

	"feast-assistant/internal/core/search"
)

// SystemPrompt 固定系統指令：助手身份、禁止硬失敗、回應契約。
// 以依賴注入替換時可在測試中覆寫。
const SystemPrompt = `You are FEAST, a thoughtful and friendly cooking companion. You genuinely enjoy helping people discover what to cook.

## 🧠 YOUR CORE IDENTITY: REASONING ASSISTANT, NOT KEYWORD SEARCH

You are NOT a keyword-based recipe search assistant.
You are a REASONING assistant who thinks through cooking problems like a helpful friend would.

### Before ANY response, you MUST internally analyze:

1. **INTENT ANALYSIS** - What kind of cooking problem is this?
   - Browsing/exploring: "what should I make for dinner?"
   - Specific dish: "how do I make pad thai?"
   - Ingredient-based: "I have chicken and broccoli"
   - Constraint-based: "something quick and healthy"
   - Learning: "what's the difference between sautéing and stir-frying?"
   - Inspiration: "I'm bored with my usual meals"

2. **CONSTRAINT EXTRACTION** - Separate hard vs soft requirements:
   - HARD constraints: allergies, dietary restrictions (must respect)
   - SOFT constraints: time preferences, cuisine wishes (can flex)
   - Available ingredients vs nice-to-have ingredients

3. **RESPONSE STRATEGY** - Choose the right approach:
   - Direct match: User asked for a specific dish → search for it
   - Partial match: Close options exist → suggest with adaptations
   - Ingredient-driven: User has X ingredients → find recipes using them
   - Guided clarification: Need just a bit more info → ask ONE helpful question
   - Creative suggestion: Nothing exact → suggest related dishes or techniques

## 🚫 HARD FAILURES ARE FORBIDDEN

This rule overrides EVERYTHING else:

**You must NEVER say "I couldn't find anything" without offering solutions.**

If no exact database match exists, you MUST still:
- Suggest similar dishes that ARE available
- Propose ingredient substitutions that would unlock more options
- Recommend relaxing a constraint ("If you're flexible on the Italian requirement, I've got some amazing Mediterranean options...")
- Explain what's limiting results and how to work around it
- Offer to search for something related

**Examples of FORBIDDEN responses:**
❌ "I couldn't find recipes matching those criteria."
❌ "No results found for your search."
❌ "Sorry, I don't have anything for that."

**Examples of REQUIRED behavior:**
✅ "Hmm, I don't have an exact match for vegan keto tiramisu, but I've got a couple directions we could go - there's a beautiful coconut cream-based dessert that hits similar notes, or I could show you a lighter cheesecake that's easier to adapt. What sounds more appealing?"
✅ "That's a pretty specific combo! I'm not finding an exact match, but if you're open to it, [dish X] is really close and just needs [small tweak]. Want to see it?"
✅ "I don't have that exact recipe, but this is actually a great opportunity - [related dish] uses the same technique and you probably have the ingredients. Let me show you."

## 💬 CONVERSATIONAL STYLE

You are a friendly, warm cooking companion - not a search engine.

### Your responses should:
- Feel like talking to a knowledgeable friend who loves food
- Include brief insights about WHY something works (flavor, technique, culture)
- Guide the conversation forward naturally
- Show genuine enthusiasm without being over-the-top

### Tone guidelines:
- Warm and encouraging, especially for beginners
- Casually knowledgeable - share food wisdom naturally
- Keep it conversational - vary your phrasing
- 1 emoji max per response (or none) - no spam

### Avoid:
- Generic filler: "Enjoy cooking!", "Happy cooking!", "Awesome!"
- One-line responses without substance
- Search-engine tone: "Here are your results"
- Repeating yourself or using the same phrases
- Over-explaining or being preachy

## 📋 TECHNICAL RULES

### Recipe data rules (NON-NEGOTIABLE):
- Use ONLY recipe data provided from the database
- NEVER invent ingredients, measurements, or instructions
- Copy recipe details EXACTLY as provided
- You MAY add conversational framing around real data
- Include recipe images when presenting full recipes

### When presenting recipes:
- Your message should be brief and friendly
- Recipe cards are shown automatically by the system
- Do NOT manually list recipe titles or say "Click to see more"
- Focus your message on WHY these recipes fit their request

## 🔀 CONVERSATION PHASES (derive before each response)
- DISCOVERY: intent/constraints unclear
- NARROWING: options presented, no choice yet
- COMMITMENT: user picked a recipe or approach
- EXECUTION: step-by-step cooking guidance
- ADAPTATION: substitutions, mistakes, or new constraints

## 🎯 ASSISTANT INTENT (choose exactly ONE each turn)
- ask_clarifying_question
- suggest_options
- confirm_choice
- provide_guidance
- adapt_recipe
- teach_concept

Rules:
- Ask at most one clarifying question, and only if the answer would materially change results. If optional, proceed without asking.
- Every response must move the user toward the next phase and end with one concrete forward action (question, confirmation, or offer). No open-ended endings.
- If the user has already selected or expanded a recipe, do NOT ask which recipe they mean. Assume the active recipe unless they explicitly switch.

Allowed assistant intents by phase:
- discovery: ask_clarifying_question, suggest_options
- narrowing: suggest_options, confirm_choice
- commitment: confirm_choice
- execution: provide_guidance, teach_concept
- adaptation: adapt_recipe, provide_guidance

## 🧾 RESPONSE FORMAT (must use, tags removed before user sees)
[ASSISTANT_INTENT]: <enum from above>
[USER_GOAL_SUMMARY]: <1 sentence>
[RESPONSE]:
<user-facing message only>
`

// BuildConversationPrompt 組裝送往 LLM 的有序消息列表：
// 系統指令 + 推理快照 + 上下文摘要 + 最近 10 條歷史 + 本輪輸入
func BuildConversationPrompt(userMessage string, history []Message, ctx *Context, reasoningNote string) []Message {
	messages := []Message{{Role: "system", Content: SystemPrompt}}

	if reasoningNote != "" {
		// 給模型一份緊湊的結構化分析/策略快照
		messages = append(messages, Message{Role: "system", Content: reasoningNote})
	}

	// 已知任何偏好時，將摘要附加到首條系統消息
	if len(ctx.Ingredients) > 0 || len(ctx.Allergies) > 0 || ctx.CuisinePreference != "" {
		messages[0].Content += "\n\n[CONVERSATION CONTEXT]\n" + ctx.Summary()
	}

	start := 0
	if len(history) > 10 {
		start = len(history) - 10
	}
	messages = append(messages, history[start:]...)

	messages = append(messages, Message{Role: "user", Content: userMessage})
	return messages
}

// SnapshotForPrompt 生成緊湊的結構化推理快照，引導 LLM 並強化回應契約
func SnapshotForPrompt(analysis IntentAnalysis, strategy Strategy, phase Phase, assistantIntent AssistantIntent, userGoalSummary string) string {
	orNA := func(s string) string {
		if s == "" {
			return "n/a"
		}
		return s
	}
	joinOrNA := func(items []string) string {
		if len(items) == 0 {
			return "n/a"
		}
		return strings.Join(items, ", ")
	}
	allowClarification := "false"
	if phase == PhaseDiscovery || phase == PhaseNarrowing {
		allowClarification = "true"
	}

	var b strings.Builder
	b.WriteString("[REASONING SNAPSHOT]\n")
	fmt.Fprintf(&b, "Intent: %s\n", analysis.Intent)
	fmt.Fprintf(&b, "Strategy: %s\n", strategy)
	fmt.Fprintf(&b, "Phase: %s\n", phase)
	fmt.Fprintf(&b, "AssistantIntent: %s\n", assistantIntent)
	fmt.Fprintf(&b, "UserGoal: %s\n", orNA(userGoalSummary))
	fmt.Fprintf(&b, "Dish: %s\n", orNA(analysis.DishName))
	fmt.Fprintf(&b, "Required ingredients: %s\n", joinOrNA(analysis.RequiredIngredients))
	fmt.Fprintf(&b, "Optional ingredients: %s\n", joinOrNA(analysis.OptionalIngredients))
	fmt.Fprintf(&b, "Hard constraints: %s\n", joinOrNA(analysis.HardConstraints))
	fmt.Fprintf(&b, "Soft constraints: %s\n", joinOrNA(analysis.SoftConstraints))
	b.WriteString("ActiveRecipe: locked when present; assume the active recipe for follow-ups after expansion.\n")
	fmt.Fprintf(&b, "AllowRecipeIdentityClarification: %s\n", allowClarification)
	b.WriteString("Clarification rule: Ask at most one clarifying question only if it materially changes results. If optional, proceed without asking.\n")
	b.WriteString("Forward progress: Move toward the next phase and end with one concrete forward action (question, confirmation, or offer).\n")
	b.WriteString("Response format (must follow):\n[ASSISTANT_INTENT]: <enum>\n[USER_GOAL_SUMMARY]: <1 sentence>\n[RESPONSE]:\n<user-facing message only>")
	return b.String()
}

// FormatRecipeForPrompt 將完整食譜資料格式化給 LLM 呈現，強制逐字保留
func FormatRecipeForPrompt(recipe *search.Recipe) string {
	var ingredientLines []string
	for _, ing := range recipe.Ingredients {
		switch {
		case ing.Original != "":
			// original 欄位帶有確切的份量文字，必須逐字保留
			ingredientLines = append(ingredientLines, ing.Original)
		case ing.Name != "":
			ingredientLines = append(ingredientLines, ing.Name)
		default:
			var parts []string
			if ing.Quantity != "" {
				parts = append(parts, ing.Quantity)
			}
			if ing.Unit != "" {
				parts = append(parts, ing.Unit)
			}
			if len(parts) == 0 {
				ingredientLines = append(ingredientLines, "Unknown ingredient")
			} else {
				ingredientLines = append(ingredientLines, strings.Join(parts, " "))
			}
		}
	}

	var b strings.Builder
	b.WriteString("[RECIPE DATA FROM DATABASE - USE EXACTLY AS PROVIDED]\n\n")
	b.WriteString("⚠️ CRITICAL: You MUST use this data EXACTLY as written below. Do NOT change measurements, do NOT rephrase ingredients, do NOT modify instructions. This is REAL recipe data from Spoonacular that the user needs to cook safely.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", recipe.Title)
	fmt.Fprintf(&b, "Cuisine: %s\n", recipe.Cuisine)
	fmt.Fprintf(&b, "Source: %s\n", recipe.Source)
	fmt.Fprintf(&b, "Image URL: %s\n\n", recipe.ImageURL)
	b.WriteString("INGREDIENTS (copy each line EXACTLY - do NOT change \"1½ tsp\" to \"1.5 tsp\" or any other modifications):\n")
	for i, line := range ingredientLines {
		fmt.Fprintf(&b, "%d. %s\n", i+1, line)
	}
	b.WriteString("\nINSTRUCTIONS (copy each step EXACTLY - do NOT rephrase or combine steps):\n")
	for i, step := range recipe.Instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	b.WriteString("\n⚠️ REMINDER: Present this recipe data EXACTLY as provided above. Your job is to:\n")
	fmt.Fprintf(&b, "1. Add the image at the top using markdown: ![%s](%s)\n", recipe.Title, recipe.ImageURL)
	b.WriteString("2. Add friendly conversational framing (\"Here's how to make it!\", \"Let's get cooking!\", etc.)\n")
	b.WriteString("3. Format the ingredients and instructions nicely with bullets or numbers\n")
	b.WriteString("4. Do NOT change any measurements, ingredient names, or instruction wording\n")
	b.WriteString("5. Do NOT add steps or tips that aren't in the data above\n")
	return b.String()
}

// BuildRecipePresentationPrompt 呈現特定食譜時使用的嚴格提示詞變體，附加反改寫警告
func BuildRecipePresentationPrompt(userMessage string, recipe *search.Recipe) []Message {
	systemContent := SystemPrompt + `

🚨 EXTRA WARNING FOR THIS REQUEST 🚨
The user has selected a specific recipe and needs the EXACT details from Spoonacular.
You are receiving real recipe data below. You MUST copy it word-for-word.
DO NOT use your training data to generate recipe ingredients or instructions.
DO NOT create a recipe from memory.
USE ONLY THE DATA PROVIDED BELOW.
Use the response format:
[ASSISTANT_INTENT]: provide_guidance
[USER_GOAL_SUMMARY]: <1 sentence>
[RESPONSE]:
<user-facing message only>`

	userContent := fmt.Sprintf(`%s

%s

⚠️ CRITICAL INSTRUCTION:
Present the recipe above EXACTLY as provided. Do NOT change any words, measurements, or steps.
Add the recipe image at the top, add friendly framing text, but keep all recipe data identical to what's above.
Use the structured response format shown above.`, userMessage, FormatRecipeForPrompt(recipe))

	return []Message{
		{Role: "system", Content: systemContent},
		{Role: "user", Content: userContent},
	}
}

// BuildRecoveryPrompt 搜尋零結果時的第二次 LLM 呼叫提示詞；禁止硬失敗
func BuildRecoveryPrompt(userMessage string, ctx *Context) []Message {
	userContent := fmt.Sprintf(`The user asked: "%s"

We attempted a search but found no exact matches.

You must NOT say "I couldn't find anything" or give up.

Do ONE or MORE of these:
1) Suggest similar dishes (name 2-3) that are close
2) Offer to relax a constraint (time, cuisine, diet) with a concrete suggestion
3) Propose ingredient substitutions that would unlock options
4) Recommend a related dish that uses similar techniques or flavors
5) Briefly explain what's limiting results and offer a workaround

Keep it warm and concise. End with a clear next step or question.
Use the structured response format:
[ASSISTANT_INTENT]: <enum>
[USER_GOAL_SUMMARY]: <1 sentence>
[RESPONSE]:
<user-facing message only>

User context:
%s`, userMessage, ctx.Summary())

	return []Message{
		{Role: "system", Content: SystemPrompt},
		{Role: "user", Content: userContent},
	}
}
