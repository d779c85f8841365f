// Package chat 對話端點：一次請求即一輪完整的對話回合。
package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"feast-assistant/internal/core/conversation"
	"feast-assistant/internal/core/search"
	"feast-assistant/internal/core/turn"
	"feast-assistant/internal/pkg/common"
)

// Request 對話請求
type Request struct {
	Message             string                 `json:"message" binding:"required"`
	ConversationHistory []conversation.Message `json:"conversation_history"`
	Context             *conversation.Context  `json:"context"`
}

// Response 對話回應；context 由前端保存並於下一輪帶回
type Response struct {
	Message string                `json:"message"`
	Recipes []recipeDTO           `json:"recipes"`
	Context *conversation.Context `json:"context"`
	Error   string                `json:"error,omitempty"`
}

// recipeDTO 食譜預覽的序列化格式
type recipeDTO struct {
	search.Recipe
	MatchScore         float64  `json:"match_score"`
	MatchedIngredients []string `json:"matched_ingredients"`
	MissingIngredients []string `json:"missing_ingredients"`
}

// Handler 對話處理器
type Handler struct {
	turnManager *turn.Manager
}

// NewHandler 創建對話處理器
func NewHandler(turnManager *turn.Manager) *Handler {
	return &Handler{turnManager: turnManager}
}

// HandleChat 處理一輪對話
func (h *Handler) HandleChat(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	convCtx := req.Context
	if convCtx == nil {
		convCtx = &conversation.Context{}
	}

	result, err := h.turnManager.ProcessTurn(c.Request.Context(), req.Message, req.ConversationHistory, convCtx)
	if err != nil {
		common.LogError("對話回合失敗",
			zap.Error(err),
			zap.String("request_id", c.GetHeader("X-Request-ID")),
		)
		c.JSON(http.StatusOK, Response{
			Message: "I'm having trouble connecting right now. Please try again in a moment.",
			Recipes: []recipeDTO{},
			Context: convCtx,
			Error:   err.Error(),
		})
		return
	}

	recipes := make([]recipeDTO, 0, len(result.Recipes))
	for _, scored := range result.Recipes {
		recipes = append(recipes, recipeDTO{
			Recipe:             scored.Recipe,
			MatchScore:         scored.Score,
			MatchedIngredients: scored.IngredientMatches,
			MissingIngredients: scored.MissingIngredients,
		})
	}

	// API 邊界再做一次契約強制，保證只有 RESPONSE 區塊外流
	safeMessage := conversation.StripStructuredTags(result.Text)

	c.JSON(http.StatusOK, Response{
		Message: safeMessage,
		Recipes: recipes,
		Context: result.Context,
	})
}
