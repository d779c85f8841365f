// Package api HTTP 路由層：請求驗證、序列化與服務裝配。
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	chatHandler "feast-assistant/internal/api/handlers/chat"
	"feast-assistant/internal/api/handlers/health"
	recipeHandler "feast-assistant/internal/api/handlers/recipe"
	"feast-assistant/internal/api/middleware"
	"feast-assistant/internal/core/ai"
	"feast-assistant/internal/core/retrieval"
	"feast-assistant/internal/core/search"
	"feast-assistant/internal/core/turn"
	"feast-assistant/internal/infrastructure/config"
	"feast-assistant/internal/pkg/common"
)

const (
	// 每輪對話最多 1-3 次順序網路呼叫，逐層超時之外再給整個請求一個上限
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (1MB)，對話請求不含大型負載
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))
	router.Use(middleware.Deduplication(cfg))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("model", cfg.OpenRouter.Model),
	)

	// 初始化服務
	llmClient, err := ai.NewClient(&cfg.OpenRouter)
	if err != nil {
		common.LogError("Failed to initialize LLM client", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	responseCache := search.NewCacheFromConfig(&cfg.Cache)
	searchClient, err := search.NewClient(&cfg.Spoonacular, responseCache)
	if err != nil {
		common.LogError("Failed to initialize search client", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize search client: %w", err)
	}

	orchestrator := retrieval.NewOrchestrator(searchClient, llmClient)
	turnManager := turn.NewManager(llmClient, orchestrator)

	// 全局超時中間件
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
			})
			c.Abort()
		}
	})

	// 根端點
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "FEAST API is running",
			"version": cfg.App.Version,
			"backend": "Spoonacular",
		})
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	chatHandlerInstance := chatHandler.NewHandler(turnManager)
	recipeHandlerInstance := recipeHandler.NewHandler(searchClient)

	// 配額狀態
	router.GET("/quota", recipeHandlerInstance.HandleQuota)

	// API 路由組
	api := router.Group("/api/v1")
	{
		api.POST("/chat", chatHandlerInstance.HandleChat)

		recipeGroup := api.Group("/recipes")
		{
			recipeGroup.GET("/search", recipeHandlerInstance.HandleSearch)
			recipeGroup.GET("/random", recipeHandlerInstance.HandleRandom)
			recipeGroup.GET("/:id", recipeHandlerInstance.HandleGetRecipe)
			recipeGroup.GET("/:id/expand", recipeHandlerInstance.HandleExpandRecipe)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
