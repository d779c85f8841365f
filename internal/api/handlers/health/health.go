// Package health 提供健康檢查端點。
package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck 健康檢查
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"backend": "Spoonacular",
	})
}

// ReadinessCheck 就緒檢查
func ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
